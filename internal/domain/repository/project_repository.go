package repository

import (
	"context"
	"time"

	"github.com/oksasatya/project-tracker/internal/domain/entity"
)

// ProjectFilter restricts List. A nil Status returns every project.
type ProjectFilter struct {
	Status *entity.ProjectStatus
}

// ProjectPatch carries a partial update; nil fields are left untouched.
type ProjectPatch struct {
	Name               *string
	Status             *entity.ProjectStatus
	Deadline           *time.Time
	AssignedTeamMember *string
	Budget             *float64
}

func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Status == nil && p.Deadline == nil && p.AssignedTeamMember == nil && p.Budget == nil
}

// ProjectRepository is the project store. Every call is atomic on its own.
// List and Search order by creation time, newest first.
type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]entity.Project, error)
	Update(ctx context.Context, id string, patch ProjectPatch) (*entity.Project, error)
	Delete(ctx context.Context, id string) error
	// Search returns every project whose name or assignee contains query,
	// ignoring case.
	Search(ctx context.Context, query string, filter ProjectFilter) ([]entity.Project, error)
	CountByStatus(ctx context.Context) (map[entity.ProjectStatus]int, error)
}
