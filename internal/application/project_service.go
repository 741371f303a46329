package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker/internal/domain/apperror"
	"github.com/oksasatya/project-tracker/internal/domain/entity"
	repo "github.com/oksasatya/project-tracker/internal/domain/repository"
	"github.com/oksasatya/project-tracker/pkg/helpers"
	"github.com/oksasatya/project-tracker/pkg/metrics"
)

// AssignmentNotifier tells an assignee about a project. Implementations are
// best effort; a returned error is logged by the caller and never surfaced.
type AssignmentNotifier interface {
	NotifyAssignment(ctx context.Context, address, projectName, deadline string, budget float64) error
}

// ProjectIndex is an optional full-text index over projects. Search returns
// ids only; records are always re-read from the store.
type ProjectIndex interface {
	Index(ctx context.Context, p *entity.Project) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string, status *entity.ProjectStatus) ([]string, error)
}

type ProjectService struct {
	Repo     repo.ProjectRepository
	Notifier AssignmentNotifier
	Index    ProjectIndex
	Logger   *logrus.Logger
}

func NewProjectService(r repo.ProjectRepository, notifier AssignmentNotifier, index ProjectIndex, logger *logrus.Logger) *ProjectService {
	return &ProjectService{Repo: r, Notifier: notifier, Index: index, Logger: orDiscard(logger)}
}

type CreateProjectInput struct {
	Name               string
	Status             entity.ProjectStatus
	Deadline           string
	AssignedTeamMember string
	Budget             float64
}

// UpdateProjectInput holds a partial update; nil fields are not changed.
type UpdateProjectInput struct {
	Name               *string
	Status             *entity.ProjectStatus
	Deadline           *string
	AssignedTeamMember *string
	Budget             *float64
}

func (in CreateProjectInput) validate() (time.Time, error) {
	if strings.TrimSpace(in.Name) == "" {
		return time.Time{}, apperror.Validationf("name is required")
	}
	if !in.Status.Valid() {
		return time.Time{}, apperror.Validationf("status %q is not a valid project status", in.Status)
	}
	if strings.TrimSpace(in.AssignedTeamMember) == "" {
		return time.Time{}, apperror.Validationf("assignedTeamMember is required")
	}
	if in.Budget < 0 {
		return time.Time{}, apperror.Validationf("budget must not be negative")
	}
	return parseDeadline(in.Deadline)
}

func parseDeadline(s string) (time.Time, error) {
	d, err := entity.ParseDeadline(s)
	if err != nil {
		return time.Time{}, apperror.Wrap(apperror.Validation, "invalid deadline", err)
	}
	return d, nil
}

func (in UpdateProjectInput) toPatch() (repo.ProjectPatch, error) {
	patch := repo.ProjectPatch{
		Name:               in.Name,
		Status:             in.Status,
		AssignedTeamMember: in.AssignedTeamMember,
		Budget:             in.Budget,
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return patch, apperror.Validationf("name must not be empty")
	}
	if in.Status != nil && !in.Status.Valid() {
		return patch, apperror.Validationf("status %q is not a valid project status", *in.Status)
	}
	if in.AssignedTeamMember != nil && strings.TrimSpace(*in.AssignedTeamMember) == "" {
		return patch, apperror.Validationf("assignedTeamMember must not be empty")
	}
	if in.Budget != nil && *in.Budget < 0 {
		return patch, apperror.Validationf("budget must not be negative")
	}
	if in.Deadline != nil {
		d, err := parseDeadline(*in.Deadline)
		if err != nil {
			return patch, err
		}
		patch.Deadline = &d
	}
	return patch, nil
}

// Create stores a project and notifies the assignee when it is an email address.
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*entity.Project, error) {
	deadline, err := in.validate()
	if err != nil {
		return nil, err
	}
	p := &entity.Project{
		Name:               in.Name,
		Status:             in.Status,
		Deadline:           deadline,
		AssignedTeamMember: in.AssignedTeamMember,
		Budget:             in.Budget,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	metrics.ProjectMutationsTotal.WithLabelValues("create").Inc()
	s.index(ctx, p)

	if entity.IsEmailAddress(in.AssignedTeamMember) {
		s.notify(ctx, p)
	}
	return p, nil
}

// FindAll lists projects newest first, optionally restricted to one status.
func (s *ProjectService) FindAll(ctx context.Context, status *entity.ProjectStatus) ([]entity.Project, error) {
	if status != nil && !status.Valid() {
		return nil, apperror.Validationf("status %q is not a valid project status", *status)
	}
	return s.Repo.List(ctx, repo.ProjectFilter{Status: status})
}

func (s *ProjectService) FindOne(ctx context.Context, id string) (*entity.Project, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundf("Project with ID %s not found", id)
		}
		return nil, err
	}
	return p, nil
}

// Update applies a partial update. The assignee is notified only when the
// update sets a different assignee that is an email address; changes to
// other fields never re-notify. An empty update writes nothing.
func (s *ProjectService) Update(ctx context.Context, id string, in UpdateProjectInput) (*entity.Project, error) {
	existing, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	patch, err := in.toPatch()
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return existing, nil
	}
	updated, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundf("Project with ID %s not found", id)
		}
		return nil, err
	}
	metrics.ProjectMutationsTotal.WithLabelValues("update").Inc()
	s.index(ctx, updated)

	if in.AssignedTeamMember != nil &&
		*in.AssignedTeamMember != existing.AssignedTeamMember &&
		entity.IsEmailAddress(*in.AssignedTeamMember) {
		s.notify(ctx, updated)
	}
	return updated, nil
}

// Remove deletes a project and returns its last known value.
func (s *ProjectService) Remove(ctx context.Context, id string) (*entity.Project, error) {
	existing, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundf("Project with ID %s not found", id)
		}
		return nil, err
	}
	metrics.ProjectMutationsTotal.WithLabelValues("delete").Inc()
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			s.Logger.WithError(err).WithField("project_id", id).Warn("project index remove failed")
		}
	}
	return existing, nil
}

// Search returns every project whose name or assignee contains query,
// ignoring case, newest first. An empty query lists.
func (s *ProjectService) Search(ctx context.Context, query string, status *entity.ProjectStatus) ([]entity.Project, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.FindAll(ctx, status)
	}
	if status != nil && !status.Valid() {
		return nil, apperror.Validationf("status %q is not a valid project status", *status)
	}
	if s.Index != nil {
		out, err := s.searchIndex(ctx, query, status)
		if err == nil {
			return out, nil
		}
		s.Logger.WithError(err).Warn("project index search failed, falling back to store")
	}
	return s.Repo.Search(ctx, query, repo.ProjectFilter{Status: status})
}

func (s *ProjectService) searchIndex(ctx context.Context, query string, status *entity.ProjectStatus) ([]entity.Project, error) {
	ids, err := s.Index.Search(ctx, query, status)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Project, 0, len(ids))
	for _, id := range ids {
		p, err := s.Repo.GetByID(ctx, id)
		if errors.Is(err, apperror.ErrNotFound) {
			// stale index entry
			continue
		}
		if err != nil {
			return nil, err
		}
		if status != nil && p.Status != *status {
			continue
		}
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Stats counts projects per status.
func (s *ProjectService) Stats(ctx context.Context) (*entity.ProjectStats, error) {
	counts, err := s.Repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	st := &entity.ProjectStats{
		Active:    counts[entity.StatusActive],
		OnHold:    counts[entity.StatusOnHold],
		Completed: counts[entity.StatusCompleted],
	}
	st.Total = st.Active + st.OnHold + st.Completed
	return st, nil
}

func (s *ProjectService) notify(ctx context.Context, p *entity.Project) {
	if s.Notifier == nil {
		return
	}
	err := s.Notifier.NotifyAssignment(ctx, p.AssignedTeamMember, p.Name, helpers.FormatISO(p.Deadline), p.Budget)
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"project_id": p.ID,
			"to":         p.AssignedTeamMember,
		}).Warn("assignment notification failed")
	}
}

func (s *ProjectService) index(ctx context.Context, p *entity.Project) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil {
		s.Logger.WithError(err).WithField("project_id", p.ID).Warn("project index failed")
	}
}
