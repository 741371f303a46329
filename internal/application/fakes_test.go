package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/project-tracker/internal/domain/apperror"
	"github.com/oksasatya/project-tracker/internal/domain/entity"
	repo "github.com/oksasatya/project-tracker/internal/domain/repository"
)

type memoryUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]entity.User
	err     error
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byEmail: map[string]entity.User{}}
}

func (m *memoryUserRepo) Create(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return apperror.Conflictf("User with email %s already exists", u.Email)
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.byEmail[u.Email] = *u
	return nil
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, apperror.NotFoundf("user not found")
	}
	return &u, nil
}

func (m *memoryUserRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}

type memoryProjectRepo struct {
	mu       sync.Mutex
	projects map[string]entity.Project
	clock    time.Time
	writes   int
}

func newMemoryProjectRepo() *memoryProjectRepo {
	return &memoryProjectRepo{
		projects: map[string]entity.Project{},
		clock:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memoryProjectRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memoryProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = m.tick()
	p.UpdatedAt = p.CreatedAt
	m.projects[p.ID] = *p
	m.writes++
	return nil
}

func (m *memoryProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, apperror.NotFoundf("project not found")
	}
	return &p, nil
}

func (m *memoryProjectRepo) List(ctx context.Context, filter repo.ProjectFilter) ([]entity.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Project{}
	for _, p := range m.projects {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryProjectRepo) Update(ctx context.Context, id string, patch repo.ProjectPatch) (*entity.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, apperror.NotFoundf("project not found")
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Deadline != nil {
		p.Deadline = *patch.Deadline
	}
	if patch.AssignedTeamMember != nil {
		p.AssignedTeamMember = *patch.AssignedTeamMember
	}
	if patch.Budget != nil {
		p.Budget = *patch.Budget
	}
	p.UpdatedAt = m.tick()
	m.projects[id] = p
	m.writes++
	return &p, nil
}

func (m *memoryProjectRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return apperror.NotFoundf("project not found")
	}
	delete(m.projects, id)
	m.writes++
	return nil
}

func (m *memoryProjectRepo) Search(ctx context.Context, query string, filter repo.ProjectFilter) ([]entity.Project, error) {
	all, _ := m.List(ctx, filter)
	q := strings.ToLower(query)
	out := []entity.Project{}
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.AssignedTeamMember), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryProjectRepo) CountByStatus(ctx context.Context) (map[entity.ProjectStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[entity.ProjectStatus]int{}
	for _, p := range m.projects {
		out[p.Status]++
	}
	return out, nil
}

type notification struct {
	Address     string
	ProjectName string
	Deadline    string
	Budget      float64
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
	err   error
}

func (n *recordingNotifier) NotifyAssignment(ctx context.Context, address, projectName, deadline string, budget float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification{address, projectName, deadline, budget})
	return n.err
}

type fakeIndex struct {
	docs      map[string]entity.Project
	searchIDs []string
	searchErr error
	indexErr  error
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[string]entity.Project{}} }

func (f *fakeIndex) Index(ctx context.Context, p *entity.Project) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.docs[p.ID] = *p
	return nil
}

func (f *fakeIndex) Remove(ctx context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return fmt.Errorf("document %s not indexed", id)
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, query string, status *entity.ProjectStatus) ([]string, error) {
	return f.searchIDs, f.searchErr
}

var errStoreDown = errors.New("connection refused")

type staticTokens struct{ err error }

func (s staticTokens) GenerateAccessToken(userID, email string) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return "token-for-" + userID, time.Now().Add(time.Hour), nil
}
