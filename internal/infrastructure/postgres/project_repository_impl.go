package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/project-tracker/internal/domain/apperror"
	"github.com/oksasatya/project-tracker/internal/domain/entity"
	"github.com/oksasatya/project-tracker/internal/domain/repository"
)

const projectColumns = `id, name, status, deadline, assigned_team_member, budget, created_at, updated_at`

const projectNotFound = "project not found"

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO projects (name, status, deadline, assigned_team_member, budget)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, p.Name, string(p.Status), p.Deadline, p.AssignedTeamMember, p.Budget)

	return translate(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt), projectNotFound, "")
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	if !validID(id) {
		return nil, apperror.New(apperror.NotFound, projectNotFound)
	}
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (r *ProjectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]entity.Project, error) {
	where, args := filterClause(filter, nil)
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects`+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

// Update writes only the non-nil patch fields and bumps updated_at, in a single statement.
func (r *ProjectRepository) Update(ctx context.Context, id string, patch repository.ProjectPatch) (*entity.Project, error) {
	if !validID(id) {
		return nil, apperror.New(apperror.NotFound, projectNotFound)
	}
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE projects SET
			name                 = COALESCE($2, name),
			status               = COALESCE($3, status),
			deadline             = COALESCE($4, deadline),
			assigned_team_member = COALESCE($5, assigned_team_member),
			budget               = COALESCE($6, budget),
			updated_at           = now()
		WHERE id = $1
		RETURNING `+projectColumns,
		id, patch.Name, status, patch.Deadline, patch.AssignedTeamMember, patch.Budget)
	return scanProject(row)
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return apperror.New(apperror.NotFound, projectNotFound)
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperror.New(apperror.NotFound, projectNotFound)
	}
	return nil
}

func (r *ProjectRepository) Search(ctx context.Context, query string, filter repository.ProjectFilter) ([]entity.Project, error) {
	pattern := "%" + escapeLike(query) + "%"
	where, args := filterClause(filter, []any{pattern})
	if where == "" {
		where = " WHERE"
	} else {
		where += " AND"
	}
	sql := `SELECT ` + projectColumns + ` FROM projects` + where +
		` (name ILIKE $1 OR assigned_team_member ILIKE $1) ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

func (r *ProjectRepository) CountByStatus(ctx context.Context) (map[entity.ProjectStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM projects GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[entity.ProjectStatus]int, len(entity.ProjectStatuses))
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[entity.ProjectStatus(status)] = n
	}
	return out, rows.Err()
}

// filterClause appends filter arguments after the given leading args.
func filterClause(filter repository.ProjectFilter, args []any) (string, []any) {
	if filter.Status == nil {
		return "", args
	}
	args = append(args, string(*filter.Status))
	return fmt.Sprintf(" WHERE status = $%d", len(args)), args
}

func scanProject(row rowScanner) (*entity.Project, error) {
	var (
		p      entity.Project
		status string
	)
	err := row.Scan(&p.ID, &p.Name, &status, &p.Deadline, &p.AssignedTeamMember, &p.Budget, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err, projectNotFound, "")
	}
	p.Status = entity.ProjectStatus(status)
	p.Deadline = p.Deadline.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func collectProjects(rows pgx.Rows) ([]entity.Project, error) {
	defer rows.Close()
	out := []entity.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Ids are uuids; anything else cannot exist and is reported as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

var _ repository.ProjectRepository = (*ProjectRepository)(nil)
