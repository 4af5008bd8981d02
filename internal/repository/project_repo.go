package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/brad-luo/web-tools/internal/dbx"
	"github.com/brad-luo/web-tools/internal/models"
)

// ProjectRepository defines the interface for project operations.
type ProjectRepository interface {
	List(ctx context.Context) ([]*models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	ListByCategory(ctx context.Context, category string) ([]*models.Project, error)
	ListFeatured(ctx context.Context) ([]*models.Project, error)
	Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error)
	// Update applies the non-nil fields and returns nil when the project does not exist.
	Update(ctx context.Context, id int64, upd *models.ProjectUpdate) (*models.Project, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

const projectColumns = `id, name, description, url, icon, color, category, featured, created_at, updated_at`

type projectRepo struct {
	db dbx.DBTX
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db dbx.DBTX) ProjectRepository {
	return &projectRepo{db: db}
}

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	var p models.Project
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.URL,
		&p.Icon,
		&p.Color,
		&p.Category,
		&p.Featured,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) list(ctx context.Context, query string, args ...any) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// List returns all projects, featured first.
func (r *projectRepo) List(ctx context.Context) ([]*models.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY featured DESC, id ASC`)
}

// GetByID retrieves a project by id.
func (r *projectRepo) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// ListByCategory returns the projects of one category.
func (r *projectRepo) ListByCategory(ctx context.Context, category string) ([]*models.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects WHERE category = $1 ORDER BY featured DESC, id ASC`, category)
}

// ListFeatured returns featured projects only.
func (r *projectRepo) ListFeatured(ctx context.Context) ([]*models.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects WHERE featured = TRUE ORDER BY id ASC`)
}

// Create inserts a new project.
func (r *projectRepo) Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error) {
	query := `
		INSERT INTO projects (name, description, url, icon, color, category, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + projectColumns

	return scanProject(r.db.QueryRowContext(ctx, query,
		req.Name,
		req.Description,
		req.URL,
		req.Icon,
		req.Color,
		req.Category,
		req.Featured,
	))
}

// Update applies a partial update. COALESCE keeps columns whose new value is NULL.
func (r *projectRepo) Update(ctx context.Context, id int64, upd *models.ProjectUpdate) (*models.Project, error) {
	query := `
		UPDATE projects SET
			name        = COALESCE($2, name),
			description = COALESCE($3, description),
			url         = COALESCE($4, url),
			icon        = COALESCE($5, icon),
			color       = COALESCE($6, color),
			category    = COALESCE($7, category),
			featured    = COALESCE($8, featured),
			updated_at  = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns

	p, err := scanProject(r.db.QueryRowContext(ctx, query,
		id,
		upd.Name,
		upd.Description,
		upd.URL,
		upd.Icon,
		upd.Color,
		upd.Category,
		upd.Featured,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// Delete removes a project.
func (r *projectRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
