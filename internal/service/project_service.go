package service

import (
	"context"
	"fmt"

	"github.com/brad-luo/web-tools/internal/models"
	"github.com/brad-luo/web-tools/internal/repository"
)

// ProjectFilter narrows a project listing. Category wins over FeaturedOnly.
type ProjectFilter struct {
	Category     string
	FeaturedOnly bool
}

// ProjectList is the projects listing with the category label map.
type ProjectList struct {
	Projects   []*models.Project `json:"projects"`
	Categories map[string]string `json:"categories"`
}

// ProjectService manages showcase projects.
type ProjectService interface {
	List(ctx context.Context, filter ProjectFilter) (*ProjectList, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error)
	Update(ctx context.Context, id int64, upd *models.ProjectUpdate) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
}

type projectService struct {
	projects repository.ProjectRepository
}

// NewProjectService creates a new project service.
func NewProjectService(projects repository.ProjectRepository) ProjectService {
	return &projectService{projects: projects}
}

func (s *projectService) List(ctx context.Context, filter ProjectFilter) (*ProjectList, error) {
	var (
		projects []*models.Project
		err      error
	)
	switch {
	case filter.Category != "":
		projects, err = s.projects.ListByCategory(ctx, filter.Category)
	case filter.FeaturedOnly:
		projects, err = s.projects.ListFeatured(ctx)
	default:
		projects, err = s.projects.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return &ProjectList{Projects: projects, Categories: models.ProjectCategories}, nil
}

func (s *projectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *projectService) Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error) {
	p, err := s.projects.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return p, nil
}

func (s *projectService) Update(ctx context.Context, id int64, upd *models.ProjectUpdate) (*models.Project, error) {
	if upd.Empty() {
		return s.Get(ctx, id)
	}
	p, err := s.projects.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, id int64) error {
	ok, err := s.projects.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Compile-time check to ensure projectService implements ProjectService.
var _ ProjectService = (*projectService)(nil)
