package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brad-luo/web-tools/internal/models"
	apierrors "github.com/brad-luo/web-tools/internal/pkg/errors"
	"github.com/brad-luo/web-tools/internal/pkg/response"
	"github.com/brad-luo/web-tools/internal/service"
)

// ProjectHandler handles showcase project requests.
type ProjectHandler struct {
	projects service.ProjectService
	validate *validator.Validate
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projects service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		validate: validator.New(),
	}
}

// Routes returns a chi router with project routes, mounted at
// /api/config/projects. Writes go through requireAuth.
func (h *ProjectHandler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

func projectID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// List handles GET /api/config/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	featured, _ := strconv.ParseBool(q.Get("featured"))

	list, err := h.projects.List(r.Context(), service.ProjectFilter{
		Category:     q.Get("category"),
		FeaturedOnly: featured,
	})
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.OK(w, list)
}

// Get handles GET /api/config/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		response.Error(w, apierrors.ErrBadRequest.WithMessage("Invalid project ID"))
		return
	}

	p, err := h.projects.Get(r.Context(), id)
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.OK(w, p)
}

// Create handles POST /api/config/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierrors.ErrBadRequest.WithMessage("Invalid request body"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		response.Error(w, validationError(err))
		return
	}

	p, err := h.projects.Create(r.Context(), &req)
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.Created(w, p)
}

// Update handles PUT /api/config/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		response.Error(w, apierrors.ErrBadRequest.WithMessage("Invalid project ID"))
		return
	}

	var upd models.ProjectUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		response.Error(w, apierrors.ErrBadRequest.WithMessage("Invalid request body"))
		return
	}
	if err := h.validate.Struct(&upd); err != nil {
		response.Error(w, validationError(err))
		return
	}

	p, err := h.projects.Update(r.Context(), id, &upd)
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.OK(w, p)
}

// Delete handles DELETE /api/config/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		response.Error(w, apierrors.ErrBadRequest.WithMessage("Invalid project ID"))
		return
	}

	if err := h.projects.Delete(r.Context(), id); err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.NoContent(w)
}
