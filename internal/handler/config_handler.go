package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brad-luo/web-tools/internal/pkg/response"
	"github.com/brad-luo/web-tools/internal/service"
)

// ConfigHandler serves the site catalog documents.
type ConfigHandler struct {
	catalog service.CatalogService
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(catalog service.CatalogService) *ConfigHandler {
	return &ConfigHandler{catalog: catalog}
}

// Routes returns a chi router with catalog routes, mounted at /api/config.
func (h *ConfigHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/home", h.Home)
	r.Get("/tools", h.Tools)
	r.Get("/tool/{id}", h.Tool)
	r.Get("/calendars", h.Calendars)

	return r
}

// Home handles GET /api/config/home
func (h *ConfigHandler) Home(w http.ResponseWriter, r *http.Request) {
	home, err := h.catalog.Home(r.Context())
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.OK(w, home)
}

// Tools handles GET /api/config/tools
func (h *ConfigHandler) Tools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.catalog.Tools(r.Context())
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.OK(w, tools)
}

// Tool handles GET /api/config/tool/{id}
func (h *ConfigHandler) Tool(w http.ResponseWriter, r *http.Request) {
	tool, err := h.catalog.Tool(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.OK(w, tool)
}

// Calendars handles GET /api/config/calendars
func (h *ConfigHandler) Calendars(w http.ResponseWriter, r *http.Request) {
	cals, err := h.catalog.Calendars(r.Context())
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.OK(w, cals)
}
