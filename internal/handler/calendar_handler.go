package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brad-luo/web-tools/internal/pkg/response"
	"github.com/brad-luo/web-tools/internal/service"
)

// CalendarHandler serves aggregated calendar events.
type CalendarHandler struct {
	calendars service.CalendarService
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(calendars service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendars: calendars}
}

// Routes returns a chi router with calendar routes, mounted at /api/calendars.
func (h *CalendarHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/events", h.Events)
	return r
}

// Events handles GET /api/calendars/events?source=<id>
func (h *CalendarHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.calendars.Events(r.Context(), r.URL.Query().Get("source"))
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.OK(w, events)
}
