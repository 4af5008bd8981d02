package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brad-luo/web-tools/internal/middleware"
	apierrors "github.com/brad-luo/web-tools/internal/pkg/errors"
	"github.com/brad-luo/web-tools/internal/pkg/response"
	"github.com/brad-luo/web-tools/internal/service"
)

// QuotaHandler exposes the daily chat allowance of the signed-in account.
type QuotaHandler struct {
	ledger service.QuotaLedger
	logger *slog.Logger
}

// NewQuotaHandler creates a new quota handler.
func NewQuotaHandler(ledger service.QuotaLedger, logger *slog.Logger) *QuotaHandler {
	return &QuotaHandler{ledger: ledger, logger: logger}
}

// Routes returns a chi router with the quota routes, mounted at /api/ai-chat/limit.
func (h *QuotaHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Status)
	r.Post("/", h.Consume)

	return r
}

// Status handles GET /api/ai-chat/limit
func (h *QuotaHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	if id == nil {
		response.Error(w, apierrors.ErrUnauthorized)
		return
	}

	status, err := h.ledger.Peek(r.Context(), id.Email)
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.OK(w, status)
}

// Consume handles POST /api/ai-chat/limit
func (h *QuotaHandler) Consume(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	if id == nil {
		response.Error(w, apierrors.ErrUnauthorized)
		return
	}

	decision, err := h.ledger.CheckAndConsume(r.Context(), id.Email)
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	if !decision.Allowed {
		response.Error(w, apierrors.NewQuotaExceededError(decision.Used, decision.Limit))
		return
	}
	response.OK(w, decision)
}
