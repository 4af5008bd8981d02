package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brad-luo/web-tools/internal/middleware"
	apierrors "github.com/brad-luo/web-tools/internal/pkg/errors"
	"github.com/brad-luo/web-tools/internal/pkg/response"
	"github.com/brad-luo/web-tools/internal/service"
)

const maxChatBodyBytes = 1 << 20

// ChatHandler relays metered chat completions.
type ChatHandler struct {
	relay    service.ChatRelay
	ledger   service.QuotaLedger
	validate *validator.Validate
	logger   *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(relay service.ChatRelay, ledger service.QuotaLedger, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		relay:    relay,
		ledger:   ledger,
		validate: validator.New(),
		logger:   logger,
	}
}

// Routes returns a chi router with the chat routes, mounted at /api/chat.
func (h *ChatHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Chat)
	return r
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	if id == nil {
		response.Error(w, apierrors.ErrUnauthorized)
		return
	}

	if !h.relay.Enabled() {
		response.Error(w, apierrors.ErrServiceUnavailable.WithMessage("Chat is not configured"))
		return
	}

	var req service.ChatRequest
	body := http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		response.Error(w, apierrors.ErrBadRequest.WithMessage("Invalid request body"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		response.Error(w, validationError(err))
		return
	}

	// The message is counted before it is sent upstream.
	decision, err := h.ledger.CheckAndConsume(r.Context(), id.Email)
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	if !decision.Allowed {
		response.Error(w, apierrors.NewQuotaExceededError(decision.Used, decision.Limit))
		return
	}

	resp, err := h.relay.Forward(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUpstreamUnavailable) {
			response.Error(w, apierrors.ErrServiceUnavailable.WithMessage("Chat upstream unavailable"))
			return
		}
		response.Error(w, toAPIError(err))
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Quota-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-Quota-Remaining", strconv.Itoa(decision.Remaining))
	w.WriteHeader(resp.StatusCode)

	h.stream(w, resp.Body)
}

// stream copies the upstream body, flushing after every chunk.
func (h *ChatHandler) stream(w http.ResponseWriter, body io.Reader) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if err != io.EOF {
				h.logger.Warn("chat stream interrupted", slog.String("error", err.Error()))
			}
			return
		}
	}
}
