package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brad-luo/web-tools/internal/auth"
	"github.com/brad-luo/web-tools/internal/middleware"
	apierrors "github.com/brad-luo/web-tools/internal/pkg/errors"
	"github.com/brad-luo/web-tools/internal/pkg/response"
	"github.com/brad-luo/web-tools/internal/service"
)

// SessionStore persists the signed-in identity and the pending OAuth state.
type SessionStore interface {
	Save(w http.ResponseWriter, r *http.Request, id auth.Identity) error
	Clear(w http.ResponseWriter, r *http.Request) error
	SetState(w http.ResponseWriter, r *http.Request, state string) error
	ConsumeState(w http.ResponseWriter, r *http.Request, state string) bool
}

// TokenIssuer signs bearer session tokens.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
}

// AuthHandler handles OAuth sign-in and session endpoints.
type AuthHandler struct {
	oauth        service.OAuthService
	sessions     SessionStore
	tokens       TokenIssuer
	dashboardURL string
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(oauth service.OAuthService, sessions SessionStore, tokens TokenIssuer, dashboardURL string, logger *slog.Logger) *AuthHandler {
	if dashboardURL == "" {
		dashboardURL = "/"
	}
	return &AuthHandler{
		oauth:        oauth,
		sessions:     sessions,
		tokens:       tokens,
		dashboardURL: dashboardURL,
		logger:       logger,
	}
}

// Routes returns a chi router with the OAuth routes, mounted at /auth.
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/providers", h.Providers)
	r.Get("/{provider}", h.Login)
	r.Get("/{provider}/callback", h.Callback)
	r.Post("/logout", h.Logout)

	return r
}

// Providers handles GET /auth/providers
func (h *AuthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string][]string{"providers": h.oauth.GetSupportedProviders()})
}

// Login handles GET /auth/{provider}
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	state := uuid.NewString()

	authURL, err := h.oauth.GetAuthURL(provider, state)
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}

	if err := h.sessions.SetState(w, r, state); err != nil {
		h.logger.Error("failed to store oauth state", slog.String("error", err.Error()))
		response.Error(w, apierrors.ErrInternal)
		return
	}

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// Callback handles GET /auth/{provider}/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()

	if providerErr := q.Get("error"); providerErr != "" {
		h.redirectWithError(w, r, providerErr)
		return
	}

	if !h.sessions.ConsumeState(w, r, q.Get("state")) {
		response.Error(w, apierrors.ErrBadRequest.WithMessage("Invalid OAuth state"))
		return
	}

	code := q.Get("code")
	if code == "" {
		response.Error(w, apierrors.ErrBadRequest.WithMessage("Missing authorization code"))
		return
	}

	profile, err := h.oauth.HandleCallback(r.Context(), provider, code)
	if err != nil {
		h.logger.Warn("oauth sign-in failed",
			slog.String("provider", provider),
			slog.String("error", err.Error()),
		)
		switch {
		case errors.Is(err, service.ErrUnknownProvider), errors.Is(err, service.ErrStoreUnavailable):
			response.Error(w, toAPIError(err))
		default:
			h.redirectWithError(w, r, "signin_failed")
		}
		return
	}

	if err := h.sessions.Save(w, r, auth.Identity{AccountID: profile.ID, Email: profile.Email}); err != nil {
		h.logger.Error("failed to save session", slog.String("error", err.Error()))
		response.Error(w, apierrors.ErrInternal)
		return
	}

	http.Redirect(w, r, h.dashboardURL, http.StatusFound)
}

func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	target := h.dashboardURL
	if u, err := url.Parse(target); err == nil {
		v := u.Query()
		v.Set("error", code)
		u.RawQuery = v.Encode()
		target = u.String()
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		h.logger.Warn("failed to clear session", slog.String("error", err.Error()))
	}
	response.NoContent(w)
}

// TokenResponse is the body of POST /api/auth/token.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken handles POST /api/auth/token
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	if id == nil {
		response.Error(w, apierrors.ErrUnauthorized)
		return
	}

	token, expiresAt, err := h.tokens.Issue(*id)
	if err != nil {
		h.logger.Error("failed to issue token", slog.String("error", err.Error()))
		response.Error(w, apierrors.ErrInternal)
		return
	}

	response.OK(w, TokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}
