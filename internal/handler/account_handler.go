package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brad-luo/web-tools/internal/middleware"
	"github.com/brad-luo/web-tools/internal/models"
	apierrors "github.com/brad-luo/web-tools/internal/pkg/errors"
	"github.com/brad-luo/web-tools/internal/pkg/response"
	"github.com/brad-luo/web-tools/internal/service"
)

// AccountHandler handles profile and linked-account requests.
type AccountHandler struct {
	accounts service.AccountService
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accounts service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Routes returns a chi router with the user routes, mounted at /api/user.
func (h *AccountHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Profile)
	r.Get("/oauth-accounts", h.LinkedAccounts)
	r.Delete("/oauth-accounts/{provider}/{subject}", h.Unlink)

	return r
}

// AdminRoutes returns a chi router with the admin routes, mounted at /api/admin.
func (h *AccountHandler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Delete("/accounts/{id}", h.DeleteAccount)
	return r
}

// Profile handles GET /api/user
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	if id == nil {
		response.Error(w, apierrors.ErrUnauthorized)
		return
	}

	profile, err := h.accounts.GetProfile(r.Context(), id.AccountID)
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.OK(w, profile)
}

// LinkedAccounts handles GET /api/user/oauth-accounts
func (h *AccountHandler) LinkedAccounts(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	if id == nil {
		response.Error(w, apierrors.ErrUnauthorized)
		return
	}

	linked, err := h.accounts.ListLinkedAccounts(r.Context(), id.AccountID)
	if err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.OK(w, map[string]any{"accounts": linked})
}

// Unlink handles DELETE /api/user/oauth-accounts/{provider}/{subject}
func (h *AccountHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	if id == nil {
		response.Error(w, apierrors.ErrUnauthorized)
		return
	}

	provider := models.Provider(chi.URLParam(r, "provider"))
	subject := chi.URLParam(r, "subject")

	if err := h.accounts.Unlink(r.Context(), id.AccountID, provider, subject); err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.NoContent(w)
}

// DeleteAccount handles DELETE /api/admin/accounts/{id}
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	if id == nil {
		response.Error(w, apierrors.ErrUnauthorized)
		return
	}

	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || accountID <= 0 {
		response.Error(w, apierrors.ErrBadRequest.WithMessage("Invalid account ID"))
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), id.Email, accountID); err != nil {
		response.Error(w, toAPIError(err))
		return
	}
	response.NoContent(w)
}
