package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brad-luo/web-tools/internal/models"
	"github.com/brad-luo/web-tools/internal/service"
)

func TestAccountHandler_Profile(t *testing.T) {
	svc := &mockAccountService{
		getProfileFunc: func(ctx context.Context, accountID int64) (*models.AccountProfile, error) {
			assert.Equal(t, int64(5), accountID)
			return &models.AccountProfile{ID: 5, Email: "ada@example.com", Name: "Ada"}, nil
		},
	}
	h := NewAccountHandler(svc)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), 5, "ada@example.com"))

	require.Equal(t, http.StatusOK, rec.Code)
	var profile models.AccountProfile
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec.Body).Data, &profile))
	assert.Equal(t, "Ada", profile.Name)
}

func TestAccountHandler_LinkedAccountsOmitTokens(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockAccountService{
		listLinkedFunc: func(ctx context.Context, accountID int64) ([]models.LinkedAccount, error) {
			return []models.LinkedAccount{{ID: 1, Provider: models.ProviderGitHub, ProviderUserID: "583231", CreatedAt: created}}, nil
		},
	}
	h := NewAccountHandler(svc)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/oauth-accounts", nil), 5, "ada@example.com"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"provider_user_id":"583231"`)
	assert.NotContains(t, rec.Body.String(), "token")
}

func TestAccountHandler_Unlink(t *testing.T) {
	var gotProvider models.Provider
	var gotSubject string
	svc := &mockAccountService{
		unlinkFunc: func(ctx context.Context, accountID int64, provider models.Provider, subjectID string) error {
			gotProvider, gotSubject = provider, subjectID
			return nil
		},
	}
	h := NewAccountHandler(svc)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodDelete, "/oauth-accounts/google/1098", nil), 5, "ada@example.com"))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, models.ProviderGoogle, gotProvider)
	assert.Equal(t, "1098", gotSubject)
}

func TestAccountHandler_UnlinkNotOwned(t *testing.T) {
	svc := &mockAccountService{
		unlinkFunc: func(ctx context.Context, accountID int64, provider models.Provider, subjectID string) error {
			return service.ErrNotFound
		},
	}
	h := NewAccountHandler(svc)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodDelete, "/oauth-accounts/github/1", nil), 5, "ada@example.com"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAccountHandler_DeleteAccount(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"deleted", "/accounts/9", nil, http.StatusNoContent},
		{"not admin", "/accounts/9", service.ErrForbidden, http.StatusForbidden},
		{"missing", "/accounts/9", service.ErrNotFound, http.StatusNotFound},
		{"bad id", "/accounts/abc", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAccountService{
				deleteAccountFunc: func(ctx context.Context, requesterEmail string, accountID int64) error {
					assert.Equal(t, "root@example.com", requesterEmail)
					assert.Equal(t, int64(9), accountID)
					return tt.err
				},
			}
			h := NewAccountHandler(svc)

			rec := httptest.NewRecorder()
			h.AdminRoutes().ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodDelete, tt.path, nil), 1, "root@example.com"))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
