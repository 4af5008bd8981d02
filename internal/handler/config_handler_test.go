package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brad-luo/web-tools/internal/models"
	"github.com/brad-luo/web-tools/internal/service"
)

func TestConfigHandler_Documents(t *testing.T) {
	svc := &mockCatalogService{
		home:      &models.HomeConfig{},
		tools:     &models.ToolsConfig{Tools: []models.Tool{{ID: "ai-chat", Name: "AI Chat", LoginRequired: true}}},
		calendars: &models.CalendarConfig{ColorPalette: []string{"#3b82f6"}},
	}
	h := NewConfigHandler(svc)

	for _, path := range []string{"/home", "/tools", "/calendars"} {
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools", nil))
	assert.Contains(t, rec.Body.String(), `"loginRequired":true`)
}

func TestConfigHandler_Tool(t *testing.T) {
	svc := &mockCatalogService{
		toolFunc: func(ctx context.Context, id string) (*models.ToolDetail, error) {
			if id == "json-formatter" {
				return &models.ToolDetail{Tool: models.Tool{ID: id}, Config: map[string]any{}}, nil
			}
			return nil, service.ErrNotFound
		},
	}
	h := NewConfigHandler(svc)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tool/json-formatter", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"config":{}`)

	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tool/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfigHandler_BrokenDocument(t *testing.T) {
	h := NewConfigHandler(&mockCatalogService{err: errors.New("invalid character '}'")})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "invalid character")
}
