package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brad-luo/web-tools/internal/auth"
	"github.com/brad-luo/web-tools/internal/middleware"
	"github.com/brad-luo/web-tools/internal/models"
	"github.com/brad-luo/web-tools/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// withIdentity attaches a signed-in identity to req.
func withIdentity(req *http.Request, accountID int64, email string) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), &auth.Identity{AccountID: accountID, Email: email}))
}

// envelope is the decoded response body.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, body io.Reader) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env
}

// mockQuotaLedger is a mock implementation of QuotaLedger for testing.
type mockQuotaLedger struct {
	limit       int
	consumeFunc func(ctx context.Context, email string) (*models.QuotaDecision, error)
	peekFunc    func(ctx context.Context, email string) (*models.QuotaStatus, error)
	consumed    int
}

func (m *mockQuotaLedger) CheckAndConsume(ctx context.Context, email string) (*models.QuotaDecision, error) {
	m.consumed++
	if m.consumeFunc != nil {
		return m.consumeFunc(ctx, email)
	}
	return &models.QuotaDecision{Allowed: true, Used: 1, Remaining: m.limit - 1, Limit: m.limit}, nil
}

func (m *mockQuotaLedger) Peek(ctx context.Context, email string) (*models.QuotaStatus, error) {
	if m.peekFunc != nil {
		return m.peekFunc(ctx, email)
	}
	status := models.NewQuotaStatus(0, m.limit)
	return &status, nil
}

func (m *mockQuotaLedger) Limit() int {
	return m.limit
}

// mockChatRelay is a mock implementation of ChatRelay for testing.
type mockChatRelay struct {
	enabled     bool
	forwardFunc func(ctx context.Context, req *service.ChatRequest) (*http.Response, error)
	forwarded   int
}

func (m *mockChatRelay) Enabled() bool {
	return m.enabled
}

func (m *mockChatRelay) Forward(ctx context.Context, req *service.ChatRequest) (*http.Response, error) {
	m.forwarded++
	if m.forwardFunc != nil {
		return m.forwardFunc(ctx, req)
	}
	return nil, service.ErrUpstreamUnavailable
}

// mockAccountService is a mock implementation of AccountService for testing.
type mockAccountService struct {
	getProfileFunc    func(ctx context.Context, accountID int64) (*models.AccountProfile, error)
	listLinkedFunc    func(ctx context.Context, accountID int64) ([]models.LinkedAccount, error)
	unlinkFunc        func(ctx context.Context, accountID int64, provider models.Provider, subjectID string) error
	deleteAccountFunc func(ctx context.Context, requesterEmail string, accountID int64) error
	admins            map[string]bool
}

func (m *mockAccountService) GetProfile(ctx context.Context, accountID int64) (*models.AccountProfile, error) {
	if m.getProfileFunc != nil {
		return m.getProfileFunc(ctx, accountID)
	}
	return nil, service.ErrNotFound
}

func (m *mockAccountService) ListLinkedAccounts(ctx context.Context, accountID int64) ([]models.LinkedAccount, error) {
	if m.listLinkedFunc != nil {
		return m.listLinkedFunc(ctx, accountID)
	}
	return []models.LinkedAccount{}, nil
}

func (m *mockAccountService) Unlink(ctx context.Context, accountID int64, provider models.Provider, subjectID string) error {
	if m.unlinkFunc != nil {
		return m.unlinkFunc(ctx, accountID, provider, subjectID)
	}
	return nil
}

func (m *mockAccountService) DeleteAccount(ctx context.Context, requesterEmail string, accountID int64) error {
	if m.deleteAccountFunc != nil {
		return m.deleteAccountFunc(ctx, requesterEmail, accountID)
	}
	return nil
}

func (m *mockAccountService) IsAdmin(email string) bool {
	return m.admins[email]
}

// mockProjectService is a mock implementation of ProjectService for testing.
type mockProjectService struct {
	listFunc   func(ctx context.Context, filter service.ProjectFilter) (*service.ProjectList, error)
	getFunc    func(ctx context.Context, id int64) (*models.Project, error)
	createFunc func(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error)
	updateFunc func(ctx context.Context, id int64, upd *models.ProjectUpdate) (*models.Project, error)
	deleteFunc func(ctx context.Context, id int64) error
}

func (m *mockProjectService) List(ctx context.Context, filter service.ProjectFilter) (*service.ProjectList, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return &service.ProjectList{Projects: []*models.Project{}, Categories: models.ProjectCategories}, nil
}

func (m *mockProjectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, service.ErrNotFound
}

func (m *mockProjectService) Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockProjectService) Update(ctx context.Context, id int64, upd *models.ProjectUpdate) (*models.Project, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, upd)
	}
	return nil, service.ErrNotFound
}

func (m *mockProjectService) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// mockCatalogService is a mock implementation of CatalogService for testing.
type mockCatalogService struct {
	home      *models.HomeConfig
	tools     *models.ToolsConfig
	toolFunc  func(ctx context.Context, id string) (*models.ToolDetail, error)
	calendars *models.CalendarConfig
	err       error
}

func (m *mockCatalogService) Home(ctx context.Context) (*models.HomeConfig, error) {
	return m.home, m.err
}

func (m *mockCatalogService) Tools(ctx context.Context) (*models.ToolsConfig, error) {
	return m.tools, m.err
}

func (m *mockCatalogService) Tool(ctx context.Context, id string) (*models.ToolDetail, error) {
	if m.toolFunc != nil {
		return m.toolFunc(ctx, id)
	}
	return nil, service.ErrNotFound
}

func (m *mockCatalogService) Calendars(ctx context.Context) (*models.CalendarConfig, error) {
	return m.calendars, m.err
}

// mockCalendarService is a mock implementation of CalendarService for testing.
type mockCalendarService struct {
	eventsFunc func(ctx context.Context, sourceID string) (*models.CalendarEvents, error)
}

func (m *mockCalendarService) Events(ctx context.Context, sourceID string) (*models.CalendarEvents, error) {
	if m.eventsFunc != nil {
		return m.eventsFunc(ctx, sourceID)
	}
	return &models.CalendarEvents{Events: []models.CalendarEvent{}, Errors: []models.FeedError{}}, nil
}

// mockOAuthService is a mock implementation of OAuthService for testing.
type mockOAuthService struct {
	authURLFunc  func(provider, state string) (string, error)
	callbackFunc func(ctx context.Context, provider, code string) (*models.AccountProfile, error)
	providers    []string
}

func (m *mockOAuthService) GetAuthURL(provider, state string) (string, error) {
	if m.authURLFunc != nil {
		return m.authURLFunc(provider, state)
	}
	return "", service.ErrUnknownProvider
}

func (m *mockOAuthService) HandleCallback(ctx context.Context, provider, code string) (*models.AccountProfile, error) {
	if m.callbackFunc != nil {
		return m.callbackFunc(ctx, provider, code)
	}
	return nil, service.ErrUnknownProvider
}

func (m *mockOAuthService) GetSupportedProviders() []string {
	return m.providers
}

// mockSessions records session writes.
type mockSessions struct {
	state    string
	saved    *auth.Identity
	cleared  bool
	stateErr error
}

func (m *mockSessions) Save(w http.ResponseWriter, r *http.Request, id auth.Identity) error {
	m.saved = &id
	return nil
}

func (m *mockSessions) Clear(w http.ResponseWriter, r *http.Request) error {
	m.cleared = true
	return nil
}

func (m *mockSessions) SetState(w http.ResponseWriter, r *http.Request, state string) error {
	if m.stateErr != nil {
		return m.stateErr
	}
	m.state = state
	return nil
}

func (m *mockSessions) ConsumeState(w http.ResponseWriter, r *http.Request, state string) bool {
	ok := m.state != "" && m.state == state
	m.state = ""
	return ok
}

// mockTokens issues a fixed token.
type mockTokens struct {
	err error
	got *auth.Identity
}

func (m *mockTokens) Issue(id auth.Identity) (string, time.Time, error) {
	m.got = &id
	if m.err != nil {
		return "", time.Time{}, m.err
	}
	return "signed-token", time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC), nil
}
