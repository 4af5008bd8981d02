package auth

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/brad-luo/web-tools/internal/config"
)

const (
	sessionCookie = "webtools_session"
	stateCookie   = "webtools_oauth_state"
	stateMaxAge   = 10 * time.Minute

	keyAccountID = "account_id"
	keyEmail     = "email"
	keyState     = "state"
)

// SessionManager keeps the signed-in identity in a signed cookie.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager creates a cookie session manager from auth config.
func NewSessionManager(cfg config.AuthConfig) *SessionManager {
	expiry := cfg.SessionExpiry
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(expiry.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// Save writes the identity cookie.
func (m *SessionManager) Save(w http.ResponseWriter, r *http.Request, id Identity) error {
	sess, _ := m.store.Get(r, sessionCookie)
	sess.Values[keyAccountID] = id.AccountID
	sess.Values[keyEmail] = id.Email
	return sess.Save(r, w)
}

// Load returns the identity in the request cookie, if any.
func (m *SessionManager) Load(r *http.Request) (*Identity, bool) {
	sess, err := m.store.Get(r, sessionCookie)
	if err != nil || sess.IsNew {
		return nil, false
	}
	accountID, ok := sess.Values[keyAccountID].(int64)
	if !ok || accountID <= 0 {
		return nil, false
	}
	email, ok := sess.Values[keyEmail].(string)
	if !ok || email == "" {
		return nil, false
	}
	return &Identity{AccountID: accountID, Email: email}, true
}

// Clear expires the identity cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, sessionCookie)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// SetState stores the OAuth state for the pending authorization.
func (m *SessionManager) SetState(w http.ResponseWriter, r *http.Request, state string) error {
	sess, _ := m.store.Get(r, stateCookie)
	sess.Values[keyState] = state
	sess.Options.MaxAge = int(stateMaxAge.Seconds())
	return sess.Save(r, w)
}

// ConsumeState checks state against the stored one and deletes it.
func (m *SessionManager) ConsumeState(w http.ResponseWriter, r *http.Request, state string) bool {
	sess, err := m.store.Get(r, stateCookie)
	if err != nil || sess.IsNew {
		return false
	}
	stored, _ := sess.Values[keyState].(string)

	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)

	return stored != "" && state != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(state)) == 1
}
