package dashboard

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ytuqete/cryptoPulse/internal/application/interfaces"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
)

const (
	tokenCookie  = "cryptopulse_session"
	emailCookie  = "cryptopulse_email"
	syncedCookie = "cryptopulse_synced"
)

type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticated
)

func (s SessionState) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session is the dashboard's view of the browser. Only the token is
// authoritative; the email is for display.
type Session struct {
	State     SessionState
	Token     string
	Email     string
	UserID    uuid.UUID
	ExpiresAt time.Time
	// Synced is set once the entry sync has run, whatever its outcome.
	Synced bool
}

func (s *Session) Authenticated() bool {
	return s != nil && s.State == StateAuthenticated
}

// Viewer is the key the session's retained snapshot is stored under.
func (s *Session) Viewer() string {
	return "user:" + s.UserID.String()
}

// SessionManager keeps the session in HTTP-only cookies.
type SessionManager struct {
	auth   interfaces.AuthService
	secure bool
}

func NewSessionManager(auth interfaces.AuthService, secure bool) *SessionManager {
	return &SessionManager{auth: auth, secure: secure}
}

// Load returns the request's session. A missing, expired or forged token
// yields an unauthenticated session and clears the cookies.
func (m *SessionManager) Load(c echo.Context) *Session {
	cookie, err := c.Cookie(tokenCookie)
	if err != nil || cookie.Value == "" {
		return &Session{State: StateUnauthenticated}
	}

	verified, err := m.auth.Verify(cookie.Value)
	if err != nil {
		m.clear(c)
		return &Session{State: StateUnauthenticated}
	}

	session := &Session{
		State:     StateAuthenticated,
		Token:     cookie.Value,
		UserID:    verified.UserID,
		ExpiresAt: verified.ExpiresAt,
	}
	if ec, err := c.Cookie(emailCookie); err == nil {
		session.Email = ec.Value
	}
	if sc, err := c.Cookie(syncedCookie); err == nil && sc.Value == session.UserID.String() {
		session.Synced = true
	}
	return session
}

// Begin verifies token and stores it with email. It moves the browser into
// the authenticated state.
func (m *SessionManager) Begin(c echo.Context, token, email string) (*Session, error) {
	verified, err := m.auth.Verify(token)
	if err != nil {
		return nil, err
	}

	session := &Session{
		State:     StateAuthenticated,
		Token:     token,
		Email:     entities.NormalizeEmail(email),
		UserID:    verified.UserID,
		ExpiresAt: verified.ExpiresAt,
	}
	c.SetCookie(m.cookie(tokenCookie, session.Token, session.ExpiresAt))
	c.SetCookie(m.cookie(emailCookie, session.Email, session.ExpiresAt))
	c.SetCookie(m.expired(syncedCookie))
	return session, nil
}

// MarkSynced records that session's entry sync has run.
func (m *SessionManager) MarkSynced(c echo.Context, session *Session) {
	session.Synced = true
	c.SetCookie(m.cookie(syncedCookie, session.UserID.String(), session.ExpiresAt))
}

// End drops the session cookies.
func (m *SessionManager) End(c echo.Context) {
	m.clear(c)
}

func (m *SessionManager) clear(c echo.Context) {
	for _, name := range []string{tokenCookie, emailCookie, syncedCookie} {
		c.SetCookie(m.expired(name))
	}
}

func (m *SessionManager) expired(name string) *http.Cookie {
	ck := m.cookie(name, "", time.Unix(0, 0))
	ck.MaxAge = -1
	return ck
}

func (m *SessionManager) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
