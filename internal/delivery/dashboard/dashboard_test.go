package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytuqete/cryptoPulse/internal/application/command"
	"github.com/ytuqete/cryptoPulse/internal/application/common"
	"github.com/ytuqete/cryptoPulse/internal/domain"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
)

type fakeAuth struct {
	userID      uuid.UUID
	loginErr    error
	registerErr error
}

func (f *fakeAuth) Register(_ context.Context, cmd *command.RegisterUserCommand) (*command.RegisterUserCommandResult, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &command.RegisterUserCommandResult{Result: &common.UserResult{Email: cmd.Email}}, nil
}

func (f *fakeAuth) Login(_ context.Context, cmd *command.LoginUserCommand) (*command.LoginUserCommandResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &command.LoginUserCommandResult{Token: "good", User: &common.UserResult{Id: f.userID, Email: cmd.Email}}, nil
}

func (f *fakeAuth) Verify(token string) (*common.SessionResult, error) {
	if token != "good" {
		return nil, domain.ErrUnauthorized
	}
	return &common.SessionResult{UserID: f.userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type fakeMarkets struct {
	retained  map[string]*entities.MarketSnapshot
	next      *entities.MarketSnapshot
	err       error
	refreshes int
}

func (f *fakeMarkets) Refresh(_ context.Context, viewer string) (*entities.MarketSnapshot, error) {
	f.refreshes++
	if f.err != nil {
		return f.retained[viewer], f.err
	}
	f.retained[viewer] = f.next
	return f.next, nil
}

func (f *fakeMarkets) Current(_ context.Context, viewer string) (*entities.MarketSnapshot, error) {
	return f.retained[viewer], nil
}

func (f *fakeMarkets) Forget(_ context.Context, viewer string) error {
	delete(f.retained, viewer)
	return nil
}

type fixture struct {
	auth    *fakeAuth
	markets *fakeMarkets
	e       *echo.Echo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		auth: &fakeAuth{userID: uuid.New()},
		markets: &fakeMarkets{
			retained: map[string]*entities.MarketSnapshot{},
			next: entities.NewMarketSnapshot(
				[]entities.ExchangeRecord{{ID: "binance", Name: "Binance", Type: entities.ExchangeTypeCEX, Volume24h: 1234567.4, EstRevenue24h: 1234.5}},
				[]entities.ExchangeRecord{{ID: "uniswap", Name: "Uniswap", Type: entities.ExchangeTypeDEX, Volume24h: 500000, EstRevenue24h: 1000}},
				50000, time.Now(),
			),
		},
		e: echo.New(),
	}

	renderer, err := NewRenderer()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	NewHandler(f.auth, f.markets, NewSessionManager(f.auth, false), logger).Register(f.e, renderer)
	return f
}

func (f *fixture) viewer() string {
	return "user:" + f.auth.userID.String()
}

func (f *fixture) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func sessionCookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: tokenCookie, Value: "good"},
		{Name: emailCookie, Value: "a@b.c"},
	}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestIndexUnauthenticated(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "LOG IN")
	assert.Contains(t, rec.Body.String(), `action="/login"`)
	assert.Zero(t, f.markets.refreshes)

	rec = f.do(http.MethodGet, "/?mode=register", nil)
	assert.Contains(t, rec.Body.String(), "SIGN UP")
	assert.Contains(t, rec.Body.String(), `action="/register"`)
}

func TestIndexForgedToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/", nil, &http.Cookie{Name: tokenCookie, Value: "forged"})
	assert.Contains(t, rec.Body.String(), "LOG IN")
	cleared := findCookie(rec, tokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/login", url.Values{"email": {"a@b.c"}, "password": {"x"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	token := findCookie(rec, tokenCookie)
	require.NotNil(t, token)
	assert.Equal(t, "good", token.Value)
	assert.True(t, token.HttpOnly)

	rec = f.do(http.MethodGet, "/", nil, sessionCookies()...)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Binance")
	assert.Contains(t, body, "Uniswap")
	assert.Contains(t, body, "$1,734,567")
	assert.Equal(t, 1, f.markets.refreshes)

	// retained snapshot is reused; no polling
	f.do(http.MethodGet, "/", nil, sessionCookies()...)
	assert.Equal(t, 1, f.markets.refreshes)
}

func TestLoginFailed(t *testing.T) {
	f := newFixture(t)
	f.auth.loginErr = domain.ErrUnauthorized

	rec := f.do(http.MethodPost, "/login", url.Values{"email": {"a@b.c"}, "password": {"bad"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH FAILED")
	assert.Nil(t, findCookie(rec, tokenCookie))
}

func TestRegisterFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/register", url.Values{"email": {"a@b.c"}, "password": {"x"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "REGISTRATION SUCCESSFUL")
	assert.Contains(t, rec.Body.String(), `action="/login"`)
	assert.Nil(t, findCookie(rec, tokenCookie))

	f.auth.registerErr = domain.ErrConflict
	rec = f.do(http.MethodPost, "/register", url.Values{"email": {"a@b.c"}, "password": {"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH FAILED")
}

func TestFilterParams(t *testing.T) {
	f := newFixture(t)
	f.markets.retained[f.viewer()] = f.markets.next

	rec := f.do(http.MethodGet, "/?type=dex&q=UNI", nil, sessionCookies()...)
	body := rec.Body.String()
	assert.Contains(t, body, "Uniswap")
	assert.NotContains(t, body, "Binance")
	// header total covers the full list
	assert.Contains(t, body, "$1,734,567")
}

func TestSyncFailedBanner(t *testing.T) {
	f := newFixture(t)
	f.markets.err = errors.New("upstream down")

	rec := f.do(http.MethodGet, "/", nil, sessionCookies()...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SYNC FAILED")
	assert.Contains(t, rec.Body.String(), "NO VENUES")
}

func TestFailedEntrySyncIsNotRepeated(t *testing.T) {
	f := newFixture(t)
	f.markets.err = errors.New("upstream down")

	rec := f.do(http.MethodGet, "/", nil, sessionCookies()...)
	require.Equal(t, http.StatusOK, rec.Code)
	synced := findCookie(rec, syncedCookie)
	require.NotNil(t, synced)
	assert.Equal(t, f.auth.userID.String(), synced.Value)

	cookies := append(sessionCookies(), &http.Cookie{Name: syncedCookie, Value: synced.Value})
	for _, target := range []string{"/?type=DEX", "/?q=uni"} {
		rec = f.do(http.MethodGet, target, nil, cookies...)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "SYNC FAILED")
	}
	assert.Equal(t, 1, f.markets.refreshes)

	// an explicit sync still reaches the upstreams
	f.do(http.MethodPost, "/refresh", url.Values{}, cookies...)
	assert.Equal(t, 2, f.markets.refreshes)
}

func TestSyncedMarkerBelongsToUser(t *testing.T) {
	f := newFixture(t)

	cookies := append(sessionCookies(), &http.Cookie{Name: syncedCookie, Value: uuid.NewString()})
	f.do(http.MethodGet, "/", nil, cookies...)
	assert.Equal(t, 1, f.markets.refreshes)
}

func TestLoginResetsSyncedMarker(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/login", url.Values{"email": {"a@b.c"}, "password": {"x"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	synced := findCookie(rec, syncedCookie)
	require.NotNil(t, synced)
	assert.Empty(t, synced.Value)
	assert.Negative(t, synced.MaxAge)
}

func TestRefreshKeepsStaleTable(t *testing.T) {
	f := newFixture(t)
	f.markets.retained[f.viewer()] = f.markets.next
	f.markets.err = errors.New("upstream down")

	rec := f.do(http.MethodPost, "/refresh", url.Values{"q": {"bin"}, "type": {"CEX"}}, sessionCookies()...)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
	require.NoError(t, err)
	assert.Equal(t, "failed", loc.Query().Get("sync"))
	assert.Equal(t, "bin", loc.Query().Get("q"))
	assert.Equal(t, "CEX", loc.Query().Get("type"))

	rec = f.do(http.MethodGet, loc.String(), nil, sessionCookies()...)
	assert.Contains(t, rec.Body.String(), "SYNC FAILED")
	assert.Contains(t, rec.Body.String(), "Binance")
}

func TestRefreshRequiresSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/refresh", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Zero(t, f.markets.refreshes)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.markets.retained[f.viewer()] = f.markets.next

	rec := f.do(http.MethodPost, "/logout", url.Values{}, sessionCookies()...)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cleared := findCookie(rec, tokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.NotContains(t, f.markets.retained, f.viewer())
}
