package dashboard

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/ytuqete/cryptoPulse/internal/application/command"
	"github.com/ytuqete/cryptoPulse/internal/application/interfaces"
	"github.com/ytuqete/cryptoPulse/internal/application/services"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
)

const (
	msgAuthFailed     = "AUTH FAILED"
	msgRegistered     = "REGISTRATION SUCCESSFUL"
	modeRegister      = "register"
	syncFailedParam   = "sync"
	syncFailedValue   = "failed"
	templateLogin     = "login.html"
	templateDashboard = "dashboard.html"
)

type loginView struct {
	Register bool
	Message  string
	Email    string
}

type rowView struct {
	Rank    int
	ID      string
	Name    string
	Type    string
	LogoURL string
	Volume  string
	Revenue string
}

type dashboardView struct {
	Email       string
	Filter      ViewFilter
	Types       []string
	Rows        []rowView
	Total       int
	TotalVolume string
	FetchedAt   string
	SyncFailed  bool
}

// Handler serves the server-rendered dashboard.
type Handler struct {
	auth     interfaces.AuthService
	markets  interfaces.MarketService
	sessions *SessionManager
	logger   *slog.Logger
}

func NewHandler(auth interfaces.AuthService, markets interfaces.MarketService, sessions *SessionManager, logger *slog.Logger) *Handler {
	return &Handler{
		auth:     auth,
		markets:  markets,
		sessions: sessions,
		logger:   logger,
	}
}

// Register mounts the dashboard routes and renderer on e.
func (h *Handler) Register(e *echo.Echo, renderer echo.Renderer) {
	e.Renderer = renderer
	e.GET("/", h.index)
	e.POST("/login", h.login)
	e.POST("/register", h.register)
	e.POST("/refresh", h.refresh)
	e.POST("/logout", h.logout)
}

func (h *Handler) index(c echo.Context) error {
	session := h.sessions.Load(c)
	if !session.Authenticated() {
		return c.Render(http.StatusOK, templateLogin, loginView{Register: c.QueryParam("mode") == modeRegister})
	}

	ctx := c.Request().Context()
	syncFailed := c.QueryParam(syncFailedParam) == syncFailedValue

	snapshot, err := h.markets.Current(ctx, session.Viewer())
	if err != nil {
		h.logger.Error("load retained snapshot failed", "viewer", session.Viewer(), "error", err)
	}
	switch {
	case snapshot != nil:
	case !session.Synced:
		// Entering the authenticated state: one sync.
		snapshot, err = h.markets.Refresh(ctx, session.Viewer())
		if err != nil {
			syncFailed = true
		}
		h.sessions.MarkSynced(c, session)
	default:
		// The entry sync ran and left nothing behind.
		syncFailed = true
	}

	return c.Render(http.StatusOK, templateDashboard, buildDashboardView(session, snapshot, ParseFilter(c.QueryParam("q"), c.QueryParam("type")), syncFailed))
}

func (h *Handler) login(c echo.Context) error {
	email, password := c.FormValue("email"), c.FormValue("password")
	result, err := h.auth.Login(c.Request().Context(), &command.LoginUserCommand{Email: email, Password: password})
	if err != nil {
		h.logAuthFailure("dashboard login failed", err)
		return c.Render(http.StatusUnauthorized, templateLogin, loginView{Message: msgAuthFailed, Email: email})
	}

	session, err := h.sessions.Begin(c, result.Token, result.User.Email)
	if err != nil {
		h.logger.Error("begin session failed", "error", err)
		return c.Render(http.StatusInternalServerError, templateLogin, loginView{Message: msgAuthFailed, Email: email})
	}

	// A fresh login always syncs on its first dashboard render.
	if err := h.markets.Forget(c.Request().Context(), session.Viewer()); err != nil {
		h.logger.Warn("drop retained snapshot failed", "viewer", session.Viewer(), "error", err)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) register(c echo.Context) error {
	email, password := c.FormValue("email"), c.FormValue("password")
	_, err := h.auth.Register(c.Request().Context(), &command.RegisterUserCommand{Email: email, Password: password})
	if err != nil {
		h.logAuthFailure("dashboard registration failed", err)
		return c.Render(http.StatusBadRequest, templateLogin, loginView{Register: true, Message: msgAuthFailed, Email: email})
	}
	return c.Render(http.StatusOK, templateLogin, loginView{Message: msgRegistered, Email: email})
}

func (h *Handler) refresh(c echo.Context) error {
	session := h.sessions.Load(c)
	if !session.Authenticated() {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	query := url.Values{}
	filter := ParseFilter(c.FormValue("q"), c.FormValue("type"))
	if filter.Query != "" {
		query.Set("q", filter.Query)
	}
	if filter.Type != filterAll {
		query.Set("type", filter.Type)
	}

	if _, err := h.markets.Refresh(c.Request().Context(), session.Viewer()); err != nil {
		query.Set(syncFailedParam, syncFailedValue)
	}

	target := "/"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func (h *Handler) logout(c echo.Context) error {
	session := h.sessions.Load(c)
	if session.Authenticated() {
		if err := h.markets.Forget(c.Request().Context(), session.Viewer()); err != nil {
			h.logger.Warn("drop retained snapshot failed", "viewer", session.Viewer(), "error", err)
		}
	}
	h.sessions.End(c)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) logAuthFailure(msg string, err error) {
	if services.IsCredentialError(err) {
		h.logger.Info(msg, "error", err)
		return
	}
	h.logger.Error(msg, "error", err)
}

func buildDashboardView(session *Session, snapshot *entities.MarketSnapshot, filter ViewFilter, syncFailed bool) dashboardView {
	view := dashboardView{
		Email:       session.Email,
		Filter:      filter,
		Types:       filterTypes,
		TotalVolume: FormatMoney(0),
		SyncFailed:  syncFailed,
	}
	if snapshot == nil {
		return view
	}

	view.TotalVolume = FormatMoney(snapshot.TotalVolume)
	view.Total = len(snapshot.Exchanges)
	if !snapshot.FetchedAt.IsZero() {
		view.FetchedAt = snapshot.FetchedAt.UTC().Format("2006-01-02 15:04:05 UTC")
	}

	for i, r := range filter.Apply(snapshot.Exchanges) {
		view.Rows = append(view.Rows, rowView{
			Rank:    i + 1,
			ID:      r.ID,
			Name:    r.Name,
			Type:    string(r.Type),
			LogoURL: r.LogoURL,
			Volume:  FormatMoney(r.Volume24h),
			Revenue: FormatMoney(r.EstRevenue24h),
		})
	}
	return view
}
