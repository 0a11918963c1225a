package rest

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type RouterConfig struct {
	CORSOrigins  []string
	AuthRequired bool
	// AuthLimiter throttles /api/auth/*. Nil disables throttling.
	AuthLimiter middleware.RateLimiterStore
}

// NewRouter builds the echo instance with the JSON API mounted.
func NewRouter(cfg RouterConfig, h *Handler, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e.Use(middleware.Recover())
	e.Use(RequestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", h.handleHealth)

	api := e.Group("/api")

	auth := api.Group("/auth")
	if cfg.AuthLimiter != nil {
		auth.Use(RateLimit(cfg.AuthLimiter))
	}
	auth.POST("/register", h.handleRegister)
	auth.POST("/login", h.handleLogin)

	var guard []echo.MiddlewareFunc
	if cfg.AuthRequired {
		guard = append(guard, BearerGuard(h.auth))
	}

	watchlist := api.Group("/watchlist", guard...)
	watchlist.GET("/:email", h.handleGetWatchlist)
	watchlist.POST("/toggle", h.handleToggleWatchlist)

	api.GET("/markets", h.handleMarkets, guard...)

	return e
}
