package rest

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/ytuqete/cryptoPulse/internal/application/interfaces"
)

const (
	msgInvalidRequest = "INVALID REQUEST"
	msgFailed         = "FAILED"
)

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the JSON API.
type Handler struct {
	auth      interfaces.AuthService
	watchlist interfaces.WatchlistService
	markets   interfaces.MarketService
	logger    *slog.Logger
}

func NewHandler(
	auth interfaces.AuthService,
	watchlist interfaces.WatchlistService,
	markets interfaces.MarketService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:      auth,
		watchlist: watchlist,
		markets:   markets,
		logger:    logger,
	}
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorResponse{Error: msg})
}
