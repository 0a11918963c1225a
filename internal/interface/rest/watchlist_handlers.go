package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ytuqete/cryptoPulse/internal/application/command"
	"github.com/ytuqete/cryptoPulse/internal/domain"
)

type toggleRequest struct {
	Email  string `json:"email"`
	CoinID string `json:"coinId"`
}

// authorizeOwner checks that a guarded request only touches the caller's
// own list. Unguarded requests pass through.
func (h *Handler) authorizeOwner(c echo.Context, email string) error {
	raw, ok := c.Get(contextUserID).(string)
	if !ok {
		return nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("context user id %q: %w", raw, domain.ErrUnauthorized)
	}
	return h.watchlist.Authorize(c.Request().Context(), userID, email)
}

func (h *Handler) ownerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED")
	case errors.Is(err, domain.ErrForbidden):
		return errorJSON(c, http.StatusForbidden, "FORBIDDEN")
	default:
		h.logger.Error("authorize watchlist owner failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, msgFailed)
	}
}

func (h *Handler) handleGetWatchlist(c echo.Context) error {
	if err := h.authorizeOwner(c, c.Param("email")); err != nil {
		return h.ownerError(c, err)
	}

	result, err := h.watchlist.Get(c.Request().Context(), c.Param("email"))
	if err != nil {
		h.logger.Error("get watchlist failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, msgFailed)
	}
	return c.JSON(http.StatusOK, result.Watchlist)
}

func (h *Handler) handleToggleWatchlist(c echo.Context) error {
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, msgInvalidRequest)
	}
	if err := h.authorizeOwner(c, req.Email); err != nil {
		return h.ownerError(c, err)
	}

	result, err := h.watchlist.Toggle(c.Request().Context(), &command.ToggleWatchCommand{
		Email:  req.Email,
		CoinID: req.CoinID,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, result.Watchlist)
	case errors.Is(err, domain.ErrInvalidInput):
		return errorJSON(c, http.StatusBadRequest, msgInvalidRequest)
	case errors.Is(err, domain.ErrNotFound):
		// Unknown users surface as a server fault.
		return errorJSON(c, http.StatusInternalServerError, "USER NOT FOUND")
	default:
		h.logger.Error("toggle watchlist failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, msgFailed)
	}
}
