package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ytuqete/cryptoPulse/internal/application/command"
	"github.com/ytuqete/cryptoPulse/internal/domain"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// handleRegister creates an account. It never returns a token.
func (h *Handler) handleRegister(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, msgInvalidRequest)
	}

	_, err := h.auth.Register(c.Request().Context(), &command.RegisterUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, messageResponse{Message: "CREATED"})
	case errors.Is(err, domain.ErrConflict):
		return errorJSON(c, http.StatusBadRequest, "EMAIL ALREADY EXISTS")
	case errors.Is(err, domain.ErrInvalidInput):
		return errorJSON(c, http.StatusBadRequest, msgInvalidRequest)
	default:
		h.logger.Error("register failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, msgFailed)
	}
}

func (h *Handler) handleLogin(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, msgInvalidRequest)
	}

	result, err := h.auth.Login(c.Request().Context(), &command.LoginUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, loginResponse{Token: result.Token, Email: result.User.Email})
	case errors.Is(err, domain.ErrNotFound):
		return errorJSON(c, http.StatusBadRequest, "USER NOT FOUND")
	case errors.Is(err, domain.ErrUnauthorized):
		return errorJSON(c, http.StatusBadRequest, "WRONG PASSWORD")
	case errors.Is(err, domain.ErrInvalidInput):
		return errorJSON(c, http.StatusBadRequest, msgInvalidRequest)
	default:
		h.logger.Error("login failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "SERVER ERROR")
	}
}
