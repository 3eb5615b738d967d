package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/elite-estate/internal/api/response"
	"github.com/welldanyogia/elite-estate/internal/auth"
	"github.com/welldanyogia/elite-estate/internal/logger"
)

// Unlocker checks the dashboard password
type Unlocker interface {
	Unlock(input string) bool
}

// TokenIssuer issues dashboard session tokens
type TokenIssuer interface {
	Issue() (auth.Token, error)
}

// UnlockRequest is the body of POST /api/dashboard/unlock
type UnlockRequest struct {
	Password string `json:"password" form:"password"`
}

// SessionHandler exchanges the dashboard password for a session token
type SessionHandler struct {
	gate   Unlocker
	tokens TokenIssuer
	secLog *logger.SecurityLogger
	logger *slog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(gate Unlocker, tokens TokenIssuer, secLog *logger.SecurityLogger, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		gate:   gate,
		tokens: tokens,
		secLog: secLog,
		logger: logger,
	}
}

// Unlock handles POST /api/dashboard/unlock
func (h *SessionHandler) Unlock(c echo.Context) error {
	var req UnlockRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if !h.gate.Unlock(req.Password) {
		h.secLog.AuthFailure(c.RealIP(), c.Path(), "incorrect dashboard password")
		return response.Unauthorized(c, "Incorrect password.")
	}

	token, err := h.tokens.Issue()
	if err != nil {
		h.logger.Error("failed to issue dashboard token", slog.Any("error", err))
		return response.InternalError(c, "failed to issue token")
	}

	h.secLog.AuthSuccess(c.RealIP(), c.Path())
	return c.JSON(http.StatusOK, response.APIResponse{
		Success: true,
		Data:    token,
		Message: "You have been logged in to the dashboard.",
	})
}
