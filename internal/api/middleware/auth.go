// Package middleware provides HTTP middleware for the site and inquiry API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	apperrors "github.com/welldanyogia/elite-estate/internal/errors"
	"github.com/welldanyogia/elite-estate/internal/logger"
)

// TokenCookie is the cookie the HTML dashboard stores its session token in
const TokenCookie = "dashboard_token"

// TokenVerifier checks a dashboard session token
type TokenVerifier interface {
	Verify(token string) error
}

// DashboardAuth admits requests that carry a valid dashboard token.
// The token is read from "Authorization: Bearer", then the session cookie,
// then the "token" query parameter on websocket upgrades, since browsers
// cannot set headers on those.
func DashboardAuth(verifier TokenVerifier, secLog *logger.SecurityLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				secLog.AuthFailure(c.RealIP(), c.Path(), "missing dashboard token")
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
					"error": "missing dashboard token",
					"code":  apperrors.CodeUnauthorized,
				})
			}

			if err := verifier.Verify(token); err != nil {
				secLog.AuthFailure(c.RealIP(), c.Path(), "invalid dashboard token")
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
					"error": "invalid dashboard token",
					"code":  apperrors.CodeUnauthorized,
				})
			}

			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	req := c.Request()
	if header := req.Header.Get(echo.HeaderAuthorization); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if strings.EqualFold(req.Header.Get(echo.HeaderUpgrade), "websocket") {
		return c.QueryParam("token")
	}
	return ""
}
