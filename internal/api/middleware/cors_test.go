package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func corsRequest(mw echo.MiddlewareFunc, origin string) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(mw)
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", origin)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSecureCORS_AllowedOrigin(t *testing.T) {
	rec := corsRequest(SecureCORS([]string{"http://localhost:3000", "http://example.com"}, false), "http://example.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecureCORS_DisallowedOrigin(t *testing.T) {
	rec := corsRequest(SecureCORS([]string{"http://localhost:3000"}, false), "http://evil.com")

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecureCORS_DefaultOrigin(t *testing.T) {
	rec := corsRequest(SecureCORS(nil, false), DefaultOrigin)

	assert.Equal(t, DefaultOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecureCORS_WildcardDroppedInProduction(t *testing.T) {
	rec := corsRequest(SecureCORS([]string{"*"}, true), "http://evil.com")

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
