package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/welldanyogia/elite-estate/internal/logger"
)

// DefaultOrigin is accepted when no origins are configured
const DefaultOrigin = "http://localhost:8080"

// NewSecureUpgrader creates a WebSocket upgrader with origin validation
func NewSecureUpgrader(allowedOrigins []string, secLog *logger.SecurityLogger) websocket.Upgrader {
	filtered := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin != "" {
			filtered = append(filtered, origin)
		}
	}

	// Default to the local site if no origins configured
	if len(filtered) == 0 {
		filtered = []string{DefaultOrigin}
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Allow same-origin requests (empty Origin)
			if origin == "" {
				return true
			}

			for _, allowed := range filtered {
				if allowed == origin {
					return true
				}
			}

			secLog.InvalidOrigin(r.RemoteAddr, origin)
			return false
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}
