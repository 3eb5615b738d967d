package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// pingTimeout bounds each dependency check
const pingTimeout = 2 * time.Second

// ClientCounter reports how many realtime subscribers are connected
type ClientCounter interface {
	ClientCount() int
}

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	db       *gorm.DB
	redis    redis.UniversalClient
	realtime ClientCounter
}

// NewHealthHandler creates a new HealthHandler. redisClient is nil when the
// change feed relay is disabled; realtime may be nil.
func NewHealthHandler(db *gorm.DB, redisClient redis.UniversalClient, realtime ClientCounter) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, realtime: realtime}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status          string            `json:"status"`
	Services        map[string]string `json:"services"`
	RealtimeClients *int              `json:"realtime_clients,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	services := make(map[string]string)
	status := "healthy"

	if err := h.pingDB(ctx); err != nil {
		services["database"] = "unhealthy"
		status = "unhealthy"
	} else {
		services["database"] = "healthy"
	}

	// The relay is optional; losing it degrades live updates only
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			services["redis"] = "unhealthy"
			if status == "healthy" {
				status = "degraded"
			}
		} else {
			services["redis"] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	resp := HealthResponse{
		Status:   status,
		Services: services,
	}
	if h.realtime != nil {
		clients := h.realtime.ClientCount()
		resp.RealtimeClients = &clients
	}

	return c.JSON(statusCode, resp)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database connection failed",
		})
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database ping failed",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
