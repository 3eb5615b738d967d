package api

import (
	"log/slog"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/welldanyogia/elite-estate/internal/api/handlers"
	"github.com/welldanyogia/elite-estate/internal/api/middleware"
	"github.com/welldanyogia/elite-estate/internal/auth"
	"github.com/welldanyogia/elite-estate/internal/logger"
	"github.com/welldanyogia/elite-estate/internal/site"
	"github.com/welldanyogia/elite-estate/internal/websocket"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB     *gorm.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger

	Submitter handlers.Submitter
	Board     handlers.InquiryBoard
	Gate      *auth.Gate
	Tokens    *auth.TokenIssuer
	Hub       *websocket.Hub
	Upgrader  gorillaws.Upgrader

	// Site is mounted on the same server when set
	Site *site.Handler

	SecurityLogger *logger.SecurityLogger
	AllowedOrigins []string
	Production     bool

	// Limiters are owned by the caller so it can run their cleanup
	APILimiter     *middleware.IPRateLimiter
	ContactLimiter *middleware.IPRateLimiter
	UnlockLimiter  *middleware.IPRateLimiter
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) (*echo.Echo, error) {
	if cfg.APILimiter == nil {
		cfg.APILimiter = middleware.NewIPRateLimiter(10, 20)
	}
	if cfg.ContactLimiter == nil {
		cfg.ContactLimiter = middleware.NewPerMinuteLimiter(5)
	}
	if cfg.UnlockLimiter == nil {
		cfg.UnlockLimiter = middleware.NewPerMinuteLimiter(10)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Security Middleware (applied in correct order)
	// 1. Recover from panics
	e.Use(middleware.Recover())

	// 2. Request id, then logging so every line carries it
	e.Use(middleware.RequestID())
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	// 3. Security headers (applied to all responses)
	e.Use(middleware.SecureHeaders())

	contactLimit := middleware.RateLimit(cfg.ContactLimiter, cfg.SecurityLogger)
	// Both password forms share one budget per client
	unlockLimit := middleware.RateLimit(cfg.UnlockLimiter, cfg.SecurityLogger)

	if cfg.Site != nil {
		renderer, err := site.NewRenderer()
		if err != nil {
			return nil, err
		}
		e.Renderer = renderer
		cfg.Site.Register(e, contactLimit, unlockLimit)
	}

	var realtime handlers.ClientCounter
	if cfg.Hub != nil {
		realtime = cfg.Hub
	}
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis, realtime)
	inquiryHandler := handlers.NewInquiryHandler(cfg.Submitter, cfg.Board)
	sessionHandler := handlers.NewSessionHandler(cfg.Gate, cfg.Tokens, cfg.SecurityLogger, cfg.Logger)
	realtimeHandler := handlers.NewRealtimeHandler(cfg.Hub, cfg.Upgrader, cfg.Logger)

	// Health routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// API routes
	api := e.Group("/api")
	api.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.Production))
	api.Use(middleware.RateLimit(cfg.APILimiter, cfg.SecurityLogger))

	// Public
	api.POST("/inquiries", inquiryHandler.Submit, contactLimit)
	api.POST("/dashboard/unlock", sessionHandler.Unlock, unlockLimit)

	// Dashboard
	gated := middleware.DashboardAuth(cfg.Tokens, cfg.SecurityLogger)
	api.GET("/inquiries", inquiryHandler.List, gated)
	api.GET("/inquiries/stats", inquiryHandler.Stats, gated)
	api.GET("/inquiries/:id", inquiryHandler.Get, gated)
	api.PATCH("/inquiries/:id/read", inquiryHandler.MarkAsRead, gated)
	api.PATCH("/inquiries/:id/bookmark", inquiryHandler.ToggleBookmark, gated)
	api.GET("/realtime", realtimeHandler.Connect, gated)

	return e, nil
}
