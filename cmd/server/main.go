package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	gosmtp "github.com/emersion/go-smtp"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/welldanyogia/elite-estate/internal/api"
	"github.com/welldanyogia/elite-estate/internal/api/middleware"
	"github.com/welldanyogia/elite-estate/internal/auth"
	"github.com/welldanyogia/elite-estate/internal/changefeed"
	"github.com/welldanyogia/elite-estate/internal/config"
	"github.com/welldanyogia/elite-estate/internal/dashboard"
	"github.com/welldanyogia/elite-estate/internal/database"
	"github.com/welldanyogia/elite-estate/internal/inquiry"
	"github.com/welldanyogia/elite-estate/internal/logger"
	"github.com/welldanyogia/elite-estate/internal/notify"
	"github.com/welldanyogia/elite-estate/internal/repository"
	"github.com/welldanyogia/elite-estate/internal/site"
	"github.com/welldanyogia/elite-estate/internal/smtp"
	"github.com/welldanyogia/elite-estate/internal/websocket"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// shutdownTimeout bounds graceful shutdown of the servers
const shutdownTimeout = 10 * time.Second

func main() {
	seed := flag.Bool("seed", false, "insert sample inquiries when the store is empty")
	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	config.LoadDotEnv(*envFile)

	cfg, err := config.LoadWithValidation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.SlogLevel())
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *seed); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, seed bool) error {
	log.Info("Starting Elite Real Estate server...")
	cfg.LogConfig(log)
	secLog := logger.FromLogger(log)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	repo := repository.NewInquiryRepository(db)
	if seed {
		added, err := inquiry.Seed(ctx, repo)
		if err != nil {
			return err
		}
		log.Info("sample inquiries seeded", slog.Int("count", added))
	}

	content, err := site.LoadContent(cfg.ContentPath)
	if err != nil {
		return err
	}

	gate, err := auth.NewGate(cfg.DashboardPassword)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	// Change feed wiring. Local writes reach this instance's hub and board
	// directly and go out through the relay; relayed changes from other
	// instances reach the hub and board without being sent back out.
	hub := websocket.NewHub(log)
	broadcast := changefeed.NewFanout(hub)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = changefeed.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	board := dashboard.NewBoard(repo, broadcast, log)
	if redisClient != nil {
		relay := changefeed.NewRedisRelay(redisClient, changefeed.NewFanout(hub, board), log)
		broadcast.Add(relay)
		g.Go(func() error { return relay.Run(gctx) })
		log.Info("change feed relay enabled", slog.String("origin", relay.Origin()))
	}

	notifier := notify.NewNotifier(notify.NewMailer(notify.MailerConfig{
		Addr:     cfg.NotifySMTPAddr,
		Username: cfg.NotifySMTPUsername,
		Password: cfg.NotifySMTPPassword,
		From:     cfg.NotifyFrom,
		To:       cfg.NotifyTo,
		Brand:    content.Brand,
	}), log)
	defer notifier.Wait()

	service := inquiry.NewService(repo, changefeed.NewFanout(broadcast, board, notifier), log)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error { return board.Run(gctx) })

	apiLimiter := middleware.NewIPRateLimiter(rateLimit(cfg.RateLimitRequests), cfg.RateLimitBurst)
	contactLimiter := middleware.NewPerMinuteLimiter(cfg.ContactRateLimit)
	unlockLimiter := middleware.NewPerMinuteLimiter(cfg.UnlockRateLimit)
	for _, l := range []*middleware.IPRateLimiter{apiLimiter, contactLimiter, unlockLimiter} {
		g.Go(func() error {
			l.RunCleanup(gctx, middleware.DefaultCleanupInterval, middleware.DefaultMaxIdle)
			return nil
		})
	}

	routerCfg := &api.RouterConfig{
		DB:        db,
		Logger:    log,
		Submitter: service,
		Board:     board,
		Gate:      gate,
		Tokens:    tokens,
		Hub:       hub,
		Upgrader:  websocket.NewSecureUpgrader(cfg.Origins(), secLog),
		Site: site.NewHandler(site.HandlerConfig{
			Content:        content,
			Submitter:      service,
			Board:          board,
			Gate:           gate,
			Tokens:         tokens,
			SecurityLogger: secLog,
			SecureCookie:   cfg.IsProduction(),
			Logger:         log,
		}),
		SecurityLogger: secLog,
		AllowedOrigins: cfg.Origins(),
		Production:     cfg.IsProduction(),
		APILimiter:     apiLimiter,
		ContactLimiter: contactLimiter,
		UnlockLimiter:  unlockLimiter,
	}
	if redisClient != nil {
		routerCfg.Redis = redisClient
	}

	e, err := api.NewRouter(routerCfg)
	if err != nil {
		return err
	}

	g.Go(func() error { return serveHTTP(gctx, e, cfg.APIPort, log) })

	if cfg.SMTPIntakeEnabled {
		backend := smtp.NewBackend(&smtp.BackendConfig{
			Submitter:      service,
			Addresses:      cfg.SMTPIntakeAddresses,
			Logger:         log,
			SecurityLogger: secLog,
		})
		server := smtp.NewSecureServer(backend, smtp.LoadServerConfigFromEnv(cfg.SMTPPort))
		g.Go(func() error { return serveSMTP(gctx, server, log) })
	}

	return g.Wait()
}

// rateLimit treats a non-positive setting as the default
func rateLimit(requestsPerSecond float64) rate.Limit {
	if requestsPerSecond <= 0 {
		return 10
	}
	return rate.Limit(requestsPerSecond)
}

func serveHTTP(ctx context.Context, e *echo.Echo, port int, log *slog.Logger) error {
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func serveSMTP(ctx context.Context, server *gosmtp.Server, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("SMTP intake listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, gosmtp.ErrServerClosed) {
			errCh <- fmt.Errorf("smtp server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down SMTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
