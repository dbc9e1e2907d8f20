package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/reserva-portal/internal/api/router"
	"github.com/wolfman30/reserva-portal/internal/app/bootstrap"
	"github.com/wolfman30/reserva-portal/internal/auth"
	"github.com/wolfman30/reserva-portal/internal/booking"
	appconfig "github.com/wolfman30/reserva-portal/internal/config"
	"github.com/wolfman30/reserva-portal/internal/dashboard"
	"github.com/wolfman30/reserva-portal/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/reserva-portal/internal/http/middleware"
	"github.com/wolfman30/reserva-portal/internal/observability/metrics"
	"github.com/wolfman30/reserva-portal/internal/onboarding"
	"github.com/wolfman30/reserva-portal/internal/reserva"
	"github.com/wolfman30/reserva-portal/internal/session"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

const limiterIdle = 10 * time.Minute

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting reserva portal API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"backend", cfg.APIBaseURL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsHandler, bookingMetrics := setupMetrics()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	sessions := session.NewManager(bootstrap.BuildSessionStore(redisClient, logger), cfg.SessionTTL, logger)

	db, err := bootstrap.OpenDatabase(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go sweepLimiter(ctx, limiter, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      buildRouter(cfg, logger, bookingMetrics, metricsHandler, sessions, db, redisClient, limiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBookingMetrics(reg)
}

func buildRouter(
	cfg *appconfig.Config,
	logger *logging.Logger,
	bookingMetrics *metrics.BookingMetrics,
	metricsHandler http.Handler,
	sessions *session.Manager,
	db *sql.DB,
	redisClient *redis.Client,
	limiter *httpmiddleware.RateLimiter,
) http.Handler {
	client := reserva.NewClient(cfg.APIBaseURL, logger.Component("reserva"),
		reserva.WithTimeout(cfg.HTTPClientTimeout),
		reserva.WithObserver(bookingMetrics),
	)

	var auditLog handlers.AuditLogger
	auditSvc := bootstrap.BuildAuditService(db, logger)
	if auditSvc != nil {
		auditLog = auditSvc
	}
	doctor := handlers.NewDoctorHandler(
		dashboard.NewService(client, sessions, cfg.PublicSiteURL, logger),
		onboarding.NewService(client, sessions, logger),
		logger,
	)
	if auditSvc != nil {
		doctor.WithAttempts(auditSvc)
	}

	checks := map[string]router.Checker{}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	public := handlers.NewPublicBookingHandler(client, auditLog, logger,
		booking.WithLocation(cfg.Location()),
		booking.WithAckDuration(cfg.BookingAckDuration),
		booking.WithRecorder(bookingMetrics),
	)
	authHandler := handlers.NewAuthHandler(auth.NewService(client, sessions, logger), cfg.IsProduction(), logger)

	return router.New(&router.Config{
		Logger:             logger,
		PublicBooking:      public,
		Auth:               authHandler,
		Doctor:             doctor,
		Sessions:           sessions,
		MetricsHandler:     metricsHandler,
		HTTPObserver:       bookingMetrics,
		RateLimiter:        limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ReadinessChecks:    checks,
	})
}

// sweepLimiter drops idle per-IP limiters until ctx is done.
func sweepLimiter(ctx context.Context, limiter *httpmiddleware.RateLimiter, logger *logging.Logger) {
	ticker := time.NewTicker(limiterIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(limiterIdle); n > 0 {
				logger.Debug("swept idle rate limiters", "count", n)
			}
		}
	}
}
