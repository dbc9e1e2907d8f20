package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/reserva-portal/internal/audit"
	appconfig "github.com/wolfman30/reserva-portal/internal/config"
	"github.com/wolfman30/reserva-portal/internal/session"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore picks Redis when a client is available and falls back to
// process memory otherwise. Memory sessions do not survive restarts.
func BuildSessionStore(client *redis.Client, logger *logging.Logger) session.Store {
	if logger == nil {
		logger = logging.Default()
	}
	if client == nil {
		logger.Warn("REDIS_ADDR not set or unreachable, sessions kept in memory")
		return session.NewMemoryStore()
	}
	logger.Info("sessions stored in redis")
	return session.NewRedisStore(client)
}

// OpenDatabase opens and pings the Postgres database, or returns nil when
// DATABASE_URL is empty.
func OpenDatabase(ctx context.Context, cfg *appconfig.Config) (*sql.DB, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: ping db: %w", err)
	}
	return db, nil
}

// BuildAuditService returns nil when there is no database; booking still works
// without an audit trail.
func BuildAuditService(db *sql.DB, logger *logging.Logger) *audit.Service {
	if db == nil {
		if logger != nil {
			logger.Warn("DATABASE_URL not set, booking audit disabled")
		}
		return nil
	}
	return audit.NewService(db)
}
