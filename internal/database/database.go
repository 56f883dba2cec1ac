package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lingo-server/internal/config"
)

const (
	connectMaxRetries = 10
	connectRetryDelay = 3 * time.Second
	connectTimeout    = 5 * time.Second
)

// Connect builds a pgx pool with bounded connect retries and verifies it with
// a ping. Retrying here lets the service start before the database container.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= connectMaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, connectTimeout)

		pool, err = pgxpool.NewWithConfig(attemptCtx, poolConfig)
		if err == nil {
			err = pool.Ping(attemptCtx)
		}
		cancel()

		if err == nil {
			logger.Info("Connected to PostgreSQL",
				zap.String("dsn", cfg.MaskedDSN()),
				zap.Int("attempt", attempt))
			return pool, nil
		}

		if pool != nil {
			pool.Close()
			pool = nil
		}
		logger.Warn("PostgreSQL connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", connectMaxRetries),
			zap.Error(err))

		if attempt < connectMaxRetries {
			select {
			case <-time.After(connectRetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectMaxRetries, err)
}
