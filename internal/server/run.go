package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sq3/hausfinanzierungs-dashboard/internal/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
	redisPingTimeout  = 3 * time.Second
)

// NewCache returns a Redis cache when cfg names a reachable Redis server and
// an in-memory cache otherwise.
func NewCache(ctx context.Context, cfg *Config, logger *zap.Logger) cache.Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RedisAddress == "" {
		return cache.NewMemoryCache(cfg.CacheSize)
	}

	redisCache := cache.NewRedisCache(cfg.RedisAddress, logger)
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, falling back to in-memory cache",
			zap.String("op", "server.NewCache"),
			zap.String("address", cfg.RedisAddress),
			zap.Error(err),
		)
		_ = redisCache.Close()
		return cache.NewMemoryCache(cfg.CacheSize)
	}
	logger.Info("using redis result cache",
		zap.String("op", "server.NewCache"),
		zap.String("address", cfg.RedisAddress),
	)
	return redisCache
}

// Run serves handler on address until ctx is done or the listener fails,
// then shuts the server down gracefully.
func Run(ctx context.Context, logger *zap.Logger, address string, handler http.Handler) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening",
			zap.String("op", "server.Run"),
			zap.String("address", address),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server", zap.String("op", "server.Run"))
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}
