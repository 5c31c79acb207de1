package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ranking-gateway/gateway"
	"ranking-gateway/gateway/application"
	"ranking-gateway/gateway/domain"
	"ranking-gateway/gateway/infra"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := newLogger(cfg.logLevel, cfg.logFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rdb, err := openRedis(cfg.redisURL)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// cada operação cai na camada em memória até o Redis voltar
			logger.Warn("redis ping failed, cache will fall back to memory", zap.Error(err))
		}
		cancelPing()
	}

	var primary domain.CacheTier
	if rdb != nil {
		primary = infra.NewRedisCache(rdb, infra.WithCachePrefix(cfg.cachePrefix))
	}
	cache := infra.NewTieredCache(
		primary,
		infra.NewMemoryCache(infra.WithMaxEntries(cfg.cacheMaxEntries)),
		infra.WithTieredLogger(logger.Named("cache")),
	)

	client, err := infra.NewNexonClient(cfg.upstreamURL, cfg.upstreamTimeout,
		infra.WithNexonLogger(logger.Named("nexon")),
	)
	if err != nil {
		logger.Fatal("upstream client", zap.Error(err))
	}

	sched := infra.NewScheduler(
		infra.WithCooldown(cfg.upstreamCooldown),
		infra.WithMaxPending(cfg.upstreamMaxPending),
		infra.WithSchedulerLogger(logger.Named("scheduler")),
	)
	sched.Start(ctx)

	var stats interface {
		domain.StatsStore
		domain.StatsReader
	}
	if cfg.statsEnabled {
		if rdb != nil {
			stats = infra.NewRedisStatsStore(
				rdb,
				infra.WithStatsPrefix(cfg.statsPrefix),
				infra.WithStatsTTL(cfg.statsTTL),
				infra.WithStatsBucket(cfg.statsBucket),
				infra.WithStatsTrackKeys(cfg.statsTrackKeys),
			)
		} else {
			stats = infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.statsTrackKeys))
		}
	}

	lookup := &application.Gateway{
		Cache: cache,
		Resolver: application.Resolver{
			Upstream:  client,
			Scheduler: sched,
			Cache:     cache,
			Log:       logger.Named("resolver"),
		},
		MinNameLength: cfg.minNameLength,
		Log:           logger.Named("lookup"),
	}
	if stats != nil {
		lookup.Stats = stats
	}

	deps := gateway.Deps{
		Lookup: &gateway.LookupHandler{Lookup: lookup, Retry: sched, Log: logger},
		Health: &gateway.HealthHandler{Cache: cache, Scheduler: sched},
		Concurrency: gateway.ConcurrencyOptions{
			Max:  cfg.concurrencyMax,
			Wait: cfg.concurrencyTimeout,
		},
	}
	if stats != nil {
		deps.Stats = &gateway.StatsHandler{Stats: stats, Log: logger}
	}
	if cfg.rateEnabled {
		store := infra.NewStore(cfg.rateRPS, cfg.rateBurst)
		store.StartJanitor(ctx)
		deps.RateLimit = gateway.RateLimitOptions{
			Store:               store,
			KeyHeader:           cfg.rateKeyHeader,
			TrustXForwardedFor:  cfg.trustXFF,
			RetryAfter:          cfg.retryAfter,
			AddRateLimitHeaders: cfg.addHeaders,
		}
	}

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           gateway.NewRouter(logger.Named("http"), deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// uma consulta pode esperar vários cooldowns na fila
		WriteTimeout: cfg.upstreamTimeout*3 + time.Duration(cfg.upstreamMaxPending)*cfg.upstreamCooldown + 30*time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("gateway listening",
		zap.String("addr", cfg.listenAddr),
		zap.String("upstream", cfg.upstreamURL),
		zap.String("cache", cache.Mode()),
		zap.Duration("cooldown", cfg.upstreamCooldown),
		zap.Int("max_pending", cfg.upstreamMaxPending),
	)
	logger.Info("inbound limits",
		zap.Bool("rate_enabled", cfg.rateEnabled),
		zap.Float64("rate_rps", cfg.rateRPS),
		zap.Int("rate_burst", cfg.rateBurst),
		zap.String("rate_key_header", cfg.rateKeyHeader),
		zap.Bool("trust_xff", cfg.trustXFF),
		zap.Int("concurrency_max", cfg.concurrencyMax),
		zap.Duration("concurrency_timeout", cfg.concurrencyTimeout),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// openRedis devolve (nil, nil) quando REDIS_URL está vazia.
func openRedis(rawURL string) (*redis.Client, error) {
	if rawURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}
