package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/playperu/findyourcity/internal/catalog"
	"github.com/playperu/findyourcity/internal/config"
	"github.com/playperu/findyourcity/internal/database"
	"github.com/playperu/findyourcity/internal/handler/health"
	"github.com/playperu/findyourcity/internal/place"
	"github.com/playperu/findyourcity/internal/round"
	"github.com/playperu/findyourcity/internal/server"
	"github.com/playperu/findyourcity/internal/textgen"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Round store ---
	checks := map[string]health.Checker{}
	var store round.Store
	switch cfg.RoundStore {
	case "sqlite":
		db, err := database.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("connecting to sqlite: %w", err)
		}
		defer db.Close()

		sqlStore, err := round.NewSQLStore(ctx, db, cfg.RoundTTL)
		if err != nil {
			return fmt.Errorf("initializing round store: %w", err)
		}
		store = sqlStore
		checks["sqlite"] = health.CheckerFunc(db.PingContext)
		logger.Info("round store", "backend", "sqlite", "path", cfg.DBPath)
	case "redis":
		rdb, err := round.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()

		store = round.NewRedisStore(rdb, cfg.RoundTTL)
		checks["redis"] = health.CheckerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		logger.Info("round store", "backend", "redis")
	default:
		store = round.NewMemoryStore(cfg.RoundTTL)
		logger.Info("round store", "backend", "memory")
	}

	// --- Place generation ---
	places := catalog.Default()
	local := place.NewLocalGenerator(places, nil)

	var client place.TextGenerator
	if cfg.OpenAIKey != "" {
		client = textgen.NewOpenAI(&http.Client{}, cfg.OpenAIBaseURL, cfg.OpenAIKey)
	}
	remote := place.NewRemoteGenerator(
		client,
		place.NewBreaker(place.BreakerConfig{
			FailLimit:         cfg.CBFailLimit,
			GenericCooldown:   cfg.CBCooldownGeneric,
			RateLimitCooldown: cfg.CBCooldownRateLimit,
			QuotaCooldown:     cfg.CBCooldownQuota,
		}),
		place.NewRecencyWindow(cfg.AIRecentBlock),
		place.NewRedactor(places.Names()),
		place.RemoteConfig{
			Model:       cfg.AIModel,
			MaxAttempts: cfg.AIMaxAttempts,
			Timeout:     cfg.AITimeout,
		},
		logger,
	)
	provider := place.NewProvider(local, remote, cfg.RemoteEnabled(), logger)
	logger.Info("place generation",
		"catalog_size", places.Len(),
		"remote_configured", client != nil,
		"remote_default", cfg.RemoteEnabled(),
	)

	// --- HTTP Server ---
	rounds := round.NewService(provider, store, logger)
	checks["rounds"] = rounds

	srv := server.New(cfg.HTTPAddr, logger, rounds, server.Options{
		CORSOrigins: cfg.CORSOrigins,
		SPADir:      cfg.SPADir,
		Checks:      checks,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return rounds.RunSweeper(gctx, cfg.RoundSweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
