package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgsearch/internal/config"
	"github.com/kailas-cloud/pkgsearch/internal/db"
	"github.com/kailas-cloud/pkgsearch/internal/db/embedded"
	"github.com/kailas-cloud/pkgsearch/internal/db/instrumented"
	dbRedis "github.com/kailas-cloud/pkgsearch/internal/db/redis"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/qualifier"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/pkgsearch/internal/logger"
)

// loadRuntime loads the environment's config and builds its logger.
func loadRuntime(c *cli.Context) (config.Config, *zap.Logger, error) {
	env := c.String("env")

	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// openStore connects the configured backend and waits until it answers.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.DriverEmbedded:
		store, err = embedded.Open(embedded.Config{Dir: cfg.Dir}, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}

	timeout := time.Duration(cfg.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s store not ready: %w", cfg.Driver, err)
	}

	logger.Info("Database ready", zap.String("driver", cfg.Driver), zap.Strings("addrs", cfg.Addrs))
	return instrumented.New(store, cfg.Driver, logger), nil
}

// compilerOptions applies the search config on top of the stock options.
func compilerOptions(cfg config.SearchConfig) (request.Options, error) {
	opts := request.DefaultOptions()

	policy, err := qualifier.ParseUnknownPolicy(cfg.UnknownQualifiers)
	if err != nil {
		return request.Options{}, fmt.Errorf("unknown qualifiers: %w", err)
	}
	opts.Unknown = policy
	return opts.WithBoosts(cfg.FieldBoosts), nil
}
