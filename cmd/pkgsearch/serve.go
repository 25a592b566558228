package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgsearch/internal/config"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
	"github.com/kailas-cloud/pkgsearch/internal/metrics"
	pkginforepo "github.com/kailas-cloud/pkgsearch/internal/repository/pkginfo"
	searchrepo "github.com/kailas-cloud/pkgsearch/internal/repository/search"
	chiTransport "github.com/kailas-cloud/pkgsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/pkgsearch/internal/usecase/health"
	pkginfouc "github.com/kailas-cloud/pkgsearch/internal/usecase/pkginfo"
	searchuc "github.com/kailas-cloud/pkgsearch/internal/usecase/search"
	"github.com/kailas-cloud/pkgsearch/internal/version"
)

func serveCommand(c *cli.Context) error {
	cfg, logger, err := loadRuntime(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting pkgsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("driver", cfg.Database.Driver),
	)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.RegisterSearchMetrics()

	store, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := compilerOptions(cfg.Search)
	if err != nil {
		return err
	}

	index := searchrepo.PackageIndex(cfg.Index.Name, cfg.Index.KeyPrefix)
	packages := searchrepo.New(store, index, cfg.Index.CandidateWindow)
	infos := pkginforepo.New(store, cfg.Index.KeyPrefix, index)

	ready, err := packages.IndexReady(ctx)
	if err != nil {
		return fmt.Errorf("check package index: %w", err)
	}
	if !ready {
		logger.Warn("Package index does not exist yet, run ingest to create it", zap.String("index", index.Name))
	}

	searchSvc := searchuc.New(packages, request.NewCompiler(opts), cfg.Search.Timeout())
	infoSvc := pkginfouc.New(infos, cfg.Search.Timeout())
	healthSvc := healthuc.New(store, packages)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      newRouter(cfg, chiTransport.NewServer(searchSvc, infoSvc, healthSvc, logger), logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func newRouter(cfg config.Config, server *chiTransport.Server, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)
	return r
}
