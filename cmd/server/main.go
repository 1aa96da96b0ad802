package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/nyc-coffee-inspections/internal/adapter/http"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/adapter/fixture"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/adapter/socrata"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/config"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/observability"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/pipeline"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", "nyc-coffee-inspections")
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	source := newSource(cfg, logger, metrics, clock)
	p := pipeline.New(source, pipeline.NewTransformer(logger), logger, metrics, clock, cfg.SourceLimit, cfg.RefreshInterval)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, view.NewBuilder(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return p.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// newSource picks the local fixture when SOURCE_FILE is set and the
// cached Socrata client otherwise.
func newSource(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) domain.RecordSource {
	if cfg.SourceFile != "" {
		logger.Info("using fixture record source", "path", cfg.SourceFile)
		return fixture.NewFileSource(cfg.SourceFile)
	}

	opts := []socrata.Option{socrata.WithRateLimit(cfg.SourceRateLimit)}
	if cfg.SourceAppToken != "" {
		opts = append(opts, socrata.WithAppToken(cfg.SourceAppToken))
	}
	client := socrata.NewClient(cfg.SourceURL, cfg.SourceCategory, cfg.SourceTimeout, logger, opts...)
	logger.Info("using socrata record source",
		"url", cfg.SourceURL,
		"category", cfg.SourceCategory,
		"limit", cfg.SourceLimit,
		"cache_size", cfg.SourceCacheSize,
		"cache_ttl", cfg.SourceCacheTTL,
	)
	return socrata.NewCachedSource(client, cfg.SourceCacheSize, cfg.SourceCacheTTL, clock, metrics)
}
