package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juniorISO69960/schema.autobot.tf/internal/api"
	"github.com/juniorISO69960/schema.autobot.tf/internal/config"
	"github.com/juniorISO69960/schema.autobot.tf/internal/metrics"
	"github.com/juniorISO69960/schema.autobot.tf/internal/otel"
	"github.com/juniorISO69960/schema.autobot.tf/internal/refresh"
	"github.com/juniorISO69960/schema.autobot.tf/internal/schema"
	"github.com/juniorISO69960/schema.autobot.tf/web"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", os.Getenv("SCHEMAD_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("invalid configuration", "error", err)
		return 1
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, otel.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Error("tracing setup failed", "error", err)
		return 1
	}

	store := schema.NewStore()
	metrics.RegisterSnapshotAge(store.AgeSeconds)

	var fetcher refresh.SnapshotFetcher = fetchDisabled{}
	if cfg.Schema.EnableFetch {
		fetcher = schema.NewFetcher(cfg.Schema.SourceURL, cfg.Schema.FetchTimeout, cfg.Schema.MaxBytes, logger)
	}

	opts := []refresh.Option{
		refresh.WithCooldown(cfg.Refresh.Cooldown),
		refresh.WithFetchTimeout(cfg.Schema.FetchTimeout),
		refresh.WithBaseContext(ctx),
	}

	docCache, err := schema.OpenDocumentCache(cfg.Schema.CacheDir)
	if err != nil {
		logger.Warn("document cache unavailable, starting without warm start", "dir", cfg.Schema.CacheDir, "error", err)
	} else {
		opts = append(opts, refresh.WithDocumentSaver(docCache))
	}

	coord := refresh.New(store, fetcher, logger, opts...)
	defer closeCache(coord, docCache, logger)

	needFetch := true
	if docCache != nil {
		needFetch = !warmStart(docCache, coord, cfg.Schema.MaxAge, logger)
	}

	srv, err := api.NewServer(api.Options{
		Addr:         cfg.HTTPAddr,
		WriteTimeout: cfg.Schema.FetchTimeout + 30*time.Second,
		OpenAPI:      web.OpenAPI,
		TrustProxy:   cfg.TrustProxy,
	}, logger, store, coord)
	if err != nil {
		logger.Error("server setup failed", "error", err)
		return 1
	}

	if cfg.Schema.EnableFetch {
		go coord.Start(ctx, needFetch, cfg.Refresh.BootstrapRetry, cfg.Refresh.AutoInterval)
	} else if needFetch {
		logger.Warn("schema fetch disabled and no cached document, serving 503 until restart")
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"addr", cfg.HTTPAddr,
			"source_url", cfg.Schema.SourceURL,
			"fetch_enabled", cfg.Schema.EnableFetch,
			"cooldown", cfg.Refresh.Cooldown.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	code := 0
	select {
	case <-ctx.Done():
		logger.Info("shutting down server...")
	case err := <-serveErr:
		logger.Error("server listen error", "error", err)
		code = 1
	}
	// Cancels the refresh loop and any in-flight fetch.
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return code
}

// closeCache closes the document cache once no refresh can still be writing
// to it.
func closeCache(coord *refresh.Coordinator, cache *schema.DocumentCache, logger *slog.Logger) {
	if cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := coord.Wait(ctx); err != nil {
		logger.Warn("refresh still running, closing document cache anyway", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warn("closing document cache", "error", err)
	}
}

// warmStart installs the cached document, if any. It reports whether the
// cached copy is fresh enough to skip the startup fetch.
func warmStart(cache *schema.DocumentCache, coord *refresh.Coordinator, maxAge time.Duration, logger *slog.Logger) bool {
	data, source, ts, err := cache.LoadLatest()
	if err != nil {
		logger.Info("no cached schema document, fetching on startup", "error", err)
		return false
	}
	snap, err := schema.Parse(data, source, ts, logger)
	if err != nil {
		logger.Warn("failed to parse cached schema document", "error", err)
		return false
	}
	coord.Seed(snap)

	age := time.Since(ts)
	logger.Info("loaded schema from cache",
		"version", snap.Version,
		"items", snap.ItemCount(),
		"cached_at", ts.Format(time.RFC3339),
	)
	return maxAge == 0 || age <= maxAge
}

// fetchDisabled fails every refresh when upstream fetching is turned off.
type fetchDisabled struct{}

func (fetchDisabled) FetchSnapshot(context.Context) (*schema.Snapshot, error) {
	return nil, errors.New("schema fetch is disabled")
}
