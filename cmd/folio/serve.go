package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"folio.dev/internal/analytics"
	"folio.dev/internal/handlers"
	"folio.dev/internal/models"
	"folio.dev/internal/scene"
	"folio.dev/internal/services"
	"folio.dev/internal/shell"
	"folio.dev/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the site on SERVER_ADDR. The telemetry workers, the geometry
warm-up and, with DEV=true, the content watcher run next to the server and stop with it
on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	content, err := services.NewContentService(cfg.ContentFile, logger)
	if err != nil {
		return err
	}
	content.OnReload(func(c *models.Catalog) {
		logger.Info("content reloaded", zap.Int("projects", len(c.Projects)), zap.Int("testimonials", len(c.Testimonials)))
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sh, err := shell.Init(shell.Options{
		FrameInterval: cfg.FrameInterval,
		PerfInterval:  cfg.Perf.Interval,
		MaxRestores:   cfg.Scene.MaxRestores,
		RestoreWindow: cfg.Scene.RestoreWindow,
		Analytics: analytics.Options{
			Endpoint: cfg.Analytics.Endpoint,
			Buffer:   cfg.Analytics.Buffer,
			Timeout:  cfg.Analytics.Timeout,
		},
		Registerer: reg,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer shell.Close()

	cache := scene.NewGeometryCache(logger)
	router, err := handlers.SetupRoutes(cfg, handlers.Deps{
		Content:  content,
		Shell:    sh,
		Geometry: cache,
		Metrics:  reg,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           otelhttp.NewHandler(router, "folio"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sh.Run(ctx) })
	g.Go(func() error {
		if err := cache.Warm(ctx, defaultGeometry(0)); err != nil && ctx.Err() == nil {
			logger.Warn("geometry warm-up failed", zap.Error(err))
		}
		return nil
	})
	if cfg.Dev {
		g.Go(func() error { return content.Watch(ctx, 200*time.Millisecond) })
	}
	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", cfg.ServerAddr), zap.Bool("dev", cfg.Dev))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("server shutting down")
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

// defaultGeometry lists the geometry the page requests. A zero seed keeps
// each kind's default.
func defaultGeometry(seed uint64) []scene.Params {
	var out []scene.Params
	for _, k := range scene.Kinds() {
		p := scene.DefaultParams(k)
		if seed != 0 {
			p.Seed = seed
		}
		out = append(out, p)
	}
	return out
}
