// Package app assembles the riptide pipeline with uber-fx and drives one
// batch run from startup to shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/fx"

	"github.com/tigerroll/riptide/internal/config"
	"github.com/tigerroll/riptide/internal/lineage"
	"github.com/tigerroll/riptide/internal/metrics"
	"github.com/tigerroll/riptide/internal/pipeline"
	"github.com/tigerroll/riptide/internal/source"
	"github.com/tigerroll/riptide/internal/support/logger"
	"github.com/tigerroll/riptide/internal/zone"
)

// RunApplication sets up and runs the pipeline application using uber-fx.
// The process exits when the run completes or the context is cancelled.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig []byte) {
	cfg, err := config.LoadConfig(envFilePath, embeddedConfig)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	app := fx.New(
		fx.Supply(
			cfg,
			fx.Annotate(
				appCtx,
				fx.As(new(context.Context)),
				fx.ResultTags(`name:"appCtx"`),
			),
		),

		lineage.Module,
		zone.Module,
		source.Module,
		metrics.Module,
		pipeline.Module,

		fx.Invoke(fx.Annotate(startPipelineRun, fx.ParamTags(
			"",              // lc fx.Lifecycle
			"",              // shutdowner fx.Shutdowner
			"",              // cfg *config.Config
			"",              // orchestrator *pipeline.Orchestrator
			"",              // lineageStore *lineage.Store
			"",              // zones *zone.Store
			"",              // recorder *metrics.Recorder
			`name:"appCtx"`, // appCtx context.Context
		))),
	)

	app.Run()

	if app.Err() != nil {
		logger.Fatalf("Application run failed: %v", app.Err())
	}
}

// startPipelineRun registers the lifecycle hooks that run the pipeline once
// on startup and release the stores on shutdown.
func startPipelineRun(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	orchestrator *pipeline.Orchestrator,
	lineageStore *lineage.Store,
	zones *zone.Store,
	recorder *metrics.Recorder,
	appCtx context.Context,
) {
	var metricsServer *http.Server
	if addr := cfg.Riptide.Metrics.ListenAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", recorder.Handler())
		metricsServer = &http.Server{Addr: addr, Handler: mux}
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			tracingShutdown, err := metrics.SetupTracing(ctx, cfg.Riptide.Tracing)
			if err != nil {
				return err
			}

			if metricsServer != nil {
				go func() {
					logger.Infof("Serving metrics on %s", metricsServer.Addr)
					if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Errorf("Metrics server failed: %v", err)
					}
				}()
			}

			go func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered in pipeline run: %v", r)
					}

					flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					if err := tracingShutdown(flushCtx); err != nil {
						logger.Errorf("Failed to flush traces: %v", err)
					}

					if err := shutdowner.Shutdown(); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()

				results, err := orchestrator.Run(appCtx)
				for _, result := range results {
					logger.Infof("Stage '%s': %s (%d rows)", result.ProcessName, result.Status, result.RowsProcessed)
				}
				if err != nil {
					logger.Errorf("Pipeline run failed: %v", err)
					return
				}
				logger.Infof("Pipeline run succeeded. BatchID: %s", lineageStore.BatchID())
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if metricsServer != nil {
				if err := metricsServer.Shutdown(ctx); err != nil {
					logger.Errorf("Failed to stop metrics server: %v", err)
				}
			}
			if err := zones.Close(); err != nil {
				logger.Errorf("Failed to close zone store: %v", err)
			}
			if err := lineageStore.Close(); err != nil {
				logger.Errorf("Failed to close lineage store: %v", err)
			}
			logger.Infof("Application is shutting down.")
			return nil
		},
	})
}
