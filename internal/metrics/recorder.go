// Package metrics provides the Prometheus recorder and OpenTelemetry tracer
// for pipeline runs.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	model "github.com/tigerroll/riptide/internal/domain/model"
	"github.com/tigerroll/riptide/internal/support/logger"
)

// Recorder records per-stage pipeline metrics into a private Prometheus
// registry.
type Recorder struct {
	registry *prometheus.Registry

	stageDurationSeconds *prometheus.HistogramVec
	stageStatusCounter   *prometheus.CounterVec
	stageRowsCounter     *prometheus.CounterVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors
// pre-registered.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		stageDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stage executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage", "status"}),
		stageStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_stage_status_total",
			Help: "Total number of pipeline stage executions by status.",
		}, []string{"stage", "status"}),
		stageRowsCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_stage_rows_total",
			Help: "Total rows processed by stage.",
		}, []string{"stage"}),
	}

	registry.MustRegister(r.stageDurationSeconds)
	registry.MustRegister(r.stageStatusCounter)
	registry.MustRegister(r.stageRowsCounter)

	return r
}

// Registry returns the Prometheus registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordStage records the outcome of one stage execution.
func (r *Recorder) RecordStage(ctx context.Context, result model.StageResult, duration time.Duration) {
	status := string(result.Status)
	r.stageDurationSeconds.WithLabelValues(result.ProcessName, status).Observe(duration.Seconds())
	r.stageStatusCounter.WithLabelValues(result.ProcessName, status).Inc()
	if result.RowsProcessed > 0 {
		r.stageRowsCounter.WithLabelValues(result.ProcessName).Add(float64(result.RowsProcessed))
	}
	logger.Debugf("Metrics: Stage '%s' recorded. Status: %s, Duration: %.3fs", result.ProcessName, status, duration.Seconds())
}

// Handler returns an HTTP handler exposing the registry in Prometheus text
// format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
