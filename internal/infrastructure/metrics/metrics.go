// Package metrics exposes bridge and worker pool activity to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bnema/webbridge/internal/application/port"
	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/infrastructure/workerpool"
	"github.com/bnema/webbridge/internal/logging"
)

const namespace = "webbridge"

var _ port.BridgeMetrics = (*Metrics)(nil)

// Metrics holds all Prometheus metrics on a private registry, so several
// hosts in one process (tests included) never collide.
type Metrics struct {
	registry *prometheus.Registry

	Invocations        *prometheus.CounterVec
	InvocationDuration *prometheus.HistogramVec
	Pushes             prometheus.Counter
	InFlight           prometheus.Gauge
}

// New creates the bridge metrics. Go runtime and process collectors are
// registered alongside them.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocations_total",
				Help:      "Total number of script invocations of bound functions",
			},
			[]string{"function", "mode", "status"},
		),
		InvocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "invocation_duration_seconds",
				Help:      "Bound function execution time in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"function", "mode"},
		),
		Pushes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pushes_total",
				Help:      "Total number of host messages pushed to script",
			},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "invocations_in_flight",
				Help:      "Asynchronous invocations waiting for a reply",
			},
		),
	}

	m.registry.MustRegister(
		m.Invocations,
		m.InvocationDuration,
		m.Pushes,
		m.InFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveInvocation records a finished invocation.
func (m *Metrics) ObserveInvocation(function string, mode entity.InvocationMode, status entity.InvocationStatus, d time.Duration) {
	m.Invocations.WithLabelValues(function, string(mode), string(status)).Inc()
	m.InvocationDuration.WithLabelValues(function, string(mode)).Observe(d.Seconds())
}

// ObservePush counts a host push.
func (m *Metrics) ObservePush() {
	m.Pushes.Inc()
}

// SetInFlight sets the number of pending asynchronous invocations.
func (m *Metrics) SetInFlight(n int) {
	m.InFlight.Set(float64(n))
}

// RegisterPool exports the pool counters, read on every scrape.
func (m *Metrics) RegisterPool(stats func() workerpool.Stats) error {
	gauge := func(name, help string, value func(workerpool.Stats) int) prometheus.Collector {
		return prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Namespace: namespace, Subsystem: "pool", Name: name, Help: help},
			func() float64 { return float64(value(stats())) },
		)
	}
	counter := func(name, help string, value func(workerpool.Stats) uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(
			prometheus.CounterOpts{Namespace: namespace, Subsystem: "pool", Name: name, Help: help},
			func() float64 { return float64(value(stats())) },
		)
	}

	poolCollectors := []prometheus.Collector{
		gauge("max_workers", "Configured worker limit", func(s workerpool.Stats) int { return s.MaxWorkers }),
		gauge("workers", "Live worker goroutines", func(s workerpool.Stats) int { return s.Live }),
		gauge("active_workers", "Workers running a task", func(s workerpool.Stats) int { return s.Active }),
		gauge("queued_tasks", "Tasks waiting for a worker", func(s workerpool.Stats) int { return s.Queued }),
		counter("tasks_completed_total", "Tasks that ran to completion", func(s workerpool.Stats) uint64 { return s.Completed }),
		counter("tasks_panicked_total", "Tasks that panicked", func(s workerpool.Stats) uint64 { return s.Panicked }),
		counter("tasks_discarded_total", "Queued tasks dropped at shutdown", func(s workerpool.Stats) uint64 { return s.Discarded }),
	}
	for _, c := range poolCollectors {
		if err := m.registry.Register(c); err != nil {
			return fmt.Errorf("register pool metrics: %w", err)
		}
	}
	return nil
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes the registry on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	log := logging.Component(ctx, "metrics")

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
