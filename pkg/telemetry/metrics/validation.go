package metrics

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/validate"
)

// ValidationMetrics tracks metrics for validation activity.
//
// Metrics:
//   - mercator_callisto_handler_runs_total: Handler runs by kind and status
//   - mercator_callisto_handler_duration_seconds: Handler run duration histogram
//   - mercator_callisto_job_aborts_total: Async runs aborted before commit
//   - mercator_callisto_pending_reactions: Debounced runs waiting across observed validators
//   - mercator_callisto_active_jobs: Async jobs running or scheduled across observed validators
type ValidationMetrics struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	handlerRuns     *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
	jobAborts       prometheus.Counter

	mu      sync.RWMutex
	tracked map[*validate.Validator]struct{}
}

// NewValidationMetrics creates and registers validation metrics with the
// provided registry. If registry is nil, a fresh registry is created.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.HandlerDurationBuckets) == 0 {
		cfg.HandlerDurationBuckets = config.DefaultHandlerDurationBuckets
	}

	m := &ValidationMetrics{
		config:   cfg,
		registry: registry,
		tracked:  make(map[*validate.Validator]struct{}),

		handlerRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "handler_runs_total",
				Help:      "Total number of validation handler runs",
			},
			[]string{"kind", "status"},
		),

		handlerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "handler_duration_seconds",
				Help:      "Duration of validation handler runs in seconds",
				Buckets:   cfg.HandlerDurationBuckets,
			},
			[]string{"kind"},
		),

		jobAborts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "job_aborts_total",
				Help:      "Total number of async validation runs aborted before commit",
			},
		),
	}

	pendingReactions := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "pending_reactions",
			Help:      "Debounced handler runs currently waiting across observed validators",
		},
		func() float64 { return float64(m.sum((*validate.Validator).ReactionState)) },
	)

	activeJobs := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "active_jobs",
			Help:      "Async validation jobs running or scheduled across observed validators",
		},
		func() float64 { return float64(m.sum((*validate.Validator).AsyncState)) },
	)

	registry.MustRegister(
		m.handlerRuns,
		m.handlerDuration,
		m.jobAborts,
		pendingReactions,
		activeJobs,
	)

	return m
}

// Hook returns a result hook suitable for validate.WithResultHook.
func (m *ValidationMetrics) Hook() func(validate.Result) {
	return m.Record
}

// Record updates the metrics for one handler run result.
func (m *ValidationMetrics) Record(res validate.Result) {
	if !m.config.Enabled {
		return
	}

	if res.Err != nil {
		if errors.Is(res.Err, context.Canceled) {
			m.jobAborts.Inc()
			return
		}
		m.handlerRuns.WithLabelValues(string(res.Kind), "fault").Inc()
		return
	}

	status := "valid"
	if !res.Valid {
		status = "invalid"
	}
	m.handlerRuns.WithLabelValues(string(res.Kind), status).Inc()
	m.handlerDuration.WithLabelValues(string(res.Kind)).Observe(res.Duration.Seconds())
}

// Observe adds a validator to the set backing the pending_reactions and
// active_jobs gauges.
func (m *ValidationMetrics) Observe(v *validate.Validator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked[v] = struct{}{}
}

// Forget removes a validator from the observed set.
func (m *ValidationMetrics) Forget(v *validate.Validator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tracked, v)
}

// Registry returns the Prometheus registry used by these metrics. It can
// be used to serve a /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		metrics.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (m *ValidationMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *ValidationMetrics) sum(state func(*validate.Validator) int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for v := range m.tracked {
		total += state(v)
	}
	return total
}
