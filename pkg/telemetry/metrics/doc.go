// Package metrics provides Prometheus metrics for validation activity:
// handler run counts and durations by kind, async job aborts, and gauges
// for pending reactions and in-flight jobs across observed validators.
//
// Metrics attach to a validator through the result hook and never sit on
// the core validation path:
//
//	m := metrics.NewValidationMetrics(&cfg.Metrics, nil)
//	v, err := validate.For(form, validate.WithResultHook(m.Hook()))
//	m.Observe(v)
package metrics
