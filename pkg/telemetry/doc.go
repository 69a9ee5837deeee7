// Package telemetry provides observability for Callisto.
//
// Components:
//
//   - logging: structured slog logging configured from config.LoggingConfig
//   - metrics: Prometheus metrics for validation activity
//
// Both attach to validators through options and hooks; the validation core
// has no dependency on telemetry.
package telemetry
