// Package config provides YAML-based configuration for Callisto.
//
// Configuration is loaded from a YAML file on top of defaults, then
// validated; all validation errors are collected and reported together
// as a ValidationError.
//
//	cfg, err := config.LoadConfig("callisto.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// An example configuration file:
//
//	logging:
//	  level: info
//	  format: text
//	validation:
//	  default_delay: 100ms
//	journal:
//	  enabled: true
//	  backend: sqlite
//	  sqlite:
//	    path: data/journal.db
//	  retention:
//	    retention_days: 90
//	    prune_schedule: "0 3 * * *"
//	metrics:
//	  enabled: true
//	  namespace: mercator
//	  subsystem: callisto
package config
