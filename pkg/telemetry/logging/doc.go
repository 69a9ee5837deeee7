// Package logging configures structured slog logging from the callisto
// configuration: level, format (text or JSON), and source annotation.
package logging
