// Package logging assembles structured slog loggers and formatting helpers used
// across subsync services.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and tags records with the request correlation ID and provider name
// carried in the context. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
package logging
