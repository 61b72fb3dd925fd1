// Package services defines shared utilities consumed by the provider clients,
// the translation engines, and the HTTP API.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation IDs and provider names
//     for logging.
//   - Structured error markers plus the Wrap helper, and the mapping from those
//     markers to HTTP status codes.
//
// Use these helpers when wiring new integrations so failures surface to API
// clients with consistent status codes and log fields.
package services
