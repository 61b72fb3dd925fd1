// Package server assembles subsync's runtime components and runs the HTTP
// API.
//
// BuildComponents turns a *config.Config into the provider registry,
// translation service and language catalog; the CLI reuses it for one-shot
// commands. Server owns the listener and a lock file in the data directory so
// only one instance serves from the same data dir. Run is the serve entrypoint:
// it wires logging, components and the HTTP handler, then blocks until the
// context is cancelled or SIGINT/SIGTERM arrives.
package server
