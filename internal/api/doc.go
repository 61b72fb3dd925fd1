// Package api exposes subtitle search, download, sync and translation over
// HTTP.
//
// # Routes
//
//	GET  /api/health                  liveness probe
//	GET  /api/languages               searchable subtitle languages
//	GET  /api/translation-languages   languages the translator accepts
//	GET  /api/search                  fan-out search across providers
//	POST /api/download                download, optionally shifted by sync_time
//	POST /api/sync                    download and align the first cue to start_at
//	POST /api/translate               download, optionally shift, then translate
//
// Subtitle responses are returned as application/x-subrip attachments. Errors
// are JSON objects of the form {"error": "..."}; malformed subtitle payloads
// answer 422 and the remaining failures are mapped through services.HTTPStatus.
//
// # Middleware
//
// Every request gets an X-Request-ID (generated when absent) that is stored in
// the context so log lines carry a correlation_id. When a token is configured
// all /api routes except /api/health require "Authorization: Bearer <token>".
package api
