// Package opensubtitles talks to the OpenSubtitles REST API.
//
// Client covers the raw endpoints (subtitle search, download-link negotiation,
// supported languages). Provider layers request spacing, retry with
// exponential backoff on rate limits and transient failures, and an on-disk
// cache of downloaded payloads keyed by file id.
package opensubtitles
