// Package config loads, normalizes, and validates subsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENSUBTITLES_API_KEY and GEMINI_API_KEY. The Config type is passed
// explicitly to every constructor; there is no package-level instance.
package config
