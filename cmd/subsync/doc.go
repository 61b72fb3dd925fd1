// Command subsync searches, downloads, shifts and translates SRT subtitles and
// serves the same operations over HTTP.
//
// Configuration is loaded lazily from --config, ~/.config/subsync/config.toml
// or ./subsync.toml. Commands that work on local files only (shift, config
// init) skip loading it.
package main
