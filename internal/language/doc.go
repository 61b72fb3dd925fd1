// Package language provides language code normalization and the catalog of
// languages offered for subtitle search and translation.
//
// Conversions between ISO 639-1, ISO 639-2, display names, and the free-form
// labels returned by subtitle providers are consolidated here. Catalog holds
// the configured defaults and can reload them from a YAML file while the
// server runs.
package language
