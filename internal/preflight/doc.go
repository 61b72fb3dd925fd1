// Package preflight provides readiness checks for the directories and external
// services subsync depends on.
//
// The doctor command runs RunAll and prints each Result; serve does not block
// on preflight because providers and translators are allowed to come up
// after the API. Each check is gated by its config toggle and disabled
// integrations are reported as skipped rather than failed.
package preflight
