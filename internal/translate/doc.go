// Package translate converts subtitle text between languages.
//
// An Engine translates batches of plain strings. Service parses an SRT
// document, translates each cue's text through the configured Engine, and
// formats the result with timing and numbering untouched. Translations are
// remembered in a SQLite-backed Memory so repeated requests skip the engine.
package translate
