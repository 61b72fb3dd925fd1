// Package srt parses, retimes, and renders SubRip (SRT) subtitle documents.
//
// Documents are parsed strictly: every blank-line separated block must carry a
// numeric cue line, a timing line, and at least one text line, otherwise the
// whole operation fails with a *ParseError. Shifting moves every cue by the same
// offset and clamps at zero; cue numbers, cue order, and text lines are written
// back exactly as they were read.
//
// The package holds no state and every function is safe for concurrent use.
package srt
