package srt

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidOffset is returned for NaN or infinite offsets.
var ErrInvalidOffset = errors.New("srt: offset must be a finite number")

// OffsetFromSeconds converts a signed, possibly fractional, number of seconds
// to a duration rounded to the nearest millisecond.
func OffsetFromSeconds(seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, ErrInvalidOffset
	}
	ms := math.Round(seconds * 1000)
	if math.Abs(ms) > float64(math.MaxInt64/int64(time.Millisecond)) {
		return 0, fmt.Errorf("%w: %g seconds overflows", ErrInvalidOffset, seconds)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Shift returns a copy of d with every start and end moved by offset. Results
// below zero are clamped to zero; cue order, numbering and text are untouched.
func (d Document) Shift(offset time.Duration) Document {
	out := Document{Cues: make([]Cue, len(d.Cues))}
	for i, cue := range d.Cues {
		cue.Start = clampAdd(cue.Start, offset)
		cue.End = clampAdd(cue.End, offset)
		cue.Lines = append([]string(nil), cue.Lines...)
		out.Cues[i] = cue
	}
	return out
}

// clampAdd adds offset to ts, clamping at zero and saturating at the largest
// duration.
func clampAdd(ts, offset time.Duration) time.Duration {
	if offset > 0 && ts > math.MaxInt64-offset {
		return math.MaxInt64
	}
	sum := ts + offset
	if sum < 0 {
		return 0
	}
	return sum
}

// Shift parses text, moves every timestamp by offsetSeconds, and renders the
// result. It fails without partial output if any block is malformed.
func Shift(text string, offsetSeconds float64) (string, error) {
	offset, err := OffsetFromSeconds(offsetSeconds)
	if err != nil {
		return "", err
	}
	doc, err := Parse(text)
	if err != nil {
		return "", err
	}
	return doc.Shift(offset).Format(), nil
}

// AlignFirst shifts the whole document so its first cue starts at at. A
// document without cues is returned unchanged.
func AlignFirst(text string, at time.Duration) (string, error) {
	if at < 0 {
		return "", fmt.Errorf("%w: start time %s is negative", ErrInvalidOffset, at)
	}
	doc, err := Parse(text)
	if err != nil {
		return "", err
	}
	if len(doc.Cues) == 0 {
		return text, nil
	}
	return doc.Shift(at - doc.Cues[0].Start).Format(), nil
}
