package srt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrParse marks every *ParseError so callers can match with errors.Is.
var ErrParse = errors.New("srt: parse error")

// ParseError reports a block that does not follow the number/timing/text layout.
type ParseError struct {
	Block  int // 1-based block position in the document
	Line   int // 1-based line number of the offending line
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("srt: block %d (line %d): %s", e.Block, e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Cue is a single subtitle entry.
type Cue struct {
	// Index is the parsed cue number; Number keeps the text as written.
	Index  int
	Number string
	Start  time.Duration
	End    time.Duration
	// Settings holds any positioning data that followed the end timestamp.
	Settings string
	Lines    []string
}

// Text joins the cue's lines with newlines.
func (c Cue) Text() string {
	return strings.Join(c.Lines, "\n")
}

// Document is an ordered list of cues.
type Document struct {
	Cues []Cue
}

// Parse splits text into cues. CRLF line endings and a leading byte order mark
// are tolerated. Any malformed block fails the whole parse.
func Parse(text string) (Document, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	var (
		doc        Document
		block      []string
		blockStart int
		blockCount int
	)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		blockCount++
		cue, err := parseBlock(block, blockCount, blockStart)
		block = block[:0]
		if err != nil {
			return err
		}
		doc.Cues = append(doc.Cues, cue)
		return nil
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return Document{}, err
			}
			continue
		}
		if len(block) == 0 {
			blockStart = i + 1
		}
		block = append(block, line)
	}
	if err := flush(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func parseBlock(lines []string, blockNum, firstLine int) (Cue, error) {
	number := strings.TrimSpace(lines[0])
	index, err := strconv.Atoi(number)
	if err != nil {
		return Cue{}, &ParseError{Block: blockNum, Line: firstLine, Reason: fmt.Sprintf("cue number %q is not an integer", number)}
	}
	if len(lines) < 2 {
		return Cue{}, &ParseError{Block: blockNum, Line: firstLine, Reason: "missing timing line"}
	}
	start, end, settings, err := parseTimingLine(lines[1])
	if err != nil {
		return Cue{}, &ParseError{Block: blockNum, Line: firstLine + 1, Reason: "timing line: " + err.Error()}
	}
	if len(lines) < 3 {
		return Cue{}, &ParseError{Block: blockNum, Line: firstLine + 1, Reason: "missing text line"}
	}
	text := make([]string, len(lines)-2)
	copy(text, lines[2:])
	return Cue{
		Index:    index,
		Number:   number,
		Start:    start,
		End:      end,
		Settings: settings,
		Lines:    text,
	}, nil
}

// Format renders the document back to SRT. Every block is followed by a blank
// line, so a non-empty result always ends in "\n\n".
func (d Document) Format() string {
	var b strings.Builder
	for _, cue := range d.Cues {
		number := cue.Number
		if number == "" {
			number = strconv.Itoa(cue.Index)
		}
		b.WriteString(number)
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(cue.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(cue.End))
		if cue.Settings != "" {
			b.WriteByte(' ')
			b.WriteString(cue.Settings)
		}
		b.WriteByte('\n')
		for _, line := range cue.Lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Stats summarises a document for logging and CLI output.
type Stats struct {
	Cues       int
	FirstStart time.Duration
	LastEnd    time.Duration
}

// Stats reports the cue count, the first cue's start, and the latest end time.
func (d Document) Stats() Stats {
	stats := Stats{Cues: len(d.Cues)}
	if len(d.Cues) == 0 {
		return stats
	}
	stats.FirstStart = d.Cues[0].Start
	for _, cue := range d.Cues {
		if cue.End > stats.LastEnd {
			stats.LastEnd = cue.End
		}
	}
	return stats
}
