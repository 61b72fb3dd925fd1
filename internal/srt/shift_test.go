package srt

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestShiftLiteralScenarios(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset float64
		want   string
	}{
		{
			name:   "delay by fractional seconds",
			input:  "1\n00:00:01,000 --> 00:00:03,000\nHello\n\n",
			offset: 2.5,
			want:   "1\n00:00:03,500 --> 00:00:05,500\nHello\n\n",
		},
		{
			name:   "advance past zero clamps both ends",
			input:  "1\n00:01:00,000 --> 00:01:02,000\nHi\n\n",
			offset: -65,
			want:   "1\n00:00:00,000 --> 00:00:00,000\nHi\n\n",
		},
		{
			name:   "start clamps while end survives",
			input:  "7\n00:00:00,500 --> 00:00:06,000\nEarly\n\n",
			offset: -5,
			want:   "7\n00:00:00,000 --> 00:00:01,000\nEarly\n\n",
		},
		{
			name:   "hours beyond two digits",
			input:  "1\n99:59:59,999 --> 99:59:59,999\nLate\n\n",
			offset: 0.001,
			want:   "1\n100:00:00,000 --> 100:00:00,000\nLate\n\n",
		},
		{
			name:   "rounds to nearest millisecond",
			input:  "1\n00:00:01,000 --> 00:00:02,000\nx\n\n",
			offset: 0.0004,
			want:   "1\n00:00:01,000 --> 00:00:02,000\nx\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Shift(tt.input, tt.offset)
			if err != nil {
				t.Fatalf("Shift returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected output:\n got %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestShiftPreservesNumberingAndText(t *testing.T) {
	input := strings.Join([]string{
		"3",
		"00:00:01,000 --> 00:00:02,000",
		"<i>First line</i>",
		"  second line  ",
		"",
		"10",
		"00:00:04,250 --> 00:00:05,750 X1:100 X2:300 Y1:10 Y2:40",
		"Positioned",
		"",
	}, "\n")
	got, err := Shift(input, 1)
	if err != nil {
		t.Fatalf("Shift returned error: %v", err)
	}
	want := strings.Join([]string{
		"3",
		"00:00:02,000 --> 00:00:03,000",
		"<i>First line</i>",
		"  second line  ",
		"",
		"10",
		"00:00:05,250 --> 00:00:06,750 X1:100 X2:300 Y1:10 Y2:40",
		"Positioned",
		"",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestShiftAcceptsCRLFAndBOM(t *testing.T) {
	input := "\ufeff1\r\n00:00:01,000 --> 00:00:02,000\r\nHello\r\n\r\n2\r\n00:00:03.000 --> 00:00:04.000\r\nWorld\r\n"
	got, err := Shift(input, -1)
	if err != nil {
		t.Fatalf("Shift returned error: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nHello\n\n2\n00:00:02,000 --> 00:00:03,000\nWorld\n\n"
	if got != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", got, want)
	}
}

func TestShiftMalformedBlockFailsWholeDocument(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantBlock int
	}{
		{
			name:      "missing timestamp line",
			input:     "1\n00:00:01,000 --> 00:00:02,000\nok\n\n2\nno timing here\n\n",
			wantBlock: 2,
		},
		{
			name:      "number line only",
			input:     "1\n",
			wantBlock: 1,
		},
		{
			name:      "cue number is not an integer",
			input:     "one\n00:00:01,000 --> 00:00:02,000\ntext\n",
			wantBlock: 1,
		},
		{
			name:      "no text line",
			input:     "1\n00:00:01,000 --> 00:00:02,000\n\n",
			wantBlock: 1,
		},
		{
			name:      "minutes out of range",
			input:     "1\n00:61:01,000 --> 00:00:02,000\ntext\n",
			wantBlock: 1,
		},
		{
			name:      "negative timestamp",
			input:     "1\n-00:00:01,000 --> 00:00:02,000\ntext\n",
			wantBlock: 1,
		},
		{
			name:      "hours beyond duration range",
			input:     "1\n3000000:00:00,000 --> 3000000:00:01,000\nx\n\n",
			wantBlock: 1,
		},
		{
			name:      "largest hour with overflowing minutes",
			input:     "1\n00:00:01,000 --> 00:00:02,000\nok\n\n2\n2562047:59:59,999 --> 2562047:59:59,999\nx\n",
			wantBlock: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Shift(tt.input, 1)
			if err == nil {
				t.Fatalf("expected parse error, got output %q", out)
			}
			if out != "" {
				t.Fatalf("expected no partial output, got %q", out)
			}
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Block != tt.wantBlock {
				t.Fatalf("expected block %d, got %d (%v)", tt.wantBlock, perr.Block, err)
			}
		})
	}
}

func TestShiftLargeTimestamps(t *testing.T) {
	const huge = "1\n2562047:00:00,000 --> 2562047:47:16,854\nx\n\n"
	got, err := Shift(huge, 0)
	if err != nil {
		t.Fatalf("Shift returned error: %v", err)
	}
	if got != huge {
		t.Fatalf("zero shift changed the document:\n%q", got)
	}

	doc := Document{Cues: []Cue{{Number: "1", Start: time.Hour, End: math.MaxInt64 - time.Second, Lines: []string{"x"}}}}
	shifted := doc.Shift(time.Duration(math.MaxInt64 / 2))
	if shifted.Cues[0].End != math.MaxInt64 {
		t.Fatalf("expected end to saturate, got %v", shifted.Cues[0].End)
	}
	if want := time.Hour + time.Duration(math.MaxInt64/2); shifted.Cues[0].Start != want {
		t.Fatalf("unexpected start %v, want %v", shifted.Cues[0].Start, want)
	}
}

func TestShiftRejectsNonFiniteOffset(t *testing.T) {
	for _, offset := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := Shift("1\n00:00:01,000 --> 00:00:02,000\nx\n", offset); !errors.Is(err, ErrInvalidOffset) {
			t.Fatalf("offset %v: expected ErrInvalidOffset, got %v", offset, err)
		}
	}
}

func TestShiftEmptyDocument(t *testing.T) {
	got, err := Shift(" \n\n", 3)
	if err != nil {
		t.Fatalf("Shift returned error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestShiftProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for iter := 0; iter < 200; iter++ {
		input := randomDocument(rng)
		doc, err := Parse(input)
		if err != nil {
			t.Fatalf("generated document failed to parse: %v\n%s", err, input)
		}

		identity, err := Shift(input, 0)
		if err != nil {
			t.Fatalf("Shift(0) returned error: %v", err)
		}
		if identity != doc.Format() {
			t.Fatalf("Shift(0) changed timestamps:\n%s", identity)
		}

		o1 := float64(rng.IntN(20_000)) / 1000
		o2 := float64(rng.IntN(20_000)-10_000) / 1000
		once, err := Shift(input, o1)
		if err != nil {
			t.Fatalf("Shift returned error: %v", err)
		}
		shifted, err := Parse(once)
		if err != nil {
			t.Fatalf("shifted output failed to parse: %v", err)
		}
		if len(shifted.Cues) != len(doc.Cues) {
			t.Fatalf("cue count changed: %d -> %d", len(doc.Cues), len(shifted.Cues))
		}
		for i := range doc.Cues {
			if diff := cmp.Diff(doc.Cues[i].Lines, shifted.Cues[i].Lines); diff != "" {
				t.Fatalf("cue %d text changed (-want +got):\n%s", i, diff)
			}
			if doc.Cues[i].Number != shifted.Cues[i].Number {
				t.Fatalf("cue %d number changed: %q -> %q", i, doc.Cues[i].Number, shifted.Cues[i].Number)
			}
		}

		// Additivity holds while nothing touches the zero floor.
		if doc.Stats().FirstStart+time.Duration(o2*1000)*time.Millisecond <= 0 {
			continue
		}
		twice, err := Shift(once, o2)
		if err != nil {
			t.Fatalf("second Shift returned error: %v", err)
		}
		combined, err := Shift(input, o1+o2)
		if err != nil {
			t.Fatalf("combined Shift returned error: %v", err)
		}
		if twice != combined {
			t.Fatalf("shift(shift(D, %v), %v) != shift(D, %v)\n%s\nvs\n%s", o1, o2, o1+o2, twice, combined)
		}
	}
}

func TestAdditivityBreaksAtZeroFloor(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:04,000\nx\n\n"
	twice, err := Shift(input, -3)
	if err != nil {
		t.Fatalf("Shift returned error: %v", err)
	}
	twice, err = Shift(twice, 3)
	if err != nil {
		t.Fatalf("Shift returned error: %v", err)
	}
	if want := "1\n00:00:03,000 --> 00:00:04,000\nx\n\n"; twice != want {
		t.Fatalf("unexpected clamped round trip: %q", twice)
	}
	identity, _ := Shift(input, 0)
	if twice == identity {
		t.Fatal("expected clamping to break additivity")
	}
}

func TestAlignFirst(t *testing.T) {
	input := "1\n00:00:10,000 --> 00:00:12,000\nA\n\n2\n00:00:15,000 --> 00:00:16,500\nB\n\n"
	got, err := AlignFirst(input, 83456*time.Millisecond)
	if err != nil {
		t.Fatalf("AlignFirst returned error: %v", err)
	}
	want := "1\n00:01:23,456 --> 00:01:25,456\nA\n\n2\n00:01:28,456 --> 00:01:29,956\nB\n\n"
	if got != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", got, want)
	}

	got, err = AlignFirst(input, 0)
	if err != nil {
		t.Fatalf("AlignFirst returned error: %v", err)
	}
	if !strings.HasPrefix(got, "1\n00:00:00,000 --> 00:00:02,000\n") {
		t.Fatalf("unexpected output: %q", got)
	}

	if _, err := AlignFirst(input, -time.Second); !errors.Is(err, ErrInvalidOffset) {
		t.Fatalf("expected ErrInvalidOffset, got %v", err)
	}
}

func randomDocument(rng *rand.Rand) string {
	var b strings.Builder
	cues := 1 + rng.IntN(6)
	at := time.Duration(rng.IntN(120_000)) * time.Millisecond
	for i := 0; i < cues; i++ {
		length := time.Duration(500+rng.IntN(4000)) * time.Millisecond
		fmt.Fprintf(&b, "%d\n%s --> %s\n", i+1+rng.IntN(3), FormatTimestamp(at), FormatTimestamp(at+length))
		lines := 1 + rng.IntN(3)
		for j := 0; j < lines; j++ {
			fmt.Fprintf(&b, "line %d.%d\n", i, j)
		}
		b.WriteString("\n")
		at += length + time.Duration(rng.IntN(3000))*time.Millisecond
	}
	return b.String()
}
