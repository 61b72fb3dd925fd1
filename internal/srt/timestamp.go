package srt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp converts an SRT timestamp ("HH:MM:SS,mmm") into a duration.
// A period is accepted in place of the comma.
func ParseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 || len(timeParts[1]) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 || len(hms[1]) != 2 || len(hms[2]) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := parseDigits(hms[0])
	minutes, errM := parseDigits(hms[1])
	seconds, errS := parseDigits(hms[2])
	millis, errMS := parseDigits(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("timestamp %q out of range", value)
	}
	rest := time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
	// time.Duration tops out a little past 2562047 hours.
	if int64(hours) > (math.MaxInt64-int64(rest))/int64(time.Hour) {
		return 0, fmt.Errorf("timestamp %q out of range", value)
	}
	return time.Duration(hours)*time.Hour + rest, nil
}

// FormatTimestamp renders d as "HH:MM:SS,mmm". Negative durations render as
// zero and sub-millisecond precision is truncated.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := int64(d / time.Millisecond)
	hours := ms / 3_600_000
	ms %= 3_600_000
	minutes := ms / 60_000
	ms %= 60_000
	seconds := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, ms)
}

// parseDigits accepts only ASCII digits; strconv.Atoi would also take a sign.
func parseDigits(value string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("empty field")
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.Atoi(value)
}

func parseTimingLine(line string) (start, end time.Duration, settings string, err error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, "", fmt.Errorf("missing --> separator")
	}
	start, err = ParseTimestamp(parts[0])
	if err != nil {
		return 0, 0, "", fmt.Errorf("start: %w", err)
	}
	// Anything after the end timestamp (e.g. "X1:100 X2:200 Y1:10 Y2:50") is
	// carried through untouched.
	fields := strings.Fields(parts[1])
	if len(fields) == 0 {
		return 0, 0, "", fmt.Errorf("missing end timestamp")
	}
	end, err = ParseTimestamp(fields[0])
	if err != nil {
		return 0, 0, "", fmt.Errorf("end: %w", err)
	}
	return start, end, strings.Join(fields[1:], " "), nil
}
