package srt

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	srtTimePattern      = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}[,.]\d{3}$`)
	minSecPattern       = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	minSecFracPattern   = regexp.MustCompile(`^(\d{1,2}):(\d{2}\.\d+)$`)
	signedSecondPattern = regexp.MustCompile(`^[+-]?\d+\.?\d*$`)
)

// ParseTimeString accepts the time notations users type into sync fields:
// "HH:MM:SS,mmm", "HH:MM:SS.mmm", "MM:SS", "MM:SS.fff" and signed decimal
// seconds such as "-2.5".
func ParseTimeString(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return 0, fmt.Errorf("empty time value")
	case srtTimePattern.MatchString(value):
		return ParseTimestamp(value)
	case minSecPattern.MatchString(value):
		m := minSecPattern.FindStringSubmatch(value)
		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
	case minSecFracPattern.MatchString(value):
		m := minSecFracPattern.FindStringSubmatch(value)
		minutes, _ := strconv.Atoi(m[1])
		seconds, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seconds in %q: %w", value, err)
		}
		return time.Duration(minutes)*time.Minute + time.Duration(math.Round(seconds*1000))*time.Millisecond, nil
	case signedSecondPattern.MatchString(value):
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seconds %q: %w", value, err)
		}
		return OffsetFromSeconds(seconds)
	default:
		return 0, fmt.Errorf("unrecognized time format %q", value)
	}
}
