package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// parseSyncTime reads an optional sync_time given as a JSON number or numeric
// string. It reports false when the value is absent, null, unparsable or not
// finite, in which case callers leave the subtitle untouched.
func parseSyncTime(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
	} else {
		text = string(raw)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
