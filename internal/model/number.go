package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a float64 that decodes from JSON numbers or numeric strings.
// Null, non-numeric or non-finite input decodes to 0 instead of failing.
type Number float64

// Float64 returns the value as a float64.
func (n Number) Float64() float64 {
	return float64(n)
}

// UnmarshalJSON decodes permissively; it never returns an error.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	text := strings.TrimSpace(string(data))
	if text == "" || text == "null" {
		return nil
	}
	if text[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}
	val, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return nil
	}
	*n = Number(val)
	return nil
}

// Text is a string that decodes from JSON strings or scalar literals.
// Null, objects and arrays decode to "".
type Text string

// String returns the underlying string.
func (t Text) String() string {
	return string(t)
}

// UnmarshalJSON decodes permissively; it never returns an error.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = ""
	text := strings.TrimSpace(string(data))
	if text == "" || text == "null" {
		return nil
	}
	switch text[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = Text(s)
		}
	case '{', '[':
	default:
		*t = Text(text)
	}
	return nil
}
