package rips

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Optional is the "no value" sentinel for optional RIPS fields. An absent
// Optional is distinct from a present empty string: it serializes as JSON
// null and renders as an empty CSV cell.
type Optional struct {
	Value string
	Valid bool
}

// OptionalOf trims s and returns an absent Optional when nothing is left.
func OptionalOf(s string) Optional {
	s = strings.TrimSpace(s)
	if s == "" {
		return Optional{}
	}
	return Optional{Value: s, Valid: true}
}

// Some returns a present Optional holding s verbatim.
func Some(s string) Optional {
	return Optional{Value: s, Valid: true}
}

// String returns the value, or "" when absent.
func (o Optional) String() string {
	if !o.Valid {
		return ""
	}
	return o.Value
}

func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = Optional{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = Optional{Value: s, Valid: true}
		return nil
	}
	// Hand-edited documents sometimes carry numbers in code fields.
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("optional field: expected string or null, got %s", data)
	}
	*o = Optional{Value: n.String(), Valid: true}
	return nil
}
