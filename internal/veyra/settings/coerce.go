package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Coerce converts s.Value to the Go type its DataType names, falling back to
// the raw string when the stored value cannot be parsed as that type —
// §6: "invalid coercion falls back to the raw string."
func Coerce(s Setting) any {
	switch s.DataType {
	case TypeInt:
		if v, err := strconv.ParseInt(s.Value, 10, 64); err == nil {
			return v
		}
	case TypeFloat:
		if v, err := strconv.ParseFloat(s.Value, 64); err == nil {
			return v
		}
	case TypeBool:
		if v, err := strconv.ParseBool(s.Value); err == nil {
			return v
		}
	case TypeJSON:
		var v any
		if err := json.Unmarshal([]byte(s.Value), &v); err == nil {
			return v
		}
	}
	return s.Value
}

// Encode renders v back into the raw string form Put stores, matching the
// DataType it's tagged with. Used by callers building a Setting from a
// typed value instead of a pre-formatted string.
func Encode(dataType DataType, v any) (string, error) {
	if dataType == TypeJSON {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}
