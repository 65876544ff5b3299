package utils

import (
	"encoding/json"
	"strconv"
)

// Int64Value converts a loosely typed JSON number (as decoded into map[string]any) to int64.
// ok is false when the value is absent or not numeric.
func Int64Value(input any) (n int64, ok bool) {
	switch v := input.(type) {
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}
