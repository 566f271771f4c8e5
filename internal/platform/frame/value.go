package frame

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// Normalize maps a Go value onto the frame cell types. Nested values (maps,
// slices) are stored as their JSON text.
func Normalize(v any) any {
	switch typed := v.(type) {
	case nil:
		return nil
	case int64, string, bool:
		return typed
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return nil
		}
		return typed
	case int:
		return int64(typed)
	case int32:
		return int64(typed)
	case int16:
		return int64(typed)
	case int8:
		return int64(typed)
	case uint:
		return int64(typed)
	case uint32:
		return int64(typed)
	case uint16:
		return int64(typed)
	case uint8:
		return int64(typed)
	case uint64:
		if typed > math.MaxInt64 {
			return float64(typed)
		}
		return int64(typed)
	case float32:
		return Normalize(float64(typed))
	case *int:
		if typed == nil {
			return nil
		}
		return int64(*typed)
	case *float64:
		if typed == nil {
			return nil
		}
		return Normalize(*typed)
	case *bool:
		if typed == nil {
			return nil
		}
		return *typed
	case *string:
		if typed == nil {
			return nil
		}
		return *typed
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return n
		}
		if f, err := typed.Float64(); err == nil {
			return Normalize(f)
		}
		return typed.String()
	default:
		raw, err := sonic.ConfigStd.Marshal(typed)
		if err != nil {
			return nil
		}
		return string(raw)
	}
}

// ToInt coerces a cell to an integer. Nulls, blanks, non-integral numbers and
// unparsable text report false.
func ToInt(v any) (int64, bool) {
	switch typed := v.(type) {
	case int64:
		return typed, true
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) || typed != math.Trunc(typed) {
			return 0, false
		}
		if typed > math.MaxInt64 || typed < math.MinInt64 {
			return 0, false
		}
		return int64(typed), true
	case string:
		text := strings.TrimSpace(typed)
		if text == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		return ToInt(f)
	default:
		return 0, false
	}
}

// ToFloat coerces a cell to a float.
func ToFloat(v any) (float64, bool) {
	switch typed := v.(type) {
	case int64:
		return float64(typed), true
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return 0, false
		}
		return typed, true
	case string:
		text := strings.TrimSpace(typed)
		if text == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToBool accepts bools, 0/1 integers and strconv.ParseBool text ("True",
// "false", "1").
func ToBool(v any) (bool, bool) {
	switch typed := v.(type) {
	case bool:
		return typed, true
	case int64:
		switch typed {
		case 0:
			return false, true
		case 1:
			return true, true
		}
		return false, false
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}

func ToString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	return formatCell(v), true
}

// IntOrNull is ToInt as a cell mapper: failures become null.
func IntOrNull(v any) any {
	if n, ok := ToInt(v); ok {
		return n
	}
	return nil
}

// FloatOrNull is ToFloat as a cell mapper: failures become null.
func FloatOrNull(v any) any {
	if f, ok := ToFloat(v); ok {
		return f
	}
	return nil
}

func formatCell(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	case string:
		return typed
	default:
		s, _ := Normalize(typed).(string)
		return s
	}
}
