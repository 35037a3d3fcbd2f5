package docstore

import (
	"math"
	"strings"
	"time"
)

// Accessors for untyped document payloads. Remote documents are treated as
// partially trusted input: wrong types and malformed values coerce to the
// zero value (or nil for optional numbers) instead of failing the read.

// OptionalString returns the trimmed string under key, or "" when the field
// is missing, not a string, or blank.
func OptionalString(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	if value, ok := data[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// OptionalEmail is OptionalString lower-cased.
func OptionalEmail(data map[string]interface{}, key string) string {
	return strings.ToLower(OptionalString(data, key))
}

// OptionalNumber returns the numeric field as a pointer, or nil when the
// field is missing, non-numeric, or not finite.
func OptionalNumber(data map[string]interface{}, key string) *float64 {
	if data == nil {
		return nil
	}
	value, ok := toFloat(data[key])
	if !ok {
		return nil
	}
	return &value
}

// Number returns the numeric field, or 0 when absent or malformed.
func Number(data map[string]interface{}, key string) float64 {
	if v := OptionalNumber(data, key); v != nil {
		return *v
	}
	return 0
}

// Bool returns the boolean field, or false when absent or malformed.
func Bool(data map[string]interface{}, key string) bool {
	if data == nil {
		return false
	}
	value, _ := data[key].(bool)
	return value
}

// Time decodes a timestamp field. Accepts time.Time values (memory and
// Firestore backends), RFC 3339 strings (the Postgres JSONB backend), and
// epoch-millisecond numbers (legacy client records). Returns the zero time
// when the field is absent or unreadable.
func Time(data map[string]interface{}, key string) time.Time {
	if data == nil {
		return time.Time{}
	}
	switch value := data[key].(type) {
	case time.Time:
		return value
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
			return parsed
		}
	case map[string]interface{}:
		if millis, ok := toFloat(value["_millis"]); ok {
			return time.UnixMilli(int64(millis)).UTC()
		}
	default:
		if millis, ok := toFloat(value); ok {
			return time.UnixMilli(int64(millis)).UTC()
		}
	}
	return time.Time{}
}

// Map returns the nested object under key, or nil.
func Map(data map[string]interface{}, key string) map[string]interface{} {
	if data == nil {
		return nil
	}
	value, _ := data[key].(map[string]interface{})
	return value
}

func toFloat(value interface{}) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
