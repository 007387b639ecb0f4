package store

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Record is an untyped entry row as exchanged with the Backend.
type Record map[string]any

// String returns the string at key.
func (r Record) String(key string) (string, bool) {
	s, ok := r[key].(string)
	return s, ok
}

// OptString returns the string at key, or nil when absent, null or blank.
func (r Record) OptString(key string) *string {
	s, ok := r[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Int returns the integer at key. It accepts Go integer types, whole
// float64 values (as decoded from JSON) and json.Number.
func (r Record) Int(key string) (int64, bool) {
	switch v := r[key].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

// Bool returns the boolean at key. SQLite-style 0/1 integers are accepted.
func (r Record) Bool(key string) (bool, bool) {
	if b, ok := r[key].(bool); ok {
		return b, true
	}
	if n, ok := r.Int(key); ok && (n == 0 || n == 1) {
		return n == 1, true
	}
	return false, false
}

// Strings returns the string list at key, dropping blank and non-string items.
func (r Record) Strings(key string) []string {
	var raw []any
	switch v := r[key].(type) {
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		raw = v
	default:
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// Time returns the Unix timestamp at key. RFC 3339 strings are accepted.
func (r Record) Time(key string) (int64, bool) {
	if n, ok := r.Int(key); ok {
		return n, true
	}
	if s, ok := r[key].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}
