// Package ctxfield resolves dotted-path fields out of an evaluation
// context (map[string]any), used by both the AI-Ethics RuleEngine and the
// Compliance PolicyEnforcer (spec §4.3) to read arbitrary condition
// field names, including nested ones ("request.origin_country"), out of
// a context dictionary. Grounded on the teacher's use of tidwall/gjson for
// path-addressed field extraction from JSON-shaped payloads
// (services/datafeeds/datafeeds.go, services/requests/marble/dispatcher.go).
package ctxfield

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Get resolves path against ctx and reports whether the path existed.
// Scalars are returned as float64/string/bool/nil the way gjson's Value()
// does; callers type-assert as needed.
func Get(ctx map[string]any, path string) (any, bool) {
	if ctx == nil {
		return nil, false
	}
	// Fast path: flat key present verbatim (the common case, and the one
	// spec's literal examples use).
	if v, ok := ctx[path]; ok {
		return v, true
	}
	raw, err := json.Marshal(ctx)
	if err != nil {
		return nil, false
	}
	result := gjson.GetBytes(raw, path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// GetFloat resolves path as a float64, reporting false if absent or not
// numeric.
func GetFloat(ctx map[string]any, path string) (float64, bool) {
	v, ok := Get(ctx, path)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// GetBool resolves path as a bool.
func GetBool(ctx map[string]any, path string) (bool, bool) {
	v, ok := Get(ctx, path)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
