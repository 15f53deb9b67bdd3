package project

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// subKeys are the conventional keys probed when a lookup lands on an object
// instead of a scalar.
var subKeys = []string{"id", "voice_id", "value", "name"}

func asMap(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)
	return m, ok && m != nil
}

// scalarString coerces a payload value to a non-empty string. Arrays resolve
// to their first resolvable element, objects to the first conventional
// sub-key, numbers to their decimal form. Booleans and nil never resolve.
func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		return trimmed, trimmed != ""
	case json.Number:
		return v.String(), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", false
		}
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case []any:
		for _, element := range v {
			if s, ok := scalarString(element); ok {
				return s, true
			}
		}
		return "", false
	case map[string]any:
		for _, key := range subKeys {
			if nested, ok := v[key]; ok {
				// One level only: a sub-key holding another object does not
				// recurse into that object's own sub-keys.
				if s, ok := scalarStringShallow(nested); ok {
					return s, true
				}
			}
		}
		return "", false
	default:
		return "", false
	}
}

func scalarStringShallow(value any) (string, bool) {
	if _, isMap := value.(map[string]any); isMap {
		return "", false
	}
	return scalarString(value)
}

// scalarNumber coerces a payload value to a finite float. Strings parse if
// they hold a plain number.
func scalarNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// scalarBool resolves explicit booleans first, then the literal strings
// "true"/"false". Anything else does not resolve.
func scalarBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
