package report

import (
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
)

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func asDocument(v any) (map[string]any, bool) {
	switch d := v.(type) {
	case bson.M:
		return d, true
	case map[string]any:
		return d, true
	case bson.D:
		return d.Map(), true
	default:
		return nil, false
	}
}

// countField reads an optional integer metric; absent means zero.
func countField(rec bson.M, key string) (int64, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return 0, nil
	}
	n, ok := asInt64(v)
	if !ok {
		return 0, fmt.Errorf("%w: field %q is %T, want integer", ErrMalformedResult, key, v)
	}
	return n, nil
}
