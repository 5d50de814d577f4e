package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// ParseAmount coerces a stored numeric-like value to a float64 amount.
// Malformed or absent values degrade to 0 ("no goal tracking") rather
// than failing: campaign status must always resolve even from legacy
// or partially-populated records.
func ParseAmount(v any) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}
