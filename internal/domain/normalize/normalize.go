// Package normalize rescales raw player statistics into comparable [0,1] scores.
//
// Scores are relative to the comparison set passed in: the same player and
// statistic normalize differently against different candidate pools.
package normalize

import (
	"math"
	"slices"

	"github.com/montanaflynn/stats"

	"github.com/okian/bestxi/internal/domain/model"
)

// Neutral is assigned when a player has no value for a statistic and when a
// statistic has no spread across the comparison set.
const Neutral = 0.5

// Normalize converts raw values to [0,1] per stat key, independently per key.
// The result has an entry for every player in raw and every key in keys,
// regardless of missing data. NaN values count as missing.
func Normalize(raw model.Matrix, keys []string) model.Matrix {
	out := make(model.Matrix, len(raw))
	for playerID := range raw {
		out[playerID] = make(map[string]float64, len(keys))
	}

	for _, key := range keys {
		lo, hi, ok := bounds(raw, key)
		for playerID, row := range raw {
			v, present := row[key]
			switch {
			case !present || math.IsNaN(v) || !ok:
				out[playerID][key] = Neutral
			case hi == lo:
				out[playerID][key] = Neutral
			default:
				out[playerID][key] = clamp01((v - lo) / (hi - lo))
			}
		}
	}
	return out
}

// bounds returns min and max of key across players that recorded it.
// ok is false when nobody has a value.
func bounds(raw model.Matrix, key string) (lo, hi float64, ok bool) {
	values := make([]float64, 0, len(raw))
	for _, row := range raw {
		if v, present := row[key]; present && !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0, 0, false
	}
	// Errors only occur on empty input, excluded above.
	lo, _ = stats.Min(values)
	hi, _ = stats.Max(values)
	return lo, hi, true
}

// Infinite inputs can push the ratio outside [0,1] or to NaN.
func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return Neutral
	}
	return math.Max(0, math.Min(1, x))
}

// Keys returns the union of stat keys with at least one recorded value in raw.
func Keys(raw model.Matrix) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, row := range raw {
		for k, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
