// Package scoring combines normalized statistics into a composite score.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/okian/bestxi/internal/domain/model"
)

// Weight domain constants.
const (
	DefaultWeight = 1.0
	MinWeight     = 0.5
	MaxWeight     = 1.5

	neutralValue = 0.5
)

// ErrWeightOutOfRange is returned by weight validation at the boundary.
var ErrWeightOutOfRange = errors.New("weight out of range")

// Weights maps stat keys to weights. Absent keys weigh DefaultWeight.
type Weights map[string]float64

// GetOr returns the weight for key, or def when no override exists.
func (w Weights) GetOr(key string, def float64) float64 {
	if v, ok := w[key]; ok {
		return v
	}
	return def
}

// Get returns the weight for key with the neutral default.
func (w Weights) Get(key string) float64 {
	return w.GetOr(key, DefaultWeight)
}

// FromOverrides builds Weights from stored overrides.
func FromOverrides(overrides []model.WeightOverride) Weights {
	w := make(Weights, len(overrides))
	for _, o := range overrides {
		w[o.StatKey] = o.Weight
	}
	return w
}

// Score returns the weighted mean of row over keys.
//
// Only keys contribute to numerator and denominator; a key missing from row
// contributes the neutral 0.5. Keys are summed in sorted order so identical
// inputs always produce bit-identical output. Weights are assumed valid.
func Score(row map[string]float64, weights Weights, keys []string) float64 {
	ordered := slices.Clone(keys)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	var sum, weightSum float64
	for _, k := range ordered {
		v, ok := row[k]
		if !ok {
			v = neutralValue
		}
		w := weights.Get(k)
		sum += v * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}

// ScoreAll scores every row of a normalized matrix.
func ScoreAll(normalized model.Matrix, weights Weights, keys []string) map[string]float64 {
	out := make(map[string]float64, len(normalized))
	for playerID, row := range normalized {
		out[playerID] = Score(row, weights, keys)
	}
	return out
}

// ValidateWeight checks w against the default [0.5, 1.5] domain.
func ValidateWeight(w float64) error {
	return ValidateWeightRange(w, MinWeight, MaxWeight)
}

// ValidateWeightRange checks that w lies within [lo, hi].
func ValidateWeightRange(w, lo, hi float64) error {
	if math.IsNaN(w) || w < lo || w > hi {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrWeightOutOfRange, w, lo, hi)
	}
	return nil
}
