package lineup

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/okian/bestxi/internal/domain/model"
)

// Validation failure reasons, checked in this order.
const (
	ReasonGoalkeeper = "Exactly 1 goalkeeper is required"
	ReasonOutfield   = "Outfield players must sum to 10"
	ReasonNegative   = "Counts cannot be negative"

	legalOutfield = 10
	legalTotal    = 11
)

// MaxCount caps any single position count accepted from shorthand or a
// request body.
const MaxCount = 99

// ErrInvalidFormation is returned when a shorthand string cannot be parsed.
var ErrInvalidFormation = errors.New("invalid formation")

// ValidationResult reports whether a formation is a legal 11-a-side shape.
type ValidationResult struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Validate checks f for a legal competitive shape. The first failing rule wins.
// Select does not call Validate; callers that need a legal XI invoke it first.
func Validate(f model.Formation) ValidationResult {
	switch {
	case f.GK != 1:
		return ValidationResult{Reason: ReasonGoalkeeper}
	case !outfieldIs(f, legalOutfield):
		return ValidationResult{Reason: ReasonOutfield}
	case f.DEF < 0 || f.MID < 0 || f.WNG < 0 || f.ST < 0:
		return ValidationResult{Reason: ReasonNegative}
	}
	return ValidationResult{OK: true}
}

// outfieldIs reports whether the outfield counts sum to n without wrapping.
func outfieldIs(f model.Formation, n int64) bool {
	sum := new(big.Int)
	for _, c := range []int{f.DEF, f.MID, f.WNG, f.ST} {
		sum.Add(sum, big.NewInt(int64(c)))
	}
	return sum.IsInt64() && sum.Int64() == n
}

// CheckBounds rejects formations with a count outside [-MaxCount, MaxCount].
// Negative counts stay within bounds so Validate can report them.
func CheckBounds(f model.Formation) error {
	for _, p := range model.Positions {
		if c := f.Count(p); c > MaxCount || c < -MaxCount {
			return fmt.Errorf("%w: %s count %d out of range", ErrInvalidFormation, p, c)
		}
	}
	return nil
}

// ParseFormation parses dash-separated shorthand.
//
//	"4-3-3"     -> def-mid-st, one goalkeeper
//	"1-4-3-3"   -> gk-def-mid-st when the first part is 1 and the parts sum to 11
//	"4-2-3-1"   -> def-mid-wng-st otherwise, one goalkeeper
//	"1-4-2-3-1" -> gk-def-mid-wng-st
func ParseFormation(s string) (model.Formation, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	nums := make([]int, len(parts))
	sum := 0
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return model.Formation{}, fmt.Errorf("%w: %q: %w", ErrInvalidFormation, s, err)
		}
		if n < 0 {
			return model.Formation{}, fmt.Errorf("%w: %q: negative count", ErrInvalidFormation, s)
		}
		if n > MaxCount {
			return model.Formation{}, fmt.Errorf("%w: %q: count above %d", ErrInvalidFormation, s, MaxCount)
		}
		nums[i] = n
		sum += n
	}

	switch len(nums) {
	case 3:
		return model.Formation{GK: 1, DEF: nums[0], MID: nums[1], ST: nums[2]}, nil
	case 4:
		if nums[0] == 1 && sum == legalTotal {
			return model.Formation{GK: nums[0], DEF: nums[1], MID: nums[2], ST: nums[3]}, nil
		}
		return model.Formation{GK: 1, DEF: nums[0], MID: nums[1], WNG: nums[2], ST: nums[3]}, nil
	case 5:
		return model.Formation{GK: nums[0], DEF: nums[1], MID: nums[2], WNG: nums[3], ST: nums[4]}, nil
	}
	return model.Formation{}, fmt.Errorf("%w: %q: want 3 to 5 parts, got %d", ErrInvalidFormation, s, len(nums))
}

// Shorthand renders f so that ParseFormation(Shorthand(f)) == f for
// counts in [0, MaxCount].
func Shorthand(f model.Formation) string {
	if f.GK == 1 && f.WNG == 0 && f.DEF >= 0 && f.MID >= 0 && f.ST >= 0 {
		return fmt.Sprintf("%d-%d-%d", f.DEF, f.MID, f.ST)
	}
	return fmt.Sprintf("%d-%d-%d-%d-%d", f.GK, f.DEF, f.MID, f.WNG, f.ST)
}
