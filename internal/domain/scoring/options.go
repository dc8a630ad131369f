package scoring

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeightBounds narrows the accepted weight range. Ranges that do not
// contain the neutral weight or reach outside [MinWeight, MaxWeight] are
// ignored.
func WithWeightBounds(lo, hi float64) Option {
	return func(s *Scorer) {
		if lo >= MinWeight && lo <= DefaultWeight && hi >= DefaultWeight && hi <= MaxWeight {
			s.minWeight = lo
			s.maxWeight = hi
		}
	}
}

// Scorer carries the configured weight bounds used by the boundary layer.
type Scorer struct {
	minWeight float64
	maxWeight float64
}

// New creates a Scorer with the default [0.5, 1.5] bounds.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		minWeight: MinWeight,
		maxWeight: MaxWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bounds returns the accepted weight range.
func (s *Scorer) Bounds() (lo, hi float64) {
	return s.minWeight, s.maxWeight
}

// Validate checks w against the configured bounds.
func (s *Scorer) Validate(w float64) error {
	return ValidateWeightRange(w, s.minWeight, s.maxWeight)
}

// Score delegates to the package-level Score.
func (s *Scorer) Score(row map[string]float64, weights Weights, keys []string) float64 {
	return Score(row, weights, keys)
}
