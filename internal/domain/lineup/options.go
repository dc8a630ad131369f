package lineup

import "github.com/okian/bestxi/internal/domain/model"

// Observer receives selection events. Implementations must not block.
type Observer interface {
	// Substituted is called for each slot filled from another position.
	Substituted(sub model.Substitution)
	// Coerced is called when a candidate's position is unknown and it is
	// treated as MID.
	Coerced(candidateID string, original model.Position)
}

// Option applies a configuration option to a selection.
type Option func(*config)

// WithObserver registers an observer for fallback and coercion events.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observer = o
		}
	}
}

type config struct {
	observer Observer
}

func newConfig(opts ...Option) config {
	c := config{observer: nopObserver{}}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

type nopObserver struct{}

func (nopObserver) Substituted(model.Substitution) {}
func (nopObserver) Coerced(string, model.Position) {}
