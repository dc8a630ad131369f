package service

import (
	"github.com/okian/bestxi/internal/adapters/repository"
	"github.com/okian/bestxi/internal/domain/lineup"
	"github.com/okian/bestxi/internal/domain/model"
	"github.com/okian/bestxi/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects a record store. The service does not close injected stores.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWeightBounds sets the accepted coach weight range.
func WithWeightBounds(lo, hi float64) Option {
	return func(s *Service) {
		s.weightMin, s.weightMax = lo, hi
	}
}

// WithTiebreakStat names the raw statistic used to break composite ties.
func WithTiebreakStat(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.tiebreakStat = key
		}
	}
}

// WithDefaultFormation sets the formation used when a request omits one.
// Illegal formations are ignored.
func WithDefaultFormation(f model.Formation) Option {
	return func(s *Service) {
		if lineup.Validate(f).OK {
			s.defaultFormation = f
		}
	}
}

// WithRequireLegal rejects every lineup request whose formation fails validation.
func WithRequireLegal(require bool) Option {
	return func(s *Service) {
		s.requireLegal = require
	}
}

// WithMaxRankingsLimit caps the number of ranking entries returned.
func WithMaxRankingsLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRankingsLimit = n
		}
	}
}
