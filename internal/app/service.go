// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the offline CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/okian/bestxi/internal/adapters/repository"
	"github.com/okian/bestxi/internal/domain/model"
	"github.com/okian/bestxi/internal/domain/scoring"
	"github.com/okian/bestxi/pkg/logger"
	"github.com/okian/bestxi/pkg/metrics"
)

// DefaultTiebreakStat is the raw statistic used to break composite ties.
const DefaultTiebreakStat = "sprint_speed"

const defaultMaxRankingsLimit = 100

// Service orchestrates the store and the pure scoring and selection core.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	ownsStore bool
	scorer    *scoring.Scorer

	// Configuration
	weightMin        float64
	weightMax        float64
	tiebreakStat     string
	defaultFormation model.Formation
	requireLegal     bool
	maxRankingsLimit int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		weightMin:        scoring.MinWeight,
		weightMax:        scoring.MaxWeight,
		tiebreakStat:     DefaultTiebreakStat,
		defaultFormation: model.Formation{GK: 1, DEF: 4, MID: 3, ST: 3},
		maxRankingsLimit: defaultMaxRankingsLimit,
	}

	for _, opt := range opts {
		opt(s)
	}
	s.scorer = scoring.New(scoring.WithWeightBounds(s.weightMin, s.weightMax))

	return s
}

// Start initializes the service components. Without an injected store an
// in-memory store bound to ctx is created.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting lineup service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
		s.ownsStore = true
		s.logger.Info(ctx, "using in-memory store")
	}

	lo, hi := s.scorer.Bounds()
	s.started = true
	s.logger.Info(ctx, "lineup service started",
		logger.String("tiebreak_stat", s.tiebreakStat),
		logger.Float64("weight_min", lo),
		logger.Float64("weight_max", hi),
		logger.Bool("require_legal", s.requireLegal),
	)

	return nil
}

// Stop shuts down the service and closes the store it created.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping lineup service...")

	if s.ownsStore {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "lineup service stopped")
}

// ready returns the store once the service has started.
func (s *Service) ready() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lo, hi := s.scorer.Bounds()
	stats := map[string]interface{}{
		"started":          s.started,
		"tiebreakStat":     s.tiebreakStat,
		"defaultFormation": s.defaultFormation,
		"requireLegal":     s.requireLegal,
		"weightMin":        lo,
		"weightMax":        hi,
	}

	if s.started {
		c := s.store.Count(context.Background())
		stats["teams"] = c.Teams
		stats["players"] = c.Players
		stats["statValues"] = c.StatValues
		stats["definitions"] = c.Definitions
		stats["weights"] = c.Weights

		metrics.UpdateTotalTeams(c.Teams)
		metrics.UpdateTotalPlayers(c.Players)
		metrics.UpdateTotalStatValues(c.StatValues)
	}

	return stats
}

// DefaultFormation returns the formation used when a request omits one.
func (s *Service) DefaultFormation() model.Formation {
	return s.defaultFormation
}

// RegisterPlayer creates or replaces a roster entry. Positions are stored
// upper-cased; unknown positions are kept and treated as MID at selection.
func (s *Service) RegisterPlayer(ctx context.Context, p model.Player) (model.Player, error) {
	store, err := s.ready()
	if err != nil {
		return model.Player{}, err
	}
	p.Position = model.ParsePosition(string(p.Position))
	if p.DisplayName == "" {
		p.DisplayName = p.ID
	}
	if !p.Position.Valid() {
		s.logger.Warn(ctx, "registering player with unknown position",
			logger.String("team_id", p.TeamID),
			logger.String("player_id", p.ID),
			logger.String("position", string(p.Position)),
		)
	}
	if err := store.UpsertPlayer(ctx, p); err != nil {
		return model.Player{}, fmt.Errorf("register player: %w", err)
	}
	return p, nil
}

// Players returns a team's roster ordered by player id.
func (s *Service) Players(ctx context.Context, teamID string) ([]model.Player, error) {
	store, err := s.ready()
	if err != nil {
		return nil, err
	}
	return store.Players(ctx, teamID)
}

// RecordStat stores a raw statistic for a rostered player. Values outside a
// definition's declared range are accepted and reported.
func (s *Service) RecordStat(ctx context.Context, v model.StatValue) error {
	store, err := s.ready()
	if err != nil {
		return err
	}
	if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
		return fmt.Errorf("%w: stat %s value must be finite", ErrInvalidInput, v.StatKey)
	}
	if strings.TrimSpace(v.StatKey) == "" {
		return fmt.Errorf("%w: stat key must not be empty", ErrInvalidInput)
	}
	if _, err := store.Player(ctx, v.ContextID, v.PlayerID); err != nil {
		return fmt.Errorf("record stat: %w", err)
	}

	outOfRange := false
	def, err := store.Definition(ctx, v.StatKey)
	switch {
	case err == nil:
		outOfRange = !def.InRange(v.Value)
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("record stat: %w", err)
	}
	if outOfRange {
		s.logger.Warn(ctx, "stat value outside declared range",
			logger.String("team_id", v.ContextID),
			logger.String("player_id", v.PlayerID),
			logger.String("stat", v.StatKey),
			logger.Float64("value", v.Value),
			logger.Float64("min", def.MinValue),
			logger.Float64("max", def.MaxValue),
		)
	}

	if err := store.PutStat(ctx, v); err != nil {
		return fmt.Errorf("record stat: %w", err)
	}
	metrics.RecordStatWrite(outOfRange)
	return nil
}

// PutDefinition creates or replaces a stat definition.
func (s *Service) PutDefinition(ctx context.Context, d model.StatDefinition) error {
	store, err := s.ready()
	if err != nil {
		return err
	}
	if err := store.PutDefinition(ctx, d); err != nil {
		return fmt.Errorf("put definition: %w", err)
	}
	return nil
}

// Definitions returns every stat definition ordered by key.
func (s *Service) Definitions(ctx context.Context) ([]model.StatDefinition, error) {
	store, err := s.ready()
	if err != nil {
		return nil, err
	}
	return store.Definitions(ctx)
}

// SetWeight stores a coach weight override after range validation.
func (s *Service) SetWeight(ctx context.Context, w model.WeightOverride) error {
	store, err := s.ready()
	if err != nil {
		return err
	}
	if err := s.scorer.Validate(w.Weight); err != nil {
		metrics.RecordWeightRejection()
		s.logger.Debug(ctx, "weight rejected",
			logger.String("team_id", w.ContextID),
			logger.String("stat", w.StatKey),
			logger.Float64("weight", w.Weight),
		)
		return err
	}
	if err := store.PutWeight(ctx, w); err != nil {
		return fmt.Errorf("set weight: %w", err)
	}
	metrics.RecordWeightWrite()
	return nil
}

// ResetWeight removes an override, restoring the neutral weight.
func (s *Service) ResetWeight(ctx context.Context, teamID, statKey string) error {
	store, err := s.ready()
	if err != nil {
		return err
	}
	if err := store.DeleteWeight(ctx, teamID, statKey); err != nil {
		return fmt.Errorf("reset weight: %w", err)
	}
	return nil
}

// Weights returns a team's overrides ordered by stat key.
func (s *Service) Weights(ctx context.Context, teamID string) ([]model.WeightOverride, error) {
	store, err := s.ready()
	if err != nil {
		return nil, err
	}
	return store.Weights(ctx, teamID)
}

func since(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
