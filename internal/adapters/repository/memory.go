package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/bestxi/internal/domain/model"
	"github.com/okian/bestxi/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

type playerKey struct{ team, player string }

type statKey struct{ context, player, stat string }

type weightKey struct{ context, stat string }

// MemoryStore is a Store backed by maps guarded by a single RWMutex.
type MemoryStore struct {
	mu          sync.RWMutex
	players     map[playerKey]model.Player
	stats       map[statKey]model.StatValue
	definitions map[string]model.StatDefinition
	weights     map[weightKey]model.WeightOverride

	metricsUpdateInterval time.Duration
	stopChan              chan struct{}
	wg                    sync.WaitGroup
}

// NewMemoryStore creates a store and starts its metrics updater, which runs
// until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		players:               make(map[playerKey]model.Player),
		stats:                 make(map[statKey]model.StatValue),
		definitions:           make(map[string]model.StatDefinition),
		weights:               make(map[weightKey]model.WeightOverride),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops background work. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics(ctx)
			}
		}
	}()
}

func (s *MemoryStore) updateMetrics(ctx context.Context) {
	c := s.Count(ctx)
	metrics.UpdateTotalTeams(c.Teams)
	metrics.UpdateTotalPlayers(c.Players)
	metrics.UpdateTotalStatValues(c.StatValues)
}

func required(kind string, fields ...string) error {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: %s requires non-empty ids", ErrInvalid, kind)
		}
	}
	return nil
}

// UpsertPlayer implements Store.
func (s *MemoryStore) UpsertPlayer(_ context.Context, p model.Player) error {
	if err := required("player", p.TeamID, p.ID); err != nil {
		return err
	}
	start := time.Now()
	s.mu.Lock()
	s.players[playerKey{p.TeamID, p.ID}] = p
	s.mu.Unlock()
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

// Player implements Store.
func (s *MemoryStore) Player(_ context.Context, teamID, playerID string) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[playerKey{teamID, playerID}]
	if !ok {
		return model.Player{}, fmt.Errorf("player %s/%s: %w", teamID, playerID, ErrNotFound)
	}
	return p, nil
}

// Players implements Store.
func (s *MemoryStore) Players(_ context.Context, teamID string) ([]model.Player, error) {
	start := time.Now()
	s.mu.RLock()
	out := make([]model.Player, 0)
	for k, p := range s.players {
		if k.team == teamID {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b model.Player) int { return strings.Compare(a.ID, b.ID) })
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	return out, nil
}

// PutStat implements Store.
func (s *MemoryStore) PutStat(_ context.Context, v model.StatValue) error {
	if err := required("stat value", v.ContextID, v.PlayerID, v.StatKey); err != nil {
		return err
	}
	start := time.Now()
	s.mu.Lock()
	s.stats[statKey{v.ContextID, v.PlayerID, v.StatKey}] = v
	s.mu.Unlock()
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

// Stats implements Store.
func (s *MemoryStore) Stats(_ context.Context, contextID string, playerIDs []string) ([]model.StatValue, error) {
	start := time.Now()
	var filter map[string]struct{}
	if playerIDs != nil {
		filter = make(map[string]struct{}, len(playerIDs))
		for _, id := range playerIDs {
			filter[id] = struct{}{}
		}
	}

	s.mu.RLock()
	out := make([]model.StatValue, 0)
	for k, v := range s.stats {
		if k.context != contextID {
			continue
		}
		if filter != nil {
			if _, ok := filter[k.player]; !ok {
				continue
			}
		}
		out = append(out, v)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.StatValue) int {
		if c := strings.Compare(a.PlayerID, b.PlayerID); c != 0 {
			return c
		}
		return strings.Compare(a.StatKey, b.StatKey)
	})
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	return out, nil
}

// PutDefinition implements Store.
func (s *MemoryStore) PutDefinition(_ context.Context, d model.StatDefinition) error {
	if err := required("stat definition", d.Key); err != nil {
		return err
	}
	if d.MaxValue < d.MinValue {
		return fmt.Errorf("%w: stat definition %s has max < min", ErrInvalid, d.Key)
	}
	s.mu.Lock()
	s.definitions[d.Key] = d
	s.mu.Unlock()
	return nil
}

// Definition implements Store.
func (s *MemoryStore) Definition(_ context.Context, key string) (model.StatDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.definitions[key]
	if !ok {
		return model.StatDefinition{}, fmt.Errorf("stat definition %s: %w", key, ErrNotFound)
	}
	return d, nil
}

// Definitions implements Store.
func (s *MemoryStore) Definitions(_ context.Context) ([]model.StatDefinition, error) {
	s.mu.RLock()
	out := make([]model.StatDefinition, 0, len(s.definitions))
	for _, d := range s.definitions {
		out = append(out, d)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b model.StatDefinition) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

// PutWeight implements Store.
func (s *MemoryStore) PutWeight(_ context.Context, w model.WeightOverride) error {
	if err := required("weight override", w.ContextID, w.StatKey); err != nil {
		return err
	}
	s.mu.Lock()
	s.weights[weightKey{w.ContextID, w.StatKey}] = w
	s.mu.Unlock()
	return nil
}

// DeleteWeight implements Store.
func (s *MemoryStore) DeleteWeight(_ context.Context, contextID, statKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := weightKey{contextID, statKey}
	if _, ok := s.weights[k]; !ok {
		return fmt.Errorf("weight %s/%s: %w", contextID, statKey, ErrNotFound)
	}
	delete(s.weights, k)
	return nil
}

// Weights implements Store.
func (s *MemoryStore) Weights(_ context.Context, contextID string) ([]model.WeightOverride, error) {
	s.mu.RLock()
	out := make([]model.WeightOverride, 0)
	for k, w := range s.weights {
		if k.context == contextID {
			out = append(out, w)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b model.WeightOverride) int { return strings.Compare(a.StatKey, b.StatKey) })
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	teams := make(map[string]struct{})
	for k := range s.players {
		teams[k.team] = struct{}{}
	}
	return Counts{
		Teams:       len(teams),
		Players:     len(s.players),
		StatValues:  len(s.stats),
		Definitions: len(s.definitions),
		Weights:     len(s.weights),
	}
}
