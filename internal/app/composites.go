package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/okian/bestxi/internal/adapters/repository"
	"github.com/okian/bestxi/internal/domain/model"
	"github.com/okian/bestxi/internal/domain/normalize"
	"github.com/okian/bestxi/internal/domain/scoring"
	"github.com/okian/bestxi/internal/domain/types"
	"github.com/okian/bestxi/pkg/metrics"
)

// evaluation is one pass of normalize and score over a comparison set.
type evaluation struct {
	players    []model.Player
	raw        model.Matrix
	normalized model.Matrix
	keys       []string
	weights    scoring.Weights
	composites map[string]float64
}

// evaluate loads the comparison set for teamID and scores it. A nil
// playerIDs uses the whole roster; otherwise every id must be rostered.
func (s *Service) evaluate(ctx context.Context, store repository.Store, teamID string, playerIDs []string) (*evaluation, error) {
	roster, err := store.Players(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTeam, teamID)
	}

	players, err := filterRoster(roster, playerIDs)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(players))
	raw := make(model.Matrix, len(players))
	for i, p := range players {
		ids[i] = p.ID
		raw[p.ID] = map[string]float64{}
	}
	values, err := store.Stats(ctx, teamID, ids)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	for _, v := range values {
		raw.Set(v.PlayerID, v.StatKey, v.Value)
	}

	overrides, err := store.Weights(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}

	keys := normalize.Keys(raw)
	normalized := normalize.Normalize(raw, keys)
	weights := scoring.FromOverrides(overrides)
	composites := scoring.ScoreAll(normalized, weights, keys)
	metrics.RecordCompositesComputed(len(composites))

	return &evaluation{
		players:    players,
		raw:        raw,
		normalized: normalized,
		keys:       keys,
		weights:    weights,
		composites: composites,
	}, nil
}

func filterRoster(roster []model.Player, playerIDs []string) ([]model.Player, error) {
	if playerIDs == nil {
		return roster, nil
	}
	byID := make(map[string]model.Player, len(roster))
	for _, p := range roster {
		byID[p.ID] = p
	}
	out := make([]model.Player, 0, len(playerIDs))
	seen := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("player %s: %w", id, repository.ErrNotFound)
		}
		out = append(out, p)
	}
	return out, nil
}

// Composites returns the normalized statistics and composite of every
// player in the comparison set, ordered by player id.
func (s *Service) Composites(ctx context.Context, teamID string, playerIDs []string) (types.Composites, error) {
	store, err := s.ready()
	if err != nil {
		return types.Composites{}, err
	}
	ev, err := s.evaluate(ctx, store, teamID, playerIDs)
	if err != nil {
		return types.Composites{}, err
	}

	weights := make(map[string]float64, len(ev.keys))
	for _, k := range ev.keys {
		weights[k] = ev.weights.Get(k)
	}
	out := types.Composites{
		TeamID:  teamID,
		Keys:    ev.keys,
		Weights: weights,
		Players: make([]types.PlayerScore, 0, len(ev.players)),
	}
	for _, p := range ev.players {
		out.Players = append(out.Players, types.PlayerScore{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			Position:    string(p.Position),
			Normalized:  ev.normalized[p.ID],
			Composite:   ev.composites[p.ID],
		})
	}
	if out.Keys == nil {
		out.Keys = []string{}
	}
	return out, nil
}

// Rankings returns up to limit players ordered by composite desc, display
// name asc, id asc. The summary covers the whole roster. Limits above the
// configured maximum are clamped.
func (s *Service) Rankings(ctx context.Context, teamID string, limit int) (types.Ranking, error) {
	if limit <= 0 {
		return types.Ranking{}, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidInput, limit)
	}
	limit = min(limit, s.maxRankingsLimit)

	store, err := s.ready()
	if err != nil {
		return types.Ranking{}, err
	}
	ev, err := s.evaluate(ctx, store, teamID, nil)
	if err != nil {
		return types.Ranking{}, err
	}

	entries := make([]types.Entry, 0, len(ev.players))
	for _, p := range ev.players {
		entries = append(entries, types.Entry{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			Position:    string(p.Position),
			Composite:   ev.composites[p.ID],
		})
	}
	slices.SortFunc(entries, func(a, b types.Entry) int {
		if c := cmp.Compare(b.Composite, a.Composite); c != 0 {
			return c
		}
		if c := strings.Compare(a.DisplayName, b.DisplayName); c != 0 {
			return c
		}
		return strings.Compare(a.PlayerID, b.PlayerID)
	})

	summary := summarize(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return types.Ranking{TeamID: teamID, Entries: entries, Summary: summary}, nil
}

func summarize(entries []types.Entry) types.Summary {
	if len(entries) == 0 {
		return types.Summary{}
	}
	data := make(stats.Float64Data, len(entries))
	for i, e := range entries {
		data[i] = e.Composite
	}
	// Errors only occur on empty input, excluded above.
	mean, _ := data.Mean()
	median, _ := data.Median()
	lo, _ := data.Min()
	hi, _ := data.Max()
	return types.Summary{Count: len(entries), Mean: mean, Median: median, Min: lo, Max: hi}
}
