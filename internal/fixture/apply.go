package fixture

import (
	"context"
	"fmt"
	"slices"

	service "github.com/okian/bestxi/internal/app"
	"github.com/okian/bestxi/internal/domain/lineup"
	"github.com/okian/bestxi/internal/domain/model"
)

// Seeder is the subset of the service a fixture writes through.
type Seeder interface {
	PutDefinition(ctx context.Context, d model.StatDefinition) error
	RegisterPlayer(ctx context.Context, p model.Player) (model.Player, error)
	RecordStat(ctx context.Context, v model.StatValue) error
	SetWeight(ctx context.Context, w model.WeightOverride) error
}

// Apply writes the roster's definitions, players, statistics and weights
// through s. Statistics and weights are written in key order.
func Apply(ctx context.Context, s Seeder, r *Roster) error {
	for _, d := range r.StatDefinitions() {
		if err := s.PutDefinition(ctx, d); err != nil {
			return fmt.Errorf("definition %s: %w", d.Key, err)
		}
	}
	for _, p := range r.Players {
		player := model.Player{ID: p.ID, TeamID: r.Team, DisplayName: p.Name, Position: model.Position(p.Position)}
		if _, err := s.RegisterPlayer(ctx, player); err != nil {
			return fmt.Errorf("player %s: %w", p.ID, err)
		}
		for _, key := range sortedKeys(p.Stats) {
			v := model.StatValue{PlayerID: p.ID, StatKey: key, Value: p.Stats[key], ContextID: r.Team}
			if err := s.RecordStat(ctx, v); err != nil {
				return fmt.Errorf("player %s stat %s: %w", p.ID, key, err)
			}
		}
	}
	for _, key := range sortedKeys(r.Weights) {
		w := model.WeightOverride{ContextID: r.Team, StatKey: key, Weight: r.Weights[key]}
		if err := s.SetWeight(ctx, w); err != nil {
			return fmt.Errorf("weight %s: %w", key, err)
		}
	}
	return nil
}

// Request builds a lineup request from the roster's defaults. A non-empty
// formation overrides the roster's own.
func (r *Roster) Request(formation string) (service.LineupRequest, error) {
	req := service.LineupRequest{TiebreakStat: r.TiebreakStat}
	if formation == "" {
		formation = r.Formation
	}
	if formation != "" {
		f, err := lineup.ParseFormation(formation)
		if err != nil {
			return service.LineupRequest{}, err
		}
		req.Formation = &f
	}
	return req, nil
}

// Run selects a lineup for the roster on a fresh in-memory service.
func Run(ctx context.Context, r *Roster, formation string, opts ...service.Option) (service.LineupResult, error) {
	req, err := r.Request(formation)
	if err != nil {
		return service.LineupResult{}, err
	}

	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return service.LineupResult{}, err
	}
	defer svc.Stop()

	if err := Apply(ctx, svc, r); err != nil {
		return service.LineupResult{}, err
	}
	return svc.SelectLineup(ctx, r.Team, req)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
