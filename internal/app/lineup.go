package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bestxi/internal/domain/lineup"
	"github.com/okian/bestxi/internal/domain/model"
	"github.com/okian/bestxi/pkg/logger"
	"github.com/okian/bestxi/pkg/metrics"
)

// LineupRequest describes one best-XI selection.
type LineupRequest struct {
	// Formation defaults to the service's default formation when nil.
	Formation *model.Formation
	// TiebreakStat overrides the service's tiebreak statistic when set.
	TiebreakStat string
	// PlayerIDs restricts the comparison set; nil uses the whole roster.
	PlayerIDs []string
	// RequireLegal rejects formations that fail validation.
	RequireLegal bool
}

// LineupResult is a selection plus the context it was made in.
type LineupResult struct {
	SelectionID  string                  `json:"selection_id"`
	TeamID       string                  `json:"team_id"`
	Formation    model.Formation         `json:"formation"`
	Shorthand    string                  `json:"shorthand"`
	Validation   lineup.ValidationResult `json:"validation"`
	TiebreakStat string                  `json:"tiebreak_stat"`
	StatKeys     []string                `json:"stat_keys"`
	Selection    model.Selection         `json:"selection"`
}

// SelectLineup scores the comparison set and selects a lineup under the
// requested formation. Illegal formations are selected against unless the
// request or the service requires a legal one.
func (s *Service) SelectLineup(ctx context.Context, teamID string, req LineupRequest) (LineupResult, error) {
	start := time.Now()

	store, err := s.ready()
	if err != nil {
		return LineupResult{}, err
	}

	f := s.defaultFormation
	if req.Formation != nil {
		f = *req.Formation
	}
	validation := lineup.Validate(f)
	if !validation.OK {
		metrics.RecordIllegalFormation()
		if req.RequireLegal || s.requireLegal {
			return LineupResult{}, fmt.Errorf("%w: %s", ErrIllegalFormation, validation.Reason)
		}
	}

	tiebreak := s.tiebreakStat
	if req.TiebreakStat != "" {
		tiebreak = req.TiebreakStat
	}

	ev, err := s.evaluate(ctx, store, teamID, req.PlayerIDs)
	if err != nil {
		return LineupResult{}, err
	}

	pool := make([]model.Candidate, 0, len(ev.players))
	for _, p := range ev.players {
		tb, _ := ev.raw.Get(p.ID, tiebreak)
		pool = append(pool, model.Candidate{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Position:    p.Position,
			Composite:   ev.composites[p.ID],
			Tiebreak:    tb,
		})
	}

	selectionID := uuid.NewString()
	log := s.logger.With(logger.String("team_id", teamID), logger.String("selection_id", selectionID))
	sel := lineup.Select(pool, f, lineup.WithObserver(&selectionObserver{ctx: ctx, log: log}))

	result := LineupResult{
		SelectionID:  selectionID,
		TeamID:       teamID,
		Formation:    f,
		Shorthand:    lineup.Shorthand(f),
		Validation:   validation,
		TiebreakStat: tiebreak,
		StatKeys:     ev.keys,
		Selection:    sel,
	}
	if result.StatKeys == nil {
		result.StatKeys = []string{}
	}

	metrics.RecordSelection(validation.OK, since(start))
	log.Info(ctx, "lineup selected",
		logger.String("formation", result.Shorthand),
		logger.Bool("legal", validation.OK),
		logger.Int("pool", len(pool)),
		logger.Int("selected", len(sel.OrderedXI)),
		logger.Int("substitutions", len(sel.Substitutions)),
	)
	return result, nil
}

// selectionObserver reports selector events as metrics and debug logs.
type selectionObserver struct {
	ctx context.Context
	log logger.Logger
}

func (o *selectionObserver) Substituted(sub model.Substitution) {
	metrics.RecordSubstitution(sub.Tier)
	o.log.Debug(o.ctx, "bucket filled from another position",
		logger.String("bucket", string(sub.Bucket)),
		logger.String("player_id", sub.PlayerID),
		logger.String("from", string(sub.From)),
		logger.String("tier", sub.Tier),
	)
}

func (o *selectionObserver) Coerced(candidateID string, original model.Position) {
	metrics.RecordPositionCoercion()
	o.log.Warn(o.ctx, "unknown position treated as MID",
		logger.String("player_id", candidateID),
		logger.String("position", string(original)),
	)
}
