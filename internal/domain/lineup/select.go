// Package lineup selects a starting lineup from scored candidates under a
// formation, and validates and parses formations.
package lineup

import (
	"cmp"
	"slices"
	"strings"

	"github.com/okian/bestxi/internal/domain/model"
)

// Substitution tiers.
const (
	TierPreferred = "preferred"
	TierGlobal    = "global"
)

// fallbackOrder lists, per bucket, the positions tried first when the bucket
// is short after its primary fill.
var fallbackOrder = map[model.Position][]model.Position{ //nolint:gochecknoglobals // fixed preference table
	model.GK:  {model.DEF},
	model.DEF: {model.MID, model.WNG},
	model.MID: {model.WNG, model.DEF},
	model.WNG: {model.MID, model.ST},
	model.ST:  {model.WNG, model.MID},
}

// selectedSet tracks candidate ids already placed in this request.
type selectedSet map[string]struct{}

func (s selectedSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// Select picks the best candidates per bucket of f.
//
// Buckets are filled from their own position first, ranked by composite desc,
// tiebreak desc, display name asc (then id asc). Short buckets then draw from
// adjacent positions and finally from the remaining pool. No candidate is
// placed twice, and the result holds at most one player per unique pool id.
// Negative counts are treated as zero. Allocation is bounded by the pool,
// never by the requested counts.
func Select(pool []model.Candidate, f model.Formation, opts ...Option) model.Selection {
	cfg := newConfig(opts...)

	all, byPos := bucketize(pool, cfg.observer)
	selected := make(selectedSet, len(all))
	picks := make(map[model.Position][]model.Candidate, len(model.Positions))

	for _, p := range model.Positions {
		picks[p], selected = primaryFill(byPos[p], want(f, p), selected)
	}

	var subs []model.Substitution
	for _, p := range model.Positions {
		short := want(f, p) - len(picks[p])
		if short <= 0 {
			continue
		}
		var filled []model.Substitution
		picks[p], selected, filled = fallbackFill(p, picks[p], short, byPos, all, selected)
		for _, sub := range filled {
			cfg.observer.Substituted(sub)
		}
		subs = append(subs, filled...)
	}

	out := model.Selection{
		GK:            picks[model.GK],
		DEF:           picks[model.DEF],
		MID:           picks[model.MID],
		WNG:           picks[model.WNG],
		ST:            picks[model.ST],
		OrderedXI:     make([]model.Candidate, 0, len(selected)),
		Substitutions: subs,
	}
	if out.Substitutions == nil {
		out.Substitutions = []model.Substitution{}
	}
	for _, p := range model.Positions {
		out.OrderedXI = append(out.OrderedXI, picks[p]...)
	}
	return out
}

func want(f model.Formation, p model.Position) int {
	return max(0, f.Count(p))
}

// bucketize de-duplicates the pool by id (first occurrence wins), coerces
// unknown positions to MID and returns the whole pool plus per-position
// buckets, each in ranking order.
func bucketize(pool []model.Candidate, obs Observer) ([]model.Candidate, map[model.Position][]model.Candidate) {
	seen := make(map[string]struct{}, len(pool))
	all := make([]model.Candidate, 0, len(pool))
	byPos := make(map[model.Position][]model.Candidate, len(model.Positions))

	for _, c := range pool {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		if !c.Position.Valid() {
			obs.Coerced(c.ID, c.Position)
			c.Position = model.MID
		}
		all = append(all, c)
		byPos[c.Position] = append(byPos[c.Position], c)
	}

	slices.SortStableFunc(all, compare)
	for p := range byPos {
		slices.SortStableFunc(byPos[p], compare)
	}
	return all, byPos
}

// compare orders candidates best-first. NaN composites sort last.
func compare(a, b model.Candidate) int {
	if c := cmp.Compare(b.Composite, a.Composite); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Tiebreak, a.Tiebreak); c != 0 {
		return c
	}
	if c := strings.Compare(a.DisplayName, b.DisplayName); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// primaryFill takes up to n of the bucket's own candidates.
func primaryFill(ranked []model.Candidate, n int, selected selectedSet) ([]model.Candidate, selectedSet) {
	out := make([]model.Candidate, 0, min(n, len(ranked)))
	for _, c := range ranked {
		if len(out) == n {
			break
		}
		if selected.has(c.ID) {
			continue
		}
		selected[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out, selected
}

// fallbackFill tops up bucket p by short players: preferred positions first,
// in their own ranking order, then the remaining pool.
func fallbackFill(
	p model.Position,
	picked []model.Candidate,
	short int,
	byPos map[model.Position][]model.Candidate,
	all []model.Candidate,
	selected selectedSet,
) ([]model.Candidate, selectedSet, []model.Substitution) {
	var subs []model.Substitution
	take := func(c model.Candidate, tier string) {
		selected[c.ID] = struct{}{}
		picked = append(picked, c)
		subs = append(subs, model.Substitution{Bucket: p, PlayerID: c.ID, From: c.Position, Tier: tier})
	}

	for _, from := range fallbackOrder[p] {
		for _, c := range byPos[from] {
			if len(subs) == short {
				return picked, selected, subs
			}
			if !selected.has(c.ID) {
				take(c, TierPreferred)
			}
		}
	}
	for _, c := range all {
		if len(subs) == short {
			break
		}
		if !selected.has(c.ID) {
			take(c, TierGlobal)
		}
	}
	return picked, selected, subs
}
