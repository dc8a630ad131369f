// Package model contains domain models passed between layers.
package model

// StatValue is a single observation of a statistic for a player, scoped to a
// team context. A store holds at most one value per (PlayerID, StatKey, ContextID).
type StatValue struct {
	PlayerID  string  // player identifier
	StatKey   string  // statistic key, e.g. "goals", "sprint_speed"
	Value     float64 // raw recorded value
	ContextID string  // team scope the value was recorded under
}

// StatDefinition describes the declared domain of a statistic.
// The bounds and direction are advisory: they drive input hints and warnings,
// never the scoring math.
type StatDefinition struct {
	Key            string  `json:"key"`
	Label          string  `json:"label"`
	MinValue       float64 `json:"min_value"`
	MaxValue       float64 `json:"max_value"`
	HigherIsBetter bool    `json:"higher_is_better"`
}

// InRange reports whether v lies within the declared [MinValue, MaxValue].
// A definition whose bounds are both zero declares no range.
func (d StatDefinition) InRange(v float64) bool {
	if d.MinValue == 0 && d.MaxValue == 0 {
		return true
	}
	return v >= d.MinValue && v <= d.MaxValue
}

// WeightOverride is a coach-configured weight for one statistic in one team context.
type WeightOverride struct {
	ContextID string  `json:"team_id"`
	StatKey   string  `json:"stat_key"`
	Weight    float64 `json:"weight"`
}

// Matrix maps player id -> stat key -> value. It carries both raw values and
// normalized [0,1] scores.
type Matrix map[string]map[string]float64

// Set stores v under (playerID, statKey), allocating the row when needed.
func (m Matrix) Set(playerID, statKey string, v float64) {
	row, ok := m[playerID]
	if !ok {
		row = make(map[string]float64)
		m[playerID] = row
	}
	row[statKey] = v
}

// Get returns the value for (playerID, statKey) and whether it is present.
func (m Matrix) Get(playerID, statKey string) (float64, bool) {
	row, ok := m[playerID]
	if !ok {
		return 0, false
	}
	v, ok := row[statKey]
	return v, ok
}
