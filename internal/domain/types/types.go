// Package types contains common read shapes used across the application
package types

// Entry is one row of a team's composite ranking.
type Entry struct {
	Rank        int     `json:"rank"`
	PlayerID    string  `json:"player_id"`
	DisplayName string  `json:"display_name"`
	Position    string  `json:"position"`
	Composite   float64 `json:"composite"`
}

// Summary describes the distribution of composites in a ranking.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Ranking is a ranked slice of entries plus its summary.
type Ranking struct {
	TeamID  string  `json:"team_id"`
	Entries []Entry `json:"entries"`
	Summary Summary `json:"summary"`
}

// PlayerScore is one player's normalized statistics and composite.
type PlayerScore struct {
	PlayerID    string             `json:"player_id"`
	DisplayName string             `json:"display_name"`
	Position    string             `json:"position"`
	Normalized  map[string]float64 `json:"normalized"`
	Composite   float64            `json:"composite"`
}

// Composites is the scored view of a team's comparison set.
type Composites struct {
	TeamID  string             `json:"team_id"`
	Keys    []string           `json:"stat_keys"`
	Weights map[string]float64 `json:"weights"`
	Players []PlayerScore      `json:"players"`
}
