package model

import "strings"

// Position is a lineup bucket.
type Position string

// Supported position buckets.
const (
	GK  Position = "GK"
	DEF Position = "DEF"
	MID Position = "MID"
	WNG Position = "WNG"
	ST  Position = "ST"
)

// Positions lists the buckets in lineup order.
var Positions = []Position{GK, DEF, MID, WNG, ST} //nolint:gochecknoglobals // fixed bucket order

// Valid reports whether p is one of the five buckets.
func (p Position) Valid() bool {
	switch p {
	case GK, DEF, MID, WNG, ST:
		return true
	}
	return false
}

// ParsePosition upper-cases and trims s. The result may still be invalid;
// callers decide whether to reject or coerce it.
func ParsePosition(s string) Position {
	return Position(strings.ToUpper(strings.TrimSpace(s)))
}

// Player is a roster member of a team context.
type Player struct {
	ID          string   `json:"id"`
	TeamID      string   `json:"team_id"`
	DisplayName string   `json:"display_name"`
	Position    Position `json:"position"`
}

// Candidate is the unit consumed by the lineup selector.
type Candidate struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Position    Position `json:"primary_position"`
	Composite   float64  `json:"composite"`
	Tiebreak    float64  `json:"tiebreak"`
}

// Formation holds the number of players requested per bucket.
type Formation struct {
	GK  int `json:"gk" koanf:"gk"`
	DEF int `json:"def" koanf:"def"`
	MID int `json:"mid" koanf:"mid"`
	WNG int `json:"wng" koanf:"wng"`
	ST  int `json:"st" koanf:"st"`
}

// Count returns the requested count for bucket p.
func (f Formation) Count(p Position) int {
	switch p {
	case GK:
		return f.GK
	case DEF:
		return f.DEF
	case MID:
		return f.MID
	case WNG:
		return f.WNG
	case ST:
		return f.ST
	}
	return 0
}

// Outfield returns DEF+MID+WNG+ST.
func (f Formation) Outfield() int {
	return f.DEF + f.MID + f.WNG + f.ST
}

// Total returns the sum of all counts.
func (f Formation) Total() int {
	return f.GK + f.Outfield()
}

// Substitution records a bucket slot filled by a player from another position.
type Substitution struct {
	Bucket   Position `json:"bucket"`
	PlayerID string   `json:"player_id"`
	From     Position `json:"from"`
	Tier     string   `json:"tier"` // "preferred" or "global"
}

// Selection is the immutable result of a lineup selection.
type Selection struct {
	GK            []Candidate    `json:"gk"`
	DEF           []Candidate    `json:"def"`
	MID           []Candidate    `json:"mid"`
	WNG           []Candidate    `json:"wng"`
	ST            []Candidate    `json:"st"`
	OrderedXI     []Candidate    `json:"ordered_xi"`
	Substitutions []Substitution `json:"substitutions"`
}

// Bucket returns the selected players for p.
func (s Selection) Bucket(p Position) []Candidate {
	switch p {
	case GK:
		return s.GK
	case DEF:
		return s.DEF
	case MID:
		return s.MID
	case WNG:
		return s.WNG
	case ST:
		return s.ST
	}
	return nil
}
