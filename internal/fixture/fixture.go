// Package fixture loads YAML roster fixtures and replays them through the
// service, so a lineup can be computed offline or a server can start seeded.
package fixture

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/bestxi/internal/domain/model"
)

// ErrInvalidFixture is returned for fixtures that fail structural checks.
var ErrInvalidFixture = errors.New("invalid fixture")

//go:embed reference.yaml
var reference []byte

// Roster is a team's players, raw statistics, weights and definitions.
type Roster struct {
	Team         string             `koanf:"team"`
	Formation    string             `koanf:"formation"`
	TiebreakStat string             `koanf:"tiebreak_stat"`
	Weights      map[string]float64 `koanf:"weights"`
	Definitions  []Definition       `koanf:"definitions"`
	Players      []Player           `koanf:"players"`
}

// Player is one roster entry with its raw statistics.
type Player struct {
	ID       string             `koanf:"id"`
	Name     string             `koanf:"name"`
	Position string             `koanf:"position"`
	Stats    map[string]float64 `koanf:"stats"`
}

// Definition declares a statistic's advisory range.
type Definition struct {
	Key            string  `koanf:"key"`
	Label          string  `koanf:"label"`
	MinValue       float64 `koanf:"min_value"`
	MaxValue       float64 `koanf:"max_value"`
	HigherIsBetter *bool   `koanf:"higher_is_better"`
}

// Load reads a roster fixture from a YAML file.
func Load(path string) (*Roster, error) {
	return load(file.Provider(path), path)
}

// Parse reads a roster fixture from YAML bytes.
func Parse(b []byte) (*Roster, error) {
	return load(bytesProvider(b), "<bytes>")
}

// Reference returns the built-in 16-player reference squad.
func Reference() *Roster {
	r, err := Parse(reference)
	if err != nil {
		panic(fmt.Sprintf("reference fixture: %v", err))
	}
	return r
}

func load(p koanf.Provider, name string) (*Roster, error) {
	k := koanf.New(".")
	if err := k.Load(p, yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", name, err)
	}
	var r Roster
	if err := k.UnmarshalWithConf("", &r, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", name, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks that the roster names a team and has unique, non-empty player ids.
func (r *Roster) Validate() error {
	if r.Team == "" {
		return fmt.Errorf("%w: team is required", ErrInvalidFixture)
	}
	seen := make(map[string]struct{}, len(r.Players))
	for i, p := range r.Players {
		if p.ID == "" {
			return fmt.Errorf("%w: player %d has no id", ErrInvalidFixture, i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate player id %s", ErrInvalidFixture, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// StatDefinitions converts the fixture's definitions to model values.
// Direction defaults to higher-is-better.
func (r *Roster) StatDefinitions() []model.StatDefinition {
	out := make([]model.StatDefinition, 0, len(r.Definitions))
	for _, d := range r.Definitions {
		label := d.Label
		if label == "" {
			label = d.Key
		}
		out = append(out, model.StatDefinition{
			Key:            d.Key,
			Label:          label,
			MinValue:       d.MinValue,
			MaxValue:       d.MaxValue,
			HigherIsBetter: d.HigherIsBetter == nil || *d.HigherIsBetter,
		})
	}
	return out
}

// bytesProvider serves raw YAML to koanf.
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) { return b, nil }

func (bytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("bytes provider does not support Read")
}
