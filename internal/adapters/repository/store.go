// Package repository defines the record store used by the service and an
// in-memory implementation.
package repository

import (
	"context"

	"github.com/okian/bestxi/internal/domain/model"
)

// Counts summarizes store contents.
type Counts struct {
	Teams       int
	Players     int
	StatValues  int
	Definitions int
	Weights     int
}

// Store is the opaque record store behind the scoring engine.
type Store interface {
	// UpsertPlayer creates or replaces a roster entry.
	UpsertPlayer(ctx context.Context, p model.Player) error
	// Player returns one roster entry or ErrNotFound.
	Player(ctx context.Context, teamID, playerID string) (model.Player, error)
	// Players returns a team's roster ordered by player id.
	Players(ctx context.Context, teamID string) ([]model.Player, error)

	// PutStat stores v, replacing any value for the same (player, stat, context).
	PutStat(ctx context.Context, v model.StatValue) error
	// Stats returns the values recorded under contextID for the given players.
	// A nil playerIDs returns every player's values.
	Stats(ctx context.Context, contextID string, playerIDs []string) ([]model.StatValue, error)

	// PutDefinition creates or replaces a stat definition.
	PutDefinition(ctx context.Context, d model.StatDefinition) error
	// Definition returns one definition or ErrNotFound.
	Definition(ctx context.Context, key string) (model.StatDefinition, error)
	// Definitions returns all definitions ordered by key.
	Definitions(ctx context.Context) ([]model.StatDefinition, error)

	// PutWeight stores an override; last write wins.
	PutWeight(ctx context.Context, w model.WeightOverride) error
	// DeleteWeight removes an override, restoring the neutral weight.
	DeleteWeight(ctx context.Context, contextID, statKey string) error
	// Weights returns a context's overrides ordered by stat key.
	Weights(ctx context.Context, contextID string) ([]model.WeightOverride, error)

	// Count returns the number of records of each kind.
	Count(ctx context.Context) Counts
}
