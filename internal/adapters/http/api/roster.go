package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/okian/bestxi/internal/domain/model"
)

// RosterDependencies defines the roster and raw statistic operations.
type RosterDependencies interface {
	RegisterPlayer(ctx context.Context, p model.Player) (model.Player, error)
	Players(ctx context.Context, teamID string) ([]model.Player, error)
	RecordStat(ctx context.Context, v model.StatValue) error
	PutDefinition(ctx context.Context, d model.StatDefinition) error
	Definitions(ctx context.Context) ([]model.StatDefinition, error)
}

// RosterHandler handles players, stat values and stat definitions.
type RosterHandler struct {
	deps     RosterDependencies
	validate *validator.Validate
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies, v *validator.Validate) *RosterHandler {
	return &RosterHandler{deps: deps, validate: v}
}

type playerRequest struct {
	DisplayName string `json:"display_name" validate:"max=128"`
	Position    string `json:"position" validate:"required,max=16"`
}

type statRequest struct {
	Value *float64 `json:"value" validate:"required"`
}

type definitionRequest struct {
	Label          string  `json:"label" validate:"max=128"`
	MinValue       float64 `json:"min_value"`
	MaxValue       float64 `json:"max_value" validate:"gtefield=MinValue"`
	HigherIsBetter *bool   `json:"higher_is_better"`
}

// HandleListPlayers handles GET /teams/{team}/players.
func (h *RosterHandler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	players, err := h.deps.Players(r.Context(), mux.Vars(r)["team"])
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if players == nil {
		players = []model.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

// HandlePutPlayer handles PUT /teams/{team}/players/{player}.
func (h *RosterHandler) HandlePutPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_player"
	var req playerRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	vars := mux.Vars(r)
	p, err := h.deps.RegisterPlayer(r.Context(), model.Player{
		ID:          vars["player"],
		TeamID:      vars["team"],
		DisplayName: req.DisplayName,
		Position:    model.Position(req.Position),
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePutStat handles PUT /teams/{team}/players/{player}/stats/{stat}.
func (h *RosterHandler) HandlePutStat(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_stat"
	var req statRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	vars := mux.Vars(r)
	v := model.StatValue{
		PlayerID:  vars["player"],
		StatKey:   vars["stat"],
		Value:     *req.Value,
		ContextID: vars["team"],
	}
	if err := h.deps.RecordStat(r.Context(), v); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"team_id":   v.ContextID,
		"player_id": v.PlayerID,
		"stat_key":  v.StatKey,
		"value":     v.Value,
	})
}

// HandleListDefinitions handles GET /stat-definitions.
func (h *RosterHandler) HandleListDefinitions(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_definitions"
	defs, err := h.deps.Definitions(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if defs == nil {
		defs = []model.StatDefinition{}
	}
	writeJSON(w, http.StatusOK, defs)
}

// HandlePutDefinition handles PUT /stat-definitions/{key}.
func (h *RosterHandler) HandlePutDefinition(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_definition"
	var req definitionRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	d := model.StatDefinition{
		Key:            mux.Vars(r)["key"],
		Label:          req.Label,
		MinValue:       req.MinValue,
		MaxValue:       req.MaxValue,
		HigherIsBetter: req.HigherIsBetter == nil || *req.HigherIsBetter,
	}
	if d.Label == "" {
		d.Label = d.Key
	}
	if err := h.deps.PutDefinition(r.Context(), d); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
