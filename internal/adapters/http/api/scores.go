package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/okian/bestxi/internal/domain/model"
	"github.com/okian/bestxi/internal/domain/types"
)

// ScoreDependencies defines the weight, composite and ranking operations.
type ScoreDependencies interface {
	SetWeight(ctx context.Context, w model.WeightOverride) error
	ResetWeight(ctx context.Context, teamID, statKey string) error
	Weights(ctx context.Context, teamID string) ([]model.WeightOverride, error)
	Composites(ctx context.Context, teamID string, playerIDs []string) (types.Composites, error)
	Rankings(ctx context.Context, teamID string, limit int) (types.Ranking, error)
}

// ScoreHandler handles weights, composites and rankings.
type ScoreHandler struct {
	deps         ScoreDependencies
	validate     *validator.Validate
	defaultLimit int
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies, v *validator.Validate, defaultLimit int) *ScoreHandler {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &ScoreHandler{deps: deps, validate: v, defaultLimit: defaultLimit}
}

type weightRequest struct {
	Weight *float64 `json:"weight" validate:"required"`
}

// HandleListWeights handles GET /teams/{team}/weights.
func (h *ScoreHandler) HandleListWeights(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_weights"
	ws, err := h.deps.Weights(r.Context(), mux.Vars(r)["team"])
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if ws == nil {
		ws = []model.WeightOverride{}
	}
	writeJSON(w, http.StatusOK, ws)
}

// HandlePutWeight handles PUT /teams/{team}/weights/{stat}.
func (h *ScoreHandler) HandlePutWeight(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_weight"
	var req weightRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	vars := mux.Vars(r)
	o := model.WeightOverride{ContextID: vars["team"], StatKey: vars["stat"], Weight: *req.Weight}
	if err := h.deps.SetWeight(r.Context(), o); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// HandleDeleteWeight handles DELETE /teams/{team}/weights/{stat}.
func (h *ScoreHandler) HandleDeleteWeight(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_weight"
	vars := mux.Vars(r)
	if err := h.deps.ResetWeight(r.Context(), vars["team"], vars["stat"]); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleComposites handles GET /teams/{team}/composites?player_ids=a,b.
func (h *ScoreHandler) HandleComposites(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_composites"
	var ids []string
	if raw := r.URL.Query().Get("player_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	c, err := h.deps.Composites(r.Context(), mux.Vars(r)["team"], ids)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleRankings handles GET /teams/{team}/rankings?limit=N.
func (h *ScoreHandler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	n := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}
	ranking, err := h.deps.Rankings(r.Context(), mux.Vars(r)["team"], n)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}
