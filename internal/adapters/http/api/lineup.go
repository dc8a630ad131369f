package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	service "github.com/okian/bestxi/internal/app"
	"github.com/okian/bestxi/internal/domain/lineup"
	"github.com/okian/bestxi/internal/domain/model"
)

// LineupDependencies defines the lineup selection operation.
type LineupDependencies interface {
	SelectLineup(ctx context.Context, teamID string, req service.LineupRequest) (service.LineupResult, error)
}

// LineupHandler handles lineup selection and formation validation.
type LineupHandler struct {
	deps     LineupDependencies
	validate *validator.Validate
}

// NewLineupHandler creates a new lineup handler.
func NewLineupHandler(deps LineupDependencies, v *validator.Validate) *LineupHandler {
	return &LineupHandler{deps: deps, validate: v}
}

type lineupRequest struct {
	Formation    *formationInput `json:"formation"`
	TiebreakStat string          `json:"tiebreak_stat" validate:"max=64"`
	PlayerIDs    []string        `json:"player_ids" validate:"omitempty,dive,required"`
	RequireLegal bool            `json:"require_legal"`
}

type validateRequest struct {
	Formation *formationInput `json:"formation" validate:"required"`
}

type validateResponse struct {
	lineup.ValidationResult
	Formation model.Formation `json:"formation"`
	Shorthand string          `json:"shorthand"`
}

// HandleSelect handles POST /teams/{team}/lineup. An empty body selects
// with the default formation over the whole roster.
func (h *LineupHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	const op = "api.select_lineup"
	var req lineupRequest
	if err := decode(w, r, h.validate, &req); err != nil && !errors.Is(err, io.EOF) {
		writeDecodeError(w, op, err)
		return
	}

	sreq := service.LineupRequest{
		TiebreakStat: req.TiebreakStat,
		PlayerIDs:    req.PlayerIDs,
		RequireLegal: req.RequireLegal,
	}
	if req.Formation != nil {
		f := req.Formation.Formation
		sreq.Formation = &f
	}

	res, err := h.deps.SelectLineup(r.Context(), mux.Vars(r)["team"], sreq)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleValidate handles POST /formations/validate.
func (h *LineupHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.validate_formation"
	var req validateRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	f := req.Formation.Formation
	writeJSON(w, http.StatusOK, validateResponse{
		ValidationResult: lineup.Validate(f),
		Formation:        f,
		Shorthand:        lineup.Shorthand(f),
	})
}
