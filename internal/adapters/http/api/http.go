// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/okian/bestxi/internal/adapters/repository"
	service "github.com/okian/bestxi/internal/app"
	"github.com/okian/bestxi/internal/domain/lineup"
	"github.com/okian/bestxi/internal/domain/model"
	"github.com/okian/bestxi/internal/domain/scoring"
	"github.com/okian/bestxi/internal/domain/types"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RosterDependencies
	ScoreDependencies
	LineupDependencies
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	rosterHandler *RosterHandler
	scoreHandler  *ScoreHandler
	lineupHandler *LineupHandler
}

// NewServer creates a new API server with all handlers. defaultLimit is
// used by the rankings endpoint when the request has no limit.
func NewServer(deps Dependencies, statsProvider StatsProvider, defaultLimit int) *Server {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		rosterHandler: NewRosterHandler(deps, v),
		scoreHandler:  NewScoreHandler(deps, v, defaultLimit),
		lineupHandler: NewLineupHandler(deps, v),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	r.HandleFunc("/stat-definitions", MetricsMiddleware(s.rosterHandler.HandleListDefinitions, "stat_definitions")).Methods(http.MethodGet)
	r.HandleFunc("/stat-definitions/{key}", MetricsMiddleware(s.rosterHandler.HandlePutDefinition, "stat_definition")).Methods(http.MethodPut)

	t := r.PathPrefix("/teams/{team}").Subrouter()
	t.HandleFunc("/players", MetricsMiddleware(s.rosterHandler.HandleListPlayers, "players")).Methods(http.MethodGet)
	t.HandleFunc("/players/{player}", MetricsMiddleware(s.rosterHandler.HandlePutPlayer, "player")).Methods(http.MethodPut)
	t.HandleFunc("/players/{player}/stats/{stat}", MetricsMiddleware(s.rosterHandler.HandlePutStat, "player_stat")).Methods(http.MethodPut)
	t.HandleFunc("/weights", MetricsMiddleware(s.scoreHandler.HandleListWeights, "weights")).Methods(http.MethodGet)
	t.HandleFunc("/weights/{stat}", MetricsMiddleware(s.scoreHandler.HandlePutWeight, "weight")).Methods(http.MethodPut)
	t.HandleFunc("/weights/{stat}", MetricsMiddleware(s.scoreHandler.HandleDeleteWeight, "weight")).Methods(http.MethodDelete)
	t.HandleFunc("/composites", MetricsMiddleware(s.scoreHandler.HandleComposites, "composites")).Methods(http.MethodGet)
	t.HandleFunc("/rankings", MetricsMiddleware(s.scoreHandler.HandleRankings, "rankings")).Methods(http.MethodGet)
	t.HandleFunc("/lineup", MetricsMiddleware(s.lineupHandler.HandleSelect, "lineup")).Methods(http.MethodPost)

	r.HandleFunc("/formations/validate", MetricsMiddleware(s.lineupHandler.HandleValidate, "formations_validate")).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decode reads a JSON body into dst and runs struct validation.
func decode(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return v.Struct(dst)
}

// writeDecodeError reports a body that failed decoding or validation.
func writeDecodeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, lineup.ErrInvalidFormation) {
		writeError(w, http.StatusBadRequest, "invalid_formation", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
}

// writeServiceError translates service and domain errors into API errors.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, lineup.ErrInvalidFormation):
		writeError(w, http.StatusBadRequest, "invalid_formation", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, scoring.ErrWeightOutOfRange):
		writeError(w, http.StatusBadRequest, "weight_out_of_range", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, repository.ErrInvalid):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrIllegalFormation):
		writeError(w, http.StatusUnprocessableEntity, "illegal_formation", WrapKind(op, ErrUnprocessable, err))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// formationInput accepts either shorthand ("4-3-3") or an explicit object.
// Counts beyond lineup.MaxCount are rejected either way.
type formationInput struct {
	model.Formation
}

func (f *formationInput) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := lineup.ParseFormation(s)
		if err != nil {
			return err
		}
		f.Formation = parsed
		return nil
	}
	if err := json.Unmarshal(b, &f.Formation); err != nil {
		return err
	}
	return lineup.CheckBounds(f.Formation)
}
