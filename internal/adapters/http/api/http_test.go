package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/okian/bestxi/internal/adapters/http/api"
	service "github.com/okian/bestxi/internal/app"
	"github.com/okian/bestxi/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func newRouter(svc *service.Service) http.Handler {
	r := mux.NewRouter()
	api.NewServer(svc, svc, 10).Register(context.Background(), r)
	return api.Harden(r)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func seed(h http.Handler) {
	players := []struct{ id, name, pos, rating string }{
		{"g1", "Alisson", "GK", "80"},
		{"d1", "Aaron", "DEF", "90"},
		{"d2", "Ben", "DEF", "70"},
		{"m1", "Luka", "mid", "85"},
		{"s1", "Zlatan", "ST", "95"},
	}
	for _, p := range players {
		w := do(h, http.MethodPut, "/teams/u12/players/"+p.id, `{"display_name":"`+p.name+`","position":"`+p.pos+`"}`)
		So(w.Code, ShouldEqual, http.StatusOK)
		w = do(h, http.MethodPut, "/teams/u12/players/"+p.id+"/stats/rating", `{"value":`+p.rating+`}`)
		So(w.Code, ShouldEqual, http.StatusOK)
	}
}

func TestServer_Routes(t *testing.T) {
	Convey("Given an API server over a started service", t, func() {
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		h := newRouter(svc)

		Convey("Then health serves the Prometheus exposition", func() {
			w := do(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "bestxi_")
		})

		Convey("And health answers JSON clients with a status", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Accept", "application/json")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("And stats report the service state", func() {
			w := do(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("And unknown routes return a JSON 404", func() {
			w := do(h, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})

		Convey("When a roster is loaded", func() {
			seed(h)

			Convey("Then players are listed with normalized positions", func() {
				w := do(h, http.MethodGet, "/teams/u12/players", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var players []map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &players), ShouldBeNil)
				So(players, ShouldHaveLength, 5)
				So(players[3]["id"], ShouldEqual, "m1")
				So(players[3]["position"], ShouldEqual, "MID")
			})

			Convey("And a lineup can be selected by shorthand", func() {
				w := do(h, http.MethodPost, "/teams/u12/lineup", `{"formation":"1-2-1-0-1"}`)
				So(w.Code, ShouldEqual, http.StatusOK)

				var res struct {
					SelectionID string `json:"selection_id"`
					Validation  struct {
						OK     bool   `json:"ok"`
						Reason string `json:"reason"`
					} `json:"validation"`
					Selection struct {
						OrderedXI []struct {
							ID string `json:"id"`
						} `json:"ordered_xi"`
					} `json:"selection"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
				So(res.SelectionID, ShouldNotBeEmpty)
				So(res.Validation.OK, ShouldBeFalse)
				So(res.Validation.Reason, ShouldEqual, "Outfield players must sum to 10")
				So(res.Selection.OrderedXI, ShouldHaveLength, 5)
				So(res.Selection.OrderedXI[1].ID, ShouldEqual, "d1")
			})

			Convey("And a lineup can be selected with an object formation", func() {
				w := do(h, http.MethodPost, "/teams/u12/lineup", `{"formation":{"gk":1,"st":2}}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"tier":"preferred"`)
			})

			Convey("And an empty body uses the default formation", func() {
				w := do(h, http.MethodPost, "/teams/u12/lineup", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"shorthand":"4-3-3"`)
			})

			Convey("And strict requests reject illegal formations", func() {
				w := do(h, http.MethodPost, "/teams/u12/lineup", `{"formation":"4-4-3","require_legal":true}`)
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(errorCode(w), ShouldEqual, "illegal_formation")
			})

			Convey("And malformed shorthand is a bad request", func() {
				w := do(h, http.MethodPost, "/teams/u12/lineup", `{"formation":"4-x-3"}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "invalid_formation")
			})

			Convey("And oversized formation counts are a bad request", func() {
				w := do(h, http.MethodPost, "/teams/u12/lineup", `{"formation":{"gk":1,"def":4611686018427387904,"mid":3,"st":3}}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "invalid_formation")
			})

			Convey("And weights are validated at the boundary", func() {
				w := do(h, http.MethodPut, "/teams/u12/weights/rating", `{"weight":2}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "weight_out_of_range")

				w = do(h, http.MethodPut, "/teams/u12/weights/rating", `{"weight":1.5}`)
				So(w.Code, ShouldEqual, http.StatusOK)

				w = do(h, http.MethodGet, "/teams/u12/weights", "")
				So(w.Body.String(), ShouldContainSubstring, `"weight":1.5`)

				w = do(h, http.MethodDelete, "/teams/u12/weights/rating", "")
				So(w.Code, ShouldEqual, http.StatusNoContent)

				w = do(h, http.MethodDelete, "/teams/u12/weights/rating", "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("And rankings are ordered by composite", func() {
				w := do(h, http.MethodGet, "/teams/u12/rankings?limit=2", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var r struct {
					Entries []struct {
						Rank     int    `json:"rank"`
						PlayerID string `json:"player_id"`
					} `json:"entries"`
					Summary struct {
						Count int `json:"count"`
					} `json:"summary"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &r), ShouldBeNil)
				So(r.Entries, ShouldHaveLength, 2)
				So(r.Entries[0].PlayerID, ShouldEqual, "s1")
				So(r.Entries[1].PlayerID, ShouldEqual, "d1")
				So(r.Summary.Count, ShouldEqual, 5)

				w = do(h, http.MethodGet, "/teams/u12/rankings?limit=zero", "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("And composites can be restricted to some players", func() {
				w := do(h, http.MethodGet, "/teams/u12/composites?player_ids=d1,d2", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"composite":1`)
				So(w.Body.String(), ShouldContainSubstring, `"composite":0`)

				w = do(h, http.MethodGet, "/teams/u12/composites?player_ids=ghost", "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("And stats require a value", func() {
				w := do(h, http.MethodPut, "/teams/u12/players/g1/stats/rating", `{}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When selecting for an unknown team", func() {
			w := do(h, http.MethodPost, "/teams/nobody/lineup", `{}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When defining a statistic", func() {
			w := do(h, http.MethodPut, "/stat-definitions/pass_pct", `{"label":"Pass %","min_value":0,"max_value":100}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"higher_is_better":true`)

			w = do(h, http.MethodPut, "/stat-definitions/bad", `{"min_value":5,"max_value":1}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w = do(h, http.MethodGet, "/stat-definitions", "")
			So(w.Body.String(), ShouldContainSubstring, `"key":"pass_pct"`)
		})
	})
}

func TestServer_ValidateFormation(t *testing.T) {
	Convey("Given the formation validation route", t, func() {
		svc := service.New()
		h := newRouter(svc)

		Convey("When the formation is legal", func() {
			w := do(h, http.MethodPost, "/formations/validate", `{"formation":"4-2-3-1"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"ok":true`)
			So(w.Body.String(), ShouldContainSubstring, `"wng":3`)
		})

		Convey("When the formation has two goalkeepers", func() {
			w := do(h, http.MethodPost, "/formations/validate", `{"formation":{"gk":2,"def":4,"mid":3,"st":3}}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"reason":"Exactly 1 goalkeeper is required"`)
		})

		Convey("When a count is negative", func() {
			w := do(h, http.MethodPost, "/formations/validate", `{"formation":{"gk":1,"def":-1,"mid":5,"wng":3,"st":3}}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"reason":"Counts cannot be negative"`)
		})

		Convey("When a count is past the cap", func() {
			w := do(h, http.MethodPost, "/formations/validate", `{"formation":{"gk":1,"def":100,"mid":3,"st":3}}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "invalid_formation")
		})

		Convey("When the formation is missing", func() {
			w := do(h, http.MethodPost, "/formations/validate", `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service has not started", func() {
			w := do(h, http.MethodGet, "/teams/u12/players", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both kind and cause match", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("And Wrap marks the error internal", func() {
			So(errors.Is(api.Wrap("api.op", cause), api.ErrInternal), ShouldBeTrue)
			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
		})
	})
}
