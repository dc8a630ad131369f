package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	service "github.com/okian/bestxi/internal/app"
	"github.com/okian/bestxi/internal/config"
	"github.com/okian/bestxi/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

const seedYAML = `team: u12
definitions:
  - key: goals
    label: Goals
    min_value: 0
    max_value: 60
players:
  - { id: k, name: Keeper, position: GK, stats: { goals: 0 } }
  - { id: s, name: Striker, position: ST, stats: { goals: 9 } }
`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given BESTXI_ environment variables", t, func() {
		t.Setenv("BESTXI_ADDR", ":8088")
		t.Setenv("BESTXI_DEFAULT_FORMATION", "4-4-2")
		t.Setenv("BESTXI_WEIGHT_MIN", "0.8")
		t.Setenv("BESTXI_WEIGHT_MAX", "1.2")

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the service is built from them", func() {
			svc, err := newService(cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)

			stats := svc.GetStats()
			convey.So(stats["weightMin"], convey.ShouldEqual, 0.8)
			convey.So(stats["weightMax"], convey.ShouldEqual, 1.2)
			convey.So(svc.DefaultFormation().MID, convey.ShouldEqual, 4)
			convey.So(stats["started"], convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given a malformed default formation", t, func() {
		cfg := config.New()
		cfg.DefaultFormation = "4-x-3"

		convey.Convey("Then the service is not built", func() {
			_, err := newService(cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMainSeed(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("When no fixture is configured", func() {
			convey.So(seed(ctx, svc, "", logger.Get()), convey.ShouldBeNil)
			convey.So(svc.GetStats()["players"], convey.ShouldEqual, 0)
		})

		convey.Convey("When a fixture is configured", func() {
			convey.So(seed(ctx, svc, writeSeed(t, seedYAML), logger.Get()), convey.ShouldBeNil)

			convey.Convey("Then its roster is loaded", func() {
				players, err := svc.Players(ctx, "u12")
				convey.So(err, convey.ShouldBeNil)
				convey.So(players, convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When the fixture is missing", func() {
			err := seed(ctx, svc, filepath.Join(t.TempDir(), "nope.yaml"), logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMainHandler(t *testing.T) {
	convey.Convey("Given the seeded HTTP handler", t, func() {
		ctx := context.Background()
		svc := service.New()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		convey.So(seed(ctx, svc, writeSeed(t, seedYAML), logger.Get()), convey.ShouldBeNil)

		h := newHandler(ctx, svc)

		convey.Convey("When selecting a lineup with an empty body", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/teams/u12/lineup", nil))

			convey.Convey("Then both players are in the XI", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var res service.LineupResult
				convey.So(json.Unmarshal(w.Body.Bytes(), &res), convey.ShouldBeNil)
				convey.So(res.Shorthand, convey.ShouldEqual, "4-3-3")
				convey.So(res.Selection.OrderedXI, convey.ShouldHaveLength, 2)
				convey.So(res.Selection.OrderedXI[0].ID, convey.ShouldEqual, "k")
			})
		})

		convey.Convey("When requesting the API docs", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("When a browser sends a preflight request", func() {
			r := httptest.NewRequest(http.MethodOptions, "/teams/u12/lineup", nil)
			r.Header.Set("Origin", "http://localhost:3000")
			r.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldNotBeEmpty)
		})

		convey.Convey("When an unknown route is requested", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
			convey.So(strings.Contains(w.Body.String(), "not_found"), convey.ShouldBeTrue)
		})
	})
}

func TestMainRun(t *testing.T) {
	convey.Convey("Given a configuration on a free port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.Convey("Then run shuts down cleanly", func() {
				convey.So(run(ctx, cfg, logger.Get()), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the seed fixture is invalid", func() {
			cfg.SeedFixture = writeSeed(t, "players: []\n")

			convey.Convey("Then run fails before serving", func() {
				convey.So(run(context.Background(), cfg, logger.Get()), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		svc := service.New()

		convey.Convey("Then they update without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("And they stop with the context", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() {
				startSystemMetricsUpdater(ctx)
				startServiceMetricsUpdater(ctx, svc)
			}, convey.ShouldNotPanic)
		})
	})
}
