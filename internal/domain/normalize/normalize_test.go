package normalize_test

import (
	"math"
	"testing"

	"github.com/okian/bestxi/internal/domain/model"
	"github.com/okian/bestxi/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw goals for three players", t, func() {
		raw := model.Matrix{
			"ana":  {"goals": 2},
			"ben":  {"goals": 10},
			"cara": {"goals": 6},
		}

		Convey("When normalizing", func() {
			out := normalize.Normalize(raw, []string{"goals"})

			Convey("Then the minimum maps to 0 and the maximum to 1", func() {
				So(out["ana"]["goals"], ShouldEqual, 0.0)
				So(out["ben"]["goals"], ShouldEqual, 1.0)
			})

			Convey("And intermediate values are linear", func() {
				So(out["cara"]["goals"], ShouldEqual, 0.5)
			})
		})
	})

	Convey("Given a statistic every player shares", t, func() {
		raw := model.Matrix{
			"ana": {"tackles": 4},
			"ben": {"tackles": 4},
		}

		Convey("Then every score is neutral", func() {
			out := normalize.Normalize(raw, []string{"tackles"})
			So(out["ana"]["tackles"], ShouldEqual, normalize.Neutral)
			So(out["ben"]["tackles"], ShouldEqual, normalize.Neutral)
		})
	})

	Convey("Given a single player", t, func() {
		raw := model.Matrix{"solo": {"goals": 42}}

		Convey("Then the score is neutral regardless of the raw value", func() {
			out := normalize.Normalize(raw, []string{"goals"})
			So(out["solo"]["goals"], ShouldEqual, 0.5)
		})
	})

	Convey("Given sparse data", t, func() {
		raw := model.Matrix{
			"ana":  {"goals": 1, "assists": 5},
			"ben":  {"goals": 3},
			"cara": {},
		}

		Convey("When normalizing over both keys", func() {
			out := normalize.Normalize(raw, []string{"goals", "assists"})

			Convey("Then missing values are neutral, not zero", func() {
				So(out["cara"]["goals"], ShouldEqual, 0.5)
				So(out["ben"]["assists"], ShouldEqual, 0.5)
			})

			Convey("And min/max ignore players without a value", func() {
				So(out["ana"]["goals"], ShouldEqual, 0.0)
				So(out["ben"]["goals"], ShouldEqual, 1.0)
				// ana is the only assists value, so the range is degenerate.
				So(out["ana"]["assists"], ShouldEqual, 0.5)
			})

			Convey("And the output covers exactly players x keys", func() {
				So(out, ShouldHaveLength, 3)
				for _, row := range out {
					So(row, ShouldHaveLength, 2)
				}
			})
		})

		Convey("When a key has no values at all", func() {
			out := normalize.Normalize(raw, []string{"saves"})
			So(out["ana"]["saves"], ShouldEqual, 0.5)
			So(out["cara"]["saves"], ShouldEqual, 0.5)
		})
	})

	Convey("Given NaN and extreme values", t, func() {
		raw := model.Matrix{
			"ana":  {"xg": math.NaN()},
			"ben":  {"xg": -1e9},
			"cara": {"xg": 1e9},
			"dan":  {"xg": 0},
		}

		Convey("Then every output is within [0,1]", func() {
			out := normalize.Normalize(raw, []string{"xg"})
			for _, row := range out {
				So(row["xg"], ShouldBeBetweenOrEqual, 0, 1)
			}
			So(out["ana"]["xg"], ShouldEqual, 0.5)
			So(out["dan"]["xg"], ShouldEqual, 0.5)
		})
	})

	Convey("Given an empty comparison set", t, func() {
		Convey("Then the result is empty", func() {
			So(normalize.Normalize(model.Matrix{}, []string{"goals"}), ShouldBeEmpty)
		})
	})

	Convey("Given the same player in two comparison sets", t, func() {
		small := model.Matrix{"ana": {"goals": 5}, "ben": {"goals": 10}}
		large := model.Matrix{"ana": {"goals": 5}, "ben": {"goals": 10}, "cara": {"goals": 0}}

		Convey("Then the normalized value depends on the set", func() {
			So(normalize.Normalize(small, []string{"goals"})["ana"]["goals"], ShouldEqual, 0.0)
			So(normalize.Normalize(large, []string{"goals"})["ana"]["goals"], ShouldEqual, 0.5)
		})
	})
}

func TestKeys(t *testing.T) {
	Convey("Given a sparse matrix", t, func() {
		raw := model.Matrix{
			"ana": {"goals": 1, "assists": 2},
			"ben": {"tackles": 3, "xg": math.NaN()},
		}

		Convey("Then keys are the sorted union of recorded statistics", func() {
			So(normalize.Keys(raw), ShouldResemble, []string{"assists", "goals", "tackles"})
		})
	})
}
