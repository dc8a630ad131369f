package model_test

import (
	"testing"

	model "github.com/okian/bestxi/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestMatrix(t *testing.T) {
	convey.Convey("Given an empty matrix", t, func() {
		m := model.Matrix{}

		convey.Convey("When setting values for a new player", func() {
			m.Set("p1", "goals", 3)
			m.Set("p1", "assists", 1)

			convey.Convey("Then the row should be allocated and readable", func() {
				v, ok := m.Get("p1", "goals")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, 3)
				convey.So(m["p1"], convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When reading a missing cell", func() {
			_, okPlayer := m.Get("nobody", "goals")
			m.Set("p2", "goals", 0)
			_, okStat := m.Get("p2", "assists")

			convey.Convey("Then it should report absence", func() {
				convey.So(okPlayer, convey.ShouldBeFalse)
				convey.So(okStat, convey.ShouldBeFalse)
			})
		})
	})
}

func TestPosition(t *testing.T) {
	convey.Convey("Given raw position strings", t, func() {
		convey.So(model.ParsePosition(" def ").Valid(), convey.ShouldBeTrue)
		convey.So(model.ParsePosition("wng"), convey.ShouldEqual, model.WNG)
		convey.So(model.ParsePosition("FWD").Valid(), convey.ShouldBeFalse)
		convey.So(model.Position("").Valid(), convey.ShouldBeFalse)
	})
}

func TestFormation(t *testing.T) {
	convey.Convey("Given a 4-3-3 formation", t, func() {
		f := model.Formation{GK: 1, DEF: 4, MID: 3, WNG: 0, ST: 3}

		convey.So(f.Outfield(), convey.ShouldEqual, 10)
		convey.So(f.Total(), convey.ShouldEqual, 11)
		convey.So(f.Count(model.DEF), convey.ShouldEqual, 4)
		convey.So(f.Count(model.Position("XX")), convey.ShouldEqual, 0)
	})
}

func TestStatDefinitionInRange(t *testing.T) {
	convey.Convey("Given a bounded stat definition", t, func() {
		d := model.StatDefinition{Key: "pass_pct", MinValue: 0, MaxValue: 100}

		convey.So(d.InRange(55), convey.ShouldBeTrue)
		convey.So(d.InRange(100), convey.ShouldBeTrue)
		convey.So(d.InRange(101), convey.ShouldBeFalse)
		convey.So(d.InRange(-1), convey.ShouldBeFalse)
	})

	convey.Convey("Given an unbounded stat definition", t, func() {
		d := model.StatDefinition{Key: "goals"}

		convey.So(d.InRange(-1000), convey.ShouldBeTrue)
	})
}
