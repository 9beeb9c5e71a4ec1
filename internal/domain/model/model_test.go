package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/sppb/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewMeasurement(t *testing.T) {
	Convey("Given measurement construction", t, func() {
		Convey("When the duration is a non-negative number", func() {
			m, err := model.NewMeasurement(model.GaitSpeed, 4.5)

			Convey("Then it is accepted unchanged", func() {
				So(err, ShouldBeNil)
				So(m.Test, ShouldEqual, model.GaitSpeed)
				So(m.Seconds, ShouldEqual, 4.5)
			})
		})

		Convey("When the duration is zero", func() {
			_, err := model.NewMeasurement(model.Tandem, 0)

			Convey("Then it is accepted", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When the duration is negative, NaN or infinite", func() {
			for _, v := range []float64{-0.1, math.NaN(), math.Inf(1)} {
				_, err := model.NewMeasurement(model.ChairRise, v)
				So(errors.Is(err, model.ErrMalformedInput), ShouldBeTrue)
			}
		})

		Convey("When the test is unknown", func() {
			_, err := model.NewMeasurement(model.TestID("hop"), 1)

			Convey("Then it is rejected as an unknown test", func() {
				So(errors.Is(err, model.ErrUnknownTest), ShouldBeTrue)
			})
		})
	})
}

func TestParseSeconds(t *testing.T) {
	Convey("Given raw duration text", t, func() {
		Convey("When it is numeric with surrounding space", func() {
			m, err := model.ParseSeconds(model.SideBySide, " 10.0 ")
			So(err, ShouldBeNil)
			So(m.Seconds, ShouldEqual, 10.0)
		})

		Convey("When it is not numeric", func() {
			_, err := model.ParseSeconds(model.SideBySide, "ten")

			Convey("Then it is malformed input naming the test", func() {
				So(errors.Is(err, model.ErrMalformedInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "side_by_side")
			})
		})
	})
}

func TestParseTestID(t *testing.T) {
	Convey("Given test identifiers", t, func() {
		for _, id := range model.BatteryOrder {
			got, err := model.ParseTestID(string(id))
			So(err, ShouldBeNil)
			So(got, ShouldEqual, id)
		}
		_, err := model.ParseTestID("balance")
		So(errors.Is(err, model.ErrUnknownTest), ShouldBeTrue)
	})
}

func TestTestIDHelpers(t *testing.T) {
	Convey("Given the battery tests", t, func() {
		So(model.SideBySide.IsBalance(), ShouldBeTrue)
		So(model.Tandem.IsBalance(), ShouldBeTrue)
		So(model.GaitSpeed.IsBalance(), ShouldBeFalse)
		So(model.ChairRise.Title(), ShouldEqual, "five-times chair rise")
		So(model.TestID("x").Title(), ShouldEqual, "x")
	})
}

func TestNewCase(t *testing.T) {
	Convey("Given five durations", t, func() {
		c, err := model.NewCase(10, 10, 10, 4.5, 12)

		Convey("Then the case holds them in battery order with an id", func() {
			So(err, ShouldBeNil)
			So(c.ID, ShouldNotBeEmpty)
			got := c.Measurements()
			So(len(got), ShouldEqual, 5)
			for i, test := range model.BatteryOrder {
				So(got[i].Test, ShouldEqual, test)
			}
			So(got[3].Seconds, ShouldEqual, 4.5)
		})

		Convey("When one duration is invalid", func() {
			_, err := model.NewCase(10, 10, -1, 4.5, 12)

			Convey("Then the case is rejected", func() {
				So(errors.Is(err, model.ErrMalformedInput), ShouldBeTrue)
			})
		})
	})
}

func TestFactSet(t *testing.T) {
	Convey("Given a fact set", t, func() {
		scores := model.SubScores{Side: 1, Semi: 1, Tandem: 1, Gait: 2, Chair: 1}
		facts := []model.Fact{
			{Label: model.LabelBalanceSide, Value: "a"},
			{Label: model.LabelBalanceSemi, Value: "b"},
			{Label: model.LabelBalanceTandem, Value: "c"},
			{Label: model.LabelGait, Value: "d"},
			{Label: model.LabelChair, Value: "e"},
			{Label: model.LabelTotalScore, Value: "6"},
			{Label: model.LabelInterpretation, Value: "f"},
		}
		fs := model.NewFactSet("case-1", scores, facts)

		Convey("Then totals are derived from the sub-scores", func() {
			So(fs.BalanceTotal, ShouldEqual, 3)
			So(fs.Composite, ShouldEqual, 6)
			So(fs.Composite, ShouldEqual, scores.Sum())
		})

		Convey("Then labels follow the fixed order", func() {
			if diff := cmp.Diff(model.FactOrder, fs.Labels()); diff != "" {
				t.Errorf("labels mismatch (-want +got):\n%s", diff)
			}
		})

		Convey("Then values are looked up by label", func() {
			v, ok := fs.Value(model.LabelTotalScore)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "6")
			_, ok = fs.Value(model.Label("nope"))
			So(ok, ShouldBeFalse)
		})

		Convey("Then the returned facts are a copy", func() {
			got := fs.Facts()
			got[0].Value = "changed"
			v, _ := fs.Value(model.LabelBalanceSide)
			So(v, ShouldEqual, "a")
			facts[1].Value = "changed"
			v, _ = fs.Value(model.LabelBalanceSemi)
			So(v, ShouldEqual, "b")
		})
	})
}
