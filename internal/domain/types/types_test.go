package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/sppb/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAssessRequest(t *testing.T) {
	Convey("Given an assess request body", t, func() {
		var req types.AssessRequest
		err := json.Unmarshal([]byte(`{"side":0,"semi":10,"gait":4.5}`), &req)

		Convey("Then zero durations and missing fields are distinguishable", func() {
			So(err, ShouldBeNil)
			So(req.Side, ShouldNotBeNil)
			So(*req.Side, ShouldEqual, 0)
			So(*req.Gait, ShouldEqual, 4.5)
			So(req.Tandem, ShouldBeNil)
			So(req.Chair, ShouldBeNil)
		})
	})
}

func TestAssessment(t *testing.T) {
	Convey("Given an assessment without a report", t, func() {
		body, err := json.Marshal(types.Assessment{CaseID: "c-1", Composite: 6, GenerationError: "backend down"})

		Convey("Then the report field is omitted and the failure is present", func() {
			So(err, ShouldBeNil)
			So(string(body), ShouldNotContainSubstring, `"report"`)
			So(string(body), ShouldContainSubstring, `"generation_error":"backend down"`)
			So(string(body), ShouldContainSubstring, `"composite":6`)
		})
	})
}
