// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// TestID names one sub-test of the battery.
type TestID string

// The five sub-tests, in battery order.
const (
	SideBySide TestID = "side_by_side"
	SemiTandem TestID = "semi_tandem"
	Tandem     TestID = "tandem"
	GaitSpeed  TestID = "gait_speed"
	ChairRise  TestID = "chair_rise"
)

// BatteryOrder is the fixed order in which sub-tests are recorded and scored.
var BatteryOrder = []TestID{SideBySide, SemiTandem, Tandem, GaitSpeed, ChairRise}

var testNames = map[TestID]string{
	SideBySide: "side-by-side stand",
	SemiTandem: "semi-tandem stand",
	Tandem:     "tandem stand",
	GaitSpeed:  "4 m gait",
	ChairRise:  "five-times chair rise",
}

// Valid reports whether id is one of the battery tests.
func (id TestID) Valid() bool {
	_, ok := testNames[id]
	return ok
}

// Title is the human-readable test name.
func (id TestID) Title() string {
	if name, ok := testNames[id]; ok {
		return name
	}
	return string(id)
}

// IsBalance reports whether id is one of the three balance stands.
func (id TestID) IsBalance() bool {
	return id == SideBySide || id == SemiTandem || id == Tandem
}

// ParseTestID validates a test identifier.
func ParseTestID(s string) (TestID, error) {
	id := TestID(strings.TrimSpace(s))
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTest, s)
	}
	return id, nil
}

// Measurement is one recorded duration for a sub-test.
type Measurement struct {
	Test    TestID
	Seconds float64
}

// NewMeasurement validates and builds a Measurement.
func NewMeasurement(test TestID, seconds float64) (Measurement, error) {
	if !test.Valid() {
		return Measurement{}, fmt.Errorf("%w: %q", ErrUnknownTest, test)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return Measurement{}, fmt.Errorf("%w: %s duration %v must be a non-negative number", ErrMalformedInput, test, seconds)
	}
	return Measurement{Test: test, Seconds: seconds}, nil
}

// ParseSeconds parses a duration typed by an operator or read from a file.
func ParseSeconds(test TestID, raw string) (Measurement, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Measurement{}, fmt.Errorf("%w: %s duration %q is not a number", ErrMalformedInput, test, raw)
	}
	return NewMeasurement(test, v)
}

// Case is one evaluation: the five measurements of a single battery.
type Case struct {
	ID     string
	Side   Measurement
	Semi   Measurement
	Tandem Measurement
	Gait   Measurement
	Chair  Measurement
}

// NewCase builds a case from durations given in battery order.
func NewCase(side, semi, tandem, gait, chair float64) (Case, error) {
	durations := []float64{side, semi, tandem, gait, chair}
	ms := make([]Measurement, len(BatteryOrder))
	for i, test := range BatteryOrder {
		m, err := NewMeasurement(test, durations[i])
		if err != nil {
			return Case{}, err
		}
		ms[i] = m
	}
	return Case{
		ID:     uuid.NewString(),
		Side:   ms[0],
		Semi:   ms[1],
		Tandem: ms[2],
		Gait:   ms[3],
		Chair:  ms[4],
	}, nil
}

// Measurements returns the case's measurements in battery order.
func (c Case) Measurements() []Measurement {
	return []Measurement{c.Side, c.Semi, c.Tandem, c.Gait, c.Chair}
}
