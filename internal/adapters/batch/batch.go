// Package batch reads headerless case rows and writes them back with the
// verification columns appended.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/sppb/internal/domain/model"
	"github.com/okian/sppb/pkg/metrics"
)

// Row layout.
const (
	// ExpectedColumn holds the externally computed composite.
	ExpectedColumn = 10
	// MinColumns is the shortest valid row.
	MinColumns = ExpectedColumn + 1
)

// Status is the verification outcome of one row.
type Status string

// Row statuses.
const (
	StatusPass  Status = metrics.StatusPass
	StatusFail  Status = metrics.StatusFail
	StatusError Status = metrics.StatusError
)

// Verify compares a computed composite against the expected value.
func Verify(composite int, expected float64) Status {
	if math.Abs(float64(composite)-expected) < 1e-9 {
		return StatusPass
	}
	return StatusFail
}

// Row is one input record.
type Row struct {
	// Line is the 1-based record number in the input.
	Line  int
	Cells []string
}

// Parse converts the row into a case and its expected composite. A short
// row or a non-numeric cell is model.ErrMalformedInput.
func (r Row) Parse() (model.Case, float64, error) {
	if len(r.Cells) < MinColumns {
		return model.Case{}, 0, fmt.Errorf("%w: row %d has %d columns, need at least %d",
			model.ErrMalformedInput, r.Line, len(r.Cells), MinColumns)
	}
	durations := make([]float64, len(model.BatteryOrder))
	for i, test := range model.BatteryOrder {
		m, err := model.ParseSeconds(test, r.Cells[i])
		if err != nil {
			return model.Case{}, 0, fmt.Errorf("row %d: %w", r.Line, err)
		}
		durations[i] = m.Seconds
	}
	raw := strings.TrimSpace(r.Cells[ExpectedColumn])
	expected, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(expected) || math.IsInf(expected, 0) {
		return model.Case{}, 0, fmt.Errorf("%w: row %d: expected composite %q is not a number",
			model.ErrMalformedInput, r.Line, raw)
	}
	c, err := model.NewCase(durations[0], durations[1], durations[2], durations[3], durations[4])
	if err != nil {
		return model.Case{}, 0, fmt.Errorf("row %d: %w", r.Line, err)
	}
	return c, expected, nil
}

// Reader yields rows in input order.
type Reader struct {
	csv  *csv.Reader
	line int
}

// NewReader creates a reader over headerless CSV input. Rows may have any
// number of cells.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &Reader{csv: cr}
}

// Next returns the next row, or io.EOF after the last one. A record the CSV
// layer cannot parse is returned as a row with the error, so the caller can
// record it and continue.
func (r *Reader) Next() (Row, error) {
	cells, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return Row{}, io.EOF
	}
	r.line++
	row := Row{Line: r.line, Cells: cells}
	if err != nil {
		return row, fmt.Errorf("%w: row %d: %w", model.ErrMalformedInput, r.line, err)
	}
	return row, nil
}

// Result holds the four appended columns.
type Result struct {
	Composite int
	Status    Status
	Error     string
	Report    string
}

// Writer appends results to rows and writes them as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Write emits the row cells followed by composite, status, error and report,
// then flushes so output lines up with progress.
func (w *Writer) Write(row Row, res Result) error {
	out := make([]string, 0, len(row.Cells)+4)
	out = append(out, row.Cells...)
	out = append(out, strconv.Itoa(res.Composite), string(res.Status), res.Error, res.Report)
	if err := w.csv.Write(out); err != nil {
		return fmt.Errorf("write row %d: %w", row.Line, err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("flush row %d: %w", row.Line, err)
	}
	return nil
}
