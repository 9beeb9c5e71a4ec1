package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/sppb/internal/adapters/repository"
	service "github.com/okian/sppb/internal/app"
	"github.com/okian/sppb/internal/domain/model"
	"github.com/okian/sppb/internal/domain/types"
)

const maxAssessBody = 1 << 16

// AssessHandler handles assessment requests.
type AssessHandler struct {
	assessor Assessor
}

// NewAssessHandler creates a new assess handler.
func NewAssessHandler(assessor Assessor) *AssessHandler {
	return &AssessHandler{assessor: assessor}
}

// HandleAssess handles POST /assess requests. A generation failure still
// returns 200 with the scores and the failure text.
func (h *AssessHandler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req types.AssessRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAssessBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	c, err := newCase(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	out, err := h.assessor.Assess(r.Context(), c)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "repository_unavailable", fmt.Errorf("%w: %w", ErrUnavailable, err))
		return
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, toAssessment(out))
}

func newCase(req types.AssessRequest) (model.Case, error) {
	fields := []struct {
		name string
		v    *float64
	}{
		{"side", req.Side}, {"semi", req.Semi}, {"tandem", req.Tandem}, {"gait", req.Gait}, {"chair", req.Chair},
	}
	durations := make([]float64, len(fields))
	for i, f := range fields {
		if f.v == nil {
			return model.Case{}, fmt.Errorf("%w: missing %s", model.ErrMalformedInput, f.name)
		}
		durations[i] = *f.v
	}
	return model.NewCase(durations[0], durations[1], durations[2], durations[3], durations[4])
}

func toAssessment(out service.Outcome) types.Assessment {
	fs := out.Facts
	a := types.Assessment{
		CaseID: out.CaseID,
		Scores: types.Scores{
			Side:   fs.Scores.Side,
			Semi:   fs.Scores.Semi,
			Tandem: fs.Scores.Tandem,
			Gait:   fs.Scores.Gait,
			Chair:  fs.Scores.Chair,
		},
		BalanceTotal: fs.BalanceTotal,
		Composite:    fs.Composite,
		Report:       out.Report,
	}
	for _, f := range fs.Facts() {
		a.Facts = append(a.Facts, types.Fact{Label: string(f.Label), Value: f.Value})
	}
	if out.GenerationErr != nil {
		a.GenerationError = service.GenerationCause(out.GenerationErr).Error()
	}
	return a
}
