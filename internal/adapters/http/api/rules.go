package api

import (
	"fmt"
	"net/http"

	"github.com/okian/sppb/internal/domain/rules"
	"github.com/okian/sppb/internal/domain/types"
)

// RulesHandler reports on the stored rule tables.
type RulesHandler struct {
	source RuleSource
}

// NewRulesHandler creates a new rules handler.
func NewRulesHandler(source RuleSource) *RulesHandler {
	return &RulesHandler{source: source}
}

// HandleValidate handles GET /rules/validate requests.
func (h *RulesHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	table, err := h.source.Table(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "repository_unavailable", fmt.Errorf("%w: %w", ErrUnavailable, err))
		return
	}
	issues := rules.Validate(table)
	resp := types.RuleValidation{Valid: len(issues) == 0, Issues: make([]types.RuleIssue, 0, len(issues))}
	for _, issue := range issues {
		resp.Issues = append(resp.Issues, types.RuleIssue{
			Kind:   string(issue.Kind),
			Test:   string(issue.Test),
			Detail: issue.Detail,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
