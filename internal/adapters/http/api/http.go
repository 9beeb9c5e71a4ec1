// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/sppb/internal/app"
	"github.com/okian/sppb/internal/domain/model"
	"github.com/okian/sppb/internal/domain/rules"
)

// Assessor runs one case through the pipeline.
type Assessor interface {
	Assess(ctx context.Context, c model.Case) (service.Outcome, error)
}

// RuleSource exposes the stored rule tables.
type RuleSource interface {
	Table(ctx context.Context) (rules.Table, error)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() service.Stats
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	assessHandler *AssessHandler
	rulesHandler  *RulesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(assessor Assessor, ruleSource RuleSource, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		assessHandler: NewAssessHandler(assessor),
		rulesHandler:  NewRulesHandler(ruleSource),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/assess", MetricsMiddleware(s.assessHandler.HandleAssess, "assess"))
	mux.HandleFunc("/rules/validate", MetricsMiddleware(s.rulesHandler.HandleValidate, "rules_validate"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
