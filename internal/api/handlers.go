package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"loadplan/internal/catalog"
	"loadplan/internal/metrics"
	"loadplan/internal/model"
	"loadplan/internal/plan"
)

// EvaluateHandler handles POST /v1/evaluate
func (s *Server) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.CanPlan() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "planner or admin required", r.URL.Path)
		return
	}
	var req model.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.TenantID == "" {
		req.TenantID = s.tenantOf(r)
	}
	if err := validateRoute(&req.Route); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid route", err.Error(), r.URL.Path)
		return
	}
	ev, err := plan.Evaluate(s.Catalog, req.Route.ToPlan(), req.Settings.ToPlan())
	if err != nil {
		s.writeEngineProblem(w, r, err)
		return
	}
	out := model.FromEvaluation(ev)
	if req.Persist {
		saved, err := s.Store.SaveEvaluation(r.Context(), req.TenantID, out)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save evaluation failed", err.Error(), r.URL.Path)
			return
		}
		out = saved
	}
	s.publishEvaluation(r, req.TenantID, out)
	writeJSON(w, http.StatusOK, out)
}

// BatchEvaluateHandler handles POST /v1/evaluate/batch
func (s *Server) BatchEvaluateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.CanPlan() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "planner or admin required", r.URL.Path)
		return
	}
	var req model.BatchEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.TenantID == "" {
		req.TenantID = s.tenantOf(r)
	}
	routes := make([]plan.Route, 0, len(req.Routes))
	for i := range req.Routes {
		if err := validateRoute(&req.Routes[i]); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid route", err.Error(), r.URL.Path)
			return
		}
		routes = append(routes, req.Routes[i].ToPlan())
	}
	evs, err := plan.EvaluateBatch(r.Context(), s.Catalog, routes, req.Settings.ToPlan())
	if err != nil {
		s.writeEngineProblem(w, r, err)
		return
	}
	items := make([]model.EvaluationOut, 0, len(evs))
	feasible := 0
	for _, ev := range evs {
		out := model.FromEvaluation(ev)
		if req.Persist {
			saved, err := s.Store.SaveEvaluation(r.Context(), req.TenantID, out)
			if err != nil {
				writeProblem(w, http.StatusInternalServerError, "Save evaluation failed", err.Error(), r.URL.Path)
				return
			}
			out = saved
		}
		s.publishEvaluation(r, req.TenantID, out)
		if out.Feasible {
			feasible++
		}
		items = append(items, out)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"feasible":   feasible,
		"infeasible": len(items) - feasible,
	})
}

// ScoreHandler handles POST /v1/score
func (s *Server) ScoreHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	criteria := model.CriteriaToPlan(req.Criteria)
	if len(criteria) == 0 {
		criteria = plan.DefaultCriteria()
	}
	score, err := plan.Score(criteria, req.Metrics.ToPlan(), req.Norms.ToPlan())
	if err != nil {
		s.writeEngineProblem(w, r, err)
		return
	}
	metrics.ScoreValues.Observe(score)
	writeJSON(w, http.StatusOK, model.ScoreResponse{Score: score})
}

// WhatIfHandler handles POST /v1/whatif
func (s *Server) WhatIfHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.CanPlan() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "planner or admin required", r.URL.Path)
		return
	}
	var req model.WhatIfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.TenantID == "" {
		req.TenantID = s.tenantOf(r)
	}
	if err := validateWhatIfRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid scenario", err.Error(), r.URL.Path)
		return
	}
	res, err := plan.WhatIf(req.Baseline.ToPlan(), req.Deltas.ToPlan(), req.Bands.ToPlan())
	if err != nil {
		s.writeEngineProblem(w, r, err)
		return
	}
	out := model.FromScenarioResult(req.Name, res)
	metrics.Scenarios.WithLabelValues(out.RiskLevel).Inc()
	data := map[string]any{
		"name":                out.Name,
		"riskLevel":           out.RiskLevel,
		"costImpactPct":       out.CostImpactPct,
		"efficiencyImpactPct": out.EfficiencyImpactPct,
	}
	s.Pub.Emit(r.Context(), req.TenantID, "scenario.analyzed", data)
	s.Broker.Publish(req.TenantID, Event{Type: "scenario.analyzed", Data: data})
	writeJSON(w, http.StatusOK, out)
}

// CatalogSizesHandler handles GET /v1/catalog/size-categories
func (s *Server) CatalogSizesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": s.Catalog.SizeCategories()})
}

// CatalogStandardsHandler handles GET /v1/catalog/service-standards
func (s *Server) CatalogStandardsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": s.Catalog.ServiceStandards()})
}

// EvaluationsHandler handles GET /v1/evaluations
func (s *Server) EvaluationsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tenant := s.tenantOf(r)
	cursor := r.URL.Query().Get("cursor")
	items, next, err := s.Store.ListEvaluations(r.Context(), tenant, cursor, parseLimit(r, 100))
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List evaluations failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// EvaluationByIDHandler handles GET /v1/evaluations/{id}
func (s *Server) EvaluationByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/evaluations/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tenant := s.tenantOf(r)
	ev, err := s.Store.GetEvaluation(r.Context(), tenant, id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Evaluation not found", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// SettingsPresetsHandler handles POST/GET /v1/settings-presets
func (s *Server) SettingsPresetsHandler(w http.ResponseWriter, r *http.Request) {
	tenant := s.tenantOf(r)
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name     string           `json:"name"`
			Settings model.SettingsIn `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if req.Name == "" {
			writeProblem(w, http.StatusBadRequest, "Missing name", "", r.URL.Path)
			return
		}
		if err := req.Settings.ToPlan().Validate(); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid settings", err.Error(), r.URL.Path)
			return
		}
		preset, err := s.Store.SaveSettingsPreset(r.Context(), tenant, req.Name, req.Settings)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save preset failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, preset)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		items, next, err := s.Store.ListSettingsPresets(r.Context(), tenant, cursor, parseLimit(r, 100))
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List presets failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SettingsPresetByIDHandler handles GET/DELETE /v1/settings-presets/{id}
func (s *Server) SettingsPresetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/settings-presets/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	tenant := s.tenantOf(r)
	switch r.Method {
	case http.MethodGet:
		preset, err := s.Store.GetSettingsPreset(r.Context(), tenant, id)
		if err != nil {
			writeProblem(w, http.StatusNotFound, "Preset not found", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, preset)
	case http.MethodDelete:
		if err := s.Store.DeleteSettingsPreset(r.Context(), tenant, id); err != nil {
			writeProblem(w, http.StatusNotFound, "Preset not found", err.Error(), r.URL.Path)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// CriteriaSetsHandler handles POST/GET /v1/criteria-sets
func (s *Server) CriteriaSetsHandler(w http.ResponseWriter, r *http.Request) {
	tenant := s.tenantOf(r)
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name     string              `json:"name"`
			Criteria []model.CriterionIn `json:"criteria"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if req.Name == "" {
			writeProblem(w, http.StatusBadRequest, "Missing name", "", r.URL.Path)
			return
		}
		if len(req.Criteria) == 0 {
			writeProblem(w, http.StatusBadRequest, "Missing criteria", "", r.URL.Path)
			return
		}
		cs, err := s.Store.SaveCriteriaSet(r.Context(), tenant, req.Name, req.Criteria)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save criteria set failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, cs)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		items, next, err := s.Store.ListCriteriaSets(r.Context(), tenant, cursor, parseLimit(r, 100))
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List criteria sets failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// CriteriaSetByIDHandler handles GET/DELETE /v1/criteria-sets/{id}
func (s *Server) CriteriaSetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/criteria-sets/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	tenant := s.tenantOf(r)
	switch r.Method {
	case http.MethodGet:
		cs, err := s.Store.GetCriteriaSet(r.Context(), tenant, id)
		if err != nil {
			writeProblem(w, http.StatusNotFound, "Criteria set not found", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, cs)
	case http.MethodDelete:
		if err := s.Store.DeleteCriteriaSet(r.Context(), tenant, id); err != nil {
			writeProblem(w, http.StatusNotFound, "Criteria set not found", err.Error(), r.URL.Path)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req model.SubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if req.TenantID == "" {
			req.TenantID = p.Tenant
		}
		if req.URL == "" || len(req.Events) == 0 {
			writeProblem(w, http.StatusBadRequest, "Missing url or events", "", r.URL.Path)
			return
		}
		sub, err := s.Store.CreateSubscription(r.Context(), req)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		items, next, err := s.Store.ListSubscriptions(r.Context(), p.Tenant, cursor, parseLimit(r, 100))
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List subscriptions failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	if err := s.Store.DeleteSubscription(r.Context(), p.Tenant, id); err != nil {
		writeProblem(w, http.StatusNotFound, "Subscription not found", err.Error(), r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatsHandler handles GET /v1/admin/stats
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	stats, err := s.Store.EvaluationStats(r.Context(), p.Tenant)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Stats failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// publishEvaluation records metrics and fans the result out to webhooks
// and stream subscribers.
func (s *Server) publishEvaluation(r *http.Request, tenant string, out model.EvaluationOut) {
	feasible := "true"
	eventType := "evaluation.completed"
	if !out.Feasible {
		feasible = "false"
		eventType = "evaluation.infeasible"
	}
	metrics.Evaluations.WithLabelValues(feasible).Inc()
	for _, v := range out.Violations {
		metrics.Violations.WithLabelValues(v.Kind).Inc()
	}
	data := map[string]any{
		"evaluationId": out.ID,
		"routeId":      out.RouteID,
		"feasible":     out.Feasible,
		"violations":   len(out.Violations),
	}
	s.Pub.Emit(r.Context(), tenant, eventType, data)
	s.Broker.Publish(tenant, Event{Type: eventType, Data: data})
}

// writeEngineProblem maps engine errors to problem responses. Reference
// data misses and configuration errors are client faults.
func (s *Server) writeEngineProblem(w http.ResponseWriter, r *http.Request, err error) {
	var cfgErr *plan.ConfigError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeProblem(w, http.StatusBadRequest, "Unknown catalog reference", err.Error(), r.URL.Path)
	case errors.As(err, &cfgErr):
		writeProblem(w, http.StatusBadRequest, "Invalid configuration", err.Error(), r.URL.Path)
	case errors.Is(err, plan.ErrNoCriteriaEnabled):
		writeProblem(w, http.StatusBadRequest, "No criteria enabled", err.Error(), r.URL.Path)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeProblem(w, http.StatusServiceUnavailable, "Request cancelled", err.Error(), r.URL.Path)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("evaluation failed")
		writeProblem(w, http.StatusInternalServerError, "Evaluation failed", err.Error(), r.URL.Path)
	}
}
