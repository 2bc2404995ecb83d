package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes a JSON error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAllocation handles GET /api/allocation
func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	targets, err := s.allocation.Targets()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"targets": targets})
}

// handlePlan handles GET /api/plan: computes a purchase plan from live
// account state without placing anything.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	plan, snapshot, err := s.cycle.Preview(r.Context())
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"plan":        plan,
		"cash":        snapshot.Cash,
		"total_value": snapshot.TotalValue(),
	})
}

// handleRuns handles GET /api/runs
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	runs, err := s.reporting.Recent(limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// handleInvestNow handles POST /api/invest/run: triggers a full
// investment cycle outside the schedule. The configured dry-run gate
// still applies.
func (s *Server) handleInvestNow(w http.ResponseWriter, r *http.Request) {
	if err := s.sched.RunNow(s.cycle); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
