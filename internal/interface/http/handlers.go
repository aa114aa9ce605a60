package http

import (
	"encoding/json"
	"net/http"

	"github.com/arts-recruitment/dashboard/config"
	"github.com/arts-recruitment/dashboard/internal/application/command"
	"github.com/arts-recruitment/dashboard/internal/application/query"
	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/domain/shared"
	"github.com/arts-recruitment/dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	endpoints := map[string]string{
		"health":    "/health",
		"dataset":   "/dashboard_data.json",
		"schools":   "/api/v1/schools",
		"programs":  "/api/v1/schools/{school}/programs",
		"students":  "/api/v1/schools/{school}/programs/{program}/students",
		"dashboard": "/api/v1/dashboard",
	}
	if s.enabled(config.FeatureRecruitmentReport) {
		endpoints["report"] = "/api/v1/report"
	}
	if s.enabled(config.FeatureDatasetReload) {
		endpoints["reload"] = "POST /api/v1/dataset/reload"
	}

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"name":        "Arts Recruitment Dashboard API",
		"version":     s.config.Version,
		"description": "Classified enrollment rosters for middle school arts programs",
		"endpoints":   endpoints,
	})
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		writeJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": status.Message,
		})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// DATASET HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// datasetDocument is the wire form of the loaded dataset.
type datasetDocument struct {
	Metadata enrollment.Metadata `json:"metadata"`
	Schools  enrollment.Dataset  `json:"schools"`
}

// handleDatasetDocument handles GET /dashboard_data.json
// The body is the loaded snapshot re-encoded as {metadata, schools}, without
// the API envelope. The ETag is the fingerprint of the source bytes.
func (s *Server) handleDatasetDocument(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "not_implemented", "Dataset store not configured")
		return
	}
	snap, err := s.deps.Store.Current()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	etag := `"` + snap.Fingerprint + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(datasetDocument{Metadata: snap.Metadata, Schools: snap.Dataset})
}

// handleReload handles POST /api/v1/dataset/reload
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.deps.Reload == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "not_implemented", "Reload handler not configured")
		return
	}

	result, err := s.deps.Reload.Handle(r.Context(), command.ReloadDatasetCommand{
		Reason:        "manual",
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{Fingerprint: result.Fingerprint})
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListSchools handles GET /api/v1/schools
func (s *Server) handleListSchools(w http.ResponseWriter, r *http.Request) {
	if s.deps.Catalog == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "not_implemented", "Catalog handler not configured")
		return
	}

	result, err := s.deps.Catalog.Schools(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{
		Fingerprint: result.Fingerprint,
		TotalCount:  len(result.Schools),
	})
}

// handleListPrograms handles GET /api/v1/schools/{school}/programs
func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	if s.deps.Catalog == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "not_implemented", "Catalog handler not configured")
		return
	}

	result, err := s.deps.Catalog.Programs(r.Context(), r.PathValue("school"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{TotalCount: len(result.Programs)})
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetRoster handles GET /api/v1/schools/{school}/programs/{program}/students
func (s *Server) handleGetRoster(w http.ResponseWriter, r *http.Request) {
	if s.deps.Roster == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "not_implemented", "Roster handler not configured")
		return
	}

	q := query.GetRosterQuery{
		School:  r.PathValue("school"),
		Program: r.PathValue("program"),
		Search:  r.URL.Query().Get("q"),
		Filter:  getQueryParam(r, "filter", ""),
	}

	result, err := s.deps.Roster.Handle(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{TotalCount: result.Total})
}

// handleGetDashboard handles GET /api/v1/dashboard
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.Dashboard == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "not_implemented", "Dashboard handler not configured")
		return
	}

	q := query.GetDashboardQuery{
		School:  getQueryParam(r, "school", ""),
		Program: getQueryParam(r, "program", ""),
		Search:  r.URL.Query().Get("q"),
		Filter:  getQueryParam(r, "filter", ""),
	}

	result, err := s.deps.Dashboard.Handle(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// REPORT HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// handleGetReport handles GET /api/v1/report
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.deps.Report == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "not_implemented", "Report handler not configured")
		return
	}

	result, err := s.deps.Report.Handle(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{TotalCount: len(result.Recruits)})
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeError maps domain errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch shared.KindOf(err) {
	case shared.KindUnavailable:
		log.Warn("dataset unavailable", logger.Err(err))
		writeAPIError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    "dataset_unavailable",
			Message: "The dataset could not be loaded. Retry with POST /api/v1/dataset/reload.",
			Details: err.Error(),
		})
	case shared.KindValidation:
		writeAPIError(w, r, http.StatusBadRequest, &APIError{
			Code:    "validation_error",
			Message: err.Error(),
			Fields:  query.FieldErrors(err),
		})
	case shared.KindNotFound:
		writeJSONError(w, r, http.StatusNotFound, "not_found", err.Error())
	default:
		log.Error("request failed", logger.Err(err))
		writeJSONError(w, r, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
