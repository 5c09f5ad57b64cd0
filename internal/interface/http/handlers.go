// Package http implements the REST API for the Tehillim reading tracker.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/analist0/tehillim-hub/internal/application/command"
	"github.com/analist0/tehillim-hub/internal/application/query"
	"github.com/analist0/tehillim-hub/internal/domain/reading"
	"github.com/analist0/tehillim-hub/internal/domain/shared"
	"github.com/analist0/tehillim-hub/pkg/logger"
)

// Identity headers. A named user wins over an anonymous session when both
// are present, matching reading.Identity.Key.
const (
	headerUserHandle   = "X-User-Handle"
	headerSessionToken = "X-Session-Token"
)

// identityFrom resolves the caller's identity from request headers.
func identityFrom(r *http.Request) reading.Identity {
	return reading.NewIdentity(
		r.Header.Get(headerUserHandle),
		r.Header.Get(headerSessionToken),
	)
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrMissingIdentity):
		writeJSONError(w, http.StatusBadRequest, "missing_identity",
			"Provide X-User-Handle or X-Session-Token")
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", "Resource not found")
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Request failed")
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Unknown endpoint")
		return
	}

	info := map[string]interface{}{
		"name":    "Tehillim Hub API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":       "/health",
			"progress":     "/api/v1/progress",
			"statistics":   "/api/v1/statistics",
			"achievements": "/api/v1/achievements",
			"cycle":        "/api/v1/cycle/position",
			"today":        "/api/v1/reading/today",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRecordProgress handles POST /api/v1/progress
func (s *Server) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxBodyBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var req command.RecordProgressRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	// Headers override body handles so the identity the whole API sees is
	// consistent.
	identity := identityFrom(r)
	if !identity.IsZero() {
		req.UserHandle = identity.UserHandle
		req.SessionHandle = identity.SessionHandle
	}

	result, err := s.deps.RecordProgressHandler.Handle(r.Context(), req)
	if err != nil {
		s.logger.Error("failed to record progress", logger.Err(err),
			logger.Identity(identity.Key()), logger.Chapter(req.Chapter))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetProgress handles GET /api/v1/progress/{chapter}
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	chapter, err := strconv.Atoi(r.PathValue("chapter"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Chapter must be a number")
		return
	}

	identity := identityFrom(r)
	record, err := s.deps.GetProgressHandler.Handle(r.Context(), query.GetProgressRequest{
		IdentityKey: identity.Key(),
		Chapter:     chapter,
	})
	if err != nil {
		// A chapter never reported is an answer, not an error: null data.
		if shared.IsNotFound(err) {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		s.logger.Error("failed to get progress", logger.Err(err),
			logger.Identity(identity.Key()), logger.Chapter(chapter))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleListProgress handles GET /api/v1/progress
func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	records, err := s.deps.ListProgressHandler.Handle(r.Context(), identity.Key())
	if err != nil {
		s.logger.Error("failed to list progress", logger.Err(err), logger.Identity(identity.Key()))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS & ACHIEVEMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetStatistics handles GET /api/v1/statistics
func (s *Server) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	snapshot, err := s.deps.GetStatisticsHandler.Handle(r.Context(), identity.Key())
	if err != nil {
		s.logger.Error("failed to get statistics", logger.Err(err), logger.Identity(identity.Key()))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// handleListAchievements handles GET /api/v1/achievements
func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	listing, err := s.deps.ListAchievementsHandler.Handle(r.Context(), identity.Key())
	if err != nil {
		s.logger.Error("failed to list achievements", logger.Err(err), logger.Identity(identity.Key()))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// handleCheckAchievements handles POST /api/v1/achievements/check
func (s *Server) handleCheckAchievements(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	result, err := s.deps.CheckAchievementsHandler.Handle(r.Context(), command.CheckAchievementsRequest{
		IdentityKey: identity.Key(),
	})
	if err != nil {
		s.logger.Error("failed to check achievements", logger.Err(err), logger.Identity(identity.Key()))
		writeDomainError(w, err)
		return
	}

	for _, d := range result.NewlyUnlocked {
		s.logger.Info("achievement unlocked",
			logger.Identity(identity.Key()), logger.AchievementID(d.ID))
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// CYCLE & DAILY READING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetCyclePosition handles GET /api/v1/cycle/position
func (s *Server) handleGetCyclePosition(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetCyclePositionHandler.Handle(getQueryParam(r, "date", ""))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetDailyReading handles GET /api/v1/reading/today
func (s *Server) handleGetDailyReading(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetDailyReadingHandler.Handle(r.Context())
	if err != nil {
		s.logger.Error("failed to get daily reading", logger.Err(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// IDENTITY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleMergeIdentity handles POST /api/v1/identity/merge
func (s *Server) handleMergeIdentity(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxBodyBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var req command.MergeIdentityRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	// Headers fill in whatever the body left out.
	if req.SessionHandle == "" {
		req.SessionHandle = r.Header.Get(headerSessionToken)
	}
	if req.UserHandle == "" {
		req.UserHandle = r.Header.Get(headerUserHandle)
	}

	result, err := s.deps.MergeIdentityHandler.Handle(r.Context(), req)
	if err != nil {
		s.logger.Error("failed to merge identity", logger.Err(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
