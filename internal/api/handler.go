// Package api provides the HTTP surface of the privacy firewall: policy
// analysis and per-user rule management.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/analyzer"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/classifier"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/scraper"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/types"
)

// AnalyzerService runs a full policy analysis for one user.
type AnalyzerService interface {
	Analyze(ctx context.Context, policyURL string, userID int64) (*types.AnalysisResult, error)
}

// Store is the persistence surface for rule management, violation audit
// reads, and health checks.
type Store interface {
	Ping(ctx context.Context) error
	RulesForUser(ctx context.Context, userID int64) ([]types.UserRule, error)
	ReplaceRules(ctx context.Context, userID int64, rules []types.UserRule) error
	SiteByDomain(ctx context.Context, domain string) (*types.Site, error)
	ViolationsForUserAndSite(ctx context.Context, userID, siteID int64) ([]types.ViolationRecord, error)
}

// Handler manages API endpoints
type Handler struct {
	analyzer   AnalyzerService
	store      Store
	discoverer Discoverer
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// handleHealth reports liveness, including a storage round trip.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed against storage")
		writeError(w, http.StatusServiceUnavailable, errCodeUnavailable, "storage unavailable")

		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   "privacy-firewall",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// AnalyzeRequest represents a policy analysis request
type AnalyzeRequest struct {
	PolicyURL string `json:"policy_url"`
	UserID    int64  `json:"user_id"`
}

// AnalyzeResponse represents the analysis response
type AnalyzeResponse struct {
	Success bool                  `json:"success"`
	Data    *types.AnalysisResult `json:"data,omitempty"`
	Error   *Error                `json:"error,omitempty"`
}

// handleAnalyzePolicy runs the analysis pipeline for the requested policy URL.
func (h *Handler) handleAnalyzePolicy(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errCodeInvalidRequest, "invalid request body")
		return
	}

	if req.PolicyURL == "" {
		writeError(w, http.StatusBadRequest, errCodeValidation, "policy_url is required")
		return
	}

	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, errCodeValidation, "user_id must be a positive integer")
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req.PolicyURL, req.UserID)
	if err != nil {
		h.writeAnalyzeError(w, req.PolicyURL, err)
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Success: true,
		Data:    result,
	})
}

// writeAnalyzeError maps pipeline failures to HTTP statuses. Upstream
// failures (fetch, classification) are gateway errors, storage failures are
// unavailability, anything else is internal.
func (h *Handler) writeAnalyzeError(w http.ResponseWriter, policyURL string, err error) {
	log.Error().Err(err).Str("policy_url", policyURL).Msg("policy analysis failed")

	switch {
	case errors.Is(err, analyzer.ErrInvalidPolicyURL):
		writeError(w, http.StatusBadRequest, errCodeValidation, err.Error())
	case errors.Is(err, scraper.ErrFetchFailed):
		writeError(w, http.StatusBadGateway, errCodeUpstream, "failed to fetch policy document")
	case errors.Is(err, classifier.ErrClassificationService), errors.Is(err, classifier.ErrInvalidResponse):
		writeError(w, http.StatusBadGateway, errCodeUpstream, "classification service failed")
	case errors.Is(err, analyzer.ErrPersistence):
		writeError(w, http.StatusServiceUnavailable, errCodeUnavailable, "storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, errCodeInternal, "analysis failed")
	}
}
