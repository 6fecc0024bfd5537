package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/discovery"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/domain"
)

// Discoverer locates candidate privacy policy pages for a domain.
type Discoverer interface {
	Discover(ctx context.Context, domain string) ([]discovery.Candidate, error)
}

// DiscoverRequest represents a policy discovery request
type DiscoverRequest struct {
	Domain string `json:"domain"`
}

// DiscoverResult is the payload of a successful discovery response.
type DiscoverResult struct {
	Domain     string                `json:"domain"`
	PolicyURL  string                `json:"policy_url,omitempty"`
	Candidates []discovery.Candidate `json:"candidates"`
}

// DiscoverResponse represents the discovery response
type DiscoverResponse struct {
	Success bool            `json:"success"`
	Data    *DiscoverResult `json:"data,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// handleDiscoverPolicy probes a domain for its privacy policy URL.
func (h *Handler) handleDiscoverPolicy(w http.ResponseWriter, r *http.Request) {
	var req DiscoverRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errCodeInvalidRequest, "invalid request body")
		return
	}

	info, err := domain.Parse(req.Domain)
	if err != nil {
		writeError(w, http.StatusBadRequest, errCodeValidation, "invalid domain")
		return
	}

	candidates, err := h.discoverer.Discover(r.Context(), info.Domain)
	if err != nil {
		log.Error().Err(err).Str("domain", info.Domain).Msg("policy discovery failed")

		if errors.Is(err, discovery.ErrInvalidDomain) {
			writeError(w, http.StatusBadRequest, errCodeValidation, "invalid domain")
			return
		}

		writeError(w, http.StatusInternalServerError, errCodeInternal, "policy discovery failed")

		return
	}

	if candidates == nil {
		candidates = []discovery.Candidate{}
	}

	result := &DiscoverResult{
		Domain:     info.Domain,
		Candidates: candidates,
	}

	// Candidates come pre-ranked, so the first one is the best guess.
	if len(candidates) > 0 {
		result.PolicyURL = candidates[0].URL
	}

	writeJSON(w, http.StatusOK, DiscoverResponse{
		Success: true,
		Data:    result,
	})
}
