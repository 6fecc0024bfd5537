package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/domain"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/types"
)

// ViolationsResponse represents the violation audit listing response
type ViolationsResponse struct {
	Success bool                    `json:"success"`
	Data    []types.ViolationRecord `json:"data"`
	Error   *Error                  `json:"error,omitempty"`
}

// handleGetViolations lists the recorded violations for one user against one
// site, identified by the domain query parameter. A domain that was never
// analyzed yields an empty list rather than an error.
func (h *Handler) handleGetViolations(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	rawDomain := r.URL.Query().Get("domain")
	if rawDomain == "" {
		writeError(w, http.StatusBadRequest, errCodeValidation, "domain query parameter is required")
		return
	}

	info, err := domain.Parse(rawDomain)
	if err != nil {
		writeError(w, http.StatusBadRequest, errCodeValidation, "invalid domain")
		return
	}

	records := []types.ViolationRecord{}

	site, err := h.store.SiteByDomain(r.Context(), info.Domain)

	switch {
	case errors.Is(err, types.ErrNotFound):
	case err != nil:
		log.Error().Err(err).Str("domain", info.Domain).Msg("failed to look up site for violations")
		writeError(w, http.StatusServiceUnavailable, errCodeUnavailable, "storage unavailable")

		return
	default:
		records, err = h.store.ViolationsForUserAndSite(r.Context(), userID, site.ID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Str("domain", info.Domain).Msg("failed to load violations")
			writeError(w, http.StatusServiceUnavailable, errCodeUnavailable, "storage unavailable")

			return
		}

		if records == nil {
			records = []types.ViolationRecord{}
		}
	}

	writeJSON(w, http.StatusOK, ViolationsResponse{
		Success: true,
		Data:    records,
	})
}
