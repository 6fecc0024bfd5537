package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/types"
)

// RuleInput carries one rule in a PUT request body.
type RuleInput struct {
	Practice types.Practice `json:"practice"`
	Allowed  bool           `json:"allowed"`
	Priority int            `json:"priority"`
}

// RulesRequest represents a wholesale rules replacement request
type RulesRequest struct {
	Rules []RuleInput `json:"rules"`
}

// RulesResponse represents the rules listing response
type RulesResponse struct {
	Success bool             `json:"success"`
	Data    []types.UserRule `json:"data"`
	Error   *Error           `json:"error,omitempty"`
}

// handleGetRules lists the rules configured for one user.
func (h *Handler) handleGetRules(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	rules, err := h.store.RulesForUser(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to load user rules")
		writeError(w, http.StatusServiceUnavailable, errCodeUnavailable, "storage unavailable")

		return
	}

	if rules == nil {
		rules = []types.UserRule{}
	}

	writeJSON(w, http.StatusOK, RulesResponse{
		Success: true,
		Data:    rules,
	})
}

// handlePutRules replaces a user's rule set wholesale. The request either
// fully replaces the stored rules or changes nothing.
func (h *Handler) handlePutRules(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req RulesRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errCodeInvalidRequest, "invalid request body")
		return
	}

	rules := make([]types.UserRule, 0, len(req.Rules))
	seen := make(map[types.Practice]bool, len(req.Rules))

	for _, input := range req.Rules {
		if !types.ValidPractice(input.Practice) {
			writeError(w, http.StatusBadRequest, errCodeValidation, "unknown practice: "+string(input.Practice))
			return
		}

		if input.Priority <= 0 {
			writeError(w, http.StatusBadRequest, errCodeValidation, "priority must be a positive integer")
			return
		}

		if seen[input.Practice] {
			writeError(w, http.StatusBadRequest, errCodeValidation, "duplicate rule for practice: "+string(input.Practice))
			return
		}

		seen[input.Practice] = true

		rules = append(rules, types.UserRule{
			UserID:   userID,
			Practice: input.Practice,
			Allowed:  input.Allowed,
			Priority: input.Priority,
		})
	}

	if err := h.store.ReplaceRules(r.Context(), userID, rules); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to replace user rules")
		writeError(w, http.StatusServiceUnavailable, errCodeUnavailable, "storage unavailable")

		return
	}

	stored, err := h.store.RulesForUser(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to reload user rules")
		writeError(w, http.StatusServiceUnavailable, errCodeUnavailable, "storage unavailable")

		return
	}

	if stored == nil {
		stored = []types.UserRule{}
	}

	writeJSON(w, http.StatusOK, RulesResponse{
		Success: true,
		Data:    stored,
	})
}

// userIDParam parses the {userID} route parameter, writing a validation
// error when it is not a positive integer.
func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "userID")

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, errCodeValidation, "user ID must be a positive integer")
		return 0, false
	}

	return userID, true
}
