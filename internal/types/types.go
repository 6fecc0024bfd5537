// Package types defines the shared domain model for the privacy firewall:
// policy practices, classification statuses, verdicts, and the persisted
// records that flow between the analyzer, the rule evaluator, and storage.
package types

import "time"

// Practice is a category of data handling behavior described in a policy.
type Practice string

const (
	// PracticeDataSelling covers selling or monetizing personal data
	PracticeDataSelling Practice = "data_selling"
	// PracticeThirdPartySharing covers disclosure of data to third parties
	PracticeThirdPartySharing Practice = "third_party_sharing"
	// PracticeAdvertising covers advertising and marketing uses of data
	PracticeAdvertising Practice = "advertising"
	// PracticeRetention covers how long data is kept
	PracticeRetention Practice = "retention"
	// PracticeSensitiveData covers handling of sensitive data categories
	PracticeSensitiveData Practice = "sensitive_data"
)

// Practices lists every recognized practice. The set is closed; classifier
// responses and user rules are validated against it.
var Practices = []Practice{
	PracticeDataSelling,
	PracticeThirdPartySharing,
	PracticeAdvertising,
	PracticeRetention,
	PracticeSensitiveData,
}

// ValidPractice reports whether p is a member of the recognized practice set.
func ValidPractice(p Practice) bool {
	for _, known := range Practices {
		if p == known {
			return true
		}
	}

	return false
}

// Status is the policy's stated position on a practice.
type Status string

const (
	// StatusAllows means the policy explicitly permits the practice
	StatusAllows Status = "ALLOWS"
	// StatusForbids means the policy explicitly prohibits the practice
	StatusForbids Status = "FORBIDS"
	// StatusConditional means the practice is permitted under conditions
	StatusConditional Status = "CONDITIONAL"
	// StatusUnclear means the policy's position could not be determined
	StatusUnclear Status = "UNCLEAR"
)

// Verdict is the final three-level risk classification for a site.
type Verdict string

const (
	// VerdictSafe means no user rules were violated
	VerdictSafe Verdict = "SAFE"
	// VerdictWarning means at least one rule violation was found
	VerdictWarning Verdict = "WARNING"
	// VerdictBlocked means the violations cross the blocking threshold
	VerdictBlocked Verdict = "BLOCKED"
)

// Classification is one practice finding emitted by the classifier for one
// chunk of policy text. Multiple classifications may exist per practice, one
// per chunk that discusses it.
type Classification struct {
	// ID is the persisted row id, zero for classifications not yet stored
	ID int64 `json:"id,omitempty"`
	// SiteID links a persisted classification to its site
	SiteID int64 `json:"site_id,omitempty"`
	// SectionID identifies the source chunk, e.g. "chunk_0"
	SectionID string `json:"section_id"`
	// Practice is the data handling category this finding concerns
	Practice Practice `json:"practice"`
	// Status is the policy's stated position on the practice
	Status Status `json:"status"`
	// Evidence is the supporting text excerpt from the policy
	Evidence string `json:"evidence"`
}

// UserRule expresses one user's position on one practice. At most one active
// rule exists per (user, practice); storage enforces this at write time.
type UserRule struct {
	// ID is the persisted row id
	ID int64 `json:"id,omitempty"`
	// UserID identifies the rule's owner
	UserID int64 `json:"user_id"`
	// Practice is the data handling category the rule governs
	Practice Practice `json:"practice"`
	// Allowed is whether the user permits the practice
	Allowed bool `json:"allowed"`
	// Priority scales violation severity; 10 is the weighting baseline
	Priority int `json:"priority"`
}

// Site is the cached analysis state for one domain. Fingerprint is the sole
// cache-validity key; no timestamp-based invalidation exists.
type Site struct {
	// ID is the persisted row id
	ID int64 `json:"id"`
	// Domain is the site's hostname; unique per row
	Domain string `json:"domain"`
	// PolicyURL is the policy document location last analyzed
	PolicyURL string `json:"policy_url,omitempty"`
	// Fingerprint is the content digest of the normalized policy text
	Fingerprint string `json:"fingerprint,omitempty"`
	// LastAnalyzed is when the stored classifications were produced
	LastAnalyzed time.Time `json:"last_analyzed,omitempty"`
}

// Violation is one rule breach surfaced by an evaluation pass.
type Violation struct {
	// Practice is the violated rule's data handling category
	Practice Practice `json:"practice"`
	// Status is the classification status that triggered the violation
	Status Status `json:"status"`
	// Evidence is the policy excerpt supporting the classification
	Evidence string `json:"evidence"`
	// UserRule marks that a user rule produced this violation
	UserRule bool `json:"user_rule"`
	// Severity is this violation's numeric risk contribution
	Severity int `json:"severity"`
}

// ViolationRecord is the persisted audit form of a violation. It references
// the classification and rule that produced it and carries the aggregate
// risk score and verdict of the whole analysis, not a per-violation score.
type ViolationRecord struct {
	// ID is the persisted row id
	ID int64 `json:"id"`
	// UserID is the rule owner
	UserID int64 `json:"user_id"`
	// SiteID is the analyzed site
	SiteID int64 `json:"site_id"`
	// ClassificationID references one stored classification for the practice
	ClassificationID int64 `json:"classification_id"`
	// RuleID references the matched user rule
	RuleID int64 `json:"rule_id"`
	// RiskScore is the aggregate score of the analysis that found this violation
	RiskScore int `json:"risk_score"`
	// Verdict is the aggregate verdict of that analysis
	Verdict Verdict `json:"verdict"`
	// DetectedAt is when the violation was recorded
	DetectedAt time.Time `json:"detected_at"`
}

// AnalysisResult is the externally visible unit of work: one analyzed policy
// evaluated against one user's rule set.
type AnalysisResult struct {
	// Domain is the analyzed site's hostname
	Domain string `json:"domain"`
	// Verdict is the final risk classification
	Verdict Verdict `json:"verdict"`
	// RiskScore is the clamped sum of violation severities
	RiskScore int `json:"risk_score"`
	// Violations lists every rule breach found
	Violations []Violation `json:"violations"`
	// AnalyzedAt is when the underlying classifications were produced
	AnalyzedAt time.Time `json:"analyzed_at"`
}
