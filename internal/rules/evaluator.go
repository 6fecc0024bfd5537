// Package rules evaluates policy classifications against a user's rule set.
// Evaluation is a pure function: no I/O, no hidden state, identical output
// for identical input.
package rules

import (
	"math"

	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/types"
)

const (
	// severityAllows is the base severity when a policy explicitly allows a
	// practice the user disallows
	severityAllows = 30
	// severityConditional is the base severity when the practice is only
	// conditionally permitted
	severityConditional = 20
	// priorityBaseline is the rule priority that leaves severity unscaled
	priorityBaseline = 10
	// maxRiskScore is the hard ceiling on the aggregate risk score
	maxRiskScore = 100

	// blockedRiskThreshold is the risk score at which a site is blocked
	blockedRiskThreshold = 70
	// blockedViolationCount is the violation count at which a site is blocked
	blockedViolationCount = 3
	// warningRiskThreshold is the risk score at which a warning is raised
	warningRiskThreshold = 40
)

// practiceWeights scales severity per practice. This is data, not dispatch:
// selling and sensitive-data handling weigh double, advertising is the
// unscaled baseline. Unlisted practices default to 1.0.
var practiceWeights = map[types.Practice]float64{
	types.PracticeDataSelling:       2.0,
	types.PracticeSensitiveData:     2.0,
	types.PracticeThirdPartySharing: 1.8,
	types.PracticeRetention:         1.2,
	types.PracticeAdvertising:       1.0,
}

// defaultPracticeWeight applies to practices outside the weight table
const defaultPracticeWeight = 1.0

// Evaluation is the outcome of matching one classification set against one
// rule set.
type Evaluation struct {
	// Verdict is the final three-level risk classification
	Verdict types.Verdict
	// RiskScore is the clamped sum of violation severities
	RiskScore int
	// Violations lists each rule breach with its severity
	Violations []types.Violation
}

// Evaluate matches classifications against the user's rules and aggregates
// the result. Practices the user has no rule for never contribute. When the
// rule set carries duplicate rules for one practice the last one wins;
// storage prevents duplicates at write time, so this is a non-case in
// practice.
func Evaluate(classifications []types.Classification, userRules []types.UserRule) Evaluation {
	ruleByPractice := make(map[types.Practice]types.UserRule, len(userRules))
	for _, rule := range userRules {
		ruleByPractice[rule.Practice] = rule
	}

	var (
		violations []types.Violation
		totalRisk  int
	)

	for _, cls := range classifications {
		rule, ok := ruleByPractice[cls.Practice]
		if !ok {
			continue
		}

		if !isViolation(cls.Status, rule) {
			continue
		}

		severity := Severity(cls.Status, cls.Practice, rule.Priority)

		violations = append(violations, types.Violation{
			Practice: cls.Practice,
			Status:   cls.Status,
			Evidence: cls.Evidence,
			UserRule: true,
			Severity: severity,
		})

		totalRisk += severity
	}

	riskScore := totalRisk
	if riskScore > maxRiskScore {
		riskScore = maxRiskScore
	}

	return Evaluation{
		Verdict:    DetermineVerdict(riskScore, len(violations)),
		RiskScore:  riskScore,
		Violations: violations,
	}
}

// isViolation reports whether a classification breaches a rule. UNCLEAR never
// violates: insufficient evidence is not penalized. FORBIDS never violates,
// and neither does anything the rule allows.
func isViolation(status types.Status, rule types.UserRule) bool {
	if rule.Allowed {
		return false
	}

	return status == types.StatusAllows || status == types.StatusConditional
}

// Severity computes the numeric risk contribution of one violation:
// base(status) scaled by rule priority (10 is the unscaled baseline) and the
// practice weight table.
func Severity(status types.Status, practice types.Practice, priority int) int {
	var base float64

	switch status {
	case types.StatusAllows:
		base = severityAllows
	case types.StatusConditional:
		base = severityConditional
	}

	weight, ok := practiceWeights[practice]
	if !ok {
		weight = defaultPracticeWeight
	}

	return int(math.Round(base * (float64(priority) / priorityBaseline) * weight))
}

// DetermineVerdict maps a risk score and violation count to a verdict.
// Thresholds are checked in strict order; the blocking rule wins over the
// warning rule.
func DetermineVerdict(riskScore, violationCount int) types.Verdict {
	if riskScore >= blockedRiskThreshold || violationCount >= blockedViolationCount {
		return types.VerdictBlocked
	}

	if riskScore >= warningRiskThreshold || violationCount >= 1 {
		return types.VerdictWarning
	}

	return types.VerdictSafe
}
