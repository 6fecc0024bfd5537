package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/theopenlane/httpsling"

	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/types"
)

// Alert is the webhook payload describing one analysis outcome.
type Alert struct {
	// Text is the fallback text for the notification
	Text string `json:"text"`
	// Domain is the analyzed site
	Domain string `json:"domain"`
	// Verdict is the analysis verdict
	Verdict types.Verdict `json:"verdict"`
	// RiskScore is the aggregate risk score
	RiskScore int `json:"risk_score"`
	// Violations lists the violated practices
	Violations []string `json:"violations,omitempty"`
}

// NewAlert builds an alert payload from an analysis result.
func NewAlert(result *types.AnalysisResult) Alert {
	violations := make([]string, 0, len(result.Violations))
	for _, violation := range result.Violations {
		violations = append(violations, string(violation.Practice))
	}

	return Alert{
		Text:       fmt.Sprintf("%s verdict for %s (risk score %d)", result.Verdict, result.Domain, result.RiskScore),
		Domain:     result.Domain,
		Verdict:    result.Verdict,
		RiskScore:  result.RiskScore,
		Violations: violations,
	}
}

// Send posts an alert to the configured webhook
func (c *Client) Send(ctx context.Context, alert Alert) error {
	requester := httpsling.MustNew(
		httpsling.URL(c.webhookURL),
		httpsling.Post(),
		httpsling.JSONBody(alert),
		httpsling.WithHTTPClient(c.httpClient),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}
