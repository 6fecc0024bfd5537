// Package classifier provides the gateway to the external policy
// classification service. It sends chunk text and normalizes the structured
// findings that come back; transport failures and malformed responses are
// isolated here so the rest of the pipeline only sees typed errors.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/theopenlane/httpsling"

	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/types"
)

const (
	// defaultBaseURL is the classification service endpoint when none is configured
	defaultBaseURL = "http://localhost:8000"
	// classifyPath is the classification endpoint path
	classifyPath = "/classify"
	// defaultRequestTimeout bounds one classification call. Large chunks take
	// the classifier tens of seconds; this must exceed its worst case.
	defaultRequestTimeout = 30 * time.Second
)

// Client calls the external classification service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for classification calls
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default classification service URL
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// New creates a classification service client
func New(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// classifyRequest is the request body for the classification endpoint
type classifyRequest struct {
	Text      string `json:"text"`
	SectionID string `json:"section_id"`
}

// wireClassification is one classification record as returned on the wire
type wireClassification struct {
	SectionID string `json:"section_id"`
	Practice  string `json:"practice"`
	Status    string `json:"status"`
	Evidence  string `json:"evidence"`
}

// classifyResponse is the classification service response envelope.
// Classifications stays raw so a missing or non-list field can be told apart
// from an empty list; Detail carries the upstream error message on failures.
type classifyResponse struct {
	Classifications json.RawMessage `json:"classifications"`
	Detail          string          `json:"detail,omitempty"`
}

// Classify sends one chunk to the classification service and returns the
// normalized findings. chunkIndex produces the stable section identifier
// ("chunk_<i>") that ties each finding back to its source chunk. Failures are
// not retried here; retry policy belongs to the caller.
func (c *Client) Classify(ctx context.Context, chunkText string, chunkIndex int) ([]types.Classification, error) {
	sectionID := SectionID(chunkIndex)

	requester := httpsling.MustNew(
		httpsling.URL(c.baseURL+classifyPath),
		httpsling.Post(),
		httpsling.JSONBody(classifyRequest{
			Text:      chunkText,
			SectionID: sectionID,
		}),
		httpsling.WithHTTPClient(c.httpClient),
	)

	var body classifyResponse

	resp, err := requester.ReceiveWithContext(ctx, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassificationService, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		if body.Detail != "" {
			return nil, fmt.Errorf("%w: %s", ErrClassificationService, body.Detail)
		}

		return nil, fmt.Errorf("%w: status %d", ErrClassificationService, resp.StatusCode)
	}

	if len(body.Classifications) == 0 || string(body.Classifications) == "null" {
		return nil, fmt.Errorf("%w: missing classifications field", ErrInvalidResponse)
	}

	var wire []wireClassification
	if err := json.Unmarshal(body.Classifications, &wire); err != nil {
		return nil, fmt.Errorf("%w: classifications is not a list", ErrInvalidResponse)
	}

	classifications := make([]types.Classification, 0, len(wire))

	for _, w := range wire {
		cls := types.Classification{
			SectionID: w.SectionID,
			Practice:  types.Practice(w.Practice),
			Status:    types.Status(w.Status),
			Evidence:  w.Evidence,
		}

		if cls.SectionID == "" {
			cls.SectionID = sectionID
		}

		classifications = append(classifications, cls)
	}

	return classifications, nil
}

// SectionID returns the stable section identifier for a chunk index.
func SectionID(chunkIndex int) string {
	return fmt.Sprintf("chunk_%d", chunkIndex)
}
