// Package discovery locates the privacy policy for a domain by probing
// well-known paths and links extracted from the homepage.
package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/projectdiscovery/httpx/common/httpx"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	// defaultProbeTimeout is the per-request timeout for httpx probing
	defaultProbeTimeout = 5 * time.Second
	// defaultMaxTargets caps the number of URLs to probe in batch
	defaultMaxTargets = 25
	// defaultProbeThreads controls concurrent probe workers
	defaultProbeThreads = 10
	// defaultMaxRedirects is the maximum redirect hops during probing
	defaultMaxRedirects = 5
	// defaultMaxResponseBodySize is the maximum response body bytes to read (256KB)
	defaultMaxResponseBodySize = 256 * 1024
	// bodyClassifyLimit limits body content scanned for regex classification (32KB)
	bodyClassifyLimit = 32 * 1024
	// httpSuccessStatus is the HTTP status code indicating a successful response
	httpSuccessStatus = 200
	// minRegexMatchGroups is the minimum submatch length for a regex with one capture group
	minRegexMatchGroups = 2
)

// linkPattern matches href attributes in anchor tags for link extraction
var linkPattern = regexp.MustCompile(`(?i)<a\s[^>]*href=["']([^"'#][^"']*)["']`)

// policyLinkFilter matches links likely to point at a privacy policy
var policyLinkFilter = regexp.MustCompile(
	`(?i)(privac|data.?protection|cookie|gdpr|ccpa|legal|policy|terms)`,
)

// titlePattern extracts the page title from HTML
var titlePattern = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)

// wellKnownPaths are probed alongside links discovered from the homepage
var wellKnownPaths = []string{
	"/privacy",
	"/privacy-policy",
	"/privacy-notice",
	"/privacy_policy",
	"/legal/privacy",
	"/legal/privacy-policy",
	"/policies/privacy",
	"/about/privacy",
	"/data-protection",
	"/gdpr",
	"/cookie-policy",
	"/cookies",
	"/terms",
	"/terms-of-service",
	"/legal/terms",
}

// Candidate is one probed page that classified as policy related.
type Candidate struct {
	// URL is the final resolved URL after redirects
	URL string `json:"url"`
	// Title is the page title extracted from HTML
	Title string `json:"title,omitempty"`
	// PageType is the regex-determined classification
	PageType string `json:"page_type"`
	// StatusCode is the HTTP status code
	StatusCode int `json:"status_code"`
}

// Options configures policy discovery behavior
type Options struct {
	probeTimeout        time.Duration
	maxTargets          int
	probeThreads        int
	maxRedirects        int
	maxResponseBodySize int64
}

// Option is a functional option for configuring policy discovery
type Option func(*Options)

// WithProbeTimeout sets the per-request probe timeout
func WithProbeTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.probeTimeout = d
		}
	}
}

// WithMaxTargets sets the maximum number of URLs to probe
func WithMaxTargets(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.maxTargets = n
		}
	}
}

// WithProbeThreads sets the concurrent probe worker count
func WithProbeThreads(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.probeThreads = n
		}
	}
}

// Discoverer finds privacy policy pages using projectdiscovery/httpx
type Discoverer struct {
	options *Options
}

// New creates a policy discoverer with the given options
func New(opts ...Option) *Discoverer {
	o := &Options{
		probeTimeout:        defaultProbeTimeout,
		maxTargets:          defaultMaxTargets,
		probeThreads:        defaultProbeThreads,
		maxRedirects:        defaultMaxRedirects,
		maxResponseBodySize: defaultMaxResponseBodySize,
	}

	for _, opt := range opts {
		opt(o)
	}

	return &Discoverer{options: o}
}

// Discover probes homepage links and well-known paths for the domain and
// returns every page that classifies as policy related, ordered with the most
// likely privacy policy first.
func (d *Discoverer) Discover(ctx context.Context, domain string) ([]Candidate, error) {
	if domain == "" {
		return nil, ErrInvalidDomain
	}

	client, err := d.newHTTPXClient()
	if err != nil {
		return nil, fmt.Errorf("initializing httpx client: %w", err)
	}

	homepageLinks := d.extractHomepageLinks(ctx, client, domain)
	log.Info().Str("domain", domain).Int("homepage_links", len(homepageLinks)).Msg("homepage link extraction complete")

	targets := buildTargets(homepageLinks, domain)
	if len(targets) > d.options.maxTargets {
		targets = targets[:d.options.maxTargets]
	}

	candidates := d.probeAndClassify(ctx, client, targets)
	log.Info().Str("domain", domain).Int("candidates", len(candidates)).Msg("policy discovery complete")

	return Rank(candidates), nil
}

// newHTTPXClient creates a configured httpx client
func (d *Discoverer) newHTTPXClient() (*httpx.HTTPX, error) {
	return httpx.New(&httpx.Options{
		Timeout:                   d.options.probeTimeout,
		FollowRedirects:           true,
		MaxRedirects:              d.options.maxRedirects,
		MaxResponseBodySizeToRead: d.options.maxResponseBodySize,
		DefaultUserAgent:          "Mozilla/5.0 (compatible; PrivacyFirewall/1.0)",
	})
}

// extractHomepageLinks fetches the homepage and returns policy-related links found in the body
func (d *Discoverer) extractHomepageLinks(ctx context.Context, client *httpx.HTTPX, domain string) []string {
	homepageURL := fmt.Sprintf("https://%s", domain)

	req, err := client.NewRequestWithContext(ctx, "GET", homepageURL)
	if err != nil {
		log.Warn().Err(err).Str("domain", domain).Msg("failed to create homepage request")
		return nil
	}

	resp, err := client.Do(req, httpx.UnsafeOptions{})
	if err != nil {
		log.Warn().Err(err).Str("domain", domain).Msg("homepage fetch failed")
		return nil
	}

	if resp.StatusCode != httpSuccessStatus {
		log.Warn().Str("domain", domain).Int("status", resp.StatusCode).Msg("homepage returned non-200 status")
		return nil
	}

	return extractPolicyLinks(string(resp.Data), domain)
}

// probeAndClassify sends concurrent GET requests to all targets and classifies responses
func (d *Discoverer) probeAndClassify(ctx context.Context, client *httpx.HTTPX, targets []string) []Candidate {
	var (
		mu         sync.Mutex
		seen       = make(map[string]struct{})
		candidates []Candidate
		wg         sync.WaitGroup
	)

	sem := make(chan struct{}, d.options.probeThreads)

	for _, target := range targets {
		wg.Add(1)

		go func(targetURL string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			req, err := client.NewRequestWithContext(ctx, "GET", targetURL)
			if err != nil {
				return
			}

			resp, err := client.Do(req, httpx.UnsafeOptions{})
			if err != nil {
				return
			}

			if resp.StatusCode != httpSuccessStatus {
				return
			}

			body := string(resp.Data)
			title := extractTitle(body)

			// Limit body size for classification to avoid regex over large pages
			classifyBody := body
			if len(classifyBody) > bodyClassifyLimit {
				classifyBody = classifyBody[:bodyClassifyLimit]
			}

			pageType := ClassifyPage(targetURL, title, classifyBody)
			if pageType == "" {
				return
			}

			// Determine final URL from redirect chain
			finalURL := targetURL
			if resp.HasChain() {
				if last := resp.GetChainLastURL(); last != "" {
					finalURL = last
				}
			}

			mu.Lock()
			if _, dup := seen[finalURL]; !dup {
				seen[finalURL] = struct{}{}
				candidates = append(candidates, Candidate{
					URL:        finalURL,
					Title:      title,
					PageType:   pageType,
					StatusCode: resp.StatusCode,
				})
			}
			mu.Unlock()
		}(target)
	}

	wg.Wait()

	return candidates
}

// extractPolicyLinks parses anchor tags from the HTML body and returns
// policy-related hrefs resolved against the base domain
func extractPolicyLinks(body, domain string) []string {
	matches := linkPattern.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{})

	var links []string

	for _, match := range matches {
		if len(match) < minRegexMatchGroups {
			continue
		}

		href := strings.TrimSpace(match[1])
		if href == "" {
			continue
		}

		if !policyLinkFilter.MatchString(href) {
			continue
		}

		normalized := NormalizeURL(href, domain)

		if _, ok := seen[normalized]; ok {
			continue
		}

		// Skip external domains
		if !isSameDomain(normalized, domain) {
			continue
		}

		seen[normalized] = struct{}{}
		links = append(links, normalized)
	}

	return links
}

// buildTargets returns probe URLs from homepage links and well-known paths,
// homepage-extracted links first.
func buildTargets(homepageLinks []string, domain string) []string {
	seen := make(map[string]struct{}, len(homepageLinks))

	var targets []string

	for _, link := range homepageLinks {
		normalized := NormalizeURL(link, domain)
		if _, ok := seen[normalized]; !ok {
			seen[normalized] = struct{}{}
			targets = append(targets, normalized)
		}
	}

	guessed := lo.Map(wellKnownPaths, func(path string, _ int) string {
		return NormalizeURL(path, domain)
	})

	for _, target := range guessed {
		if _, ok := seen[target]; !ok {
			seen[target] = struct{}{}
			targets = append(targets, target)
		}
	}

	return targets
}

// extractTitle extracts the page title from HTML content
func extractTitle(body string) string {
	match := titlePattern.FindStringSubmatch(body)
	if len(match) < minRegexMatchGroups {
		return ""
	}

	return strings.TrimSpace(match[1])
}
