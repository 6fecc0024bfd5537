// Package scraper fetches privacy policy documents and reduces them to plain
// text. The output keeps paragraph structure as newline boundaries, which is
// the chunker's input contract; navigation, script, and style markup is
// removed entirely.
package scraper

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/projectdiscovery/httpx/common/httpx"
	"github.com/rs/zerolog/log"
)

const (
	// defaultFetchTimeout bounds one policy document fetch. Policy pages are
	// static documents; anything slower than this is treated as a failure.
	defaultFetchTimeout = 15 * time.Second
	// defaultMaxRedirects is the maximum redirect hops while fetching
	defaultMaxRedirects = 5
	// defaultMaxBodySize caps the response body bytes to read (2MB)
	defaultMaxBodySize = 2 * 1024 * 1024
	// defaultUserAgent identifies the fetcher as a regular browser; some
	// policy pages refuse non-browser agents
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Markup stripping patterns. Container elements whose content never carries
// policy text are removed with their bodies; block element boundaries become
// newlines so paragraph structure survives tag stripping.
var (
	scriptTag   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag    = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag     = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag      = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	navTag      = regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`)
	headerTag   = regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`)
	footerTag   = regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`)
	asideTag    = regexp.MustCompile(`(?is)<aside[^>]*>.*?</aside>`)
	htmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)

	closeBlockTag = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTag         = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)

	horizontalSpace = regexp.MustCompile(`[ \t\r]+`)
	spacedNewline   = regexp.MustCompile(` ?\n ?`)
	multiNewline    = regexp.MustCompile(`\n{3,}`)
)

// Options configures policy fetching behavior
type Options struct {
	timeout      time.Duration
	maxRedirects int
	maxBodySize  int64
	userAgent    string
}

// Option is a functional option for configuring the scraper
type Option func(*Options)

// WithTimeout sets the per-fetch timeout
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxBodySize caps the response body bytes to read
func WithMaxBodySize(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}

// WithUserAgent overrides the User-Agent header sent with fetches
func WithUserAgent(ua string) Option {
	return func(o *Options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// Scraper fetches policy documents over HTTP and extracts their text
type Scraper struct {
	options *Options
	client  *httpx.HTTPX
}

// New creates a scraper with the given options
func New(opts ...Option) (*Scraper, error) {
	o := &Options{
		timeout:      defaultFetchTimeout,
		maxRedirects: defaultMaxRedirects,
		maxBodySize:  defaultMaxBodySize,
		userAgent:    defaultUserAgent,
	}

	for _, opt := range opts {
		opt(o)
	}

	client, err := httpx.New(&httpx.Options{
		Timeout:                   o.timeout,
		FollowRedirects:           true,
		MaxRedirects:              o.maxRedirects,
		MaxResponseBodySizeToRead: o.maxBodySize,
		DefaultUserAgent:          o.userAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing httpx client: %w", err)
	}

	return &Scraper{options: o, client: client}, nil
}

// FetchPolicy retrieves the document at policyURL and returns its normalized
// plain text. Transport failures and non-200 responses surface as
// ErrFetchFailed; the text of a successful fetch is never empty-checked here,
// that is the caller's concern.
func (s *Scraper) FetchPolicy(ctx context.Context, policyURL string) (string, error) {
	req, err := s.client.NewRequestWithContext(ctx, http.MethodGet, policyURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := s.client.Do(req, httpx.UnsafeOptions{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	text := ExtractText(string(resp.Data))
	log.Debug().Str("url", policyURL).Int("html_bytes", len(resp.Data)).Int("text_chars", len(text)).Msg("policy document fetched")

	return text, nil
}

// ExtractText reduces an HTML document to plain policy text. Script, style,
// head, and navigation containers are dropped with their content; closing
// block tags and line breaks become newlines; remaining tags are stripped and
// entities decoded. Whitespace is collapsed so paragraphs are separated by
// single blank boundaries.
func ExtractText(htmlContent string) string {
	text := htmlContent

	for _, container := range []*regexp.Regexp{
		htmlComment, scriptTag, styleTag, noscriptTag, headTag, svgTag,
		navTag, headerTag, footerTag, asideTag,
	} {
		text = container.ReplaceAllString(text, " ")
	}

	text = closeBlockTag.ReplaceAllString(text, "\n")
	text = brTag.ReplaceAllString(text, "\n")
	text = allTags.ReplaceAllString(text, " ")

	text = html.UnescapeString(text)

	text = horizontalSpace.ReplaceAllString(text, " ")
	text = spacedNewline.ReplaceAllString(text, "\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
