package discovery

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL resolves a potentially relative URL against the domain
func NormalizeURL(rawURL, domain string) string {
	rawURL = strings.TrimSpace(rawURL)

	if strings.HasPrefix(rawURL, "/") {
		return fmt.Sprintf("https://%s%s", domain, rawURL)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" {
		return fmt.Sprintf("https://%s/%s", domain, strings.TrimPrefix(rawURL, "/"))
	}

	return rawURL
}

// isSameDomain checks whether a URL belongs to the given domain
func isSameDomain(rawURL, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := parsed.Hostname()

	return host == domain || strings.HasSuffix(host, "."+domain)
}
