package discovery

import (
	"regexp"
	"sort"
)

const (
	// PageTypePrivacyPolicy identifies privacy policy pages
	PageTypePrivacyPolicy = "privacy_policy"
	// PageTypeDataProtection identifies data protection and GDPR pages
	PageTypeDataProtection = "data_protection"
	// PageTypeCookiePolicy identifies cookie policy pages
	PageTypeCookiePolicy = "cookie_policy"
	// PageTypeTermsOfService identifies terms of service pages
	PageTypeTermsOfService = "terms_of_service"
)

// pageTypeRank orders page types by how likely they are to be the document
// the analysis pipeline should fetch; lower is better.
var pageTypeRank = map[string]int{
	PageTypePrivacyPolicy:  0,
	PageTypeDataProtection: 1,
	PageTypeCookiePolicy:   2,
	PageTypeTermsOfService: 3,
}

// classificationRule defines regex patterns for a single page type
type classificationRule struct {
	pageType      string
	urlPatterns   []*regexp.Regexp
	titlePatterns []*regexp.Regexp
	bodyPatterns  []*regexp.Regexp
}

// classificationRules is the ordered list of classification rules; first match wins
var classificationRules []classificationRule

func init() {
	classificationRules = []classificationRule{
		{
			pageType: PageTypePrivacyPolicy,
			urlPatterns: compileAll(
				`(?i)/privac(y|y-policy|y-notice|y_policy)`,
				`(?i)/legal/privac`,
				`(?i)/policies/privac`,
			),
			titlePatterns: compileAll(
				`(?i)privacy\s+(policy|notice|statement)`,
			),
			bodyPatterns: compileAll(
				`(?i)personal\s+(data|information).{0,80}collect`,
				`(?i)we\s+collect\s+.{0,40}(personal|information)`,
				`(?i)this\s+privacy\s+(policy|notice)`,
			),
		},
		{
			pageType: PageTypeDataProtection,
			urlPatterns: compileAll(
				`(?i)/data-protection`,
				`(?i)/gdpr`,
			),
			titlePatterns: compileAll(
				`(?i)data\s+protection\s+(policy|notice)`,
				`(?i)gdpr\s+(compliance|notice|rights|statement)`,
			),
			bodyPatterns: compileAll(
				`(?i)general\s+data\s+protection\s+regulation`,
				`(?i)data\s+subject\s+rights`,
			),
		},
		{
			pageType: PageTypeCookiePolicy,
			urlPatterns: compileAll(
				`(?i)/(cookie-?policy|cookies)(/|$)`,
			),
			titlePatterns: compileAll(
				`(?i)cookie\s+(policy|notice|statement)`,
			),
			bodyPatterns: compileAll(
				`(?i)we\s+use\s+cookies`,
				`(?i)strictly\s+necessary\s+cookies`,
			),
		},
		{
			pageType: PageTypeTermsOfService,
			urlPatterns: compileAll(
				`(?i)/(terms|tos)(/|$)`,
				`(?i)/terms-of-(service|use)`,
				`(?i)/legal/terms`,
			),
			titlePatterns: compileAll(
				`(?i)terms\s+(of\s+service|of\s+use|&\s+conditions|and\s+conditions)`,
			),
			bodyPatterns: compileAll(
				`(?i)by\s+(using|accessing).{0,40}you\s+agree`,
			),
		},
	}
}

// ClassifyPage determines the page type from URL, title, and body content.
// URL patterns are checked first across all rules, then title patterns,
// then body patterns. This ensures a URL match always beats a body match
// from a higher-priority rule. Returns the matching page type constant
// or empty string if no match.
func ClassifyPage(pageURL, title, body string) string {
	for _, rule := range classificationRules {
		if matchesAny(rule.urlPatterns, pageURL) {
			return rule.pageType
		}
	}

	for _, rule := range classificationRules {
		if matchesAny(rule.titlePatterns, title) {
			return rule.pageType
		}
	}

	for _, rule := range classificationRules {
		if matchesAny(rule.bodyPatterns, body) {
			return rule.pageType
		}
	}

	return ""
}

// Rank orders candidates most-likely-policy first. Ties break on URL length
// so that /privacy beats /legal/privacy-policy-archive, then on the URL
// itself for determinism.
func Rank(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := typeRank(ranked[i].PageType), typeRank(ranked[j].PageType)
		if ri != rj {
			return ri < rj
		}

		if len(ranked[i].URL) != len(ranked[j].URL) {
			return len(ranked[i].URL) < len(ranked[j].URL)
		}

		return ranked[i].URL < ranked[j].URL
	})

	return ranked
}

// typeRank returns the rank for a page type, with unknown types last
func typeRank(pageType string) int {
	if rank, ok := pageTypeRank[pageType]; ok {
		return rank
	}

	return len(pageTypeRank)
}

// compileAll compiles multiple regex patterns, panicking on invalid patterns
func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}

	return compiled
}

// matchesAny returns true if the input matches any of the compiled patterns
func matchesAny(patterns []*regexp.Regexp, input string) bool {
	for _, p := range patterns {
		if p.MatchString(input) {
			return true
		}
	}

	return false
}
