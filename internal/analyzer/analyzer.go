// Package analyzer sequences the policy analysis pipeline: fetch,
// fingerprint, cache check, chunk, classify, evaluate, persist. It owns the
// cache-invalidation policy; the fingerprint of the normalized policy text is
// the sole staleness signal.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/chunker"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/domain"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/fingerprint"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/notify"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/rules"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/types"
)

// Scraper fetches a policy document and returns its normalized plain text.
type Scraper interface {
	FetchPolicy(ctx context.Context, policyURL string) (string, error)
}

// Classifier sends one chunk to the classification service and returns the
// normalized findings.
type Classifier interface {
	Classify(ctx context.Context, chunkText string, chunkIndex int) ([]types.Classification, error)
}

// Notifier delivers alerts for blocking verdicts. Delivery is best effort;
// a failed notification never fails the analysis.
type Notifier interface {
	Send(ctx context.Context, alert notify.Alert) error
}

// Store is the persistence surface the pipeline needs.
type Store interface {
	SiteByDomain(ctx context.Context, domain string) (*types.Site, error)
	UpsertSite(ctx context.Context, domain, policyURL, fingerprint string) (types.Site, error)
	ClearClassifications(ctx context.Context, siteID int64) error
	InsertClassifications(ctx context.Context, siteID int64, classifications []types.Classification) error
	ClassificationsForSite(ctx context.Context, siteID int64) ([]types.Classification, error)
	ClassificationBySiteAndPractice(ctx context.Context, siteID int64, practice types.Practice) (*types.Classification, error)
	RulesForUser(ctx context.Context, userID int64) ([]types.UserRule, error)
	InsertViolation(ctx context.Context, record types.ViolationRecord) (int64, error)
}

// Analyzer runs the analysis pipeline for one policy URL at a time.
type Analyzer struct {
	scraper    Scraper
	classifier Classifier
	store      Store
	chunker    *chunker.Chunker
	notifier   Notifier
}

// Option configures the Analyzer
type Option func(*Analyzer)

// WithChunker overrides the default chunk sizing
func WithChunker(c *chunker.Chunker) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.chunker = c
		}
	}
}

// WithNotifier enables webhook alerts for blocking verdicts
func WithNotifier(n Notifier) Option {
	return func(a *Analyzer) {
		a.notifier = n
	}
}

// New creates an analyzer over the given collaborators.
func New(s Scraper, c Classifier, store Store, opts ...Option) *Analyzer {
	a := &Analyzer{
		scraper:    s,
		classifier: c,
		store:      store,
		chunker:    chunker.MustNew(chunker.DefaultConfig()),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze runs one full analysis: the policy at policyURL is fetched,
// classified (or served from the fingerprint cache), and evaluated against
// the user's rules. Any failure aborts the whole request; no partial result
// is ever returned. There is no transaction across the persistence steps; a
// failure after site and classification writes leaves stored state ahead of
// the returned error, and a retry converges because the fingerprint check is
// idempotent.
func (a *Analyzer) Analyze(ctx context.Context, policyURL string, userID int64) (*types.AnalysisResult, error) {
	domain, err := resolveDomain(policyURL)
	if err != nil {
		return nil, err
	}

	existing, err := a.store.SiteByDomain(ctx, domain)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("%w: looking up site: %w", ErrPersistence, err)
	}

	text, err := a.scraper.FetchPolicy(ctx, policyURL)
	if err != nil {
		return nil, err
	}

	digest := fingerprint.Hash(text)

	var (
		site            types.Site
		classifications []types.Classification
		analyzedAt      time.Time
	)

	if existing != nil && existing.Fingerprint == digest {
		// Cache hit: the stored classification set is still valid. The
		// verdict is still recomputed below against the user's current
		// rules, so a rule change flips the verdict without re-classifying.
		site = *existing
		analyzedAt = existing.LastAnalyzed

		classifications, err = a.store.ClassificationsForSite(ctx, site.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: loading cached classifications: %w", ErrPersistence, err)
		}

		log.Info().Str("domain", domain).Int("classifications", len(classifications)).Msg("policy unchanged, reusing stored classifications")
	} else {
		site, classifications, err = a.reclassify(ctx, domain, policyURL, digest, text)
		if err != nil {
			return nil, err
		}

		analyzedAt = site.LastAnalyzed
	}

	userRules, err := a.store.RulesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading user rules: %w", ErrPersistence, err)
	}

	evaluation := rules.Evaluate(classifications, userRules)

	if err := a.recordViolations(ctx, userID, site.ID, userRules, evaluation); err != nil {
		return nil, err
	}

	log.Info().
		Str("domain", domain).
		Int64("user_id", userID).
		Str("verdict", string(evaluation.Verdict)).
		Int("risk_score", evaluation.RiskScore).
		Int("violations", len(evaluation.Violations)).
		Msg("policy analysis complete")

	result := &types.AnalysisResult{
		Domain:     domain,
		Verdict:    evaluation.Verdict,
		RiskScore:  evaluation.RiskScore,
		Violations: evaluation.Violations,
		AnalyzedAt: analyzedAt,
	}

	if a.notifier != nil && result.Verdict == types.VerdictBlocked {
		if err := a.notifier.Send(ctx, notify.NewAlert(result)); err != nil {
			log.Warn().Err(err).Str("domain", domain).Msg("verdict notification failed")
		}
	}

	return result, nil
}

// reclassify handles the cache-miss path: the site row is upserted with the
// new fingerprint, prior classifications are discarded wholesale, and every
// chunk is classified in sequence. Classification calls are deliberately
// sequential to bound load on the classification service and to keep
// chunk-index section identifiers stable.
func (a *Analyzer) reclassify(ctx context.Context, domain, policyURL, digest, text string) (types.Site, []types.Classification, error) {
	site, err := a.store.UpsertSite(ctx, domain, policyURL, digest)
	if err != nil {
		return types.Site{}, nil, fmt.Errorf("%w: upserting site: %w", ErrPersistence, err)
	}

	if err := a.store.ClearClassifications(ctx, site.ID); err != nil {
		return types.Site{}, nil, fmt.Errorf("%w: discarding stale classifications: %w", ErrPersistence, err)
	}

	chunks := a.chunker.Split(text)
	log.Info().Str("domain", domain).Int("chunks", len(chunks)).Msg("policy changed, classifying chunks")

	var all []types.Classification

	for i, chunk := range chunks {
		classifications, err := a.classifier.Classify(ctx, chunk, i)
		if err != nil {
			return types.Site{}, nil, err
		}

		if err := a.store.InsertClassifications(ctx, site.ID, classifications); err != nil {
			return types.Site{}, nil, fmt.Errorf("%w: persisting classifications: %w", ErrPersistence, err)
		}

		all = append(all, classifications...)
	}

	return site, all, nil
}

// recordViolations persists one audit record per violation. Each record
// references one stored classification for the violated practice and the
// matching rule, and carries the aggregate risk score and verdict of the
// whole analysis rather than a per-violation score.
func (a *Analyzer) recordViolations(ctx context.Context, userID, siteID int64, userRules []types.UserRule, evaluation rules.Evaluation) error {
	ruleByPractice := make(map[types.Practice]types.UserRule, len(userRules))
	for _, rule := range userRules {
		ruleByPractice[rule.Practice] = rule
	}

	for _, violation := range evaluation.Violations {
		cls, err := a.store.ClassificationBySiteAndPractice(ctx, siteID, violation.Practice)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}

			return fmt.Errorf("%w: locating classification for violation: %w", ErrPersistence, err)
		}

		rule, ok := ruleByPractice[violation.Practice]
		if !ok {
			continue
		}

		record := types.ViolationRecord{
			UserID:           userID,
			SiteID:           siteID,
			ClassificationID: cls.ID,
			RuleID:           rule.ID,
			RiskScore:        evaluation.RiskScore,
			Verdict:          evaluation.Verdict,
		}

		if _, err := a.store.InsertViolation(ctx, record); err != nil {
			return fmt.Errorf("%w: persisting violation: %w", ErrPersistence, err)
		}
	}

	return nil
}

// resolveDomain extracts the normalized hostname from a policy URL.
func resolveDomain(policyURL string) (string, error) {
	host, err := domain.FromURL(policyURL)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicyURL, policyURL)
	}

	return host, nil
}
