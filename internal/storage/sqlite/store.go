// Package sqlite provides the persistence layer for sites, classifications,
// user rules, and violation audit records, backed by the pure-Go SQLite
// driver with embedded schema migrations.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/storage/sqlite/migrations"
	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/types"
)

// dbFileName is the database file created inside the data directory
const dbFileName = "firewall.db"

// Store is the SQLite-backed persistence layer for the analysis pipeline.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.privacy-firewall/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}

		dataDir = filepath.Join(home, ".privacy-firewall", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// WAL mode tolerates concurrent analysis requests; the busy timeout
	// covers writer contention between them.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate applies all pending *.up.sql migrations in version order.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int

	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string

	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}

	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Sites ====================

// UpsertSite inserts or updates the site row for a domain with a new policy
// fingerprint and a fresh last-analyzed timestamp, and returns the row.
// At most one site row exists per domain.
func (s *Store) UpsertSite(ctx context.Context, domain, policyURL, fingerprint string) (types.Site, error) {
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sites (domain, policy_url, policy_hash, last_analyzed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			policy_url = excluded.policy_url,
			policy_hash = excluded.policy_hash,
			last_analyzed = excluded.last_analyzed,
			updated_at = excluded.updated_at
	`, domain, policyURL, fingerprint, now, now, now)
	if err != nil {
		return types.Site{}, fmt.Errorf("upserting site: %w", err)
	}

	site, err := s.SiteByDomain(ctx, domain)
	if err != nil {
		return types.Site{}, err
	}

	return *site, nil
}

// SiteByDomain retrieves the site row for a domain.
// Returns types.ErrNotFound when no analysis has been recorded for it.
func (s *Store) SiteByDomain(ctx context.Context, domain string) (*types.Site, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, domain, COALESCE(policy_url, ''), COALESCE(policy_hash, ''), last_analyzed
		FROM sites WHERE domain = ?
	`, domain)

	var (
		site         types.Site
		lastAnalyzed sql.NullTime
	)

	if err := row.Scan(&site.ID, &site.Domain, &site.PolicyURL, &site.Fingerprint, &lastAnalyzed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}

		return nil, fmt.Errorf("scanning site: %w", err)
	}

	if lastAnalyzed.Valid {
		site.LastAnalyzed = lastAnalyzed.Time
	}

	return &site, nil
}

// ==================== Classifications ====================

// ClearClassifications discards all stored classifications for a site.
// Classifications are never updated in place: a fingerprint change clears the
// whole set before new findings are written, keeping every stored set
// internally consistent with exactly one fingerprint.
func (s *Store) ClearClassifications(ctx context.Context, siteID int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM policy_analyses WHERE site_id = ?", siteID); err != nil {
		return fmt.Errorf("clearing classifications: %w", err)
	}

	return nil
}

// InsertClassifications stores a batch of classifications for a site in one
// transaction.
func (s *Store) InsertClassifications(ctx context.Context, siteID int64, classifications []types.Classification) error {
	if len(classifications) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO policy_analyses (site_id, section_id, practice, status, evidence)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, cls := range classifications {
		if _, err := stmt.ExecContext(ctx, siteID, cls.SectionID, string(cls.Practice), string(cls.Status), cls.Evidence); err != nil {
			return fmt.Errorf("inserting classification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing classifications: %w", err)
	}

	return nil
}

// ClassificationsForSite returns every stored classification for a site in
// insertion order.
func (s *Store) ClassificationsForSite(ctx context.Context, siteID int64) ([]types.Classification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site_id, section_id, practice, status, evidence
		FROM policy_analyses WHERE site_id = ? ORDER BY id
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("querying classifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var classifications []types.Classification

	for rows.Next() {
		var cls types.Classification
		if err := rows.Scan(&cls.ID, &cls.SiteID, &cls.SectionID, &cls.Practice, &cls.Status, &cls.Evidence); err != nil {
			return nil, fmt.Errorf("scanning classification: %w", err)
		}

		classifications = append(classifications, cls)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating classifications: %w", err)
	}

	return classifications, nil
}

// ClassificationBySiteAndPractice returns one stored classification matching
// the practice for a site, or types.ErrNotFound.
func (s *Store) ClassificationBySiteAndPractice(ctx context.Context, siteID int64, practice types.Practice) (*types.Classification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, site_id, section_id, practice, status, evidence
		FROM policy_analyses WHERE site_id = ? AND practice = ? LIMIT 1
	`, siteID, string(practice))

	var cls types.Classification
	if err := row.Scan(&cls.ID, &cls.SiteID, &cls.SectionID, &cls.Practice, &cls.Status, &cls.Evidence); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}

		return nil, fmt.Errorf("scanning classification: %w", err)
	}

	return &cls, nil
}

// ==================== User rules ====================

// RulesForUser returns the user's rule set.
func (s *Store) RulesForUser(ctx context.Context, userID int64) ([]types.UserRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, practice, allowed, priority
		FROM user_rules WHERE user_id = ? ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var userRules []types.UserRule

	for rows.Next() {
		var rule types.UserRule
		if err := rows.Scan(&rule.ID, &rule.UserID, &rule.Practice, &rule.Allowed, &rule.Priority); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		userRules = append(userRules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}

	return userRules, nil
}

// ReplaceRules swaps the user's whole rule set in one transaction. The
// UNIQUE(user_id, practice) constraint enforces the one-active-rule-per-
// practice invariant at write time; callers reject duplicate practices
// before reaching the database.
func (s *Store) ReplaceRules(ctx context.Context, userID int64, userRules []types.UserRule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// The rule owner may not have a user row yet; rules arrive before any
	// other user-scoped write.
	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO users (id) VALUES (?)", userID); err != nil {
		return fmt.Errorf("ensuring user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_rules WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("clearing rules: %w", err)
	}

	for _, rule := range userRules {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_rules (user_id, practice, allowed, priority)
			VALUES (?, ?, ?, ?)
		`, userID, string(rule.Practice), rule.Allowed, rule.Priority)
		if err != nil {
			return fmt.Errorf("inserting rule: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rules: %w", err)
	}

	return nil
}

// ==================== Violations ====================

// InsertViolation stores one violation audit record and returns its id.
func (s *Store) InsertViolation(ctx context.Context, record types.ViolationRecord) (int64, error) {
	detectedAt := record.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO violations (user_id, site_id, analysis_id, rule_id, risk_score, verdict, detected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.UserID, record.SiteID, record.ClassificationID, record.RuleID, record.RiskScore, string(record.Verdict), detectedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting violation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading violation id: %w", err)
	}

	return id, nil
}

// ViolationsForUserAndSite returns the stored violation audit records for one
// user on one site, newest first.
func (s *Store) ViolationsForUserAndSite(ctx context.Context, userID, siteID int64) ([]types.ViolationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, site_id, analysis_id, rule_id, risk_score, verdict, detected_at
		FROM violations WHERE user_id = ? AND site_id = ? ORDER BY id DESC
	`, userID, siteID)
	if err != nil {
		return nil, fmt.Errorf("querying violations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []types.ViolationRecord

	for rows.Next() {
		var (
			rec        types.ViolationRecord
			detectedAt sql.NullTime
		)

		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.SiteID, &rec.ClassificationID, &rec.RuleID, &rec.RiskScore, &rec.Verdict, &detectedAt); err != nil {
			return nil, fmt.Errorf("scanning violation: %w", err)
		}

		if detectedAt.Valid {
			rec.DetectedAt = detectedAt.Time
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating violations: %w", err)
	}

	return records, nil
}
