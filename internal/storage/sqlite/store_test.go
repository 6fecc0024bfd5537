package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sanjaykumaran16/smart-privacy-firewall/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestStore_Ping(t *testing.T) {
	store := newTestStore(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("unexpected ping error: %v", err)
	}
}

func TestSiteByDomain_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SiteByDomain(context.Background(), "unknown.example.com")
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertSite_InsertThenUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertSite(ctx, "example.com", "https://example.com/privacy", "hash-one")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if first.ID == 0 {
		t.Error("expected non-zero site id")
	}

	if first.Fingerprint != "hash-one" {
		t.Errorf("expected fingerprint hash-one, got %s", first.Fingerprint)
	}

	second, err := store.UpsertSite(ctx, "example.com", "https://example.com/privacy-v2", "hash-two")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected same row on upsert, got ids %d and %d", first.ID, second.ID)
	}

	if second.Fingerprint != "hash-two" || second.PolicyURL != "https://example.com/privacy-v2" {
		t.Errorf("update not applied: %+v", second)
	}

	if second.LastAnalyzed.IsZero() {
		t.Error("expected last_analyzed to be set")
	}
}

func TestClassifications_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	site, err := store.UpsertSite(ctx, "example.com", "https://example.com/privacy", "h1")
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	input := []types.Classification{
		{SectionID: "chunk_0", Practice: types.PracticeDataSelling, Status: types.StatusAllows, Evidence: "we sell data"},
		{SectionID: "chunk_0", Practice: types.PracticeAdvertising, Status: types.StatusConditional, Evidence: "targeted ads"},
		{SectionID: "chunk_1", Practice: types.PracticeDataSelling, Status: types.StatusForbids, Evidence: "we do not sell"},
	}

	if err := store.InsertClassifications(ctx, site.ID, input); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	stored, err := store.ClassificationsForSite(ctx, site.ID)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if len(stored) != 3 {
		t.Fatalf("expected 3 classifications, got %d", len(stored))
	}

	for i, cls := range stored {
		if cls.SiteID != site.ID {
			t.Errorf("classification %d not tied to site: %d", i, cls.SiteID)
		}

		if cls.SectionID != input[i].SectionID || cls.Practice != input[i].Practice || cls.Status != input[i].Status {
			t.Errorf("classification %d mismatch: %+v", i, cls)
		}
	}
}

func TestClassificationBySiteAndPractice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	site, _ := store.UpsertSite(ctx, "example.com", "", "h1")

	input := []types.Classification{
		{SectionID: "chunk_0", Practice: types.PracticeRetention, Status: types.StatusAllows, Evidence: "kept for 5 years"},
		{SectionID: "chunk_1", Practice: types.PracticeRetention, Status: types.StatusConditional, Evidence: "kept while active"},
	}

	if err := store.InsertClassifications(ctx, site.ID, input); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	cls, err := store.ClassificationBySiteAndPractice(ctx, site.ID, types.PracticeRetention)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	// LIMIT 1 in insertion order picks the first stored row
	if cls.SectionID != "chunk_0" {
		t.Errorf("expected first matching row, got %s", cls.SectionID)
	}

	_, err = store.ClassificationBySiteAndPractice(ctx, site.ID, types.PracticeSensitiveData)
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unstored practice, got %v", err)
	}
}

func TestClearClassifications_WholesaleReplace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	site, _ := store.UpsertSite(ctx, "example.com", "", "h1")

	old := []types.Classification{
		{SectionID: "chunk_0", Practice: types.PracticeDataSelling, Status: types.StatusAllows, Evidence: "old"},
	}
	if err := store.InsertClassifications(ctx, site.ID, old); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := store.ClearClassifications(ctx, site.ID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	replacement := []types.Classification{
		{SectionID: "chunk_0", Practice: types.PracticeAdvertising, Status: types.StatusUnclear, Evidence: "new"},
	}
	if err := store.InsertClassifications(ctx, site.ID, replacement); err != nil {
		t.Fatalf("reinsert failed: %v", err)
	}

	stored, err := store.ClassificationsForSite(ctx, site.ID)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if len(stored) != 1 || stored[0].Evidence != "new" {
		t.Errorf("expected only replacement classification, got %+v", stored)
	}
}

func TestReplaceRules_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	initial := []types.UserRule{
		{Practice: types.PracticeDataSelling, Allowed: false, Priority: 10},
		{Practice: types.PracticeAdvertising, Allowed: true, Priority: 3},
	}

	if err := store.ReplaceRules(ctx, 42, initial); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	stored, err := store.RulesForUser(ctx, 42)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if len(stored) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(stored))
	}

	if stored[0].UserID != 42 || stored[0].Practice != types.PracticeDataSelling || stored[0].Allowed {
		t.Errorf("unexpected first rule: %+v", stored[0])
	}

	// Replacing again swaps the whole set
	if err := store.ReplaceRules(ctx, 42, []types.UserRule{
		{Practice: types.PracticeRetention, Allowed: false, Priority: 5},
	}); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}

	stored, err = store.RulesForUser(ctx, 42)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if len(stored) != 1 || stored[0].Practice != types.PracticeRetention {
		t.Errorf("expected replaced rule set, got %+v", stored)
	}
}

func TestReplaceRules_DuplicatePracticeRejected(t *testing.T) {
	store := newTestStore(t)

	// The UNIQUE(user_id, practice) constraint enforces one active rule per
	// practice at write time.
	err := store.ReplaceRules(context.Background(), 7, []types.UserRule{
		{Practice: types.PracticeDataSelling, Allowed: false, Priority: 10},
		{Practice: types.PracticeDataSelling, Allowed: true, Priority: 1},
	})
	if err == nil {
		t.Error("expected unique constraint violation for duplicate practice")
	}
}

func TestRulesForUser_IsolatedPerUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.ReplaceRules(ctx, 1, []types.UserRule{{Practice: types.PracticeDataSelling, Allowed: false, Priority: 10}})
	_ = store.ReplaceRules(ctx, 2, []types.UserRule{{Practice: types.PracticeRetention, Allowed: false, Priority: 2}})

	userRules, err := store.RulesForUser(ctx, 1)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if len(userRules) != 1 || userRules[0].Practice != types.PracticeDataSelling {
		t.Errorf("expected only user 1 rules, got %+v", userRules)
	}
}

func TestInsertViolation_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	site, _ := store.UpsertSite(ctx, "example.com", "", "h1")
	_ = store.ReplaceRules(ctx, 9, []types.UserRule{{Practice: types.PracticeDataSelling, Allowed: false, Priority: 10}})

	_ = store.InsertClassifications(ctx, site.ID, []types.Classification{
		{SectionID: "chunk_0", Practice: types.PracticeDataSelling, Status: types.StatusAllows, Evidence: "sold"},
	})

	cls, err := store.ClassificationBySiteAndPractice(ctx, site.ID, types.PracticeDataSelling)
	if err != nil {
		t.Fatalf("classification lookup failed: %v", err)
	}

	userRules, _ := store.RulesForUser(ctx, 9)

	id, err := store.InsertViolation(ctx, types.ViolationRecord{
		UserID:           9,
		SiteID:           site.ID,
		ClassificationID: cls.ID,
		RuleID:           userRules[0].ID,
		RiskScore:        60,
		Verdict:          types.VerdictWarning,
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if id == 0 {
		t.Error("expected non-zero violation id")
	}

	records, err := store.ViolationsForUserAndSite(ctx, 9, site.ID)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 violation record, got %d", len(records))
	}

	rec := records[0]
	if rec.RiskScore != 60 || rec.Verdict != types.VerdictWarning || rec.ClassificationID != cls.ID {
		t.Errorf("unexpected violation record: %+v", rec)
	}

	if rec.DetectedAt.IsZero() {
		t.Error("expected detected_at to be set")
	}
}
