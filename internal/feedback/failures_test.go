package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/store"
)

func seedFailedPost(t *testing.T, st store.Store, id, platform, format, body string, publishedAt time.Time) {
	t.Helper()
	ctx := context.Background()
	c := &model.Creation{
		ID: id, DiscoveryID: "d-1", Platform: platform, Format: format,
		Title: "t", Body: body, SkillsUsed: []string{"hook_style"},
		ApprovalStatus: model.ApprovalAutoApproved, CreatedAt: publishedAt,
	}
	if err := st.InsertCreation(ctx, c); err != nil {
		t.Fatalf("insert creation: %v", err)
	}
	p := &model.Publication{
		ID: "pub-" + id, CreationID: id, Platform: platform, PlatformPostID: "post-" + id,
		PublishedAt: publishedAt,
	}
	if err := st.InsertPublication(ctx, p); err != nil {
		t.Fatalf("insert publication: %v", err)
	}
	m := &model.Metric{
		ID: "met-" + id, PublicationID: p.ID, Interval: model.Interval24h,
		EngagementRate: 0.005, CollectedAt: publishedAt.Add(24 * time.Hour),
	}
	if err := st.InsertMetric(ctx, m); err != nil {
		t.Fatalf("insert metric: %v", err)
	}
}

func TestTracker_AnalyzeFailures_BelowMinSamples_NoPatterns(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	now := time.Now().UTC()
	seedFailedPost(t, st, "f1", "linkedin", "post", "Amazing!", now.Add(-time.Hour))

	tr := NewTracker(st)
	analysis, err := tr.AnalyzeFailures(context.Background(), 14, now)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.FailureCount != 1 {
		t.Errorf("failure count = %d, want 1", analysis.FailureCount)
	}
	if len(analysis.HookPatterns) != 0 {
		t.Errorf("hook patterns = %+v, want none below MinSamplesForPattern", analysis.HookPatterns)
	}
}

func TestTracker_AnalyzeFailures_HyperbolicHook_Detected(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	now := time.Now().UTC()
	for i, body := range []string{"Amazing news today!\nmore", "Thrilled to share this!\nmore", "Incredible results!\nmore"} {
		seedFailedPost(t, st, "f"+string(rune('a'+i)), "linkedin", "post", body, now.Add(-time.Hour))
	}

	tr := NewTracker(st)
	analysis, err := tr.AnalyzeFailures(context.Background(), 14, now)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var found bool
	for _, p := range analysis.HookPatterns {
		if p.Type == "hyperbolic_hook" {
			found = true
		}
	}
	if !found {
		t.Fatalf("hook patterns = %+v, want hyperbolic_hook detected", analysis.HookPatterns)
	}

	guidance := tr.AvoidPatternsFor("linkedin", "post")
	if guidance == "" {
		t.Fatalf("expected non-empty avoid-guidance after analysis")
	}
}

func TestTracker_AvoidPatternsFor_NoAnalysisYet_Empty(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	tr := NewTracker(st)
	if got := tr.AvoidPatternsFor("linkedin", "post"); got != "" {
		t.Errorf("guidance = %q, want empty before any analysis has run", got)
	}
}
