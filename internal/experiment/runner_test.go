package experiment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/store"
)

func seedCreationWithMetric(t *testing.T, st store.Store, id, skillName, variantLabel string, createdAt time.Time, engagementRate float64) {
	t.Helper()
	ctx := context.Background()
	c := &model.Creation{
		ID: id, DiscoveryID: "d-1", Platform: "linkedin", Format: "post",
		Title: "t", Body: "b", SkillsUsed: []string{skillName}, VariantLabel: variantLabel,
		ApprovalStatus: model.ApprovalAutoApproved, CreatedAt: createdAt,
	}
	if err := st.InsertCreation(ctx, c); err != nil {
		t.Fatalf("insert creation: %v", err)
	}
	p := &model.Publication{
		ID: "pub-" + id, CreationID: id, Platform: "linkedin", PlatformPostID: "post-" + id,
		PublishedAt: createdAt,
	}
	if err := st.InsertPublication(ctx, p); err != nil {
		t.Fatalf("insert publication: %v", err)
	}
	m := &model.Metric{
		ID: "met-" + id, PublicationID: p.ID, Interval: model.Interval24h,
		EngagementRate: engagementRate, CollectedAt: createdAt.Add(24 * time.Hour),
	}
	if err := st.InsertMetric(ctx, m); err != nil {
		t.Fatalf("insert metric: %v", err)
	}
}

func TestRunner_CheckWinner_InsufficientSamples(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	started := time.Now().UTC().Add(-48 * time.Hour)
	r := New(st, nil)
	id, err := r.CreateExperiment(ctx, "hook_style", "question-based hook", "engagement_rate", started)
	if err != nil {
		t.Fatalf("create experiment: %v", err)
	}

	for i := 0; i < 3; i++ {
		seedCreationWithMetric(t, st, creationID("a", i), "hook_style", "A", started.Add(time.Hour), 0.04)
		seedCreationWithMetric(t, st, creationID("b", i), "hook_style", "B", started.Add(time.Hour), 0.06)
	}

	out, err := r.CheckWinner(ctx, id, time.Now().UTC())
	if err != nil {
		t.Fatalf("check winner: %v", err)
	}
	if out.Complete {
		t.Errorf("complete = true, want false with only 3 samples per arm")
	}
	if out.Method != "insufficient_data" {
		t.Errorf("method = %q, want insufficient_data", out.Method)
	}
}

func TestRunner_CheckWinner_BDominates(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	started := time.Now().UTC().Add(-48 * time.Hour)
	r := New(st, nil)
	id, err := r.CreateExperiment(ctx, "hook_style", "question-based hook", "engagement_rate", started)
	if err != nil {
		t.Fatalf("create experiment: %v", err)
	}

	for i := 0; i < 12; i++ {
		seedCreationWithMetric(t, st, creationID("a", i), "hook_style", "A", started.Add(time.Hour), 0.02)
		seedCreationWithMetric(t, st, creationID("b", i), "hook_style", "B", started.Add(time.Hour), 0.09)
	}

	out, err := r.CheckWinner(ctx, id, time.Now().UTC())
	if err != nil {
		t.Fatalf("check winner: %v", err)
	}
	if !out.Complete {
		t.Fatalf("complete = false, want true with 12 samples per arm")
	}
	if out.Winner != model.WinnerB {
		t.Errorf("winner = %q, want B (mean_b=0.09 >> mean_a=0.02)", out.Winner)
	}
}

func TestRunner_RecordResult_RunningMean(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	r := New(st, nil)
	id, err := r.CreateExperiment(ctx, "cta_style", "direct CTA", "engagement_rate", time.Now().UTC())
	if err != nil {
		t.Fatalf("create experiment: %v", err)
	}

	if err := r.RecordResult(ctx, id, "A", 0.5); err != nil {
		t.Fatalf("record A: %v", err)
	}
	if err := r.RecordResult(ctx, id, "A", 0.7); err != nil {
		t.Fatalf("record A: %v", err)
	}

	e, err := st.GetExperiment(ctx, id)
	if err != nil {
		t.Fatalf("get experiment: %v", err)
	}
	if e.VariantASamples != 2 {
		t.Errorf("samples = %d, want 2", e.VariantASamples)
	}
	if e.VariantAScore < 0.599 || e.VariantAScore > 0.601 {
		t.Errorf("score = %v, want ~0.6", e.VariantAScore)
	}
}

func creationID(label string, i int) string {
	return fmt.Sprintf("%s-%d", label, i)
}
