package feedback

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/philipbankier/contentpilot/internal/experiment"
	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/skill"
	"github.com/philipbankier/contentpilot/internal/store"
)

func writeSkillFile(t *testing.T, dir, name string, confidence float64) {
	t.Helper()
	content := "---\n" +
		"name: " + name + "\n" +
		"category: creation\n" +
		"confidence: " + strconv.FormatFloat(confidence, 'f', 2, 64) + "\n" +
		"status: active\n" +
		"version: 1\n" +
		"total_uses: 0\n" +
		"success_count: 0\n" +
		"failure_streak: 0\n" +
		"created_at: 2026-01-01T00:00:00Z\n" +
		"updated_at: 2026-01-01T00:00:00Z\n" +
		"---\n\nUse a direct, question-based hook.\n"
	if err := os.WriteFile(filepath.Join(dir, name+".md"), []byte(content), 0o644); err != nil {
		t.Fatalf("write skill file: %v", err)
	}
}

func TestLoop_RunCycle_RecomputesConfidenceFromMetrics(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	for i, score := range []float64{0.8, 0.9} {
		m := &model.SkillMetric{ID: "m-" + strconv.Itoa(i), SkillName: "hook_style", Agent: "tracker", Task: "engagement_feedback", Outcome: model.OutcomeSuccess, Score: score, RecordedAt: now}
		if err := st.InsertSkillMetric(ctx, m); err != nil {
			t.Fatalf("insert skill metric: %v", err)
		}
	}

	libDir := t.TempDir()
	writeSkillFile(t, libDir, "hook_style", 0.5)
	lib := skill.New(libDir, st)
	if _, err := lib.LoadAll(); err != nil {
		t.Fatalf("load all: %v", err)
	}
	runner := experiment.New(st, nil)
	tr := NewTracker(st)
	loop := New(st, lib, runner, tr, nil)

	summary, err := loop.RunCycle(ctx, now)
	if err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if summary.ConfidenceUpdates != 1 {
		t.Errorf("confidence updates = %d, want 1", summary.ConfidenceUpdates)
	}

	got, err := st.GetSkill(ctx, "hook_style")
	if err != nil {
		t.Fatalf("get skill: %v", err)
	}
	if got.Confidence < 0.84 || got.Confidence > 0.86 {
		t.Errorf("confidence = %v, want ~0.85", got.Confidence)
	}
}

func TestLoop_RunCycle_PromotesExperimentWinner(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	started := now.Add(-48 * time.Hour)

	runner := experiment.New(st, nil)
	expID, err := runner.CreateExperiment(ctx, "hook_style", "question-based hook", "engagement_rate", started)
	if err != nil {
		t.Fatalf("create experiment: %v", err)
	}

	for i := 0; i < 12; i++ {
		seedCreationWithMetricForLoop(t, st, "la"+strconv.Itoa(i), "hook_style", "A", started.Add(time.Hour), 0.01)
		seedCreationWithMetricForLoop(t, st, "lb"+strconv.Itoa(i), "hook_style", "B", started.Add(time.Hour), 0.08)
	}

	libDir := t.TempDir()
	writeSkillFile(t, libDir, "hook_style", 0.5)
	lib := skill.New(libDir, st)
	if _, err := lib.LoadAll(); err != nil {
		t.Fatalf("load all: %v", err)
	}
	tr := NewTracker(st)
	loop := New(st, lib, runner, tr, nil)

	summary, err := loop.RunCycle(ctx, now)
	if err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if summary.ExperimentsChecked != 1 {
		t.Errorf("experiments checked = %d, want 1", summary.ExperimentsChecked)
	}
	if summary.VariantsPromoted != 1 {
		t.Errorf("variants promoted = %d, want 1", summary.VariantsPromoted)
	}

	e, err := st.GetExperiment(ctx, expID)
	if err != nil {
		t.Fatalf("get experiment: %v", err)
	}
	if e.Winner != model.WinnerB {
		t.Errorf("winner = %q, want B", e.Winner)
	}
}

func seedCreationWithMetricForLoop(t *testing.T, st store.Store, id, skillName, variantLabel string, createdAt time.Time, engagementRate float64) {
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
