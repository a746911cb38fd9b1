package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/publish"
	"github.com/philipbankier/contentpilot/internal/skill"
	"github.com/philipbankier/contentpilot/internal/store"
)

type fakePublisher struct {
	snapshot publish.MetricsSnapshot
}

func (f *fakePublisher) Name() string { return "fake" }
func (f *fakePublisher) Publish(ctx context.Context, title, body string, tags []string) (string, string, error) {
	return "post-1", "https://example.com/post-1", nil
}
func (f *fakePublisher) GetMetrics(ctx context.Context, platformPostID string) (publish.MetricsSnapshot, error) {
	return f.snapshot, nil
}

func seedPublication(t *testing.T, st store.Store, id string, publishedAt time.Time) {
	t.Helper()
	ctx := context.Background()
	c := &model.Creation{
		ID: "c-" + id, DiscoveryID: "d-1", Platform: "linkedin", Format: "post",
		Title: "t", Body: "b", SkillsUsed: []string{"content_generation"},
		ApprovalStatus: model.ApprovalAutoApproved, CreatedAt: publishedAt,
	}
	if err := st.InsertCreation(ctx, c); err != nil {
		t.Fatalf("insert creation: %v", err)
	}
	p := &model.Publication{
		ID: id, CreationID: c.ID, Platform: "linkedin", PlatformPostID: "post-1",
		PlatformURL: "https://example.com/post-1", PublishedAt: publishedAt,
	}
	if err := st.InsertPublication(ctx, p); err != nil {
		t.Fatalf("insert publication: %v", err)
	}
}

func TestCollector_Run_CollectsDueInterval(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	now := time.Now().UTC()
	seedPublication(t, st, "p1", now.Add(-2*time.Hour))

	pub := &fakePublisher{snapshot: publish.MetricsSnapshot{Views: 1000, Likes: 40, Comments: 5, Shares: 5}}
	lib := skill.New(t.TempDir(), st)
	bus := skill.NewOutcomeBus(lib, nil)
	c := New(st, map[string]publish.Publisher{"linkedin": pub}, bus, nil)

	res, err := c.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Collected != 1 {
		t.Errorf("collected = %d, want 1 (only the 1h interval is due)", res.Collected)
	}

	m, err := st.GetMetric(context.Background(), "p1", model.Interval1h)
	if err != nil {
		t.Fatalf("get metric: %v", err)
	}
	if m.Views != 1000 || m.Likes != 40 {
		t.Errorf("metric = %+v, unexpected values", m)
	}
}

func TestCollector_Run_NotYetDue_Skipped(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	now := time.Now().UTC()
	seedPublication(t, st, "p2", now)

	pub := &fakePublisher{snapshot: publish.MetricsSnapshot{Views: 100, Likes: 1}}
	lib := skill.New(t.TempDir(), st)
	bus := skill.NewOutcomeBus(lib, nil)
	c := New(st, map[string]publish.Publisher{"linkedin": pub}, bus, nil)

	res, err := c.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Collected != 0 {
		t.Errorf("collected = %d, want 0 (no interval is due yet)", res.Collected)
	}
}

func TestCollector_Run_AlreadyCollected_NotDuplicated(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	now := time.Now().UTC()
	seedPublication(t, st, "p3", now.Add(-2*time.Hour))

	pub := &fakePublisher{snapshot: publish.MetricsSnapshot{Views: 500, Likes: 10}}
	lib := skill.New(t.TempDir(), st)
	bus := skill.NewOutcomeBus(lib, nil)
	c := New(st, map[string]publish.Publisher{"linkedin": pub}, bus, nil)

	if _, err := c.Run(context.Background(), now); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := c.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Collected != 0 {
		t.Errorf("second run collected = %d, want 0 (1h metric already exists)", res.Collected)
	}
}

func TestEngagementToScore_Bands(t *testing.T) {
	cases := []struct {
		rate     float64
		wantLow  float64
		wantHigh float64
	}{
		{0.0, 0.0, 0.0},
		{0.02, 0.3, 0.6},
		{0.04, 0.6, 0.8},
		{0.10, 0.8, 1.0},
	}
	for _, tc := range cases {
		got := engagementToScore(tc.rate)
		if got < tc.wantLow-1e-9 || got > tc.wantHigh+1e-9 {
			t.Errorf("engagementToScore(%v) = %v, want within [%v, %v]", tc.rate, got, tc.wantLow, tc.wantHigh)
		}
	}
}

func TestCollector_Run_24hInterval_PublishesSkillOutcome(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	now := time.Now().UTC()
	seedPublication(t, st, "p4", now.Add(-25*time.Hour))

	pub := &fakePublisher{snapshot: publish.MetricsSnapshot{Views: 1000, Likes: 60, Comments: 10, Shares: 10}}
	lib := skill.New(t.TempDir(), st)
	bus := skill.NewOutcomeBus(lib, nil)
	c := New(st, map[string]publish.Publisher{"linkedin": pub}, bus, nil)

	res, err := c.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.SkillsUpdated != 1 {
		t.Errorf("skills updated = %d, want 1", res.SkillsUpdated)
	}
}
