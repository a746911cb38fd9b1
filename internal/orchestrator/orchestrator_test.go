package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/philipbankier/contentpilot/internal/analyst"
	"github.com/philipbankier/contentpilot/internal/approval"
	"github.com/philipbankier/contentpilot/internal/creator"
	"github.com/philipbankier/contentpilot/internal/feedback"
	"github.com/philipbankier/contentpilot/internal/health"
	"github.com/philipbankier/contentpilot/internal/metrics"
	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/scout"
	"github.com/philipbankier/contentpilot/internal/skill"
	"github.com/philipbankier/contentpilot/internal/store"
)

func newTestOrchestrator(t *testing.T, dailyCostLimit float64) (*Orchestrator, store.Store) {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	sc := scout.New(st, health.NewRegistry(), nil, nil)
	an := analyst.New(st, nil, nil, nil, nil, nil)
	lib := skill.New(t.TempDir(), st)
	cr := creator.New(st, nil, nil, lib, nil, nil, nil, nil)
	aq := approval.NewQueue(st, nil, nil)
	mc := metrics.New(st, nil, nil, nil)
	tr := feedback.NewTracker(st)
	fl := feedback.New(st, lib, nil, tr, nil)

	o := New(st, sc, an, cr, aq, mc, fl, DefaultIntervals(), dailyCostLimit, nil)
	return o, st
}

func seedAgentRunCost(t *testing.T, st store.Store, id string, costUSD float64, at time.Time) {
	t.Helper()
	r := &model.AgentRun{
		ID: id, Agent: "creator", Task: "write", Provider: "claude",
		EstimatedCostUSD: costUSD, Status: "ok", StartedAt: at,
	}
	if err := st.InsertAgentRun(context.Background(), r); err != nil {
		t.Fatalf("insert agent run: %v", err)
	}
}

func TestModeForRatio_Thresholds(t *testing.T) {
	cases := []struct {
		ratio float64
		want  Mode
	}{
		{0.0, ModeFull},
		{0.69, ModeFull},
		{0.70, ModeReduced},
		{0.84, ModeReduced},
		{0.85, ModeMinimal},
		{0.94, ModeMinimal},
		{0.95, ModePaused},
		{1.5, ModePaused},
	}
	for _, c := range cases {
		if got := modeForRatio(c.ratio); got != c.want {
			t.Errorf("modeForRatio(%v) = %v, want %v", c.ratio, got, c.want)
		}
	}
}

// TestOrchestrator_UpdateMode_Transitions mirrors E4: daily_cost_limit=$1,
// cost entries summing to $0.69/$0.71/$0.86/$0.96 drive FULL/REDUCED/
// MINIMAL/PAUSED respectively.
func TestOrchestrator_UpdateMode_Transitions(t *testing.T) {
	o, st := newTestOrchestrator(t, 1.00)
	ctx := context.Background()
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	seedAgentRunCost(t, st, "r1", 0.69, startOfDay.Add(time.Hour))
	mode, err := o.updateMode(ctx, now)
	if err != nil {
		t.Fatalf("update mode: %v", err)
	}
	if mode != ModeFull {
		t.Errorf("mode = %v at $0.69, want FULL", mode)
	}

	seedAgentRunCost(t, st, "r2", 0.02, startOfDay.Add(2*time.Hour))
	mode, err = o.updateMode(ctx, now)
	if err != nil {
		t.Fatalf("update mode: %v", err)
	}
	if mode != ModeReduced {
		t.Errorf("mode = %v at $0.71, want REDUCED", mode)
	}

	seedAgentRunCost(t, st, "r3", 0.15, startOfDay.Add(3*time.Hour))
	mode, err = o.updateMode(ctx, now)
	if err != nil {
		t.Fatalf("update mode: %v", err)
	}
	if mode != ModeMinimal {
		t.Errorf("mode = %v at $0.86, want MINIMAL", mode)
	}

	seedAgentRunCost(t, st, "r4", 0.10, startOfDay.Add(4*time.Hour))
	mode, err = o.updateMode(ctx, now)
	if err != nil {
		t.Fatalf("update mode: %v", err)
	}
	if mode != ModePaused {
		t.Errorf("mode = %v at $0.96, want PAUSED", mode)
	}
}

// TestOrchestrator_UpdateMode_Idempotent verifies testable property 7:
// repeated calls with unchanged cost_today never change the mode again
// after the first transition (modeChangedAt stays fixed).
func TestOrchestrator_UpdateMode_Idempotent(t *testing.T) {
	o, st := newTestOrchestrator(t, 1.00)
	ctx := context.Background()
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	seedAgentRunCost(t, st, "r1", 0.80, startOfDay.Add(time.Hour))

	first, err := o.updateMode(ctx, now)
	if err != nil {
		t.Fatalf("update mode: %v", err)
	}
	firstChangedAt := o.Status().ModeChangedAt

	second, err := o.updateMode(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("update mode: %v", err)
	}
	if second != first {
		t.Errorf("mode changed on second call with unchanged cost: %v -> %v", first, second)
	}
	if !o.Status().ModeChangedAt.Equal(firstChangedAt) {
		t.Errorf("modeChangedAt moved on a no-op update")
	}
}

func TestMode_Allows_PerModeGating(t *testing.T) {
	if !ModeFull.allows("engagement") {
		t.Errorf("FULL should allow engagement")
	}
	if ModeReduced.allows("engagement") {
		t.Errorf("REDUCED should skip engagement")
	}
	if !ModeReduced.allows("scout") {
		t.Errorf("REDUCED should still allow scout")
	}
	if ModeMinimal.allows("review") {
		t.Errorf("MINIMAL should skip review")
	}
	if !ModeMinimal.allows("tracker") {
		t.Errorf("MINIMAL should still allow tracker")
	}
	for _, task := range []string{"scout", "tracker", "engagement", "feedback", "review"} {
		if ModePaused.allows(task) {
			t.Errorf("PAUSED should skip %s", task)
		}
	}
}

func TestOrchestrator_NoDailyLimit_AlwaysFull(t *testing.T) {
	o, st := newTestOrchestrator(t, 0)
	seedAgentRunCost(t, st, "r1", 1000.0, time.Now().UTC())

	mode, err := o.updateMode(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("update mode: %v", err)
	}
	if mode != ModeFull {
		t.Errorf("mode = %v with no daily limit, want FULL regardless of cost", mode)
	}
}
