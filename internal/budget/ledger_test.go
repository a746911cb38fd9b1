package budget

import (
	"context"
	"testing"
	"time"

	"github.com/philipbankier/contentpilot/internal/llm"
	"github.com/philipbankier/contentpilot/internal/store"
)

func TestLedger_Record_InsertsAgentRunAndTracksCost(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	l := NewLedger(st, 1.0)
	ctx := context.Background()
	start := time.Now().UTC()
	resp := llm.Response{Provider: "claude", InputTokens: 100, OutputTokens: 50, CostUSD: 0.02}

	if err := l.Record(ctx, "analyst", "batch-1", resp, start, start.Add(2*time.Second)); err != nil {
		t.Fatalf("record: %v", err)
	}

	if got := l.tracker.DailySpend(); got != 0.02 {
		t.Errorf("DailySpend = %v, want 0.02", got)
	}

	cost, err := st.SumCostSince(ctx, start.Add(-time.Minute))
	if err != nil {
		t.Fatalf("sum cost: %v", err)
	}
	if cost != 0.02 {
		t.Errorf("SumCostSince = %v, want 0.02", cost)
	}
}

func TestLedger_CanSpend_RespectsDailyLimit(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	l := NewLedger(st, 0.05)
	ctx := context.Background()
	start := time.Now().UTC()

	if !l.CanSpend(0) {
		t.Fatal("should be able to spend before any cost recorded")
	}

	if err := l.Record(ctx, "creator", "c1", llm.Response{CostUSD: 0.06}, start, start); err != nil {
		t.Fatalf("record: %v", err)
	}
	if l.CanSpend(0) {
		t.Error("should be unable to spend after exceeding daily limit")
	}
}

func TestLedger_NoDailyLimit_AlwaysCanSpend(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	l := NewLedger(st, 0)
	ctx := context.Background()
	if err := l.Record(ctx, "creator", "c1", llm.Response{CostUSD: 1000}, time.Now().UTC(), time.Now().UTC()); err != nil {
		t.Fatalf("record: %v", err)
	}
	if !l.CanSpend(0) {
		t.Error("unlimited ledger should always allow spending")
	}
}
