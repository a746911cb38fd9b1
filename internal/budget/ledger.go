package budget

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/philipbankier/contentpilot/internal/llm"
	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/store"
)

// Ledger persists every provider call as an AgentRun and feeds a
// Tracker so callers can cheaply ask "can I afford this?" before
// making a call the store won't see until the next reconciliation.
type Ledger struct {
	store   store.Store
	tracker *Tracker
}

// NewLedger returns a Ledger. dailyLimit of 0 disables the in-memory
// pre-flight check entirely; the AgentRun row is still written.
func NewLedger(st store.Store, dailyLimit float64) *Ledger {
	return &Ledger{store: st, tracker: New(dailyLimit, 0)}
}

// CanSpend reports whether the in-memory daily total, plus amount,
// would stay within the limit. Always true when no limit is set.
func (l *Ledger) CanSpend(amount float64) bool {
	return l.tracker.CanSpend(amount)
}

// Record inserts an AgentRun for a completed provider call and folds
// its cost into the in-memory tracker. agent is the component name
// ("analyst", "creator"); task identifies the unit of work (the
// Analyst's "source_scoring" batch or the discovery ID a Creator call
// writes for).
func (l *Ledger) Record(ctx context.Context, agent, task string, resp llm.Response, startedAt, completedAt time.Time) error {
	l.tracker.Record(task, resp.CostUSD)

	run := &model.AgentRun{
		ID:               uuid.NewString(),
		Agent:            agent,
		Task:             task,
		Provider:         resp.Provider,
		InputTokens:      resp.InputTokens,
		OutputTokens:     resp.OutputTokens,
		EstimatedCostUSD: resp.CostUSD,
		DurationSeconds:  completedAt.Sub(startedAt).Seconds(),
		Status:           "completed",
		StartedAt:        startedAt,
		CompletedAt:      &completedAt,
	}
	return l.store.InsertAgentRun(ctx, run)
}
