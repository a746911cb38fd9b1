// Package approval routes a creation through quality gating and risk
// assessment into an approval decision, and provides the human
// select_variant action over a variant group.
package approval

import (
	"context"
	"log/slog"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/quality"
	"github.com/philipbankier/contentpilot/internal/risk"
	"github.com/philipbankier/contentpilot/internal/store"
)

// Decision labels the routing outcome of Queue.Process.
type Decision string

const (
	DecisionQualityRejected Decision = "quality_rejected"
	DecisionBlocked         Decision = "blocked"
	DecisionPendingReview   Decision = "pending_review"
	DecisionAutoApproved    Decision = "auto_approved"
)

// ProcessResult is the outcome of routing one creation.
type ProcessResult struct {
	Decision Decision
	Quality  quality.Result
	Risk     *risk.Assessment
}

// DeferredMediaTask is an explicit handle to the background video
// generation kicked off after a creation clears approval. SelectVariant
// returns it to its caller; Process discards it for auto-approved
// creations. Neither the Queue nor the Orchestrator tracks, awaits or
// cancels the task, so it is not stopped by the Orchestrator's shutdown.
type DeferredMediaTask struct {
	CreationID string
	Done       <-chan struct{}
	Err        func() error
}

// Queue routes content creations through approval based on quality
// gating and risk assessment:
//  1. Quality check (auto-reject if score < 0.4)
//  2. Risk assessment (block high-risk content)
//  3. Variant routing (A/B tests always go to human review)
//  4. Auto-approval for low-risk, non-warning content
type Queue struct {
	store    store.Store
	quality  *quality.Checker
	risk     *risk.Assessor
	log      *slog.Logger
	onApprove func(ctx context.Context, c *model.Creation) *DeferredMediaTask
}

// NewQueue returns a Queue. onApprove, if non-nil, is invoked whenever a
// creation reaches auto_approved or a human selects a variant, and may
// return a DeferredMediaTask handle for background video generation.
func NewQueue(st store.Store, log *slog.Logger, onApprove func(ctx context.Context, c *model.Creation) *DeferredMediaTask) *Queue {
	if log == nil {
		log = slog.Default()
	}
	return &Queue{
		store:     st,
		quality:   quality.NewChecker(),
		risk:      risk.NewAssessor(),
		log:       log.With("component", "approval_queue"),
		onApprove: onApprove,
	}
}

// Process assesses and routes one content creation through approval.
// Quality gating runs first; content scoring below the auto-reject
// threshold is rejected before risk assessment ever runs.
func (q *Queue) Process(ctx context.Context, creationID string, at time.Time) (ProcessResult, error) {
	c, err := q.store.GetCreation(ctx, creationID)
	if err != nil {
		return ProcessResult{}, err
	}

	qr := q.quality.Check(c.Platform, c.Title, c.Body)
	if !qr.Passed {
		c.ApprovalStatus = model.ApprovalQualityRejected
		c.QualityScore = qr.Score
		c.QualityIssues = qr.Issues
		if err := q.store.UpdateCreation(ctx, c); err != nil {
			return ProcessResult{}, err
		}
		q.log.Warn("content quality rejected", "creation_id", creationID, "score", qr.Score, "issues", qr.Issues)
		return ProcessResult{Decision: DecisionQualityRejected, Quality: qr}, nil
	}

	c.QualityScore = qr.Score
	c.QualityIssues = qr.Issues

	assessment := q.risk.Assess(c.Title, c.Body)
	c.RiskScoreVal = assessment.Score
	c.RiskFlags = assessment.Flags

	var decision Decision
	switch {
	case assessment.Level == risk.LevelHigh:
		c.ApprovalStatus = model.ApprovalRejected
		decision = DecisionBlocked
	case c.VariantGroup != "":
		c.ApprovalStatus = model.ApprovalPendingReview
		decision = DecisionPendingReview
	case assessment.Level == risk.LevelLow:
		if qr.Warning {
			c.ApprovalStatus = model.ApprovalPendingReview
			decision = DecisionPendingReview
			q.log.Info("quality warning, sending to review", "creation_id", creationID, "score", qr.Score)
		} else {
			c.ApprovalStatus = model.ApprovalAutoApproved
			c.ApprovedAt = &at
			decision = DecisionAutoApproved
		}
	default:
		c.ApprovalStatus = model.ApprovalPendingReview
		decision = DecisionPendingReview
	}

	if err := q.store.UpdateCreation(ctx, c); err != nil {
		return ProcessResult{}, err
	}

	q.log.Info("content routed", "creation_id", creationID, "quality_score", qr.Score, "risk_level", assessment.Level, "decision", decision)

	if decision == DecisionAutoApproved && q.onApprove != nil {
		q.onApprove(ctx, c)
	}

	return ProcessResult{Decision: decision, Quality: qr, Risk: &assessment}, nil
}

// ProcessPending processes every creation still in the raw "pending"
// state (not yet routed to any terminal or review status).
func (q *Queue) ProcessPending(ctx context.Context, at time.Time) ([]ProcessResult, error) {
	pending, err := q.store.ListCreationsByApprovalStatus(ctx, model.ApprovalPending, 0)
	if err != nil {
		return nil, err
	}

	results := make([]ProcessResult, 0, len(pending))
	for _, c := range pending {
		r, err := q.Process(ctx, c.ID, at)
		if err != nil {
			q.log.Error("process pending failed", "creation_id", c.ID, "error", err)
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

// SelectVariant is the human action that approves one variant and
// rejects its siblings atomically, then fires the deferred media task
// for the approved variant if the queue was configured with one.
func (q *Queue) SelectVariant(ctx context.Context, creationID string) (*model.Creation, []*model.Creation, *DeferredMediaTask, error) {
	approved, rejected, err := q.store.SelectVariant(ctx, creationID)
	if err != nil {
		return nil, nil, nil, err
	}

	var task *DeferredMediaTask
	if q.onApprove != nil {
		task = q.onApprove(ctx, approved)
	}
	return approved, rejected, task, nil
}
