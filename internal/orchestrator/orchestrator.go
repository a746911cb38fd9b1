// Package orchestrator owns the five periodic loops that drive the
// content pipeline end to end and the cost-based degradation mode that
// throttles them, grounded on original_source/orchestrator.py.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/philipbankier/contentpilot/internal/analyst"
	"github.com/philipbankier/contentpilot/internal/approval"
	"github.com/philipbankier/contentpilot/internal/creator"
	"github.com/philipbankier/contentpilot/internal/feedback"
	"github.com/philipbankier/contentpilot/internal/metrics"
	"github.com/philipbankier/contentpilot/internal/scout"
	"github.com/philipbankier/contentpilot/internal/store"
	"github.com/philipbankier/contentpilot/internal/telemetry"
)

// Mode is the orchestrator's current workload level, driven by how much
// of the daily cost budget has been spent.
type Mode string

const (
	ModeFull    Mode = "full"
	ModeReduced Mode = "reduced"
	ModeMinimal Mode = "minimal"
	ModePaused  Mode = "paused"
)

// modeThresholds is checked in descending ratio order; the first
// threshold the current ratio meets or exceeds wins.
var modeThresholds = []struct {
	mode      Mode
	threshold float64
}{
	{ModePaused, 0.95},
	{ModeMinimal, 0.85},
	{ModeReduced, 0.70},
	{ModeFull, 0.0},
}

func modeForRatio(ratio float64) Mode {
	for _, t := range modeThresholds {
		if ratio >= t.threshold {
			return t.mode
		}
	}
	return ModeFull
}

// taskAllowlist maps a mode to the set of loop names permitted to run.
// PAUSED permits nothing; absence from a mode's set means skipped.
var taskAllowlist = map[Mode]map[string]bool{
	ModeFull:    {"scout": true, "tracker": true, "engagement": true, "feedback": true, "review": true},
	ModeReduced: {"scout": true, "tracker": true, "feedback": true, "review": true},
	ModeMinimal: {"scout": true, "tracker": true, "feedback": true},
	ModePaused:  {},
}

func (m Mode) allows(task string) bool {
	return taskAllowlist[m][task]
}

// Intervals configures the cadence of each of the five loops.
type Intervals struct {
	Scout      time.Duration
	Tracker    time.Duration
	Engagement time.Duration
	Feedback   time.Duration
	Review     time.Duration
}

// DefaultIntervals mirrors spec §4.11's defaults.
func DefaultIntervals() Intervals {
	return Intervals{
		Scout:      30 * time.Minute,
		Tracker:    60 * time.Minute,
		Engagement: 30 * time.Minute,
		Feedback:   24 * time.Hour,
		Review:     7 * 24 * time.Hour,
	}
}

// Status is a point-in-time snapshot for introspection, equivalent to
// the Python orchestrator's get_status().
type Status struct {
	Running         bool
	Mode            Mode
	ModeChangedAt   time.Time
	ModeDescription string
	DailyCostLimit  float64
	LastRun         map[string]time.Time
}

var modeDescriptions = map[Mode]string{
	ModeFull:    "full workload: all loops active, video generation allowed",
	ModeReduced: "reduced workload: engagement loop skipped, creator output limited; deferred video generation is not gated by mode",
	ModeMinimal: "minimal workload: only scout, tracker, and feedback loops run, creator skipped",
	ModePaused:  "paused: daily cost limit reached, no loop bodies run until cost resets",
}

// Orchestrator wires every pipeline component into five independent
// periodic loops (scout, tracker, engagement, feedback, review) plus
// on-demand manual triggers, and throttles all of them uniformly as
// accumulated daily cost approaches DailyCostLimit.
type Orchestrator struct {
	store store.Store
	log   *slog.Logger

	scout    *scout.Scout
	analyst  *analyst.Analyst
	creator  *creator.Creator
	approval *approval.Queue
	tracker  *metrics.Collector
	feedback *feedback.Loop
	telem    *telemetry.Metrics

	intervals      Intervals
	dailyCostLimit float64

	mu            sync.Mutex
	mode          Mode
	modeChangedAt time.Time
	lastRun       map[string]time.Time
	running       bool

	pending sync.WaitGroup
	cancel  context.CancelFunc
}

// New returns an Orchestrator. dailyCostLimit <= 0 disables degradation
// entirely; the orchestrator then always runs in ModeFull.
func New(
	st store.Store,
	sc *scout.Scout,
	an *analyst.Analyst,
	cr *creator.Creator,
	aq *approval.Queue,
	mc *metrics.Collector,
	fl *feedback.Loop,
	intervals Intervals,
	dailyCostLimit float64,
	log *slog.Logger,
) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		store:          st,
		scout:          sc,
		analyst:        an,
		creator:        cr,
		approval:       aq,
		tracker:        mc,
		feedback:       fl,
		intervals:      intervals,
		dailyCostLimit: dailyCostLimit,
		mode:           ModeFull,
		lastRun:        make(map[string]time.Time),
		log:            log.With("component", "orchestrator"),
	}
}

// SetMetrics wires a Prometheus telemetry sink. Safe to call before
// Start; every tick and mode transition reports to it when non-nil.
func (o *Orchestrator) SetMetrics(m *telemetry.Metrics) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.telem = m
}

// Start launches the five periodic loops as goroutines and returns
// immediately. Calling Start twice without an intervening Stop is a
// programming error and panics.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		panic("orchestrator: Start called while already running")
	}
	o.running = true
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()

	loops := []struct {
		name     string
		interval time.Duration
		fn       func(context.Context, time.Time) error
	}{
		{"scout", o.intervals.Scout, o.scoutCycle},
		{"tracker", o.intervals.Tracker, o.trackerCycle},
		{"engagement", o.intervals.Engagement, o.engagementCycle},
		{"feedback", o.intervals.Feedback, o.feedbackCycle},
		{"review", o.intervals.Review, o.reviewCycle},
	}
	for _, l := range loops {
		o.pending.Add(1)
		go o.runLoop(ctx, l.name, l.interval, l.fn)
	}
}

// Stop cancels every loop and blocks until each has returned from its
// current tick.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	o.pending.Wait()
	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
}

func (o *Orchestrator) runLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context, time.Time) error) {
	defer o.pending.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.tick(ctx, name, fn)
		}
	}
}

// tick applies the current degradation mode and, if the mode permits
// this task, runs its body. Errors are logged, never propagated: a loop
// body never tears down its own scheduling.
func (o *Orchestrator) tick(ctx context.Context, name string, fn func(context.Context, time.Time) error) {
	now := time.Now().UTC()
	mode, err := o.updateMode(ctx, now)
	if err != nil {
		o.log.Error("cost lookup failed, assuming FULL mode", "error", err)
		mode = ModeFull
	}
	if !mode.allows(name) {
		o.log.Debug("skipping task, disallowed by mode", "task", name, "mode", mode)
		if o.telem != nil {
			o.telem.LoopSkippedTotal.WithLabelValues(name).Inc()
		}
		return
	}

	o.log.Info("running scheduled task", "task", name)
	if o.telem != nil {
		o.telem.LoopTicksTotal.WithLabelValues(name).Inc()
	}
	if err := fn(ctx, now); err != nil {
		o.log.Error("scheduled task failed", "task", name, "error", err)
		if o.telem != nil {
			o.telem.LoopErrorsTotal.WithLabelValues(name).Inc()
		}
	}
	o.mu.Lock()
	o.lastRun[name] = now
	o.mu.Unlock()
}

// updateMode recomputes today's accumulated cost and, if the ratio
// crosses into a new mode, logs the transition and records it. Calling
// it repeatedly with an unchanged cost_today never changes the mode
// after the first transition (testable property 7).
func (o *Orchestrator) updateMode(ctx context.Context, now time.Time) (Mode, error) {
	if o.dailyCostLimit <= 0 {
		return ModeFull, nil
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	costToday, err := o.store.SumCostSince(ctx, startOfDay)
	if err != nil {
		return ModeFull, fmt.Errorf("orchestrator: sum cost: %w", err)
	}
	ratio := costToday / o.dailyCostLimit
	newMode := modeForRatio(ratio)

	o.mu.Lock()
	oldMode := o.mode
	if newMode != oldMode {
		o.mode = newMode
		o.modeChangedAt = now
	}
	telem := o.telem
	o.mu.Unlock()

	if newMode != oldMode {
		o.log.Warn("operation mode change",
			"from", oldMode, "to", newMode,
			"cost_today", costToday, "daily_limit", o.dailyCostLimit, "ratio", ratio,
		)
		if telem != nil {
			telem.ModeTransitionsTotal.WithLabelValues(string(newMode)).Inc()
		}
	}
	if telem != nil {
		telem.CurrentMode.Set(telemetry.ModeOrdinal(string(newMode)))
		telem.CostTodayUSD.Set(costToday)
	}
	return newMode, nil
}

// scoutCycle discovers, analyzes, and (outside MINIMAL/PAUSED) creates
// and routes content, mirroring the Python orchestrator's _scout_cycle.
func (o *Orchestrator) scoutCycle(ctx context.Context, at time.Time) error {
	if _, err := o.scout.Run(ctx); err != nil {
		return fmt.Errorf("scout: %w", err)
	}
	if _, err := o.analyst.Run(ctx, at); err != nil {
		return fmt.Errorf("analyst: %w", err)
	}

	mode := o.currentMode()
	if mode == ModeMinimal {
		return nil
	}

	limit := 10
	if mode == ModeReduced {
		limit = 3
	}
	if _, err := o.creator.Run(ctx, limit, at); err != nil {
		return fmt.Errorf("creator: %w", err)
	}
	if _, err := o.approval.ProcessPending(ctx, at); err != nil {
		return fmt.Errorf("approval: %w", err)
	}
	return nil
}

// trackerCycle pulls due engagement metrics. If the tick wrote at least
// three skill outcomes, it triggers an immediate feedback cycle instead
// of waiting for the scheduled one, mirroring the Python's cross-loop
// trigger in _tracker_cycle.
func (o *Orchestrator) trackerCycle(ctx context.Context, at time.Time) error {
	result, err := o.tracker.Run(ctx, at)
	if err != nil {
		return fmt.Errorf("tracker: %w", err)
	}
	if result.SkillsUpdated >= 3 {
		o.log.Info("tracker wrote enough skill outcomes, triggering feedback cycle", "skills_updated", result.SkillsUpdated)
		if err := o.feedbackCycle(ctx, at); err != nil {
			o.log.Error("triggered feedback cycle failed", "error", err)
		}
	}
	return nil
}

// engagementCycle re-collects due metrics at a tighter cadence than the
// tracker loop for fresher early-engagement reads. It shares the same
// MetricsCollector.Run body; the collector's per-(publication,interval)
// existing-row check makes running it twice in the same hour a no-op.
func (o *Orchestrator) engagementCycle(ctx context.Context, at time.Time) error {
	_, err := o.tracker.Run(ctx, at)
	if err != nil {
		return fmt.Errorf("engagement: %w", err)
	}
	return nil
}

func (o *Orchestrator) feedbackCycle(ctx context.Context, at time.Time) error {
	if _, err := o.feedback.RunCycle(ctx, at); err != nil {
		return fmt.Errorf("feedback: %w", err)
	}
	return nil
}

// reviewCycle is a weekly backstop sweep of any creation still in the raw
// "pending" state, i.e. one no scout cycle has routed through the
// approval queue.
func (o *Orchestrator) reviewCycle(ctx context.Context, at time.Time) error {
	if _, err := o.approval.ProcessPending(ctx, at); err != nil {
		return fmt.Errorf("review: %w", err)
	}
	return nil
}

func (o *Orchestrator) currentMode() Mode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mode
}

// TriggerScout runs one scout cycle immediately, subject to the current
// mode, mirroring the Python orchestrator's trigger_scout manual API.
func (o *Orchestrator) TriggerScout(ctx context.Context, at time.Time) error {
	mode, err := o.updateMode(ctx, at)
	if err != nil {
		return err
	}
	if !mode.allows("scout") {
		o.log.Info("manual scout trigger skipped, disallowed by mode", "mode", mode)
		return nil
	}
	return o.scoutCycle(ctx, at)
}

// TriggerFeedback runs one feedback cycle immediately, subject to the
// current mode.
func (o *Orchestrator) TriggerFeedback(ctx context.Context, at time.Time) error {
	mode, err := o.updateMode(ctx, at)
	if err != nil {
		return err
	}
	if !mode.allows("feedback") {
		o.log.Info("manual feedback trigger skipped, disallowed by mode", "mode", mode)
		return nil
	}
	return o.feedbackCycle(ctx, at)
}

// Status returns a snapshot of the orchestrator's current state,
// equivalent to the Python orchestrator's get_status().
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	lastRun := make(map[string]time.Time, len(o.lastRun))
	for k, v := range o.lastRun {
		lastRun[k] = v
	}
	return Status{
		Running:         o.running,
		Mode:            o.mode,
		ModeChangedAt:   o.modeChangedAt,
		ModeDescription: modeDescriptions[o.mode],
		DailyCostLimit:  o.dailyCostLimit,
		LastRun:         lastRun,
	}
}
