// Package feedback ties pattern analysis, failure-pattern extraction,
// and experiment evaluation together into the periodic learning cycle
// that keeps skill confidence aligned with real engagement.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/philipbankier/contentpilot/internal/experiment"
	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/skill"
	"github.com/philipbankier/contentpilot/internal/store"
)

const failureLookbackDays = 14

// Summary reports every action taken during one RunCycle.
type Summary struct {
	PatternsFound      int
	ConfidenceUpdates  int
	StaleSkills        []string
	FailuresAnalyzed   int
	FailurePatterns    int
	ExperimentsChecked int
	VariantsPromoted   int
}

// Loop orchestrates the learning cycle: analyze, experiment, adapt.
type Loop struct {
	store      store.Store
	skills     *skill.Library
	experiment *experiment.Runner
	failures   *Tracker
	log        *slog.Logger
}

// New returns a Loop wired to the shared skill library, experiment
// runner, and failure tracker (the same Tracker instance the Creator
// was constructed with, so its cache is visible to both).
func New(st store.Store, skills *skill.Library, runner *experiment.Runner, failures *Tracker, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}
	return &Loop{store: st, skills: skills, experiment: runner, failures: failures, log: log.With("component", "feedback_loop")}
}

// RunCycle executes one full feedback cycle:
//  1. Analyze skill-metric patterns (high performer / underperformer / trend shift).
//  2. Recompute skill confidence as the flat average of every stored SkillMetric score.
//  3. Sweep skills for staleness.
//  4. Analyze failed content from the last 14 days to refresh avoid-guidance.
//  5. Check every running experiment for a statistically significant winner.
//  6. Promote winning variant B content into the skill as a new version.
func (l *Loop) RunCycle(ctx context.Context, at time.Time) (Summary, error) {
	var summary Summary

	metrics, err := l.store.ListSkillMetricsSince(ctx, time.Time{})
	if err != nil {
		return Summary{}, fmt.Errorf("feedback: list skill metrics: %w", err)
	}
	patterns := AnalyzePatterns(metrics)
	summary.PatternsFound = len(patterns)
	for _, p := range patterns {
		switch p.Type {
		case PatternHighPerformer:
			l.log.Info("high performer", "skill", p.SkillName, "avg_score", p.AvgScore, "samples", p.SampleSize)
		case PatternUnderperformer:
			l.log.Warn("underperformer", "skill", p.SkillName, "avg_score", p.AvgScore, "samples", p.SampleSize, "action", "consider revision")
		case PatternTrendShift:
			l.log.Info("trend shift", "skill", p.SkillName, "direction", p.Direction, "delta", p.Delta)
		}
	}

	bySkill := make(map[string][]float64)
	for _, m := range metrics {
		bySkill[m.SkillName] = append(bySkill[m.SkillName], m.Score)
	}
	for name, scores := range bySkill {
		confidence := average(scores)
		if err := l.skills.SetConfidence(ctx, name, confidence, at); err != nil {
			l.log.Error("set confidence failed", "skill", name, "error", err)
			continue
		}
		summary.ConfidenceUpdates++
	}

	for _, s := range l.skills.All() {
		if skill.IsStale(s, at) {
			summary.StaleSkills = append(summary.StaleSkills, s.Name)
			if err := l.skills.MarkStale(ctx, s.Name, at); err != nil {
				l.log.Error("mark stale failed", "skill", s.Name, "error", err)
			}
		}
	}
	if len(summary.StaleSkills) > 0 {
		l.log.Info("stale skills detected", "skills", summary.StaleSkills)
	}

	if l.failures != nil {
		analysis, err := l.failures.AnalyzeFailures(ctx, failureLookbackDays, at)
		if err != nil {
			l.log.Error("failure pattern analysis failed", "error", err)
		} else {
			summary.FailuresAnalyzed = analysis.FailureCount
			summary.FailurePatterns = len(analysis.HookPatterns) + len(analysis.FormatPatterns) + len(analysis.SkillPatterns)
			for _, byPlat := range analysis.LengthByPlat {
				summary.FailurePatterns += len(byPlat)
			}
			for _, byPlat := range analysis.TimingByPlat {
				summary.FailurePatterns += len(byPlat)
			}
		}
	}

	if l.experiment != nil {
		running, err := l.store.ListExperimentsByStatus(ctx, model.ExperimentRunning)
		if err != nil {
			return summary, fmt.Errorf("feedback: list running experiments: %w", err)
		}
		summary.ExperimentsChecked = len(running)
		for _, e := range running {
			outcome, err := l.experiment.CheckWinner(ctx, e.ID, at)
			if err != nil {
				l.log.Error("check winner failed", "experiment_id", e.ID, "error", err)
				continue
			}
			if !outcome.Complete || outcome.Winner != model.WinnerB {
				continue
			}
			reason := fmt.Sprintf("Experiment winner (confidence: %.2f)", outcome.Confidence)
			if err := l.skills.CreateVersion(ctx, e.SkillName, e.VariantBDescription, reason, at); err != nil {
				l.log.Error("promote variant failed", "skill", e.SkillName, "experiment_id", e.ID, "error", err)
				continue
			}
			summary.VariantsPromoted++
			l.log.Info("promoted variant", "skill", e.SkillName, "experiment_id", e.ID)
		}
	}

	l.log.Info("feedback cycle complete",
		"patterns_found", summary.PatternsFound,
		"confidence_updates", summary.ConfidenceUpdates,
		"stale_skills", len(summary.StaleSkills),
		"failures_analyzed", summary.FailuresAnalyzed,
		"experiments_checked", summary.ExperimentsChecked,
		"variants_promoted", summary.VariantsPromoted,
	)
	return summary, nil
}
