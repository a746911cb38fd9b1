// Package experiment runs A/B tests on skill content variants and
// decides, from recorded engagement observations, whether one variant
// has significantly outperformed the other.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/store"
)

const (
	defaultMinSamples = 10
	defaultPThreshold = 0.05
)

// Outcome is the result of CheckWinner.
type Outcome struct {
	Winner     model.ExperimentWinner
	Confidence float64
	PValue     float64
	EffectSize float64
	Complete   bool
	Method     string
	MeanA      float64
	MeanB      float64
	SamplesA   int
	SamplesB   int
}

// Runner creates, records, and evaluates A/B experiments on skill variants.
type Runner struct {
	store store.Store
	log   *slog.Logger
}

// New returns a Runner.
func New(st store.Store, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{store: st, log: log.With("component", "experiment_runner")}
}

// CreateExperiment opens an experiment comparing a skill's current
// content ("original") against variantDescription, tracked against
// metricTarget (typically "engagement_rate").
func (r *Runner) CreateExperiment(ctx context.Context, skillName, variantDescription, metricTarget string, at time.Time) (string, error) {
	e := &model.Experiment{
		ID:                  newExperimentID(skillName, at),
		SkillName:           skillName,
		VariantADescription: "original",
		VariantBDescription: variantDescription,
		MetricTarget:        metricTarget,
		Status:              model.ExperimentRunning,
		Winner:              model.WinnerNone,
		StartedAt:           at,
	}
	if err := r.store.InsertExperiment(ctx, e); err != nil {
		return "", fmt.Errorf("experiment: create: %w", err)
	}
	r.log.Info("created experiment", "id", e.ID, "skill", skillName, "variant_b", variantDescription)
	return e.ID, nil
}

// RecordResult updates the running mean for one variant ("A" or "B")
// of an experiment with a new observed score.
func (r *Runner) RecordResult(ctx context.Context, experimentID, variant string, score float64) error {
	e, err := r.store.GetExperiment(ctx, experimentID)
	if err != nil {
		return fmt.Errorf("experiment: get %s: %w", experimentID, err)
	}

	switch variant {
	case "A":
		n := e.VariantASamples
		e.VariantAScore = (e.VariantAScore*float64(n) + score) / float64(n+1)
		e.VariantASamples = n + 1
	case "B":
		n := e.VariantBSamples
		e.VariantBScore = (e.VariantBScore*float64(n) + score) / float64(n+1)
		e.VariantBSamples = n + 1
	default:
		return fmt.Errorf("experiment: unknown variant %q", variant)
	}

	if err := r.store.UpdateExperiment(ctx, e); err != nil {
		return fmt.Errorf("experiment: update %s: %w", experimentID, err)
	}
	return nil
}

// CheckWinner evaluates whether an experiment has a statistically
// significant winner using Welch's t-test with a normal-CDF
// approximation for the p-value (this module has no equivalent of a
// nonparametric rank test library, so unlike the reference
// implementation's scipy-backed Mann-Whitney path, every check here
// goes through the t-test approximation).
func (r *Runner) CheckWinner(ctx context.Context, experimentID string, at time.Time) (Outcome, error) {
	e, err := r.store.GetExperiment(ctx, experimentID)
	if err != nil {
		return Outcome{}, fmt.Errorf("experiment: get %s: %w", experimentID, err)
	}

	obsA, err := r.store.VariantObservations(ctx, e.SkillName, "A", e.StartedAt)
	if err != nil {
		return Outcome{}, fmt.Errorf("experiment: observations A: %w", err)
	}
	obsB, err := r.store.VariantObservations(ctx, e.SkillName, "B", e.StartedAt)
	if err != nil {
		return Outcome{}, fmt.Errorf("experiment: observations B: %w", err)
	}

	nA, nB := len(obsA), len(obsB)
	if nA < defaultMinSamples || nB < defaultMinSamples {
		return Outcome{Winner: model.WinnerNone, PValue: 1.0, Method: "insufficient_data", SamplesA: nA, SamplesB: nB}, nil
	}

	test := welchTTest(obsA, obsB)
	meanA, meanB := mean(obsA), mean(obsB)

	winner := model.WinnerNone
	if test.pValue <= defaultPThreshold {
		if meanA > meanB {
			winner = model.WinnerA
		} else {
			winner = model.WinnerB
		}
	} else {
		r.log.Info("no significant difference", "experiment_id", experimentID, "p_value", test.pValue)
	}

	e.Status = model.ExperimentCompleted
	e.Winner = winner
	e.VariantAScore = meanA
	e.VariantBScore = meanB
	e.VariantASamples = nA
	e.VariantBSamples = nB
	e.PValue = test.pValue
	e.EffectSize = test.effectSize
	completedAt := at
	e.CompletedAt = &completedAt
	if err := r.store.UpdateExperiment(ctx, e); err != nil {
		return Outcome{}, fmt.Errorf("experiment: persist winner: %w", err)
	}

	r.log.Info("experiment complete", "id", experimentID, "winner", winner, "p_value", test.pValue, "effect_size", test.effectSize)
	return Outcome{
		Winner:     winner,
		Confidence: 1.0 - test.pValue,
		PValue:     test.pValue,
		EffectSize: test.effectSize,
		Complete:   true,
		Method:     "welch_t_approx",
		MeanA:      meanA,
		MeanB:      meanB,
		SamplesA:   nA,
		SamplesB:   nB,
	}, nil
}

type tTestResult struct {
	pValue     float64
	effectSize float64
}

// welchTTest compares two independent samples without assuming equal
// variance, approximating the two-sided p-value via the normal CDF.
func welchTTest(a, b []float64) tTestResult {
	n1, n2 := len(a), len(b)
	mean1, mean2 := mean(a), mean(b)

	var1 := variance(a, mean1)
	var2 := variance(b, mean2)

	se := math.Sqrt(var1/float64(n1) + var2/float64(n2))
	if se <= 0 {
		se = 0.001
	}
	tStat := (mean1 - mean2) / se

	pValue := 2 * (1 - normalCDF(math.Abs(tStat)))
	pValue = math.Min(math.Max(pValue, 0.0001), 1.0)

	pooledN := n1 + n2 - 2
	var pooledStd float64
	if pooledN > 0 {
		pooledStd = math.Sqrt((float64(n1-1)*var1 + float64(n2-1)*var2) / float64(pooledN))
	}
	effectSize := 0.0
	if pooledStd > 0 {
		effectSize = math.Abs(mean1-mean2) / pooledStd
	}

	return tTestResult{pValue: pValue, effectSize: effectSize}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func variance(xs []float64, m float64) float64 {
	if len(xs) <= 1 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return sumSq / float64(len(xs)-1)
}

// normalCDF is the Abramowitz-Stegun approximation of the standard
// normal cumulative distribution function.
func normalCDF(x float64) float64 {
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x) / math.Sqrt2
	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)
	return 0.5 * (1.0 + sign*y)
}

func newExperimentID(skillName string, at time.Time) string {
	return fmt.Sprintf("exp_%s_%d", skillName, at.UnixNano())
}
