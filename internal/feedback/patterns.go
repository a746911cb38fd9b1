package feedback

import (
	"fmt"

	"github.com/philipbankier/contentpilot/internal/model"
)

// PatternType classifies a detected skill performance pattern.
type PatternType string

const (
	PatternHighPerformer PatternType = "high_performer"
	PatternUnderperformer PatternType = "underperformer"
	PatternTrendShift    PatternType = "trend_shift"
)

// Pattern is one observed correlation between a skill and its outcomes.
type Pattern struct {
	Type        PatternType
	SkillName   string
	AvgScore    float64
	SampleSize  int
	Direction   string
	Delta       float64
	Description string
}

// AnalyzePatterns groups metrics by skill and flags skills that
// consistently perform well, consistently underperform, or show a
// meaningful shift between their earlier and later half of outcomes.
func AnalyzePatterns(metrics []*model.SkillMetric) []Pattern {
	if len(metrics) == 0 {
		return nil
	}

	grouped := make(map[string][]float64)
	var order []string
	for _, m := range metrics {
		if _, ok := grouped[m.SkillName]; !ok {
			order = append(order, m.SkillName)
		}
		grouped[m.SkillName] = append(grouped[m.SkillName], m.Score)
	}

	var patterns []Pattern
	for _, name := range order {
		scores := grouped[name]
		if len(scores) == 0 {
			continue
		}
		avg := average(scores)

		switch {
		case avg >= 0.8 && len(scores) >= 3:
			patterns = append(patterns, Pattern{
				Type: PatternHighPerformer, SkillName: name, AvgScore: round3(avg), SampleSize: len(scores),
				Description: fmt.Sprintf("Skill '%s' consistently performs well (avg %.2f over %d uses)", name, avg, len(scores)),
			})
		case avg <= 0.3 && len(scores) >= 3:
			patterns = append(patterns, Pattern{
				Type: PatternUnderperformer, SkillName: name, AvgScore: round3(avg), SampleSize: len(scores),
				Description: fmt.Sprintf("Skill '%s' consistently underperforms (avg %.2f over %d uses)", name, avg, len(scores)),
			})
		}

		if len(scores) >= 6 {
			firstHalf := scores[:len(scores)/2]
			secondHalf := scores[len(scores)/2:]
			delta := average(secondHalf) - average(firstHalf)
			if delta > 0.15 || delta < -0.15 {
				direction := "improving"
				if delta < 0 {
					direction = "declining"
				}
				patterns = append(patterns, Pattern{
					Type: PatternTrendShift, SkillName: name, Direction: direction, Delta: round3(delta),
					Description: fmt.Sprintf("Skill '%s' is %s (delta %+.2f)", name, direction, delta),
				})
			}
		}
	}
	return patterns
}

// Proposal is a suggested content action for a skill derived from a
// sustained run of outcome scores.
type Proposal struct {
	SkillName    string
	Action       string
	Reason       string
	AvgScore     float64
	SampleSize   int
}

// ProposeUpdate suggests major_revision / minor_refinement / targeted_update
// for a skill with at least 3 recent outcomes, or nil when the signal is
// too mixed and no free-text feedback was attached to push a decision.
func ProposeUpdate(skillName string, scores []float64, hasFeedback bool) *Proposal {
	if len(scores) < 3 {
		return nil
	}
	avg := average(scores)
	if avg >= 0.3 && avg <= 0.7 && !hasFeedback {
		return nil
	}

	p := &Proposal{SkillName: skillName, AvgScore: round3(avg), SampleSize: len(scores)}
	switch {
	case avg < 0.3:
		p.Action = "major_revision"
		p.Reason = fmt.Sprintf("Consistently low scores (avg %.2f over %d outcomes)", avg, len(scores))
	case avg >= 0.8:
		p.Action = "minor_refinement"
		p.Reason = fmt.Sprintf("Strong performance (avg %.2f); refine to capture what works", avg)
	default:
		p.Action = "targeted_update"
		p.Reason = fmt.Sprintf("Mixed results (avg %.2f); targeted improvements needed", avg)
	}
	return p
}

func average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round3(v float64) float64 {
	const scale = 1000.0
	return float64(int(v*scale+sign(v)*0.5)) / scale
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
