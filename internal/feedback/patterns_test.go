package feedback

import (
	"testing"

	"github.com/philipbankier/contentpilot/internal/model"
)

func metricsFor(skillName string, scores ...float64) []*model.SkillMetric {
	var out []*model.SkillMetric
	for _, s := range scores {
		out = append(out, &model.SkillMetric{SkillName: skillName, Score: s})
	}
	return out
}

func TestAnalyzePatterns_HighPerformer(t *testing.T) {
	metrics := metricsFor("hook_style", 0.9, 0.85, 0.95, 0.8)
	patterns := AnalyzePatterns(metrics)
	if len(patterns) != 1 || patterns[0].Type != PatternHighPerformer {
		t.Fatalf("patterns = %+v, want one high_performer pattern", patterns)
	}
}

func TestAnalyzePatterns_Underperformer(t *testing.T) {
	metrics := metricsFor("cta_style", 0.1, 0.2, 0.15)
	patterns := AnalyzePatterns(metrics)
	if len(patterns) != 1 || patterns[0].Type != PatternUnderperformer {
		t.Fatalf("patterns = %+v, want one underperformer pattern", patterns)
	}
}

func TestAnalyzePatterns_TrendShift(t *testing.T) {
	metrics := metricsFor("format_choice", 0.2, 0.2, 0.2, 0.6, 0.6, 0.6)
	patterns := AnalyzePatterns(metrics)

	var found bool
	for _, p := range patterns {
		if p.Type == PatternTrendShift && p.Direction == "improving" {
			found = true
		}
	}
	if !found {
		t.Fatalf("patterns = %+v, want a trend_shift improving pattern", patterns)
	}
}

func TestAnalyzePatterns_TooFewSamples_NoPattern(t *testing.T) {
	metrics := metricsFor("rare_skill", 0.9, 0.9)
	patterns := AnalyzePatterns(metrics)
	if len(patterns) != 0 {
		t.Fatalf("patterns = %+v, want none (sample size below threshold)", patterns)
	}
}

func TestProposeUpdate_LowScore_MajorRevision(t *testing.T) {
	p := ProposeUpdate("weak_skill", []float64{0.1, 0.2, 0.15}, false)
	if p == nil || p.Action != "major_revision" {
		t.Fatalf("proposal = %+v, want major_revision", p)
	}
}

func TestProposeUpdate_MixedNoFeedback_NilProposal(t *testing.T) {
	p := ProposeUpdate("mid_skill", []float64{0.4, 0.5, 0.45}, false)
	if p != nil {
		t.Fatalf("proposal = %+v, want nil for mixed scores with no feedback", p)
	}
}
