// Package risk assesses a creation's publishing risk via keyword
// matching and unverified-claim pattern detection.
package risk

import (
	"fmt"
	"regexp"
	"strings"
)

var highRiskKeywords = []string{
	"competitor", "lawsuit", "fired", "scandal", "bankrupt", "fraud",
	"stolen", "leaked", "confidential", "insider", "sec filing",
}

var mediumRiskKeywords = []string{
	"controversy", "debate", "backlash", "criticism", "failed",
	"layoff", "pivot", "struggle", "problem", "issue",
}

var claimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+[x%] (?:faster|better|cheaper|more)`),
	regexp.MustCompile(`first (?:ever|to|in the world)`),
	regexp.MustCompile(`(?:always|never|every|no one)`),
}

var competitors = []string{"openai", "anthropic", "google", "meta", "microsoft"}

// Level buckets a risk score.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Assessment is the outcome of Assessor.Assess.
type Assessment struct {
	Level Level
	Score float64
	Flags []string
}

// Assessor scores content risk.
type Assessor struct{}

// NewAssessor returns an Assessor.
func NewAssessor() *Assessor { return &Assessor{} }

// Assess scores title+content for publishing risk.
func (a *Assessor) Assess(title, content string) Assessment {
	text := strings.ToLower(title + " " + content)

	var flags []string
	score := 0.0

	for _, kw := range highRiskKeywords {
		if strings.Contains(text, kw) {
			flags = append(flags, fmt.Sprintf("high_risk_keyword: %s", kw))
			score += 0.3
		}
	}

	for _, kw := range mediumRiskKeywords {
		if strings.Contains(text, kw) {
			flags = append(flags, fmt.Sprintf("medium_risk_keyword: %s", kw))
			score += 0.1
		}
	}

	for _, pattern := range claimPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			flags = append(flags, fmt.Sprintf("unverified_claim: %s", match))
			score += 0.15
		}
	}

	for _, comp := range competitors {
		if strings.Contains(text, comp) {
			flags = append(flags, fmt.Sprintf("competitor_mention: %s", comp))
			score += 0.05
		}
	}

	if score > 1.0 {
		score = 1.0
	}

	var level Level
	switch {
	case score >= 0.60:
		level = LevelHigh
	case score >= 0.25:
		level = LevelMedium
	default:
		level = LevelLow
	}

	return Assessment{Level: level, Score: round2(score), Flags: flags}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
