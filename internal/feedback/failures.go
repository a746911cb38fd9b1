package feedback

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/store"
)

// FailureEngagementThreshold is the 24h engagement rate below which a
// publication is considered a failure for pattern extraction purposes.
const FailureEngagementThreshold = 0.02

// MinSamplesForPattern is the minimum number of failed publications
// required before a pattern is considered established.
const MinSamplesForPattern = 3

type failedItem struct {
	creation    *model.Creation
	publication *model.Publication
	metric      *model.Metric
}

type namedPattern struct {
	Type        string
	Description string
	Count       int
	FailureRate float64
}

// FailureAnalysis is the result of one AnalyzeFailures pass.
type FailureAnalysis struct {
	FailureCount   int
	HookPatterns   []namedPattern
	LengthByPlat   map[string][]namedPattern
	TimingByPlat   map[string][]namedPattern
	FormatPatterns []namedPattern
	SkillPatterns  []namedPattern
}

// Tracker caches the most recent failure analysis and serves formatted
// avoid-guidance text to the creator for injection into its prompts.
// It implements creator.FailurePatternSource.
type Tracker struct {
	store  store.Store
	cached *FailureAnalysis
}

// NewTracker returns a Tracker with no cached analysis.
func NewTracker(st store.Store) *Tracker {
	return &Tracker{store: st}
}

// AnalyzeFailures inspects publications from the last lookbackDays whose
// 24h engagement fell below FailureEngagementThreshold and extracts
// patterns in their hooks, lengths, posting times, formats, and skills.
// Populates the tracker's cache for subsequent AvoidPatternsFor calls.
func (t *Tracker) AnalyzeFailures(ctx context.Context, lookbackDays int, now time.Time) (FailureAnalysis, error) {
	cutoff := now.AddDate(0, 0, -lookbackDays)

	pubs, err := t.store.ListAllPublications(ctx)
	if err != nil {
		return FailureAnalysis{}, fmt.Errorf("feedback: list publications: %w", err)
	}

	var failures []failedItem
	for _, pub := range pubs {
		if pub.PublishedAt.Before(cutoff) {
			continue
		}
		metrics, err := t.store.ListMetricsByPublication(ctx, pub.ID)
		if err != nil {
			return FailureAnalysis{}, fmt.Errorf("feedback: list metrics for %s: %w", pub.ID, err)
		}
		var m24 *model.Metric
		for _, m := range metrics {
			if m.Interval == model.Interval24h {
				m24 = m
				break
			}
		}
		if m24 == nil || m24.EngagementRate >= FailureEngagementThreshold {
			continue
		}
		creation, err := t.store.GetCreation(ctx, pub.CreationID)
		if err != nil {
			continue
		}
		failures = append(failures, failedItem{creation: creation, publication: pub, metric: m24})
	}

	if len(failures) < MinSamplesForPattern {
		return FailureAnalysis{FailureCount: len(failures)}, nil
	}

	analysis := FailureAnalysis{
		FailureCount:   len(failures),
		HookPatterns:   analyzeHooks(failures),
		LengthByPlat:   analyzeLength(failures),
		TimingByPlat:   analyzeTiming(failures),
		FormatPatterns: analyzeFormats(failures),
		SkillPatterns:  analyzeSkills(failures),
	}
	t.cached = &analysis
	return analysis, nil
}

// AvoidPatternsFor returns markdown-formatted guidance on patterns to
// avoid for the given platform/format, or "" if no analysis has run yet
// or nothing significant was found.
func (t *Tracker) AvoidPatternsFor(platform, format string) string {
	if t.cached == nil {
		return ""
	}
	c := t.cached

	var lines []string
	lines = append(lines, "## CAUTION: Patterns to AVOID (from failed content)")
	lines = append(lines, "The following patterns have led to poor engagement:")

	if len(c.HookPatterns) > 0 {
		lines = append(lines, "", "### Hook Patterns to Avoid")
		for _, p := range capPatterns(c.HookPatterns, 5) {
			lines = append(lines, fmt.Sprintf("- %s (failure rate: %.0f%%)", p.Description, p.FailureRate*100))
		}
	}

	if lp, ok := c.LengthByPlat[platform]; ok && len(lp) > 0 {
		lines = append(lines, "", fmt.Sprintf("### Length Issues on %s", titleCase(platform)))
		for _, p := range lp {
			lines = append(lines, "- "+p.Description)
		}
	}

	if tp, ok := c.TimingByPlat[platform]; ok && len(tp) > 0 {
		lines = append(lines, "", fmt.Sprintf("### Bad Posting Times for %s", titleCase(platform)))
		for _, p := range capPatterns(tp, 3) {
			lines = append(lines, "- "+p.Description)
		}
	}

	combo := platform + "_" + format
	for _, p := range c.FormatPatterns {
		if p.Type == combo {
			lines = append(lines, "", "### Format Issues", "- "+p.Description)
		}
	}

	var underperforming []namedPattern
	for _, p := range c.SkillPatterns {
		if p.FailureRate > 0.5 {
			underperforming = append(underperforming, p)
		}
	}
	if len(underperforming) > 0 {
		lines = append(lines, "", "### Skill Patterns to Use Cautiously")
		for _, p := range capPatterns(underperforming, 3) {
			lines = append(lines, fmt.Sprintf("- %s", p.Description))
		}
	}

	if len(lines) <= 2 {
		return ""
	}
	return strings.Join(lines, "\n")
}

var (
	numberedListStart = regexp.MustCompile(`^\d+\.`)
	hyperbolicWords    = []string{"excited", "thrilled", "amazing", "incredible"}
)

func analyzeHooks(failures []failedItem) []namedPattern {
	counts := map[string]int{}
	total := len(failures)

	for _, f := range failures {
		body := f.creation.Body
		firstLine := strings.TrimSpace(strings.SplitN(body, "\n", 2)[0])

		if len(firstLine) < 20 {
			counts["too_short_hook"]++
		}
		if strings.HasSuffix(firstLine, "!") {
			counts["exclamation_hook"]++
		}
		if strings.HasPrefix(firstLine, "I ") || strings.HasPrefix(firstLine, "We ") || strings.HasPrefix(firstLine, "Our ") {
			counts["self_focused_hook"]++
		}
		if numberedListStart.MatchString(firstLine) {
			counts["numbered_list_start"]++
		}
		if !strings.Contains(firstLine, "?") && len(firstLine) > 50 {
			counts["long_statement_no_question"]++
		}
		lower := strings.ToLower(firstLine)
		for _, w := range hyperbolicWords {
			if strings.Contains(lower, w) {
				counts["hyperbolic_hook"]++
				break
			}
		}
	}

	descriptions := map[string]string{
		"too_short_hook":              "Very short opening lines (<20 chars)",
		"exclamation_hook":            "Opening lines ending with exclamation marks",
		"self_focused_hook":           "Self-focused openings (I/We/Our)",
		"numbered_list_start":         "Starting with numbered list format",
		"long_statement_no_question":  "Long declarative statements without questions",
		"hyperbolic_hook":             "Hyperbolic language (excited, amazing, incredible)",
	}

	var patterns []namedPattern
	for issue, count := range counts {
		rate := float64(count) / float64(total)
		if rate >= 0.3 {
			patterns = append(patterns, namedPattern{Type: issue, Description: descriptions[issue], Count: count, FailureRate: rate})
		}
	}
	sortByRateDesc(patterns)
	return patterns
}

func analyzeLength(failures []failedItem) map[string][]namedPattern {
	issues := map[string]map[string]int{}
	totals := map[string]int{}

	for _, f := range failures {
		platform := f.creation.Platform
		bodyLen := len(f.creation.Body)
		totals[platform]++
		if issues[platform] == nil {
			issues[platform] = map[string]int{}
		}

		switch platform {
		case "linkedin":
			if bodyLen < 100 {
				issues[platform]["too_short"]++
			} else if bodyLen > 2500 {
				issues[platform]["too_long"]++
			}
		case "twitter":
			if bodyLen > 250 {
				issues[platform]["too_long"]++
			}
		case "youtube", "tiktok":
			if bodyLen < 50 {
				issues[platform]["too_short"]++
			}
		}
	}

	result := map[string][]namedPattern{}
	for platform, byIssue := range issues {
		total := totals[platform]
		var patterns []namedPattern
		for issue, count := range byIssue {
			rate := float64(count) / float64(total)
			if rate >= 0.25 {
				patterns = append(patterns, namedPattern{
					Type: issue, Count: count, FailureRate: rate,
					Description: fmt.Sprintf("Content %s for %s", strings.ReplaceAll(issue, "_", " "), platform),
				})
			}
		}
		if len(patterns) > 0 {
			result[platform] = patterns
		}
	}
	return result
}

func analyzeTiming(failures []failedItem) map[string][]namedPattern {
	counts := map[string]map[string]int{}
	totals := map[string]int{}

	for _, f := range failures {
		platform := f.creation.Platform
		pubTime := f.publication.PublishedAt
		if pubTime.IsZero() {
			continue
		}
		totals[platform]++
		if counts[platform] == nil {
			counts[platform] = map[string]int{}
		}

		counts[platform]["day_"+pubTime.Weekday().String()]++
		hour := pubTime.Hour()
		switch {
		case hour < 6:
			counts[platform]["late_night"]++
		case hour > 20:
			counts[platform]["evening"]++
		case hour >= 12 && hour <= 13:
			counts[platform]["lunch_hour"]++
		}
	}

	labels := map[string]string{
		"late_night": "Late night posts (before 6am)",
		"evening":    "Late evening posts (after 8pm)",
		"lunch_hour": "Lunch hour posts (12-1pm)",
	}

	result := map[string][]namedPattern{}
	for platform, byKey := range counts {
		total := totals[platform]
		var patterns []namedPattern
		for key, count := range byKey {
			rate := float64(count) / float64(total)
			if rate >= 0.3 && count >= 2 {
				desc, ok := labels[key]
				if !ok {
					if strings.HasPrefix(key, "day_") {
						desc = fmt.Sprintf("Posts on %s tend to underperform", strings.TrimPrefix(key, "day_"))
					} else {
						desc = key
					}
				}
				patterns = append(patterns, namedPattern{Type: key, Description: desc, Count: count, FailureRate: rate})
			}
		}
		if len(patterns) > 0 {
			result[platform] = patterns
		}
	}
	return result
}

func analyzeFormats(failures []failedItem) []namedPattern {
	counts := map[string]int{}
	for _, f := range failures {
		combo := f.creation.Platform + "_" + f.creation.Format
		counts[combo]++
	}

	var patterns []namedPattern
	for combo, count := range counts {
		if count < 3 {
			continue
		}
		parts := strings.SplitN(combo, "_", 2)
		platform, format := parts[0], combo
		if len(parts) == 2 {
			format = parts[1]
		}
		patterns = append(patterns, namedPattern{
			Type: combo, Count: count,
			Description: fmt.Sprintf("%s format on %s has %d failures", titleCase(format), titleCase(platform), count),
		})
	}
	return patterns
}

func analyzeSkills(failures []failedItem) []namedPattern {
	counts := map[string]int{}
	for _, f := range failures {
		for _, s := range f.creation.SkillsUsed {
			counts[s]++
		}
	}

	var patterns []namedPattern
	for skillName, count := range counts {
		if count < 2 {
			continue
		}
		patterns = append(patterns, namedPattern{
			Type: skillName, Count: count, FailureRate: 1.0,
			Description: fmt.Sprintf("Skill '%s' has %d uses in failed content", skillName, count),
		})
	}
	sortByRateDesc(patterns)
	return patterns
}

func sortByRateDesc(patterns []namedPattern) {
	for i := 1; i < len(patterns); i++ {
		for j := i; j > 0 && patterns[j].FailureRate > patterns[j-1].FailureRate; j-- {
			patterns[j], patterns[j-1] = patterns[j-1], patterns[j]
		}
	}
}

func capPatterns(patterns []namedPattern, n int) []namedPattern {
	if len(patterns) <= n {
		return patterns
	}
	return patterns[:n]
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
