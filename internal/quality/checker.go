package quality

import (
	"regexp"
	"strings"
)

// Result is the outcome of Checker.Check.
type Result struct {
	Score    float64
	Passed   bool
	Warning  bool
	Issues   []string
	Metrics  map[string]float64
	Platform string
}

var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[.*?\]`),
	regexp.MustCompile(`\{.*?\}`),
	regexp.MustCompile(`TODO`),
	regexp.MustCompile(`PLACEHOLDER`),
}

func hasPlaceholder(body string) bool {
	for _, p := range placeholderPatterns {
		if p.MatchString(body) {
			return true
		}
	}
	return false
}

// Checker is the pre-approval quality gate.
type Checker struct{}

// NewChecker returns a Checker.
func NewChecker() *Checker { return &Checker{} }

// Check evaluates body/title against platform's quality profile.
func (c *Checker) Check(platform, title, body string) Result {
	profile := profileFor(platform)

	if hasPlaceholder(body) {
		return Result{
			Score:    0.1,
			Passed:   false,
			Warning:  false,
			Issues:   []string{"contains placeholder text (auto-reject)"},
			Metrics:  map[string]float64{"placeholder_detected": 1},
			Platform: platform,
		}
	}

	var issues []string
	metrics := make(map[string]float64)

	lengthScore, li := checkLength(body, platform, profile)
	metrics["length"] = lengthScore
	issues = append(issues, li...)

	readabilityScore, ri := checkReadability(body, profile)
	metrics["readability"] = readabilityScore
	issues = append(issues, ri...)

	structureScore, si := checkStructure(body, platform, profile)
	metrics["structure"] = structureScore
	issues = append(issues, si...)

	titleScore, ti := checkTitle(title, platform)
	metrics["title"] = titleScore
	issues = append(issues, ti...)

	substanceScore, sui := checkSubstance(body, profile)
	metrics["substance"] = substanceScore
	issues = append(issues, sui...)

	hookScore, hi := checkHook(body, profile)
	metrics["hook"] = hookScore
	issues = append(issues, hi...)

	w := weightsFor(platform)
	overall := metrics["length"]*w["length"] +
		metrics["readability"]*w["readability"] +
		metrics["structure"]*w["structure"] +
		metrics["title"]*w["title"] +
		metrics["substance"]*w["substance"] +
		metrics["hook"]*w["hook"]

	passed := overall >= AutoRejectThreshold
	warning := overall < WarningThreshold && passed

	return Result{
		Score:    overall,
		Passed:   passed,
		Warning:  warning,
		Issues:   issues,
		Metrics:  metrics,
		Platform: platform,
	}
}

func checkLength(body, platform string, p Profile) (float64, []string) {
	var issues []string
	length := len(body)

	if length < p.MinLength {
		issues = append(issues, "content too short for "+platform)
		return 0.0, issues
	}
	if length > p.MaxLength {
		issues = append(issues, "content too long for "+platform)
		return 0.3, issues
	}

	if length >= p.IdealLength.Min && length <= p.IdealLength.Max {
		return 1.0, issues
	}
	if length < p.IdealLength.Min {
		ratio := 1.0
		if p.IdealLength.Min > p.MinLength {
			ratio = float64(length-p.MinLength) / float64(p.IdealLength.Min-p.MinLength)
		}
		return 0.5 + 0.5*ratio, issues
	}
	ratio := 1.0
	if p.MaxLength > p.IdealLength.Max {
		ratio = float64(p.MaxLength-length) / float64(p.MaxLength-p.IdealLength.Max)
	}
	return 0.5 + 0.5*ratio, issues
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

func checkReadability(body string, p Profile) (float64, []string) {
	var issues []string
	if strings.TrimSpace(body) == "" {
		return 0.0, []string{"empty content"}
	}

	var sentences []string
	for _, s := range sentenceSplit.Split(body, -1) {
		if t := strings.TrimSpace(s); t != "" {
			sentences = append(sentences, t)
		}
	}
	if len(sentences) == 0 {
		return 0.2, []string{"no complete sentences found"}
	}

	idealMin, idealMax := p.IdealSentenceLength.Min, p.IdealSentenceLength.Max
	if idealMin == 0 && idealMax == 0 {
		idealMin, idealMax = 12, 25
	}

	total := 0
	for _, s := range sentences {
		total += len(strings.Fields(s))
	}
	avg := float64(total) / float64(len(sentences))

	var sentenceScore float64
	switch {
	case avg >= float64(idealMin) && avg <= float64(idealMax):
		sentenceScore = 1.0
	case avg > float64(idealMax)*1.5:
		issues = append(issues, "sentences too long")
		sentenceScore = 0.3
	case avg > float64(idealMax):
		issues = append(issues, "sentences somewhat long")
		sentenceScore = 0.6
	case avg < float64(idealMin)*0.5:
		issues = append(issues, "sentences too short")
		sentenceScore = 0.5
	default:
		sentenceScore = 0.8
	}

	upper := 0
	for _, r := range body {
		if r >= 'A' && r <= 'Z' {
			upper++
		}
	}
	capsRatio := float64(upper) / float64(max(len(body), 1))
	capsScore := 1.0
	if capsRatio > 0.3 {
		issues = append(issues, "too much CAPS")
		capsScore = 0.3
	}

	maxExcl := p.MaxExclamations
	if maxExcl == 0 {
		maxExcl = 2
	}
	exclCount := strings.Count(body, "!")
	exclScore := 1.0
	if exclCount > maxExcl {
		issues = append(issues, "too many exclamation marks")
		exclScore = 0.5
	}

	return sentenceScore*0.6 + capsScore*0.2 + exclScore*0.2, issues
}

var headerPattern = regexp.MustCompile(`(?m)^#{1,3}\s`)
var listPattern = regexp.MustCompile(`(?m)^[\-\*•]\s`)

func checkStructure(body, platform string, p Profile) (float64, []string) {
	var issues []string
	score := 1.0

	if p.RequiresParagraphs {
		paragraphs := nonEmpty(strings.Split(body, "\n\n"))
		if len(paragraphs) == 1 && len(body) > p.MinLength*2 {
			issues = append(issues, "single large paragraph on "+platform+" - needs breaks")
			score = minf(score, 0.4)
		}
	}

	if p.RequiresSections {
		if len(body) > 1000 && !headerPattern.MatchString(body) {
			issues = append(issues, "long-form content missing section headers")
			score = minf(score, 0.6)
		}
	}

	if p.RequiresParagraphs && len(body) > p.IdealLength.Max && !listPattern.MatchString(body) {
		score = minf(score, 0.7)
	}

	return score, issues
}

var clickbaitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)you won't believe`),
	regexp.MustCompile(`(?i)shocking`),
	regexp.MustCompile(`\d+ things`),
	regexp.MustCompile(`(?i)this one trick`),
}

func checkTitle(title, platform string) (float64, []string) {
	var issues []string
	if title == "" {
		switch platform {
		case "linkedin", "medium", "youtube":
			return 0.3, []string{"missing title"}
		default:
			return 0.8, issues
		}
	}
	if len(title) < 10 {
		return 0.5, []string{"title too short"}
	}
	if len(title) > 150 {
		return 0.6, []string{"title too long"}
	}
	for _, p := range clickbaitPatterns {
		if p.MatchString(title) {
			return 0.7, []string{"potential clickbait title"}
		}
	}
	return 1.0, issues
}

var fillerWords = map[string]bool{
	"very": true, "really": true, "just": true, "actually": true, "basically": true,
	"literally": true, "honestly": true, "simply": true, "absolutely": true,
	"definitely": true, "totally": true,
}

func checkSubstance(body string, p Profile) (float64, []string) {
	var issues []string
	if strings.TrimSpace(body) == "" {
		return 0.0, []string{"no content"}
	}

	words := strings.Fields(strings.ToLower(body))
	if len(words) < 10 {
		return 0.3, []string{"too few words to evaluate substance"}
	}

	fillerCount := 0
	for _, w := range words {
		if fillerWords[w] {
			fillerCount++
		}
	}
	fillerRatio := float64(fillerCount) / float64(len(words))
	var fillerScore float64
	switch {
	case fillerRatio > 0.1:
		issues = append(issues, "too many filler words")
		fillerScore = 0.4
	case fillerRatio > 0.05:
		fillerScore = 0.7
	default:
		fillerScore = 1.0
	}

	bannedScore := 1.0
	bodyLower := strings.ToLower(body)
	var found []string
	for _, w := range p.BannedWords {
		if strings.Contains(bodyLower, strings.ToLower(w)) {
			found = append(found, w)
		}
	}
	if len(found) > 0 {
		issues = append(issues, "contains banned phrases")
		bannedScore = 0.5
	}

	freq := make(map[string]int)
	for _, w := range words {
		if len(w) > 4 {
			freq[w]++
		}
	}
	maxRepeat := 0
	for _, n := range freq {
		if n > maxRepeat {
			maxRepeat = n
		}
	}
	repeatRatio := float64(maxRepeat) / float64(len(words))
	repeatScore := 1.0
	if repeatRatio > 0.1 {
		issues = append(issues, "excessive word repetition")
		repeatScore = 0.5
	}

	if hasPlaceholder(body) {
		return 0.2, append(issues, "contains placeholder text")
	}

	return fillerScore*0.4 + repeatScore*0.3 + bannedScore*0.3, issues
}

var hyperbolic = []string{"excited", "thrilled", "amazing", "incredible", "revolutionary", "game-changing"}

func checkHook(body string, p Profile) (float64, []string) {
	var issues []string
	if strings.TrimSpace(body) == "" {
		return 0.0, issues
	}

	firstLine := strings.TrimSpace(strings.SplitN(body, "\n", 2)[0])
	hookMax := p.HookMaxLength
	if hookMax == 0 {
		hookMax = 200
	}

	if len(firstLine) < 15 {
		return 0.4, []string{"hook too short to capture attention"}
	}
	if len(firstLine) > hookMax {
		return 0.6, []string{"hook too long"}
	}

	score := 1.0
	for _, prefix := range []string{"I ", "We ", "Our ", "My "} {
		if strings.HasPrefix(firstLine, prefix) {
			issues = append(issues, "self-focused hook (starts with I/We/Our/My)")
			score = minf(score, 0.6)
			break
		}
	}
	if strings.HasSuffix(firstLine, "!") {
		issues = append(issues, "hook ends with exclamation mark")
		score = minf(score, 0.7)
	}
	lower := strings.ToLower(firstLine)
	for _, w := range hyperbolic {
		if strings.Contains(lower, w) {
			issues = append(issues, "hook contains hyperbolic language")
			score = minf(score, 0.5)
			break
		}
	}
	if strings.Contains(firstLine, "?") {
		score = minf(1.0, score+0.1)
	}

	return score, issues
}

func nonEmpty(ss []string) []string {
	var out []string
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
