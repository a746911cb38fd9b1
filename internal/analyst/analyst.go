// Package analyst scores newly discovered items for arbitrage
// potential — relevance, trending velocity, brand risk, and per-platform
// fit — via batched LLM calls.
package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/philipbankier/contentpilot/internal/budget"
	"github.com/philipbankier/contentpilot/internal/llm"
	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/skill"
	"github.com/philipbankier/contentpilot/internal/store"
)

const batchSize = 20

const systemPromptBase = `You are a content analyst for an autonomous publishing system. Evaluate each content item for arbitrage potential.

Score each item on:
- relevance_score (0.0-1.0): how relevant is this to AI, automation, and the future of work?
- velocity_score (0.0-1.0): how fast is this trending? Higher = faster spread.
- risk_level ("low", "medium", "high"): brand risk assessment.
- platform_fit: {"linkedin": 0.0-1.0, "twitter": 0.0-1.0, "youtube": 0.0-1.0, "tiktok": 0.0-1.0}
- suggested_formats: list of format types like "post", "thread", "short", "article", "carousel"

Return a valid JSON array with one object per item, keyed by source_id.`

// Result summarizes one Run invocation.
type Result struct {
	Analyzed     int
	Errors       int
	TotalPending int
}

// itemScore is one element of the LLM's JSON response.
type itemScore struct {
	SourceID         string             `json:"source_id"`
	RelevanceScore   float64            `json:"relevance_score"`
	VelocityScore    float64            `json:"velocity_score"`
	RiskLevel        string             `json:"risk_level"`
	PlatformFit      map[string]float64 `json:"platform_fit"`
	SuggestedFormats []string           `json:"suggested_formats"`
}

// Analyst scores status=new discoveries in batches and transitions them
// to status=analyzed.
type Analyst struct {
	store    store.Store
	provider llm.Provider
	skills   *skill.Library
	bus      *skill.OutcomeBus
	ledger   *budget.Ledger
	log      *slog.Logger
}

// New returns an Analyst. ledger may be nil, which disables cost
// tracking (used by tests that pass a nil provider too).
func New(st store.Store, provider llm.Provider, skills *skill.Library, bus *skill.OutcomeBus, ledger *budget.Ledger, log *slog.Logger) *Analyst {
	if log == nil {
		log = slog.Default()
	}
	return &Analyst{store: st, provider: provider, skills: skills, bus: bus, ledger: ledger, log: log.With("component", "analyst")}
}

// Run scores every status=new discovery, ordered by discovered_at
// descending, in batches of 20.
func (a *Analyst) Run(ctx context.Context, at time.Time) (Result, error) {
	discoveries, err := a.store.ListDiscoveriesByStatus(ctx, model.DiscoveryNew, 0)
	if err != nil {
		return Result{}, fmt.Errorf("analyst: list new discoveries: %w", err)
	}
	if len(discoveries) == 0 {
		a.log.Info("no new discoveries to analyze")
		return Result{}, nil
	}

	skills := a.skills.Query("source_scoring", "")
	skillsText := formatSkillsForPrompt(skills)

	var analyzed, errCount int
	for i := 0; i < len(discoveries); i += batchSize {
		end := i + batchSize
		if end > len(discoveries) {
			end = len(discoveries)
		}
		batch := discoveries[i:end]

		ba, be := a.analyzeBatch(ctx, batch, skillsText, skills, at)
		analyzed += ba
		errCount += be
	}

	a.log.Info("analyst run complete", "analyzed", analyzed, "errors", errCount, "total", len(discoveries))
	return Result{Analyzed: analyzed, Errors: errCount, TotalPending: len(discoveries)}, nil
}

func (a *Analyst) analyzeBatch(ctx context.Context, batch []*model.Discovery, skillsText string, skills []*model.Skill, at time.Time) (int, int) {
	var items []string
	for _, d := range batch {
		items = append(items, fmt.Sprintf("- source_id: %s\n  title: %s\n  url: %s\n  source: %s\n  raw_score: %v",
			d.SourceID, d.Title, d.URL, d.Source, d.RawScore))
	}

	systemPrompt := systemPromptBase
	if skillsText != "" {
		systemPrompt += "\n\nAvailable skills:\n" + skillsText
	}
	userPrompt := "Analyze the following content items and return a JSON array:\n\n" + strings.Join(items, "\n")

	if a.ledger != nil && !a.ledger.CanSpend(0) {
		a.log.Warn("analyst batch skipped, daily budget exhausted")
		return 0, len(batch)
	}

	startedAt := time.Now().UTC()
	resp, err := a.provider.Complete(ctx, systemPrompt, userPrompt, 4096, true)
	if err != nil {
		a.log.Error("analyst batch completion failed", "error", err)
		return 0, len(batch)
	}
	if a.ledger != nil {
		if err := a.ledger.Record(ctx, "analyst", "source_scoring", resp, startedAt, time.Now().UTC()); err != nil {
			a.log.Error("record agent run", "error", err)
		}
	}

	scoreMap, err := parseScores(resp.Text)
	if err != nil {
		a.log.Error("failed to parse analyst response", "error", err)
		return 0, len(batch)
	}

	var analyzed, errCount int
	for _, d := range batch {
		item, ok := scoreMap[d.SourceID]
		if !ok {
			a.log.Warn("no scores returned for discovery", "source_id", d.SourceID, "title", d.Title)
			errCount++
			continue
		}

		relevance := clamp01(item.RelevanceScore)
		velocity := clamp01(item.VelocityScore)
		d.RelevanceScore = &relevance
		d.VelocityScore = &velocity
		d.RiskLevel = model.RiskLevel(defaultStr(item.RiskLevel, "medium"))
		d.PlatformFit = item.PlatformFit
		d.SuggestedFormats = item.SuggestedFormats
		d.Status = model.DiscoveryAnalyzed
		atCopy := at
		d.AnalyzedAt = &atCopy

		if err := a.store.UpdateDiscovery(ctx, d); err != nil {
			a.log.Error("error updating discovery", "source_id", d.SourceID, "error", err)
			errCount++
			continue
		}
		analyzed++
	}

	if a.bus != nil && len(skills) > 0 {
		names := make([]string, len(skills))
		for i, s := range skills {
			names[i] = s.Name
		}
		outcome := model.OutcomeFailure
		if analyzed > 0 {
			outcome = model.OutcomeSuccess
		}
		score := 0.0
		if len(batch) > 0 {
			score = float64(analyzed) / float64(len(batch))
		}
		a.bus.Publish(ctx, names, "analyst", "source_scoring", outcome, score, "", at)
	}

	return analyzed, errCount
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

var codeFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

func extractJSON(text string) string {
	if m := codeFence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

func parseScores(raw string) (map[string]itemScore, error) {
	cleaned := extractJSON(raw)

	var asList []itemScore
	if err := json.Unmarshal([]byte(cleaned), &asList); err == nil {
		out := make(map[string]itemScore, len(asList))
		for _, item := range asList {
			if item.SourceID != "" {
				out[item.SourceID] = item
			}
		}
		return out, nil
	}

	var asMap map[string]itemScore
	if err := json.Unmarshal([]byte(cleaned), &asMap); err == nil {
		for sid, item := range asMap {
			item.SourceID = sid
			asMap[sid] = item
		}
		return asMap, nil
	}

	return nil, fmt.Errorf("analyst: could not parse response as JSON array or object")
}

func formatSkillsForPrompt(skills []*model.Skill) string {
	if len(skills) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range skills {
		fmt.Fprintf(&b, "- %s (confidence %.2f): %s\n", s.Name, s.Confidence, s.Content)
	}
	return b.String()
}
