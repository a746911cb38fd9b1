// Package creator generates platform-specific content variants from
// top analyzed discoveries, composing a brand-voice system prompt from
// skill confidence and learned failure patterns.
package creator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/philipbankier/contentpilot/internal/budget"
	"github.com/philipbankier/contentpilot/internal/imagegen"
	"github.com/philipbankier/contentpilot/internal/llm"
	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/skill"
	"github.com/philipbankier/contentpilot/internal/store"
)

// PlatformFitThreshold is the minimum platform_fit score a discovery
// must clear for Creator to produce content for that platform.
const PlatformFitThreshold = 0.6

const systemPromptTemplate = `You are a content creator for an autonomous publishing system.

Brand Voice: Calm, confident, technical, grounded. Builder-to-builder, operator-to-operator.
Core message: "This is how work actually gets done."

Style rules:
- Short paragraphs, declarative statements, minimal adjectives
- No buzzwords ("revolutionary", "game-changing", "leverage AI")
- No exclamation points
- No sales CTAs
- No overly anthropomorphic AI language

Create %s content for %s based on the following source material.`

const (
	highConfidenceThreshold = 0.7
	lowConfidenceThreshold  = 0.3
)

var variantStyleHints = map[string]string{
	"A": "Use a bold, provocative hook. Lead with a surprising insight or contrarian take.",
	"B": "Use a question-based hook. Lead with curiosity and build to the insight gradually.",
}

var platformFormatPrefs = map[string][]string{
	"linkedin": {"post", "carousel", "article"},
	"twitter":  {"thread", "post"},
	"youtube":  {"short", "article"},
	"tiktok":   {"short", "post"},
}

// videoFormats are the content formats that warrant a deferred video
// descriptor; everything else is image/text-only.
var videoFormats = map[string]bool{"short": true}

// FailurePatternSource supplies learned avoid-guidance text for a
// platform/format pair, populated by FeedbackLoop's 14-day lookback.
type FailurePatternSource interface {
	AvoidPatternsFor(platform, format string) string
}

// Result summarizes one Run invocation.
type Result struct {
	DiscoveriesProcessed int
	ContentCreated        int
	Errors                int
}

// Creator produces content variants for analyzed discoveries.
type Creator struct {
	store      store.Store
	provider   llm.Provider
	images     imagegen.Provider
	skills     *skill.Library
	bus        *skill.OutcomeBus
	failures   FailurePatternSource
	ledger     *budget.Ledger
	log        *slog.Logger
}

// New returns a Creator. images, failures, and ledger may be nil:
// without an image provider, creations are produced without media;
// without a failure pattern source, no avoid-guidance is injected;
// without a ledger, cost isn't tracked.
func New(st store.Store, provider llm.Provider, images imagegen.Provider, skills *skill.Library, bus *skill.OutcomeBus, failures FailurePatternSource, ledger *budget.Ledger, log *slog.Logger) *Creator {
	if log == nil {
		log = slog.Default()
	}
	return &Creator{store: st, provider: provider, images: images, skills: skills, bus: bus, failures: failures, ledger: ledger, log: log.With("component", "creator")}
}

// Run produces up to two variants per qualifying platform for the top
// `limit` analyzed discoveries, ranked by relevance+velocity.
func (cr *Creator) Run(ctx context.Context, limit int, at time.Time) (Result, error) {
	discoveries, err := cr.store.ListAnalyzedDiscoveriesRanked(ctx, limit)
	if err != nil {
		return Result{}, fmt.Errorf("creator: list analyzed discoveries: %w", err)
	}
	if len(discoveries) == 0 {
		cr.log.Info("no analyzed discoveries to process")
		return Result{}, nil
	}

	var created, errCount, processed int
	for _, d := range discoveries {
		processed++
		platforms := selectPlatforms(d.PlatformFit)
		if len(platforms) == 0 {
			cr.log.Info("no platforms above threshold, skipping", "source_id", d.SourceID)
			d.Status = model.DiscoverySkipped
			if err := cr.store.UpdateDiscovery(ctx, d); err != nil {
				cr.log.Error("failed to mark discovery skipped", "source_id", d.SourceID, "error", err)
			}
			continue
		}

		formats := d.SuggestedFormats
		if len(formats) == 0 {
			formats = []string{"post"}
		}

		for _, platform := range platforms {
			format := bestFormatForPlatform(platform, formats)
			variantGroup := uuid.NewString()[:8]

			for _, label := range []string{"A", "B"} {
				c, err := cr.createContent(ctx, d, platform, format, at, variantGroup, label)
				if err != nil {
					cr.log.Error("error creating variant", "platform", platform, "format", format, "variant", label, "source_id", d.SourceID, "error", err)
					errCount++
					continue
				}
				if c != nil {
					created++
				}
			}
		}

		d.Status = model.DiscoveryQueued
		if err := cr.store.UpdateDiscovery(ctx, d); err != nil {
			cr.log.Error("failed to mark discovery queued", "source_id", d.SourceID, "error", err)
		}
	}

	cr.log.Info("creator run complete", "created", created, "discoveries", processed, "errors", errCount)
	return Result{DiscoveriesProcessed: processed, ContentCreated: created, Errors: errCount}, nil
}

func selectPlatforms(fit map[string]float64) []string {
	var out []string
	for platform, score := range fit {
		if score >= PlatformFitThreshold {
			out = append(out, platform)
		}
	}
	return out
}

func bestFormatForPlatform(platform string, formats []string) string {
	prefs, ok := platformFormatPrefs[platform]
	if !ok {
		prefs = []string{"post"}
	}
	for _, pref := range prefs {
		for _, f := range formats {
			if f == pref {
				return pref
			}
		}
	}
	if len(formats) > 0 {
		return formats[0]
	}
	return "post"
}

// contentResponse is the LLM's JSON content payload.
type contentResponse struct {
	Title               string                `json:"title"`
	Body                string                `json:"body"`
	ImagePrompt         string                `json:"image_prompt"`
	VideoType           string                `json:"video_type"`
	VideoTypeRationale  string                `json:"video_type_rationale"`
	VideoScript         string                `json:"video_script"`
	VideoPrompt         string                `json:"video_prompt"`
	VideoComposition    []compositionSegment  `json:"video_composition"`
}

type compositionSegment struct {
	Type     string  `json:"type"`
	Script   string  `json:"script"`
	Prompt   string  `json:"prompt"`
	Duration float64 `json:"duration"`
}

func (cr *Creator) createContent(ctx context.Context, d *model.Discovery, platform, format string, at time.Time, variantGroup, variantLabel string) (*model.Creation, error) {
	skills := cr.skills.Query("content_creation", platform)
	skillsText := formatSkillsForPrompt(skills)

	systemPrompt := fmt.Sprintf(systemPromptTemplate, format, platform)
	if guidance := buildPriorityGuidance(skills); guidance != "" {
		systemPrompt += "\n\n" + guidance
	}
	if cr.failures != nil {
		if avoid := cr.failures.AvoidPatternsFor(platform, format); avoid != "" {
			systemPrompt += "\n\n" + avoid
		}
	}
	if skillsText != "" {
		systemPrompt += "\n\nAvailable skills:\n" + skillsText
	}

	relevance, velocity := 0.0, 0.0
	if d.RelevanceScore != nil {
		relevance = *d.RelevanceScore
	}
	if d.VelocityScore != nil {
		velocity = *d.VelocityScore
	}

	userPrompt := fmt.Sprintf("Source title: %s\nSource URL: %s\nSource: %s\nRelevance score: %v\nVelocity score: %v\n",
		d.Title, d.URL, d.Source, relevance, velocity)
	if summary := extractSummary(d.RawData); summary != "" {
		userPrompt += "Summary: " + summary + "\n"
	}

	userPrompt += fmt.Sprintf("\nCreate a %s for %s. ", format, platform)
	if hint, ok := variantStyleHints[variantLabel]; ok {
		userPrompt += fmt.Sprintf("This is variant %s. %s ", variantLabel, hint)
	}

	wantsVideo := videoFormats[format]
	userPrompt += "Return JSON with keys: title, body, image_prompt"
	if wantsVideo {
		if videoSkills := cr.skills.Query("video_format_selection", ""); len(videoSkills) > 0 {
			if t := formatSkillsForPrompt(videoSkills); t != "" {
				systemPrompt += "\n\n" + t
			}
		}
		userPrompt += ", video_type (one of: avatar_talking_head, avatar_agent, " +
			"motion_graphics, hybrid_avatar_broll, kinetic_text, " +
			"cinematic_broll, image_to_video, multi_shot_narrative — " +
			"choose the best format for this content and platform), " +
			"video_type_rationale (1-sentence explanation of your choice)"
		userPrompt += ". Then include the fields needed for your chosen video_type: " +
			"if avatar_talking_head → video_script (30-60s spoken script, 75-150 words, conversational); " +
			"if avatar_agent → video_prompt (rich description of desired video); " +
			"if motion_graphics → video_prompt (cinematic visual description); " +
			"if hybrid_avatar_broll → video_composition (list of segment objects with " +
			"type 'avatar' or 'broll', plus 'script' or 'prompt' and 'duration' in seconds); " +
			"if kinetic_text → video_prompt (the text content + style description); " +
			"if cinematic_broll → video_prompt (cinematic scene with specific camera movements and physics); " +
			"if image_to_video → video_prompt (how to animate the generated image — describe motion, not scene); " +
			"if multi_shot_narrative → video_composition (list of 2-6 shot objects with 'prompt' and 'duration' in seconds)"
	}

	if cr.ledger != nil && !cr.ledger.CanSpend(0) {
		return nil, fmt.Errorf("creator: daily budget exhausted")
	}

	startedAt := time.Now().UTC()
	resp, err := cr.provider.Complete(ctx, systemPrompt, userPrompt, 4096, true)
	if err != nil {
		return nil, fmt.Errorf("creator: llm completion: %w", err)
	}
	if cr.ledger != nil {
		if err := cr.ledger.Record(ctx, "creator", d.ID, resp, startedAt, time.Now().UTC()); err != nil {
			cr.log.Error("record agent run", "error", err)
		}
	}

	content, err := parseContentResponse(resp.Text)
	if err != nil {
		return nil, fmt.Errorf("creator: parse response: %w", err)
	}

	skillNames := make([]string, len(skills))
	for i, s := range skills {
		skillNames[i] = s.Name
	}

	var mediaURLs []string
	if content.ImagePrompt != "" && cr.images != nil {
		if img, err := cr.images.Generate(ctx, content.ImagePrompt, "1024x1024", ""); err == nil && img.URL != "" {
			mediaURLs = append(mediaURLs, img.URL)
		} else if err != nil {
			cr.log.Warn("image generation failed", "error", err)
		}
	}

	var video *model.VideoDescriptor
	if wantsVideo {
		vt := model.VideoType(content.VideoType)
		if vt == "" {
			vt = inferVideoType(d, platform)
		}
		video = &model.VideoDescriptor{
			Type:      vt,
			Rationale: content.VideoTypeRationale,
			Script:    content.VideoScript,
			Prompt:    content.VideoPrompt,
		}
		for _, seg := range content.VideoComposition {
			video.Composition = append(video.Composition, model.VideoSegment{
				Type: seg.Type, Script: seg.Script, Prompt: seg.Prompt, Duration: seg.Duration,
			})
		}
	}

	title := content.Title
	if title == "" {
		title = d.Title
	}

	approvalStatus := model.ApprovalPending
	if variantGroup != "" {
		approvalStatus = model.ApprovalPendingReview
	}

	creation := &model.Creation{
		ID:             uuid.NewString(),
		DiscoveryID:    d.ID,
		Platform:       platform,
		Format:         format,
		Title:          title,
		Body:           content.Body,
		MediaURLs:      mediaURLs,
		SkillsUsed:     skillNames,
		VariantGroup:   variantGroup,
		VariantLabel:   variantLabel,
		ApprovalStatus: approvalStatus,
		Video:          video,
		CreatedAt:      at,
	}

	if err := cr.store.InsertCreation(ctx, creation); err != nil {
		return nil, fmt.Errorf("creator: persist creation: %w", err)
	}

	if cr.bus != nil && len(skillNames) > 0 {
		cr.bus.Publish(ctx, skillNames, "creator", fmt.Sprintf("create_%s_%s", platform, format), model.OutcomeSuccess, 0.5, creation.ID, at)
	}

	return creation, nil
}

func extractSummary(raw map[string]any) string {
	for _, key := range []string{"summary", "description", "text"} {
		if v, ok := raw[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func inferVideoType(d *model.Discovery, platform string) model.VideoType {
	contentDefaults := map[string]model.VideoType{
		"short": model.VideoAvatarTalkingHead,
	}
	for _, hint := range d.SuggestedFormats {
		if vt, ok := contentDefaults[hint]; ok {
			return vt
		}
	}
	platformDefaults := map[string]model.VideoType{
		"youtube": model.VideoAvatarTalkingHead,
		"tiktok":  model.VideoKineticText,
	}
	if vt, ok := platformDefaults[platform]; ok {
		return vt
	}
	return model.VideoAvatarAgent
}

var codeFence = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*(.*?)` + "```")

func parseContentResponse(text string) (*contentResponse, error) {
	cleaned := strings.TrimSpace(text)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		cleaned = strings.TrimSpace(m[1])
	}
	var out contentResponse
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("failed to parse creator response as JSON: %w", err)
	}
	return &out, nil
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

// buildPriorityGuidance surfaces high-confidence skills as patterns to
// follow closely and low-confidence skills as patterns to avoid,
// closing the loop between engagement outcomes and future generation.
func buildPriorityGuidance(skills []*model.Skill) string {
	var high, low []*model.Skill
	for _, s := range skills {
		switch {
		case s.Confidence >= highConfidenceThreshold:
			high = append(high, s)
		case s.Confidence <= lowConfidenceThreshold:
			low = append(low, s)
		}
	}
	if len(high) == 0 && len(low) == 0 {
		return ""
	}

	var b strings.Builder
	if len(high) > 0 {
		b.WriteString("## PRIORITY: Proven Patterns (High Confidence)\n")
		b.WriteString("These patterns have been validated through engagement data. Follow them closely:\n\n")
		for _, s := range high {
			fmt.Fprintf(&b, "### %s (confidence: %.0f%%)\n", s.Name, s.Confidence*100)
			excerpt := s.Content
			if len(excerpt) > 500 {
				excerpt = excerpt[:500]
			}
			b.WriteString(excerpt)
			b.WriteString("\n\n")
		}
	}
	if len(low) > 0 {
		b.WriteString("## CAUTION: Underperforming Patterns\n")
		b.WriteString("These patterns have shown poor engagement. Use with caution or avoid:\n\n")
		for _, s := range low {
			fmt.Fprintf(&b, "- %s (confidence: %.0f%%)\n", s.Name, s.Confidence*100)
		}
	}
	return b.String()
}
