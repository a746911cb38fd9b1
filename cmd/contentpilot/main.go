// Package main is the entry point for the contentpilot daemon.
//
// Usage:
//
//	contentpilot start    — run the five pipeline loops until SIGINT/SIGTERM
//	contentpilot version  — print version
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/philipbankier/contentpilot/internal/analyst"
	"github.com/philipbankier/contentpilot/internal/approval"
	"github.com/philipbankier/contentpilot/internal/budget"
	"github.com/philipbankier/contentpilot/internal/contentconfig"
	"github.com/philipbankier/contentpilot/internal/creator"
	"github.com/philipbankier/contentpilot/internal/experiment"
	"github.com/philipbankier/contentpilot/internal/feedback"
	"github.com/philipbankier/contentpilot/internal/health"
	"github.com/philipbankier/contentpilot/internal/imagegen"
	"github.com/philipbankier/contentpilot/internal/llm"
	"github.com/philipbankier/contentpilot/internal/metrics"
	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/orchestrator"
	"github.com/philipbankier/contentpilot/internal/publish"
	"github.com/philipbankier/contentpilot/internal/scout"
	"github.com/philipbankier/contentpilot/internal/skill"
	"github.com/philipbankier/contentpilot/internal/source"
	"github.com/philipbankier/contentpilot/internal/store"
	"github.com/philipbankier/contentpilot/internal/telemetry"
	"github.com/philipbankier/contentpilot/internal/videogen"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "start":
		runDaemon()
	case "version":
		fmt.Printf("contentpilot v%s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `contentpilot v%s — autonomous content pipeline

Usage:
  contentpilot <command>

Commands:
  start    Run the scout/tracker/engagement/feedback/review loops
  version  Print version

Environment variables:
  CONTENTPILOT_DATA                   Data directory (default: ~/.contentpilot)
  CONTENTPILOT_DAILY_COST_LIMIT        Daily spend cap in USD (default: 10.0)
  CONTENTPILOT_SCOUT_INTERVAL          Scout loop cadence (default: 30m)
  CONTENTPILOT_TRACKER_INTERVAL        Metrics loop cadence (default: 60m)
  CONTENTPILOT_ENGAGEMENT_INTERVAL     Engagement loop cadence (default: 30m)
  CONTENTPILOT_FEEDBACK_INTERVAL       Feedback loop cadence (default: 24h)
  CONTENTPILOT_REVIEW_INTERVAL         Review loop cadence (default: 7d)
  ANTHROPIC_API_KEY                   Claude API key (content writing)
  FAL_API_KEY                         fal.ai API key (image generation)
  HEYGEN_API_KEY                      HeyGen API key (avatar video)
  HEYGEN_AVATAR_FOUNDER                HeyGen avatar id, founder persona
  HEYGEN_AVATAR_PROFESSIONAL           HeyGen avatar id, professional persona
  PROMPTDRIVEN_BASE_URL                Prompt-driven video provider base URL
  MEDIUM_TOKEN                        Medium integration token
  PRODUCTHUNT_TOKEN                   Product Hunt API token

`, version)
}

func runDaemon() {
	cfg := contentconfig.Load()
	log := slog.Default()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Error("create data dir", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.SkillDir, 0o755); err != nil {
		log.Error("create skill dir", "error", err)
		os.Exit(1)
	}

	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Error("open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	reg := health.NewRegistry()
	lib := skill.New(cfg.SkillDir, st)
	if _, err := lib.LoadAll(); err != nil {
		log.Error("load skills", "error", err)
		os.Exit(1)
	}
	bus := skill.NewOutcomeBus(lib, log)

	provider, err := createLLMProvider(cfg)
	if err != nil {
		log.Error("LLM provider", "error", err)
		os.Exit(1)
	}

	var images imagegen.Provider
	if cfg.FalAPIKey != "" {
		images = imagegen.NewFalProvider(cfg.FalAPIKey)
	}

	dispatcher := buildVideoDispatcher(cfg)

	tracker := feedback.NewTracker(st)
	ledger := budget.NewLedger(st, cfg.DailyCostLimitUSD)

	cr := creator.New(st, provider, images, lib, bus, tracker, ledger, log)
	aq := approval.NewQueue(st, log, mediaApprovalHook(st, dispatcher, log))
	sc := scout.New(st, reg, buildAdapters(cfg), log)
	an := analyst.New(st, provider, lib, bus, ledger, log)
	mc := metrics.New(st, buildPublishers(cfg), bus, log)
	runner := experiment.New(st, log)
	fl := feedback.New(st, lib, runner, tracker, log)

	intervals := orchestrator.Intervals{
		Scout:      cfg.ScoutInterval,
		Tracker:    cfg.TrackerInterval,
		Engagement: cfg.EngagementInterval,
		Feedback:   cfg.FeedbackInterval,
		Review:     cfg.ReviewInterval,
	}
	orch := orchestrator.New(st, sc, an, cr, aq, mc, fl, intervals, cfg.DailyCostLimitUSD, log)
	orch.SetMetrics(telemetry.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	orch.Start(ctx)
	log.Info("contentpilot daemon started", "version", version, "data_dir", cfg.DataDir, "daily_cost_limit", cfg.DailyCostLimitUSD)

	<-sigCh
	log.Info("shutting down...")
	cancel()
	orch.Stop()
	log.Info("shutdown complete")
}

// createLLMProvider returns the in-tree Claude reference implementation
// when ANTHROPIC_API_KEY is set. The Analyst and Creator both accept a
// nil provider for tests; the daemon requires a real one to do useful
// work.
func createLLMProvider(cfg contentconfig.Config) (llm.Provider, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("no LLM provider configured: set ANTHROPIC_API_KEY")
	}
	return llm.NewClaudeProvider(cfg.AnthropicAPIKey), nil
}

func buildAdapters(cfg contentconfig.Config) []source.Adapter {
	adapters := []source.Adapter{
		source.NewHackerNewsAdapter(),
		source.NewRedditAdapter(),
		source.NewGitHubTrendingAdapter(),
		source.NewArxivAdapter(),
		source.NewLobstersAdapter(),
	}
	if cfg.ProductHuntToken != "" {
		adapters = append(adapters, source.NewProductHuntAdapter(cfg.ProductHuntToken))
	}
	return adapters
}

func buildPublishers(cfg contentconfig.Config) map[string]publish.Publisher {
	publishers := map[string]publish.Publisher{
		"twitter":  publish.NewManualUploadPublisher("twitter", nil),
		"linkedin": publish.NewManualUploadPublisher("linkedin", nil),
		"youtube":  publish.NewManualUploadPublisher("youtube", nil),
		"tiktok":   publish.NewManualUploadPublisher("tiktok", nil),
	}
	if cfg.MediumToken != "" {
		publishers["medium"] = publish.NewMediumPublisher(cfg.MediumToken)
	}
	return publishers
}

func buildVideoDispatcher(cfg contentconfig.Config) *videogen.Dispatcher {
	var providers []interface {
		videogen.Provider
		videogen.SupportedTypes
	}
	if cfg.HeyGenAPIKey != "" {
		providers = append(providers, videogen.NewHeyGenProvider(cfg.HeyGenAPIKey, cfg.HeyGenAvatarFounder, cfg.HeyGenAvatarProfessional))
	}
	if cfg.PromptDrivenBaseURL != "" {
		providers = append(providers, videogen.NewPromptDrivenProvider(cfg.PromptDrivenBaseURL))
	}
	return videogen.NewDispatcher(providers...)
}

// mediaApprovalHook builds the approval.Queue's onApprove callback: when
// a creation with a video descriptor clears approval, generation runs in
// a background goroutine and the result is written back to the
// Creation's MediaURLs once it completes, per spec §5's "deferred media
// generation runs as a fire-and-forget background task distinct from the
// approval request that triggered it."
func mediaApprovalHook(st store.Store, dispatcher *videogen.Dispatcher, log *slog.Logger) func(context.Context, *model.Creation) *approval.DeferredMediaTask {
	return func(ctx context.Context, c *model.Creation) *approval.DeferredMediaTask {
		if c.Video == nil {
			return nil
		}

		done := make(chan struct{})
		var taskErr error
		go func() {
			defer close(done)
			genCtx, cancel := context.WithTimeout(context.Background(), 20*time.Minute)
			defer cancel()

			result, err := dispatcher.Generate(genCtx, c.Video, "founder", "")
			if err != nil {
				taskErr = err
				c.Video.GenerationErr = err.Error()
			} else if result.Error != "" {
				c.Video.GenerationErr = result.Error
			} else {
				c.Video.GeneratedURL = result.VideoURL
				c.MediaURLs = append(c.MediaURLs, result.VideoURL)
			}

			if err := st.UpdateCreation(context.Background(), c); err != nil {
				log.Error("persist deferred media result", "creation_id", c.ID, "error", err)
			}
		}()

		return &approval.DeferredMediaTask{
			CreationID: c.ID,
			Done:       done,
			Err:        func() error { return taskErr },
		}
	}
}
