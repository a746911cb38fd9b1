// Package metrics collects per-publication engagement snapshots at
// fixed intervals after publication and, at the 24h mark, maps
// engagement back into a skill outcome — the link between real
// performance and future content generation.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/publish"
	"github.com/philipbankier/contentpilot/internal/skill"
	"github.com/philipbankier/contentpilot/internal/store"
)

// Result summarizes one Run invocation.
type Result struct {
	Collected     int
	SkillsUpdated int
	Errors        int
}

// Collector collects engagement metrics from platform publishers at
// each fixed interval and feeds 24h engagement into skill outcomes.
type Collector struct {
	store      store.Store
	publishers map[string]publish.Publisher
	bus        *skill.OutcomeBus
	log        *slog.Logger
}

// New returns a Collector. publishers is keyed by platform name.
func New(st store.Store, publishers map[string]publish.Publisher, bus *skill.OutcomeBus, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.Default()
	}
	return &Collector{store: st, publishers: publishers, bus: bus, log: log.With("component", "metrics_collector")}
}

// Run checks every publication and collects metrics for whichever
// intervals are now due and not already collected.
func (c *Collector) Run(ctx context.Context, now time.Time) (Result, error) {
	pubs, err := c.store.ListAllPublications(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("metrics: list publications: %w", err)
	}

	var collected, skillsUpdated, errCount int
	for _, pub := range pubs {
		for _, io := range model.IntervalOffsets {
			interval := io.Interval
			target := pub.PublishedAt.Add(io.Offset)
			if now.Before(target) {
				continue
			}

			existing, err := c.store.GetMetric(ctx, pub.ID, interval)
			if err != nil && err != store.ErrNotFound {
				c.log.Error("get metric failed", "publication_id", pub.ID, "interval", interval, "error", err)
				errCount++
				continue
			}
			if existing != nil {
				continue
			}

			snapshot, err := c.collectOne(ctx, pub)
			if err != nil {
				c.log.Error("collect metrics failed", "publication_id", pub.ID, "interval", interval, "error", err)
				errCount++
				continue
			}

			engagementRate := engagementRateFor(snapshot)
			m := &model.Metric{
				ID:             newMetricID(pub.ID, interval),
				PublicationID:  pub.ID,
				Interval:       interval,
				Views:          int64(snapshot.Views),
				Likes:          int64(snapshot.Likes),
				Comments:       int64(snapshot.Comments),
				Shares:         int64(snapshot.Shares),
				Clicks:         int64(snapshot.Clicks),
				EngagementRate: engagementRate,
				CollectedAt:    now,
			}
			if err := c.store.InsertMetric(ctx, m); err != nil {
				c.log.Error("persist metric failed", "publication_id", pub.ID, "interval", interval, "error", err)
				errCount++
				continue
			}
			collected++

			if interval == model.Interval24h {
				updated, err := c.updateSkillOutcomes(ctx, pub, engagementRate, snapshot, now)
				if err != nil {
					c.log.Error("update skill outcomes failed", "publication_id", pub.ID, "error", err)
				}
				skillsUpdated += updated
			}
		}
	}

	c.log.Info("metrics run complete", "collected", collected, "skills_updated", skillsUpdated, "errors", errCount)
	return Result{Collected: collected, SkillsUpdated: skillsUpdated, Errors: errCount}, nil
}

func (c *Collector) collectOne(ctx context.Context, pub *model.Publication) (publish.MetricsSnapshot, error) {
	if pub.PlatformPostID == "" {
		return publish.MetricsSnapshot{}, nil
	}
	p, ok := c.publishers[pub.Platform]
	if !ok {
		return publish.MetricsSnapshot{}, nil
	}
	return p.GetMetrics(ctx, pub.PlatformPostID)
}

func engagementRateFor(s publish.MetricsSnapshot) float64 {
	if s.Views == 0 {
		return 0
	}
	return float64(s.Likes+s.Comments+s.Shares) / float64(s.Views)
}

// engagementToScore normalizes an engagement rate into a 0-1 skill
// outcome score: 0-1% poor, 1-3% average, 3-5% good, 5%+ excellent.
func engagementToScore(rate float64) float64 {
	switch {
	case rate >= 0.05:
		score := 0.8 + minf(float64(rate-0.05)*4, 0.2)
		return score
	case rate >= 0.03:
		return 0.6 + (rate-0.03)*10
	case rate >= 0.01:
		return 0.3 + (rate-0.01)*15
	default:
		return maxf(rate*30, 0.0)
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func (c *Collector) updateSkillOutcomes(ctx context.Context, pub *model.Publication, engagementRate float64, snapshot publish.MetricsSnapshot, now time.Time) (int, error) {
	creation, err := c.store.GetCreation(ctx, pub.CreationID)
	if err != nil {
		return 0, err
	}
	if len(creation.SkillsUsed) == 0 {
		return 0, nil
	}

	score := engagementToScore(engagementRate)
	outcome := model.OutcomeFailure
	switch {
	case score >= 0.6:
		outcome = model.OutcomeSuccess
	case score >= 0.3:
		outcome = model.OutcomePartial
	}

	if c.bus != nil {
		c.bus.Publish(ctx, creation.SkillsUsed, "metrics_collector", "engagement_feedback", outcome, score, pub.ID, now)
	}
	return len(creation.SkillsUsed), nil
}

func newMetricID(publicationID string, interval model.MetricInterval) string {
	return fmt.Sprintf("%s_%s", publicationID, interval)
}
