// Package scout concurrently invokes healthy source adapters, dedupes
// against the Store by content hash, and persists new discoveries.
package scout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/philipbankier/contentpilot/internal/health"
	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/security"
	"github.com/philipbankier/contentpilot/internal/source"
	"github.com/philipbankier/contentpilot/internal/store"
)

// SourceStat summarizes one adapter's outcome for a single tick.
type SourceStat struct {
	Fetched int
	New     int
	Err     error
}

// Summary is Scout.Run's return value.
type Summary struct {
	NewDiscoveries int
	PerSourceStats map[string]SourceStat
	ActiveSources  []string
	SkippedSources []string
}

// Scout fans out across registered adapters, bounded to maxInFlight
// concurrent fetches (default len(adapters)).
type Scout struct {
	store       store.Store
	health      *health.Registry
	adapters    []source.Adapter
	maxInFlight int
	sanitizer   *security.Sanitizer
	log         *slog.Logger
}

// New returns a Scout over the given adapters and shared health registry.
func New(st store.Store, reg *health.Registry, adapters []source.Adapter, log *slog.Logger) *Scout {
	if log == nil {
		log = slog.Default()
	}
	return &Scout{
		store:       st,
		health:      reg,
		adapters:    adapters,
		maxInFlight: len(adapters),
		sanitizer:   security.NewSanitizer(security.SanitizerConfig{}),
		log:         log.With("component", "scout"),
	}
}

// SetMaxInFlight overrides the default bounded-fan-out width.
func (s *Scout) SetMaxInFlight(n int) {
	if n > 0 {
		s.maxInFlight = n
	}
}

// Run invokes every non-skipped adapter concurrently, dedupes results
// against the Store, and inserts new discoveries. One adapter's failure
// never affects another's result or health update.
func (s *Scout) Run(ctx context.Context) (Summary, error) {
	now := time.Now().UTC()
	var active, skipped []string
	var toFetch []source.Adapter
	for _, a := range s.adapters {
		if s.health.ShouldSkip(a.Name(), now) {
			skipped = append(skipped, a.Name())
			continue
		}
		active = append(active, a.Name())
		toFetch = append(toFetch, a)
	}

	stats := make(map[string]SourceStat, len(toFetch))
	var mu sync.Mutex

	// Bounded fan-out via errgroup.SetLimit rather than its native
	// fail-fast cancellation: one adapter's error must never cancel
	// another's in-flight fetch, so the worker function always returns
	// nil and errors are recorded locally instead of propagated.
	g := new(errgroup.Group)
	g.SetLimit(max(1, s.maxInFlight))

	for _, a := range toFetch {
		a := a
		g.Go(func() error {
			items, err := a.Fetch(ctx)
			at := time.Now().UTC()
			if err != nil {
				s.health.RecordFailure(a.Name(), at)
				mu.Lock()
				stats[a.Name()] = SourceStat{Err: err}
				mu.Unlock()
				s.log.Warn("adapter fetch failed", "source", a.Name(), "error", err)
				return nil
			}
			s.health.RecordSuccess(a.Name(), at)

			newCount := 0
			for _, item := range items {
				inserted, err := s.dedupeAndInsert(ctx, item)
				if err != nil {
					s.log.Error("store write failed", "source", a.Name(), "error", err)
					continue
				}
				if inserted {
					newCount++
				}
			}
			mu.Lock()
			stats[a.Name()] = SourceStat{Fetched: len(items), New: newCount}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	total := 0
	for _, st := range stats {
		total += st.New
	}

	return Summary{
		NewDiscoveries: total,
		PerSourceStats: stats,
		ActiveSources:  active,
		SkippedSources: skipped,
	}, nil
}

// dedupeAndInsert looks up item by content hash and inserts it if absent.
// Returns true iff a new row was inserted.
func (s *Scout) dedupeAndInsert(ctx context.Context, item source.DiscoveryItem) (bool, error) {
	hash := source.ContentHash(item.Title, item.URL)
	existing, err := s.store.GetDiscoveryByHash(ctx, hash)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	discoveredAt := item.DiscoveredAt
	if discoveredAt.IsZero() {
		discoveredAt = time.Now().UTC()
	}

	titleResult := s.sanitizer.Sanitize(item.Title)
	if titleResult.Blocked {
		s.log.Warn("discovery title blocked by sanitizer", "source", item.Source, "source_id", item.SourceID, "reason", titleResult.BlockReason)
		return false, nil
	}
	if len(titleResult.Warnings) > 0 {
		s.log.Warn("sanitizer flagged discovery title", "source", item.Source, "source_id", item.SourceID, "warnings", titleResult.Warnings)
	}
	title := titleResult.Clean
	rawData := s.sanitizeRawData(item.RawData, item.Source, item.SourceID)

	d := &model.Discovery{
		ID:           uuid.NewString(),
		Source:       item.Source,
		SourceID:     item.SourceID,
		Title:        title,
		URL:          item.URL,
		RawScore:     item.RawScore,
		RawData:      rawData,
		ContentHash:  hash,
		Status:       model.DiscoveryNew,
		DiscoveredAt: discoveredAt,
	}
	if err := s.store.InsertDiscovery(ctx, d); err != nil {
		return false, err
	}
	return true, nil
}

// sanitizeRawData scrubs string-valued fields (descriptions, comment
// text) pulled verbatim from source adapters; these flow into Analyst
// and Creator prompts unchanged otherwise.
func (s *Scout) sanitizeRawData(raw map[string]any, sourceName, sourceID string) map[string]any {
	if raw == nil {
		return nil
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		str, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}
		r := s.sanitizer.Sanitize(str)
		if r.Blocked {
			out[k] = ""
			continue
		}
		if len(r.Warnings) > 0 {
			s.log.Warn("sanitizer flagged discovery field", "source", sourceName, "source_id", sourceID, "field", k, "warnings", r.Warnings)
		}
		out[k] = r.Clean
	}
	return out
}
