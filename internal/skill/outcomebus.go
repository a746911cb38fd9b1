package skill

import (
	"context"
	"log/slog"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
)

// OutcomeBus is the single entry point for recording a per-use skill
// outcome: it feeds the confidence update (via Library.RecordOutcome) and,
// because the update persists a SkillMetric row, transitively feeds the
// FeedbackLoop's pattern analysis over that same table.
type OutcomeBus struct {
	lib *Library
	log *slog.Logger
}

// NewOutcomeBus returns an OutcomeBus publishing onto lib.
func NewOutcomeBus(lib *Library, log *slog.Logger) *OutcomeBus {
	if log == nil {
		log = slog.Default()
	}
	return &OutcomeBus{lib: lib, log: log.With("component", "outcome_bus")}
}

// Publish records one outcome for every skill named in skillNames,
// applying the identical score/outcome to each — matching the original
// tracker's behavior of mapping one engagement measurement onto every
// skill a creation used.
func (b *OutcomeBus) Publish(ctx context.Context, skillNames []string, agent, task string, outcome model.SkillOutcome, score float64, skillCtx string, at time.Time) {
	for _, name := range skillNames {
		if err := b.lib.RecordOutcome(ctx, name, agent, task, outcome, score, skillCtx, at); err != nil {
			b.log.Error("record outcome failed", "skill", name, "error", err)
		}
	}
}
