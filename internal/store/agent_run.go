package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
)

func (s *SQLiteStore) InsertAgentRun(ctx context.Context, r *model.AgentRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agent_runs (id, agent, task, provider, input_tokens, output_tokens,
			estimated_cost_usd, duration_seconds, status, started_at, completed_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.Agent, r.Task, nullableStr(r.Provider), r.InputTokens, r.OutputTokens,
		r.EstimatedCostUSD, r.DurationSeconds, r.Status, timeStr(r.StartedAt), nullTimeStr(r.CompletedAt))
	if err != nil {
		return fmt.Errorf("insert agent run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SumCostSince(ctx context.Context, since time.Time) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		"SELECT SUM(estimated_cost_usd) FROM agent_runs WHERE started_at >= ?", timeStr(since)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum cost since: %w", err)
	}
	return total.Float64, nil
}

// VariantObservations returns the 24h engagement rates for creations using
// skillName with the given variant label, created at or after since.
func (s *SQLiteStore) VariantObservations(ctx context.Context, skillName, variantLabel string, since time.Time) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.engagement_rate
		FROM metrics m
		JOIN publications p ON p.id = m.publication_id
		JOIN creations c ON c.id = p.creation_id
		WHERE m.interval = ?
		  AND c.variant_label = ?
		  AND c.created_at >= ?
		  AND c.skills_used LIKE ?`,
		model.Interval24h, variantLabel, timeStr(since), "%\""+skillName+"\"%")
	if err != nil {
		return nil, fmt.Errorf("variant observations: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var rate float64
		if err := rows.Scan(&rate); err != nil {
			return nil, err
		}
		out = append(out, rate)
	}
	return out, rows.Err()
}
