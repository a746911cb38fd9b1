package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/philipbankier/contentpilot/internal/model"
)

const experimentColumns = `id, skill_name, variant_a_description, variant_b_description,
	metric_target, variant_a_score, variant_a_samples, variant_b_score, variant_b_samples,
	winner, p_value, effect_size, status, started_at, completed_at`

func scanExperiment(row interface{ Scan(...any) error }) (*model.Experiment, error) {
	var e model.Experiment
	var winner sql.NullString
	var pValue, effectSize sql.NullFloat64
	var startedAt string
	var completedAt sql.NullString

	err := row.Scan(&e.ID, &e.SkillName, &e.VariantADescription, &e.VariantBDescription,
		&e.MetricTarget, &e.VariantAScore, &e.VariantASamples, &e.VariantBScore, &e.VariantBSamples,
		&winner, &pValue, &effectSize, &e.Status, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if winner.Valid {
		e.Winner = model.ExperimentWinner(winner.String)
	}
	if pValue.Valid {
		e.PValue = pValue.Float64
	}
	if effectSize.Valid {
		e.EffectSize = effectSize.Float64
	}
	e.StartedAt = parseTime(startedAt)
	e.CompletedAt = parseNullTime(completedAt)
	return &e, nil
}

func (s *SQLiteStore) InsertExperiment(ctx context.Context, e *model.Experiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO experiments (id, skill_name, variant_a_description, variant_b_description,
			metric_target, variant_a_score, variant_a_samples, variant_b_score, variant_b_samples,
			winner, p_value, effect_size, status, started_at, completed_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.ID, e.SkillName, e.VariantADescription, e.VariantBDescription, e.MetricTarget,
		e.VariantAScore, e.VariantASamples, e.VariantBScore, e.VariantBSamples,
		nullableStr(string(e.Winner)), e.PValue, e.EffectSize, e.Status, timeStr(e.StartedAt),
		nullTimeStr(e.CompletedAt))
	if err != nil {
		return fmt.Errorf("insert experiment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateExperiment(ctx context.Context, e *model.Experiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		UPDATE experiments SET variant_a_score=?, variant_a_samples=?, variant_b_score=?,
			variant_b_samples=?, winner=?, p_value=?, effect_size=?, status=?, completed_at=?
		WHERE id=?`,
		e.VariantAScore, e.VariantASamples, e.VariantBScore, e.VariantBSamples,
		nullableStr(string(e.Winner)), e.PValue, e.EffectSize, e.Status, nullTimeStr(e.CompletedAt), e.ID)
	if err != nil {
		return fmt.Errorf("update experiment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetExperiment(ctx context.Context, id string) (*model.Experiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, "SELECT "+experimentColumns+" FROM experiments WHERE id = ?", id)
	e, err := scanExperiment(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get experiment: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) ListExperimentsByStatus(ctx context.Context, status model.ExperimentStatus) ([]*model.Experiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+experimentColumns+" FROM experiments WHERE status = ? ORDER BY started_at", status)
	if err != nil {
		return nil, fmt.Errorf("list experiments by status: %w", err)
	}
	defer rows.Close()
	var out []*model.Experiment
	for rows.Next() {
		e, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
