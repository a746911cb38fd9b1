package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
)

const skillColumns = `name, category, platform, confidence, status, version, content, tags,
	total_uses, success_count, failure_streak, last_used_at, last_validated_at, created_at,
	updated_at, file_path`

func scanSkill(row interface{ Scan(...any) error }) (*model.Skill, error) {
	var sk model.Skill
	var platform sql.NullString
	var tags sql.NullString
	var lastUsedAt, lastValidatedAt sql.NullString
	var createdAt, updatedAt string
	var filePath sql.NullString

	err := row.Scan(&sk.Name, &sk.Category, &platform, &sk.Confidence, &sk.Status, &sk.Version,
		&sk.Content, &tags, &sk.TotalUses, &sk.SuccessCount, &sk.FailureStreak,
		&lastUsedAt, &lastValidatedAt, &createdAt, &updatedAt, &filePath)
	if err != nil {
		return nil, err
	}
	sk.Platform = platform.String
	fromJSON(tags, &sk.Tags)
	sk.LastUsedAt = parseNullTime(lastUsedAt)
	sk.LastValidatedAt = parseNullTime(lastValidatedAt)
	sk.CreatedAt = parseTime(createdAt)
	sk.UpdatedAt = parseTime(updatedAt)
	sk.FilePath = filePath.String
	return &sk, nil
}

func (s *SQLiteStore) UpsertSkill(ctx context.Context, sk *model.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skills (name, category, platform, confidence, status, version, content, tags,
			total_uses, success_count, failure_streak, last_used_at, last_validated_at, created_at,
			updated_at, file_path)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET
			category=excluded.category, platform=excluded.platform, confidence=excluded.confidence,
			status=excluded.status, version=excluded.version, content=excluded.content,
			tags=excluded.tags, total_uses=excluded.total_uses, success_count=excluded.success_count,
			failure_streak=excluded.failure_streak, last_used_at=excluded.last_used_at,
			last_validated_at=excluded.last_validated_at, updated_at=excluded.updated_at,
			file_path=excluded.file_path`,
		sk.Name, sk.Category, nullableStr(sk.Platform), sk.Confidence, sk.Status, sk.Version,
		sk.Content, toJSON(sk.Tags), sk.TotalUses, sk.SuccessCount, sk.FailureStreak,
		nullTimeStr(sk.LastUsedAt), nullTimeStr(sk.LastValidatedAt), timeStr(sk.CreatedAt),
		timeStr(sk.UpdatedAt), nullableStr(sk.FilePath))
	if err != nil {
		return fmt.Errorf("upsert skill: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSkill(ctx context.Context, name string) (*model.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, "SELECT "+skillColumns+" FROM skills WHERE name = ?", name)
	sk, err := scanSkill(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get skill: %w", err)
	}
	return sk, nil
}

func (s *SQLiteStore) ListSkills(ctx context.Context) ([]*model.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, "SELECT "+skillColumns+" FROM skills ORDER BY confidence DESC")
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()
	var out []*model.Skill
	for rows.Next() {
		sk, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

const skillMetricColumns = `id, skill_name, agent, task, outcome, score, context, recorded_at`

func scanSkillMetric(row interface{ Scan(...any) error }) (*model.SkillMetric, error) {
	var m model.SkillMetric
	var context sql.NullString
	var recordedAt string
	err := row.Scan(&m.ID, &m.SkillName, &m.Agent, &m.Task, &m.Outcome, &m.Score, &context, &recordedAt)
	if err != nil {
		return nil, err
	}
	m.Context = context.String
	m.RecordedAt = parseTime(recordedAt)
	return &m, nil
}

func (s *SQLiteStore) InsertSkillMetric(ctx context.Context, m *model.SkillMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skill_metrics (id, skill_name, agent, task, outcome, score, context, recorded_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		m.ID, m.SkillName, m.Agent, m.Task, m.Outcome, m.Score, nullableStr(m.Context), timeStr(m.RecordedAt))
	if err != nil {
		return fmt.Errorf("insert skill metric: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSkillMetrics(ctx context.Context, skillName string) ([]*model.SkillMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+skillMetricColumns+" FROM skill_metrics WHERE skill_name = ? ORDER BY recorded_at", skillName)
	if err != nil {
		return nil, fmt.Errorf("list skill metrics: %w", err)
	}
	defer rows.Close()
	var out []*model.SkillMetric
	for rows.Next() {
		m, err := scanSkillMetric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListSkillMetricsSince(ctx context.Context, since time.Time) ([]*model.SkillMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+skillMetricColumns+" FROM skill_metrics WHERE recorded_at >= ? ORDER BY recorded_at", timeStr(since))
	if err != nil {
		return nil, fmt.Errorf("list skill metrics since: %w", err)
	}
	defer rows.Close()
	var out []*model.SkillMetric
	for rows.Next() {
		m, err := scanSkillMetric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
