package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/philipbankier/contentpilot/internal/model"
)

const metricColumns = `id, publication_id, interval, views, likes, comments, shares, clicks,
	followers_gained, engagement_rate, collected_at`

func scanMetric(row interface{ Scan(...any) error }) (*model.Metric, error) {
	var m model.Metric
	var collectedAt string
	err := row.Scan(&m.ID, &m.PublicationID, &m.Interval, &m.Views, &m.Likes, &m.Comments,
		&m.Shares, &m.Clicks, &m.FollowersGained, &m.EngagementRate, &collectedAt)
	if err != nil {
		return nil, err
	}
	m.CollectedAt = parseTime(collectedAt)
	return &m, nil
}

func (s *SQLiteStore) InsertMetric(ctx context.Context, m *model.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metrics (id, publication_id, interval, views, likes, comments, shares,
			clicks, followers_gained, engagement_rate, collected_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		m.ID, m.PublicationID, m.Interval, m.Views, m.Likes, m.Comments, m.Shares, m.Clicks,
		m.FollowersGained, m.EngagementRate, timeStr(m.CollectedAt))
	if err != nil {
		return fmt.Errorf("insert metric: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetMetric(ctx context.Context, publicationID string, interval model.MetricInterval) (*model.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx,
		"SELECT "+metricColumns+" FROM metrics WHERE publication_id = ? AND interval = ?",
		publicationID, interval)
	m, err := scanMetric(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get metric: %w", err)
	}
	return m, nil
}

func (s *SQLiteStore) ListMetricsByPublication(ctx context.Context, publicationID string) ([]*model.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+metricColumns+" FROM metrics WHERE publication_id = ? ORDER BY collected_at", publicationID)
	if err != nil {
		return nil, fmt.Errorf("list metrics by publication: %w", err)
	}
	defer rows.Close()
	var out []*model.Metric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
