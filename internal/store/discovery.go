package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/philipbankier/contentpilot/internal/model"
)

const discoveryColumns = `id, source, source_id, title, url, raw_score, raw_data, content_hash,
	status, relevance_score, velocity_score, risk_level, platform_fit, suggested_formats,
	discovered_at, analyzed_at`

func scanDiscovery(row interface{ Scan(...any) error }) (*model.Discovery, error) {
	var d model.Discovery
	var rawData, platformFit, formats sql.NullString
	var riskLevel sql.NullString
	var discoveredAt string
	var analyzedAt sql.NullString

	err := row.Scan(&d.ID, &d.Source, &d.SourceID, &d.Title, &d.URL, &d.RawScore, &rawData,
		&d.ContentHash, &d.Status, &d.RelevanceScore, &d.VelocityScore, &riskLevel,
		&platformFit, &formats, &discoveredAt, &analyzedAt)
	if err != nil {
		return nil, err
	}
	fromJSON(rawData, &d.RawData)
	fromJSON(platformFit, &d.PlatformFit)
	fromJSON(formats, &d.SuggestedFormats)
	d.RiskLevel = model.RiskLevel(riskLevel.String)
	d.DiscoveredAt = parseTime(discoveredAt)
	d.AnalyzedAt = parseNullTime(analyzedAt)
	return &d, nil
}

func (s *SQLiteStore) GetDiscoveryByHash(ctx context.Context, contentHash string) (*model.Discovery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, "SELECT "+discoveryColumns+" FROM discoveries WHERE content_hash = ?", contentHash)
	d, err := scanDiscovery(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get discovery by hash: %w", err)
	}
	return d, nil
}

func (s *SQLiteStore) GetDiscovery(ctx context.Context, id string) (*model.Discovery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, "SELECT "+discoveryColumns+" FROM discoveries WHERE id = ?", id)
	d, err := scanDiscovery(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get discovery: %w", err)
	}
	return d, nil
}

func (s *SQLiteStore) InsertDiscovery(ctx context.Context, d *model.Discovery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO discoveries (id, source, source_id, title, url, raw_score, raw_data,
			content_hash, status, relevance_score, velocity_score, risk_level, platform_fit,
			suggested_formats, discovered_at, analyzed_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.Source, d.SourceID, d.Title, d.URL, d.RawScore, toJSON(d.RawData),
		d.ContentHash, d.Status, d.RelevanceScore, d.VelocityScore, string(d.RiskLevel),
		toJSON(d.PlatformFit), toJSON(d.SuggestedFormats), timeStr(d.DiscoveredAt), nullTimeStr(d.AnalyzedAt))
	if err != nil {
		return fmt.Errorf("insert discovery: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateDiscovery(ctx context.Context, d *model.Discovery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		UPDATE discoveries SET status=?, relevance_score=?, velocity_score=?, risk_level=?,
			platform_fit=?, suggested_formats=?, analyzed_at=?
		WHERE id=?`,
		d.Status, d.RelevanceScore, d.VelocityScore, string(d.RiskLevel),
		toJSON(d.PlatformFit), toJSON(d.SuggestedFormats), nullTimeStr(d.AnalyzedAt), d.ID)
	if err != nil {
		return fmt.Errorf("update discovery: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAnalyzedDiscoveriesRanked(ctx context.Context, limit int) ([]*model.Discovery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+discoveryColumns+` FROM discoveries WHERE status = ?
		ORDER BY (COALESCE(relevance_score,0) + COALESCE(velocity_score,0)) DESC LIMIT ?`,
		model.DiscoveryAnalyzed, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyzed discoveries ranked: %w", err)
	}
	defer rows.Close()

	var out []*model.Discovery
	for rows.Next() {
		d, err := scanDiscovery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListDiscoveriesByStatus(ctx context.Context, status model.DiscoveryStatus, limit int) ([]*model.Discovery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+discoveryColumns+" FROM discoveries WHERE status = ? ORDER BY discovered_at DESC LIMIT ?",
		status, limit)
	if err != nil {
		return nil, fmt.Errorf("list discoveries by status: %w", err)
	}
	defer rows.Close()

	var out []*model.Discovery
	for rows.Next() {
		d, err := scanDiscovery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
