package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
)

const publicationColumns = `id, creation_id, platform, platform_post_id, platform_url,
	arbitrage_window_minutes, published_at`

func scanPublication(row interface{ Scan(...any) error }) (*model.Publication, error) {
	var p model.Publication
	var platformURL sql.NullString
	var window sql.NullInt64
	var publishedAt string

	err := row.Scan(&p.ID, &p.CreationID, &p.Platform, &p.PlatformPostID, &platformURL,
		&window, &publishedAt)
	if err != nil {
		return nil, err
	}
	p.PlatformURL = platformURL.String
	p.ArbitrageWindowMinutes = parseNullInt(window)
	p.PublishedAt = parseTime(publishedAt)
	return &p, nil
}

func (s *SQLiteStore) InsertPublication(ctx context.Context, p *model.Publication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO publications (id, creation_id, platform, platform_post_id, platform_url,
			arbitrage_window_minutes, published_at)
		VALUES (?,?,?,?,?,?,?)`,
		p.ID, p.CreationID, p.Platform, p.PlatformPostID, nullableStr(p.PlatformURL),
		nullInt(p.ArbitrageWindowMinutes), timeStr(p.PublishedAt))
	if err != nil {
		return fmt.Errorf("insert publication: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPublicationByCreation(ctx context.Context, creationID, platform string) (*model.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx,
		"SELECT "+publicationColumns+" FROM publications WHERE creation_id = ? AND platform = ?",
		creationID, platform)
	p, err := scanPublication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get publication by creation: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) ListPublicationsInWindow(ctx context.Context, from, to time.Time) ([]*model.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+publicationColumns+" FROM publications WHERE published_at >= ? AND published_at < ? ORDER BY published_at",
		timeStr(from), timeStr(to))
	if err != nil {
		return nil, fmt.Errorf("list publications in window: %w", err)
	}
	defer rows.Close()
	var out []*model.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListAllPublications(ctx context.Context) ([]*model.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, "SELECT "+publicationColumns+" FROM publications ORDER BY published_at")
	if err != nil {
		return nil, fmt.Errorf("list all publications: %w", err)
	}
	defer rows.Close()
	var out []*model.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
