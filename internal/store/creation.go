package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
)

const creationColumns = `id, discovery_id, platform, format, title, body, media_urls, skills_used,
	risk_score, risk_flags, quality_score, quality_issues, variant_group, variant_label,
	approval_status, video, created_at, approved_at`

func scanCreation(row interface{ Scan(...any) error }) (*model.Creation, error) {
	var c model.Creation
	var mediaURLs, skillsUsed, riskFlags, qualityIssues, video sql.NullString
	var variantGroup, variantLabel sql.NullString
	var createdAt string
	var approvedAt sql.NullString

	err := row.Scan(&c.ID, &c.DiscoveryID, &c.Platform, &c.Format, &c.Title, &c.Body,
		&mediaURLs, &skillsUsed, &c.RiskScoreVal, &riskFlags, &c.QualityScore, &qualityIssues,
		&variantGroup, &variantLabel, &c.ApprovalStatus, &video, &createdAt, &approvedAt)
	if err != nil {
		return nil, err
	}
	fromJSON(mediaURLs, &c.MediaURLs)
	fromJSON(skillsUsed, &c.SkillsUsed)
	fromJSON(riskFlags, &c.RiskFlags)
	fromJSON(qualityIssues, &c.QualityIssues)
	if video.Valid && video.String != "" {
		var vd model.VideoDescriptor
		if err := json.Unmarshal([]byte(video.String), &vd); err == nil {
			c.Video = &vd
		}
	}
	c.VariantGroup = variantGroup.String
	c.VariantLabel = variantLabel.String
	c.CreatedAt = parseTime(createdAt)
	c.ApprovedAt = parseNullTime(approvedAt)
	return &c, nil
}

func (s *SQLiteStore) InsertCreation(ctx context.Context, c *model.Creation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO creations (id, discovery_id, platform, format, title, body, media_urls,
			skills_used, risk_score, risk_flags, quality_score, quality_issues, variant_group,
			variant_label, approval_status, video, created_at, approved_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.ID, c.DiscoveryID, c.Platform, c.Format, c.Title, c.Body, toJSON(c.MediaURLs),
		toJSON(c.SkillsUsed), c.RiskScoreVal, toJSON(c.RiskFlags), c.QualityScore, toJSON(c.QualityIssues),
		nullableStr(c.VariantGroup), nullableStr(c.VariantLabel), c.ApprovalStatus, toJSON(c.Video),
		timeStr(c.CreatedAt), nullTimeStr(c.ApprovedAt))
	if err != nil {
		return fmt.Errorf("insert creation: %w", err)
	}
	return nil
}

func nullableStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func (s *SQLiteStore) UpdateCreation(ctx context.Context, c *model.Creation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		UPDATE creations SET title=?, body=?, media_urls=?, skills_used=?, risk_score=?,
			risk_flags=?, quality_score=?, quality_issues=?, approval_status=?, video=?, approved_at=?
		WHERE id=?`,
		c.Title, c.Body, toJSON(c.MediaURLs), toJSON(c.SkillsUsed), c.RiskScoreVal,
		toJSON(c.RiskFlags), c.QualityScore, toJSON(c.QualityIssues), c.ApprovalStatus,
		toJSON(c.Video), nullTimeStr(c.ApprovedAt), c.ID)
	if err != nil {
		return fmt.Errorf("update creation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCreation(ctx context.Context, id string) (*model.Creation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, "SELECT "+creationColumns+" FROM creations WHERE id = ?", id)
	c, err := scanCreation(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get creation: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListCreationsByApprovalStatus(ctx context.Context, status model.ApprovalStatus, limit int) ([]*model.Creation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+creationColumns+" FROM creations WHERE approval_status = ? ORDER BY created_at LIMIT ?",
		status, limit)
	if err != nil {
		return nil, fmt.Errorf("list creations by approval status: %w", err)
	}
	defer rows.Close()
	var out []*model.Creation
	for rows.Next() {
		c, err := scanCreation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListCreationsByVariantGroup(ctx context.Context, group string) ([]*model.Creation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+creationColumns+" FROM creations WHERE variant_group = ? ORDER BY variant_label", group)
	if err != nil {
		return nil, fmt.Errorf("list creations by variant group: %w", err)
	}
	defer rows.Close()
	var out []*model.Creation
	for rows.Next() {
		c, err := scanCreation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SelectVariant approves creationID and rejects every sibling sharing its
// variant_group, within one transaction — the sole multi-row atomic
// operation this Store supports.
func (s *SQLiteStore) SelectVariant(ctx context.Context, creationID string) (*model.Creation, []*model.Creation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin select_variant tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT "+creationColumns+" FROM creations WHERE id = ?", creationID)
	target, err := scanCreation(row)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("select_variant: re-fetch target: %w", err)
	}

	now := time.Now().UTC()
	target.ApprovalStatus = model.ApprovalApproved
	target.ApprovedAt = &now
	if _, err := tx.ExecContext(ctx,
		"UPDATE creations SET approval_status=?, approved_at=? WHERE id=?",
		target.ApprovalStatus, nullTimeStr(target.ApprovedAt), target.ID); err != nil {
		return nil, nil, fmt.Errorf("select_variant: approve target: %w", err)
	}

	var rejected []*model.Creation
	if target.VariantGroup != "" {
		rows, err := tx.QueryContext(ctx,
			"SELECT "+creationColumns+" FROM creations WHERE variant_group = ? AND id != ?",
			target.VariantGroup, target.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("select_variant: list siblings: %w", err)
		}
		for rows.Next() {
			sib, err := scanCreation(rows)
			if err != nil {
				rows.Close()
				return nil, nil, err
			}
			rejected = append(rejected, sib)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, nil, err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE creations SET approval_status=? WHERE variant_group=? AND id != ?",
			model.ApprovalRejected, target.VariantGroup, target.ID); err != nil {
			return nil, nil, fmt.Errorf("select_variant: reject siblings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("select_variant: commit: %w", err)
	}

	for _, sib := range rejected {
		sib.ApprovalStatus = model.ApprovalRejected
	}
	return target, rejected, nil
}
