package skill

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/philipbankier/contentpilot/internal/model"
)

// frontmatterHeader mirrors the fixed skill record fields that live in a
// skill file's YAML header, content itself is the markdown body after the
// closing "---" delimiter.
type frontmatterHeader struct {
	Name            string   `yaml:"name"`
	Category        string   `yaml:"category"`
	Platform        string   `yaml:"platform,omitempty"`
	Confidence      float64  `yaml:"confidence"`
	Status          string   `yaml:"status"`
	Version         int      `yaml:"version"`
	Tags            []string `yaml:"tags,omitempty"`
	TotalUses       int      `yaml:"total_uses"`
	SuccessCount    int      `yaml:"success_count"`
	FailureStreak   int      `yaml:"failure_streak"`
	LastUsedAt      string   `yaml:"last_used_at,omitempty"`
	LastValidatedAt string   `yaml:"last_validated_at,omitempty"`
	CreatedAt       string   `yaml:"created_at"`
	UpdatedAt       string   `yaml:"updated_at"`
}

const delimiter = "---"

// parseSkillFile parses a "---\n<yaml>\n---\n<markdown body>" document.
func parseSkillFile(path string, raw []byte) (*model.Skill, error) {
	text := string(raw)
	if !strings.HasPrefix(strings.TrimLeft(text, "\n"), delimiter) {
		return nil, fmt.Errorf("parse skill file %s: missing frontmatter delimiter", path)
	}
	text = strings.TrimLeft(text, "\n")
	rest := strings.TrimPrefix(text, delimiter)
	idx := strings.Index(rest, "\n"+delimiter)
	if idx < 0 {
		return nil, fmt.Errorf("parse skill file %s: unterminated frontmatter", path)
	}
	header := rest[:idx]
	body := strings.TrimLeft(rest[idx+len("\n"+delimiter):], "\n")

	var fm frontmatterHeader
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, fmt.Errorf("parse skill file %s: %w", path, err)
	}

	s := &model.Skill{
		Name:          fm.Name,
		Category:      fm.Category,
		Platform:      fm.Platform,
		Confidence:    fm.Confidence,
		Status:        model.SkillStatus(fm.Status),
		Version:       fm.Version,
		Content:       body,
		Tags:          fm.Tags,
		TotalUses:     fm.TotalUses,
		SuccessCount:  fm.SuccessCount,
		FailureStreak: fm.FailureStreak,
		FilePath:      path,
	}
	if fm.LastUsedAt != "" {
		if t, err := time.Parse(time.RFC3339, fm.LastUsedAt); err == nil {
			s.LastUsedAt = &t
		}
	}
	if fm.LastValidatedAt != "" {
		if t, err := time.Parse(time.RFC3339, fm.LastValidatedAt); err == nil {
			s.LastValidatedAt = &t
		}
	}
	if t, err := time.Parse(time.RFC3339, fm.CreatedAt); err == nil {
		s.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, fm.UpdatedAt); err == nil {
		s.UpdatedAt = t
	}
	return s, nil
}

// renderSkillFile serializes a Skill back into frontmatter + body form.
func renderSkillFile(s *model.Skill) ([]byte, error) {
	fm := frontmatterHeader{
		Name:          s.Name,
		Category:      s.Category,
		Platform:      s.Platform,
		Confidence:    s.Confidence,
		Status:        string(s.Status),
		Version:       s.Version,
		Tags:          s.Tags,
		TotalUses:     s.TotalUses,
		SuccessCount:  s.SuccessCount,
		FailureStreak: s.FailureStreak,
		CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     s.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if s.LastUsedAt != nil {
		fm.LastUsedAt = s.LastUsedAt.UTC().Format(time.RFC3339)
	}
	if s.LastValidatedAt != nil {
		fm.LastValidatedAt = s.LastValidatedAt.UTC().Format(time.RFC3339)
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("render skill file %s: %w", s.Name, err)
	}

	var buf strings.Builder
	buf.WriteString(delimiter + "\n")
	buf.Write(header)
	buf.WriteString(delimiter + "\n\n")
	buf.WriteString(s.Content)
	if !strings.HasSuffix(s.Content, "\n") {
		buf.WriteString("\n")
	}
	return []byte(buf.String()), nil
}
