package contentconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONTENTPILOT_DATA", "")
	t.Setenv("CONTENTPILOT_DAILY_COST_LIMIT", "")
	t.Setenv("CONTENTPILOT_SCOUT_INTERVAL", "")

	cfg := Load()
	assert.Equal(t, 10.0, cfg.DailyCostLimitUSD)
	assert.Equal(t, 30*time.Minute, cfg.ScoutInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.ReviewInterval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONTENTPILOT_DATA", "/tmp/cp-test")
	t.Setenv("CONTENTPILOT_DAILY_COST_LIMIT", "2.50")
	t.Setenv("CONTENTPILOT_SCOUT_INTERVAL", "5m")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg := Load()
	assert.Equal(t, "/tmp/cp-test", cfg.DataDir)
	assert.Equal(t, 2.50, cfg.DailyCostLimitUSD)
	assert.Equal(t, 5*time.Minute, cfg.ScoutInterval)
	assert.Equal(t, "sk-ant-test", cfg.AnthropicAPIKey)
	assert.Equal(t, "/tmp/cp-test/skills", cfg.SkillDir)
}

func TestLoad_InvalidDurationFallsBackToDefault(t *testing.T) {
	t.Setenv("CONTENTPILOT_FEEDBACK_INTERVAL", "not-a-duration")
	cfg := Load()
	assert.Equal(t, 24*time.Hour, cfg.FeedbackInterval)
}
