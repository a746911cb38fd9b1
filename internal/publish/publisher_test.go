package publish

import (
	"context"
	"testing"
	"time"
)

func TestArbitrageWindowMinutes_Positive(t *testing.T) {
	discovered := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	published := discovered.Add(47 * time.Minute)
	got := ArbitrageWindowMinutes(discovered, published)
	if got == nil || *got != 47 {
		t.Errorf("window = %v, want 47", got)
	}
}

func TestArbitrageWindowMinutes_NonPositive_Nil(t *testing.T) {
	discovered := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	published := discovered.Add(-5 * time.Minute)
	if got := ArbitrageWindowMinutes(discovered, published); got != nil {
		t.Errorf("window = %v, want nil for published-before-discovered", got)
	}
	if got := ArbitrageWindowMinutes(discovered, discovered); got != nil {
		t.Errorf("window = %v, want nil for zero-duration window", got)
	}
}

func TestManualUploadPublisher_ReturnsPlaceholder(t *testing.T) {
	p := NewManualUploadPublisher("tiktok", nil)
	postID, url, err := p.Publish(context.Background(), "title", "body", nil)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if postID != PlaceholderPostID {
		t.Errorf("post id = %q, want %q", postID, PlaceholderPostID)
	}
	if url != "" {
		t.Errorf("url = %q, want empty for manual upload", url)
	}
}
