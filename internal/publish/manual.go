package publish

import (
	"context"
	"log/slog"
)

// ManualUploadPublisher handles platforms with no programmatic post
// flow (TikTok, and any other video platform requiring browser
// automation to post). Publish queues the content under a fixed
// placeholder post ID rather than failing, since the content itself
// was produced successfully — only the delivery step is manual.
type ManualUploadPublisher struct {
	platform string
	log      *slog.Logger
}

// NewManualUploadPublisher returns a ManualUploadPublisher for platform.
func NewManualUploadPublisher(platform string, log *slog.Logger) *ManualUploadPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &ManualUploadPublisher{platform: platform, log: log.With("component", "manual_upload_publisher", "platform", platform)}
}

func (p *ManualUploadPublisher) Name() string { return p.platform }

// PlaceholderPostID marks content queued for manual upload rather than
// published through an API.
const PlaceholderPostID = "pending_manual"

func (p *ManualUploadPublisher) Publish(ctx context.Context, title, body string, tags []string) (string, string, error) {
	p.log.Info("publish queued for manual upload", "title", title, "tags", tags)
	return PlaceholderPostID, "", nil
}

// GetMetrics always returns a zero snapshot: there is no automated
// access to engagement for manually-uploaded content.
func (p *ManualUploadPublisher) GetMetrics(ctx context.Context, platformPostID string) (MetricsSnapshot, error) {
	return MetricsSnapshot{}, nil
}
