// Package publish defines the per-platform publication contract and the
// arbitrage-window computation shared by every publisher.
package publish

import (
	"context"
	"time"
)

// MetricsSnapshot is one point-in-time engagement read for a published post.
type MetricsSnapshot struct {
	Views    int
	Likes    int
	Comments int
	Shares   int
	Clicks   int
}

// Publisher pushes a creation to an external platform and later reads
// back engagement metrics for it.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, title, body string, tags []string) (platformPostID, platformURL string, err error)
	GetMetrics(ctx context.Context, platformPostID string) (MetricsSnapshot, error)
}

// ArbitrageWindowMinutes is floor((publishedAt - discoveredAt).Minutes())
// when positive, or nil when the creation was published before — or at
// the same moment as — it was discovered (a data anomaly, not a window).
func ArbitrageWindowMinutes(discoveredAt, publishedAt time.Time) *int {
	d := publishedAt.Sub(discoveredAt)
	if d <= 0 {
		return nil
	}
	minutes := int(d.Minutes())
	return &minutes
}
