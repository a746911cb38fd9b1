// Package source defines the SourceAdapter contract and ships a handful
// of concrete adapters normalizing external feeds into DiscoveryItem.
package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// DiscoveryItem is the normalized, transient output of one adapter fetch.
type DiscoveryItem struct {
	Source       string
	SourceID     string
	Title        string
	URL          string
	RawScore     float64
	RawData      map[string]any
	DiscoveredAt time.Time
}

// ContentHash is the globally-unique dedup key for a (title, url) pair.
func ContentHash(title, url string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", title, url)))
	return hex.EncodeToString(sum[:])
}

// Adapter fetches and normalizes raw items from one external feed.
// Implementations must complete or give up within their own timeout
// (default 30s); partial results are acceptable — an adapter may return a
// shorter list rather than error.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]DiscoveryItem, error)
}

// DefaultTimeout is the fetch timeout used by adapters that don't specify
// their own.
const DefaultTimeout = 30 * time.Second
