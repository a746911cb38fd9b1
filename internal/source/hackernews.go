package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MinHackerNewsPoints is the per-source minimum-quality cutoff, mirroring
// the original Python HackerNewsSource.
const MinHackerNewsPoints = 50

// HackerNewsAdapter fetches the HN Algolia front-page search feed.
type HackerNewsAdapter struct {
	client *http.Client
	apiURL string
}

// NewHackerNewsAdapter returns a HackerNewsAdapter with a 30s HTTP client.
func NewHackerNewsAdapter() *HackerNewsAdapter {
	return &HackerNewsAdapter{
		client: &http.Client{Timeout: DefaultTimeout},
		apiURL: "https://hn.algolia.com/api/v1/search?tags=front_page",
	}
}

func (a *HackerNewsAdapter) Name() string { return "hackernews" }

type hnHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAt   string `json:"created_at"`
}

type hnResponse struct {
	Hits []hnHit `json:"hits"`
}

func (a *HackerNewsAdapter) Fetch(ctx context.Context) ([]DiscoveryItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("hackernews: build request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hackernews: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hackernews: unexpected status %d", resp.StatusCode)
	}

	var parsed hnResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("hackernews: decode response: %w", err)
	}

	now := time.Now().UTC()
	var items []DiscoveryItem
	for _, hit := range parsed.Hits {
		if hit.Points < MinHackerNewsPoints {
			continue
		}
		url := hit.URL
		if url == "" {
			url = fmt.Sprintf("https://news.ycombinator.com/item?id=%s", hit.ObjectID)
		}
		discoveredAt := now
		if t, err := time.Parse(time.RFC3339, hit.CreatedAt); err == nil {
			discoveredAt = t
		}
		items = append(items, DiscoveryItem{
			Source:       a.Name(),
			SourceID:     hit.ObjectID,
			Title:        hit.Title,
			URL:          url,
			RawScore:     float64(hit.Points),
			RawData:      map[string]any{"points": hit.Points, "num_comments": hit.NumComments},
			DiscoveredAt: discoveredAt,
		})
	}
	return items, nil
}
