package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// MinRedditScore is the per-source minimum-quality cutoff.
const MinRedditScore = 100

// DefaultSubreddits mirrors the original Python source's fixed subreddit list.
var DefaultSubreddits = []string{
	"technology", "programming", "artificial", "MachineLearning",
	"startups", "SideProject", "webdev",
}

// RedditAdapter fan-outs across several subreddits concurrently, isolating
// each subreddit's failure from the others.
type RedditAdapter struct {
	client     *http.Client
	subreddits []string
}

// NewRedditAdapter returns a RedditAdapter over DefaultSubreddits.
func NewRedditAdapter() *RedditAdapter {
	return &RedditAdapter{
		client:     &http.Client{Timeout: DefaultTimeout},
		subreddits: DefaultSubreddits,
	}
}

func (a *RedditAdapter) Name() string { return "reddit" }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID        string  `json:"id"`
				Title     string  `json:"title"`
				URL       string  `json:"url"`
				Score     int     `json:"score"`
				NumComments int   `json:"num_comments"`
				CreatedUTC float64 `json:"created_utc"`
				Permalink string  `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (a *RedditAdapter) Fetch(ctx context.Context) ([]DiscoveryItem, error) {
	results := make([][]DiscoveryItem, len(a.subreddits))

	g, gctx := errgroup.WithContext(ctx)
	for i, sub := range a.subreddits {
		i, sub := i, sub
		g.Go(func() error {
			// Each subreddit's own failure is swallowed here rather than
			// propagated to the group: one bad subreddit must never
			// cancel the others.
			items, err := a.fetchSubreddit(gctx, sub)
			if err != nil {
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var all []DiscoveryItem
	for _, items := range results {
		all = append(all, items...)
	}
	return all, nil
}

func (a *RedditAdapter) fetchSubreddit(ctx context.Context, subreddit string) ([]DiscoveryItem, error) {
	url := fmt.Sprintf("https://www.reddit.com/r/%s/hot.json?limit=25", subreddit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "contentpilot-scout/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit: unexpected status %d for r/%s", resp.StatusCode, subreddit)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}

	var items []DiscoveryItem
	for _, child := range listing.Data.Children {
		d := child.Data
		if d.Score < MinRedditScore {
			continue
		}
		postURL := d.URL
		if postURL == "" {
			postURL = "https://www.reddit.com" + d.Permalink
		}
		items = append(items, DiscoveryItem{
			Source:   a.Name(),
			SourceID: d.ID,
			Title:    d.Title,
			URL:      postURL,
			RawScore: float64(d.Score),
			RawData: map[string]any{
				"subreddit":    subreddit,
				"score":        d.Score,
				"num_comments": d.NumComments,
			},
			DiscoveredAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}
	return items, nil
}
