package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const mediumBaseURL = "https://api.medium.com/v1"

// MediumPublisher publishes articles via the Medium API. Medium exposes
// no metrics endpoint, so GetMetrics always returns a zero snapshot —
// engagement for Medium posts is intentionally never collected.
type MediumPublisher struct {
	token  string
	client *http.Client
	userID string
}

// NewMediumPublisher returns a MediumPublisher authenticated with token.
func NewMediumPublisher(token string) *MediumPublisher {
	return &MediumPublisher{token: token, client: &http.Client{Timeout: 60 * time.Second}}
}

func (p *MediumPublisher) Name() string { return "medium" }

func (p *MediumPublisher) headers(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

type mediumUserResponse struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

func (p *MediumPublisher) resolveUserID(ctx context.Context) (string, error) {
	if p.userID != "" {
		return p.userID, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediumBaseURL+"/me", nil)
	if err != nil {
		return "", err
	}
	p.headers(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("medium: /me api error %d", resp.StatusCode)
	}
	var parsed mediumUserResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	p.userID = parsed.Data.ID
	return p.userID, nil
}

type mediumPostRequest struct {
	Title         string   `json:"title"`
	ContentFormat string   `json:"contentFormat"`
	Content       string   `json:"content"`
	PublishStatus string   `json:"publishStatus"`
	Tags          []string `json:"tags,omitempty"`
}

type mediumPostResponse struct {
	Data struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"data"`
}

func (p *MediumPublisher) Publish(ctx context.Context, title, body string, tags []string) (string, string, error) {
	if title == "" || body == "" {
		return "", "", fmt.Errorf("medium: title and body are required")
	}

	userID, err := p.resolveUserID(ctx)
	if err != nil {
		return "", "", fmt.Errorf("medium: resolve user id: %w", err)
	}

	if len(tags) > 5 {
		tags = tags[:5]
	}
	reqBody, err := json.Marshal(mediumPostRequest{
		Title:         title,
		ContentFormat: "markdown",
		Content:       body,
		PublishStatus: "public",
		Tags:          tags,
	})
	if err != nil {
		return "", "", fmt.Errorf("medium: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mediumBaseURL+"/users/"+userID+"/posts", bytes.NewReader(reqBody))
	if err != nil {
		return "", "", err
	}
	p.headers(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("medium: publish request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", "", fmt.Errorf("medium: publish api error %d: %s", resp.StatusCode, raw)
	}

	var parsed mediumPostResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", "", err
	}
	return parsed.Data.ID, parsed.Data.URL, nil
}

// GetMetrics always returns a zero snapshot: Medium's API has no
// metrics endpoint, so engagement tracking falls back to whatever
// scraper-based collection an operator wires in separately.
func (p *MediumPublisher) GetMetrics(ctx context.Context, platformPostID string) (MetricsSnapshot, error) {
	return MetricsSnapshot{}, nil
}
