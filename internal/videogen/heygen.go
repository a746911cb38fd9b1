package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
)

const (
	pollInterval    = 10 * time.Second
	maxPollDuration = 20 * time.Minute
)

// HeyGenProvider generates avatar-driven videos: it handles the
// avatar_talking_head and avatar_agent descriptor types, both of which
// populate only Script/Prompt as a spoken script for a talking avatar.
type HeyGenProvider struct {
	apiKey              string
	baseURL             string
	avatarIDFounder     string
	avatarIDProfessional string
	client              *http.Client
}

// NewHeyGenProvider returns a HeyGenProvider.
func NewHeyGenProvider(apiKey, avatarIDFounder, avatarIDProfessional string) *HeyGenProvider {
	return &HeyGenProvider{
		apiKey:               apiKey,
		baseURL:              "https://api.heygen.com",
		avatarIDFounder:      avatarIDFounder,
		avatarIDProfessional: avatarIDProfessional,
		client:               &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *HeyGenProvider) Name() string { return "heygen" }

func (p *HeyGenProvider) Supports(t model.VideoType) bool {
	return t == model.VideoAvatarTalkingHead || t == model.VideoAvatarAgent
}

func (p *HeyGenProvider) avatarID(avatarType string) string {
	if avatarType == "professional" {
		return p.avatarIDProfessional
	}
	return p.avatarIDFounder
}

type heygenSubmitRequest struct {
	VideoInputs []heygenVideoInput `json:"video_inputs"`
	Dimension   heygenDimension    `json:"dimension"`
}

type heygenVideoInput struct {
	Character heygenCharacter `json:"character"`
	Voice     heygenVoice     `json:"voice"`
}

type heygenCharacter struct {
	Type     string `json:"type"`
	AvatarID string `json:"avatar_id"`
}

type heygenVoice struct {
	Type      string `json:"type"`
	InputText string `json:"input_text"`
	VoiceID   string `json:"voice_id,omitempty"`
}

type heygenDimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type heygenSubmitResponse struct {
	Data struct {
		VideoID string `json:"video_id"`
	} `json:"data"`
}

type heygenStatusResponse struct {
	Data struct {
		Status   string `json:"status"`
		VideoURL string `json:"video_url"`
		Error    string `json:"error"`
	} `json:"data"`
}

func (p *HeyGenProvider) Generate(ctx context.Context, d *model.VideoDescriptor, avatarType, voiceID string) (Result, error) {
	start := time.Now()
	script := d.Script
	if script == "" {
		script = d.Prompt
	}

	voice := heygenVoice{Type: "text", InputText: script}
	if voiceID != "" {
		voice.VoiceID = voiceID
	}
	body, err := json.Marshal(heygenSubmitRequest{
		VideoInputs: []heygenVideoInput{{
			Character: heygenCharacter{Type: "avatar", AvatarID: p.avatarID(avatarType)},
			Voice:     voice,
		}},
		Dimension: heygenDimension{Width: 1080, Height: 1920},
	})
	if err != nil {
		return Result{}, fmt.Errorf("heygen: marshal request: %w", err)
	}

	videoID, err := p.submit(ctx, body)
	if err != nil {
		return Result{Error: err.Error(), Provider: p.Name()}, nil
	}

	videoURL, pollErr := p.pollUntilDone(ctx, videoID)
	elapsed := time.Since(start).Milliseconds()
	if pollErr != nil {
		return Result{Error: pollErr.Error(), Provider: p.Name(), VideoID: videoID, GenerationTimeMs: elapsed}, nil
	}

	return Result{
		VideoURL:         videoURL,
		VideoID:          videoID,
		Provider:         p.Name(),
		CostUSD:          1.50,
		GenerationTimeMs: elapsed,
	}, nil
}

func (p *HeyGenProvider) submit(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/video/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	p.setHeaders(req)

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
		return "", fmt.Errorf("heygen: api error %d: %s", resp.StatusCode, raw)
	}
	var parsed heygenSubmitResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if parsed.Data.VideoID == "" {
		return "", fmt.Errorf("heygen: no video_id in response")
	}
	return parsed.Data.VideoID, nil
}

func (p *HeyGenProvider) pollUntilDone(ctx context.Context, videoID string) (string, error) {
	deadline := time.Now().Add(maxPollDuration)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		status, videoURL, statusErr, err := p.checkStatus(ctx, videoID)
		if err != nil {
			return "", err
		}
		switch status {
		case "completed":
			return videoURL, nil
		case "failed":
			return "", fmt.Errorf("heygen: video generation failed: %s", statusErr)
		}
	}
	return "", fmt.Errorf("heygen: video generation timed out after %s", maxPollDuration)
}

func (p *HeyGenProvider) checkStatus(ctx context.Context, videoID string) (status, videoURL, statusErr string, err error) {
	q := url.Values{"video_id": []string{videoID}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/video_status.get?"+q.Encode(), nil)
	if err != nil {
		return "", "", "", err
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", "", "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", "", fmt.Errorf("heygen: status api error %d: %s", resp.StatusCode, raw)
	}
	var parsed heygenStatusResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", "", "", err
	}
	return parsed.Data.Status, parsed.Data.VideoURL, parsed.Data.Error, nil
}

func (p *HeyGenProvider) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/video_status.get?video_id=health", nil)
	if err != nil {
		return false
	}
	p.setHeaders(req)
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

func (p *HeyGenProvider) setHeaders(req *http.Request) {
	req.Header.Set("X-Api-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
