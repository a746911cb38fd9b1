package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FalProvider generates images via fal.ai's hosted Flux model.
type FalProvider struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewFalProvider returns a FalProvider targeting the Flux dev endpoint.
func NewFalProvider(apiKey string) *FalProvider {
	return &FalProvider{
		apiKey: apiKey,
		apiURL: "https://fal.run/fal-ai/flux/dev",
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *FalProvider) Name() string { return "fal" }

type falRequest struct {
	Prompt    string `json:"prompt"`
	ImageSize string `json:"image_size"`
	NumImages int    `json:"num_images"`
}

type falResponse struct {
	Images []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"images"`
}

func (p *FalProvider) Generate(ctx context.Context, prompt, size, style string) (Result, error) {
	start := time.Now()
	if size == "" {
		size = "landscape_4_3"
	}
	styledPrompt := prompt
	if style != "" {
		styledPrompt = fmt.Sprintf("%s style: %s", style, prompt)
	}

	body, err := json.Marshal(falRequest{Prompt: styledPrompt, ImageSize: size, NumImages: 1})
	if err != nil {
		return Result{}, fmt.Errorf("fal: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("fal: build request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{Error: err.Error(), Provider: p.Name()}, nil
	}
	defer resp.Body.Close()
	elapsed := time.Since(start).Milliseconds()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Error: err.Error(), Provider: p.Name()}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Result{Error: fmt.Sprintf("fal: api error %d", resp.StatusCode), Provider: p.Name()}, nil
	}

	var parsed falResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{Error: err.Error(), Provider: p.Name()}, nil
	}
	if len(parsed.Images) == 0 {
		return Result{Error: "fal: no images returned", Provider: p.Name()}, nil
	}

	img := parsed.Images[0]
	return Result{
		URL:              img.URL,
		Provider:         p.Name(),
		CostUSD:          0.025,
		Width:            img.Width,
		Height:           img.Height,
		GenerationTimeMs: elapsed,
	}, nil
}

func (p *FalProvider) HealthCheck(ctx context.Context) bool {
	res, err := p.Generate(ctx, "health check probe", "square", "")
	return err == nil && res.Error == ""
}
