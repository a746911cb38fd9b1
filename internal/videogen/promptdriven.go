package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
)

// PromptDrivenProvider generates video from a text-to-video model rather
// than an avatar. It handles every descriptor type that populates Prompt
// instead of Script: motion_graphics, kinetic_text, cinematic_broll, and
// image_to_video.
type PromptDrivenProvider struct {
	baseURL string
	client  *http.Client
}

// NewPromptDrivenProvider returns a PromptDrivenProvider targeting a
// local or hosted text-to-video API server.
func NewPromptDrivenProvider(baseURL string) *PromptDrivenProvider {
	return &PromptDrivenProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 600 * time.Second},
	}
}

func (p *PromptDrivenProvider) Name() string { return "prompt_driven_t2v" }

func (p *PromptDrivenProvider) Supports(t model.VideoType) bool {
	switch t {
	case model.VideoMotionGraphics, model.VideoKineticText, model.VideoCinematicBroll, model.VideoImageToVideo:
		return true
	default:
		return false
	}
}

type t2vRequest struct {
	Prompt            string  `json:"prompt"`
	NumFrames         int     `json:"num_frames"`
	FPS               int     `json:"fps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	NumInferenceSteps int     `json:"num_inference_steps"`
}

type t2vResponse struct {
	VideoURL string `json:"video_url"`
	TaskID   string `json:"task_id"`
}

func (p *PromptDrivenProvider) Generate(ctx context.Context, d *model.VideoDescriptor, avatarType, voiceID string) (Result, error) {
	start := time.Now()
	body, err := json.Marshal(t2vRequest{
		Prompt:            d.Prompt,
		NumFrames:         49,
		FPS:               24,
		GuidanceScale:     6.0,
		NumInferenceSteps: 50,
	})
	if err != nil {
		return Result{}, fmt.Errorf("prompt_driven_t2v: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("prompt_driven_t2v: build request: %w", err)
	}
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
		return Result{Error: fmt.Sprintf("prompt_driven_t2v: api error %d", resp.StatusCode), Provider: p.Name()}, nil
	}

	var parsed t2vResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{Error: err.Error(), Provider: p.Name()}, nil
	}
	if parsed.VideoURL == "" {
		return Result{Error: "prompt_driven_t2v: no video_url in response", Provider: p.Name(), VideoID: parsed.TaskID}, nil
	}

	return Result{
		VideoURL:         parsed.VideoURL,
		VideoID:          parsed.TaskID,
		Provider:         p.Name(),
		CostUSD:          0.0,
		DurationSeconds:  49.0 / 24.0,
		GenerationTimeMs: elapsed,
	}, nil
}

func (p *PromptDrivenProvider) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
