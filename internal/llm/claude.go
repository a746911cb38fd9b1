package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// claudePricing maps model family to (input, output) cost per 1M tokens in USD.
var claudePricing = map[string][2]float64{
	"haiku":  {0.25, 1.25},
	"sonnet": {3.0, 15.0},
	"opus":   {15.0, 75.0},
}

// ClaudeOption configures a ClaudeProvider.
type ClaudeOption func(*ClaudeProvider)

// WithBaseURL overrides the API base URL (useful for testing).
func WithBaseURL(url string) ClaudeOption {
	return func(p *ClaudeProvider) { p.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClaudeOption {
	return func(p *ClaudeProvider) { p.client = c }
}

// WithModel sets the model used for every request.
func WithModel(model string) ClaudeOption {
	return func(p *ClaudeProvider) { p.model = model }
}

// ClaudeProvider implements Provider against the Anthropic Messages API.
type ClaudeProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	model   string
}

// NewClaudeProvider returns a ClaudeProvider with a 60s HTTP client and the
// sonnet model, matching the per-call LLM timeout budget in §5.
func NewClaudeProvider(apiKey string, opts ...ClaudeOption) *ClaudeProvider {
	p := &ClaudeProvider{
		apiKey:  apiKey,
		baseURL: "https://api.anthropic.com",
		client:  &http.Client{Timeout: 60 * time.Second},
		model:   "claude-sonnet-4-20250514",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ClaudeProvider) Name() string { return "claude" }

type claudeRequest struct {
	Model     string      `json:"model"`
	MaxTokens int         `json:"max_tokens"`
	System    string      `json:"system,omitempty"`
	Messages  []claudeMsg `json:"messages"`
}

type claudeMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type claudeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *ClaudeProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, jsonMode bool) (Response, error) {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	sys := systemPrompt
	if jsonMode {
		sys += "\n\nRespond with JSON only, no surrounding prose."
	}

	body, err := json.Marshal(claudeRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		System:    sys,
		Messages:  []claudeMsg{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return Response{}, fmt.Errorf("claude: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("claude: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("claude: http request: %w", err)
	}
	defer resp.Body.Close()
	latency := time.Since(start).Milliseconds()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("claude: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errResp claudeErrorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error.Message != "" {
			return Response{}, fmt.Errorf("claude: api error %d: %s", resp.StatusCode, errResp.Error.Message)
		}
		return Response{}, fmt.Errorf("claude: api error %d", resp.StatusCode)
	}

	var parsed claudeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Response{}, fmt.Errorf("claude: unmarshal response: %w", err)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return Response{
		Text:         text.String(),
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
		CostUSD:      calculateCost(parsed.Model, parsed.Usage.InputTokens, parsed.Usage.OutputTokens),
		LatencyMs:    latency,
		Provider:     p.Name(),
		Model:        parsed.Model,
	}, nil
}

func (p *ClaudeProvider) HealthCheck(ctx context.Context) bool {
	_, err := p.Complete(ctx, "", "ping", 8, false)
	return err == nil
}

func calculateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := claudePricing["sonnet"], false
	for family, pr := range claudePricing {
		if strings.Contains(model, family) {
			pricing, ok = pr, true
			break
		}
	}
	_ = ok
	return float64(inputTokens)/1_000_000*pricing[0] + float64(outputTokens)/1_000_000*pricing[1]
}
