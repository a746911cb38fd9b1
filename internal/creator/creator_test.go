package creator

import (
	"context"
	"testing"
	"time"

	"github.com/philipbankier/contentpilot/internal/llm"
	"github.com/philipbankier/contentpilot/internal/model"
	"github.com/philipbankier/contentpilot/internal/skill"
	"github.com/philipbankier/contentpilot/internal/store"
)

type fakeProvider struct{ text string }

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, jsonMode bool) (llm.Response, error) {
	return llm.Response{Text: f.text, Provider: "fake"}, nil
}
func (f *fakeProvider) HealthCheck(ctx context.Context) bool { return true }

func relevance(v float64) *float64 { return &v }

func TestCreator_Run_ProducesTwoVariantsPerPlatform(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	d := &model.Discovery{
		ID: "d1", Source: "hackernews", SourceID: "hn-1", Title: "A new framework",
		URL: "https://example.com/x", Status: model.DiscoveryAnalyzed,
		RelevanceScore: relevance(0.8), VelocityScore: relevance(0.5),
		PlatformFit:      map[string]float64{"linkedin": 0.9, "twitter": 0.2},
		SuggestedFormats: []string{"post"},
		DiscoveredAt:     time.Now().UTC(),
	}
	if err := st.InsertDiscovery(ctx, d); err != nil {
		t.Fatalf("insert discovery: %v", err)
	}

	provider := &fakeProvider{text: `{"title": "A new framework ships", "body": "Short, declarative take on the news.", "image_prompt": ""}`}
	lib := skill.New(t.TempDir(), st)
	bus := skill.NewOutcomeBus(lib, nil)
	cr := New(st, provider, nil, lib, bus, nil, nil, nil)

	res, err := cr.Run(ctx, 10, time.Now().UTC())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ContentCreated != 2 {
		t.Errorf("created = %d, want 2 (only linkedin clears the 0.6 threshold)", res.ContentCreated)
	}

	got, err := st.GetDiscovery(ctx, "d1")
	if err != nil {
		t.Fatalf("get discovery: %v", err)
	}
	if got.Status != model.DiscoveryQueued {
		t.Errorf("status = %q, want %q", got.Status, model.DiscoveryQueued)
	}
}

func TestCreator_Run_NoQualifyingPlatforms_SkipsDiscovery(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	d := &model.Discovery{
		ID: "d2", Source: "reddit", SourceID: "r-1", Title: "Low fit item",
		URL: "https://example.com/y", Status: model.DiscoveryAnalyzed,
		RelevanceScore: relevance(0.3), VelocityScore: relevance(0.1),
		PlatformFit:      map[string]float64{"linkedin": 0.1},
		SuggestedFormats: []string{"post"},
		DiscoveredAt:     time.Now().UTC(),
	}
	if err := st.InsertDiscovery(ctx, d); err != nil {
		t.Fatalf("insert discovery: %v", err)
	}

	lib := skill.New(t.TempDir(), st)
	bus := skill.NewOutcomeBus(lib, nil)
	cr := New(st, &fakeProvider{}, nil, lib, bus, nil, nil, nil)

	res, err := cr.Run(ctx, 10, time.Now().UTC())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ContentCreated != 0 {
		t.Errorf("created = %d, want 0", res.ContentCreated)
	}

	got, err := st.GetDiscovery(ctx, "d2")
	if err != nil {
		t.Fatalf("get discovery: %v", err)
	}
	if got.Status != model.DiscoverySkipped {
		t.Errorf("status = %q, want %q (the redesigned behavior for empty platform selection)", got.Status, model.DiscoverySkipped)
	}
}
