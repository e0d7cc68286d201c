package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/spigell/job-recommender/internal/jobs"
)

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	block  bool
	model  string
	config *genai.GenerateContentConfig
	prompt string
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.resp, f.err
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestGeneratorGenerateJSON(t *testing.T) {
	models := &fakeModels{resp: textResponse("  {\"skills\": []}  ")}
	gen := newGenerator(models, "", 0)

	out, err := gen.GenerateJSON(context.Background(), " extract ", responseSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"skills": []}` {
		t.Fatalf("unexpected output %q", out)
	}
	if models.model != defaultModel || gen.Model() != defaultModel {
		t.Fatalf("expected default model, got %q", models.model)
	}
	if models.prompt != "extract" {
		t.Fatalf("expected trimmed prompt, got %q", models.prompt)
	}
	if models.config == nil || models.config.ResponseMIMEType != "application/json" {
		t.Fatalf("expected json response config, got %+v", models.config)
	}
	if models.config.ResponseSchema != responseSchema {
		t.Fatalf("expected response schema to be forwarded")
	}
	if models.config.Temperature == nil || *models.config.Temperature != 0.1 {
		t.Fatalf("expected low temperature")
	}
}

func TestGeneratorJoinsParts(t *testing.T) {
	models := &fakeModels{resp: textResponse("first", " ", "second")}
	out, err := newGenerator(models, "gemini-test", time.Second).GenerateJSON(context.Background(), "hi", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "first\nsecond" {
		t.Fatalf("unexpected output %q", out)
	}
	if models.config == nil || models.config.ResponseSchema != nil {
		t.Fatalf("expected json config without a schema, got %+v", models.config)
	}
}

func TestGeneratorErrors(t *testing.T) {
	tests := []struct {
		name    string
		models  *fakeModels
		prompt  string
		timeout bool
	}{
		{name: "empty prompt", models: &fakeModels{}, prompt: "  "},
		{name: "api error", models: &fakeModels{err: genai.APIError{Code: 500, Status: "INTERNAL"}}, prompt: "x"},
		{name: "empty response", models: &fakeModels{resp: textResponse(" ")}, prompt: "x"},
		{name: "nil response", models: &fakeModels{}, prompt: "x"},
		{name: "deadline", models: &fakeModels{block: true}, prompt: "x", timeout: true},
		{
			name: "blocked prompt",
			models: &fakeModels{resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			}},
			prompt: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newGenerator(tt.models, "m", 20*time.Millisecond)
			_, err := gen.GenerateJSON(context.Background(), tt.prompt, nil)
			if err == nil {
				t.Fatalf("expected error")
			}

			var timeout *jobs.ExternalCallTimeout
			if got := errors.As(err, &timeout); got != tt.timeout {
				t.Fatalf("timeout error = %v, want %v (%v)", got, tt.timeout, err)
			}
		})
	}

	var nilGenerator *Generator
	if _, err := nilGenerator.GenerateJSON(context.Background(), "x", nil); err == nil {
		t.Fatalf("expected error for nil generator")
	}
	if nilGenerator.Model() != "" {
		t.Fatalf("expected empty model for nil generator")
	}
}
