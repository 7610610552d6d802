package scriptgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MrWong99/polyvox/pkg/provider/llm"
	"github.com/MrWong99/polyvox/pkg/provider/llm/mock"
	"github.com/MrWong99/polyvox/pkg/types"
)

func TestGenerate(t *testing.T) {
	p := &mock.Provider{
		CompleteResult: &llm.CompletionResponse{
			Content: "Alice: Have you heard about the launch?\nBob: I have, it looks promising.",
			Usage:   llm.Usage{TotalTokens: 42},
		},
	}
	g := New(p, WithTemperature(0.5), WithMaxTokens(512))

	script, err := g.Generate(context.Background(), Request{
		Topic:    "the product launch",
		Speakers: []string{"Alice", "Bob"},
		Style:    types.StylePodcast,
		Turns:    4,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.HasPrefix(script, "Alice: ") {
		t.Errorf("script = %q, want Alice's turn first", script)
	}
	if len(p.CompleteCalls) != 1 {
		t.Fatalf("provider got %d calls, want 1", len(p.CompleteCalls))
	}

	req := p.CompleteCalls[0].Req
	if req.SystemPrompt == "" {
		t.Error("request is missing the system prompt")
	}
	if req.Temperature != 0.5 {
		t.Errorf("Temperature = %v, want 0.5", req.Temperature)
	}
	if req.MaxTokens != 512 {
		t.Errorf("MaxTokens = %d, want 512", req.MaxTokens)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("Messages = %+v, want one user message", req.Messages)
	}
	prompt := req.Messages[0].Content
	for _, want := range []string{"the product launch", "Alice, Bob", "podcast", "4 turns"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("user prompt %q is missing %q", prompt, want)
		}
	}
}

func TestGenerateCleansReply(t *testing.T) {
	p := &mock.Provider{
		CompleteResult: &llm.CompletionResponse{
			Content: "Here is your script:\n```\nAlice: First turn.\n\nBob: Second turn.\n```\nHope you like it!",
		},
	}
	g := New(p)

	script, err := g.Generate(context.Background(), Request{
		Topic:    "anything",
		Speakers: []string{"Alice", "Bob"},
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	want := "Alice: First turn.\nBob: Second turn."
	if script != want {
		t.Errorf("script = %q, want %q", script, want)
	}
}

func TestGenerateValidation(t *testing.T) {
	g := New(&mock.Provider{CompleteResult: &llm.CompletionResponse{Content: "Alice: Hi."}})

	tests := []struct {
		name string
		req  Request
	}{
		{"empty topic", Request{Speakers: []string{"Alice"}}},
		{"no speakers", Request{Topic: "something"}},
		{"invalid style", Request{Topic: "something", Speakers: []string{"Alice"}, Style: types.Style("operatic")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Generate(context.Background(), tt.req); err == nil {
				t.Error("Generate() succeeded, want error")
			}
		})
	}
}

func TestGenerateNoTaggedLines(t *testing.T) {
	p := &mock.Provider{
		CompleteResult: &llm.CompletionResponse{Content: "I cannot write that script."},
	}
	g := New(p)

	_, err := g.Generate(context.Background(), Request{
		Topic:    "anything",
		Speakers: []string{"Alice"},
	})
	if !errors.Is(err, ErrNoScript) {
		t.Errorf("Generate() error = %v, want ErrNoScript", err)
	}
}

func TestGenerateProviderError(t *testing.T) {
	wantErr := errors.New("model offline")
	g := New(&mock.Provider{CompleteErr: wantErr})

	_, err := g.Generate(context.Background(), Request{
		Topic:    "anything",
		Speakers: []string{"Alice"},
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Generate() error = %v, want wrapped %v", err, wantErr)
	}
}
