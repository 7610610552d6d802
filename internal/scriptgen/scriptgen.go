// Package scriptgen drafts speaker-tagged conversation scripts from a topic
// prompt using an LLM backend. The output format matches what the
// conversation engine's parser expects: one "Name: utterance" turn per line.
package scriptgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/MrWong99/polyvox/internal/observe"
	"github.com/MrWong99/polyvox/pkg/provider/llm"
	"github.com/MrWong99/polyvox/pkg/types"
)

// ErrNoScript is returned when the model's reply contains no speaker-tagged
// lines at all.
var ErrNoScript = errors.New("scriptgen: model reply contains no speaker-tagged lines")

// defaultTurns is the requested number of conversation turns when the caller
// does not specify one.
const defaultTurns = 12

const systemPrompt = `You are a dialogue writer. Write conversation scripts in plain text.
Rules:
- Every line is exactly one turn in the form "Name: utterance".
- Use only the speaker names you are given, spelled exactly as given.
- No markdown, no headings, no stage directions, no narration.
- Keep each turn to one to three sentences of natural spoken language.`

// speakerLine matches one "Name: text" turn of the drafted script.
var speakerLine = regexp.MustCompile(`^[^:\n]{1,40}:\s*\S`)

// Request describes one script draft.
type Request struct {
	// Topic is what the conversation should be about. Required.
	Topic string

	// Speakers are the speaker names to write for. Required, at least one.
	Speakers []string

	// Style shapes the register of the dialogue. Empty means natural.
	Style types.Style

	// Turns is the requested number of conversation turns. Zero means a
	// sensible default.
	Turns int
}

// Generator drafts scripts through an LLM provider. Construct with [New].
type Generator struct {
	llm     llm.Provider
	logger  *slog.Logger
	metrics *observe.Metrics

	temperature float64
	maxTokens   int
}

// Option configures a [Generator].
type Option func(*Generator)

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithMetrics sets the metrics instruments. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// WithTemperature sets the sampling temperature passed to the model.
// Defaults to 0.8; dialogue benefits from some variance.
func WithTemperature(t float64) Option {
	return func(g *Generator) {
		g.temperature = t
	}
}

// WithMaxTokens caps the completion length. Zero leaves the provider default.
func WithMaxTokens(n int) Option {
	return func(g *Generator) {
		g.maxTokens = n
	}
}

// New creates a Generator drafting through the given LLM provider.
func New(provider llm.Provider, opts ...Option) *Generator {
	g := &Generator{
		llm:         provider,
		logger:      slog.Default(),
		temperature: 0.8,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics == nil {
		g.metrics = observe.DefaultMetrics()
	}
	return g
}

// Generate drafts a speaker-tagged script for the request. The reply is
// cleaned of code fences and lines that do not look like turns; an empty
// result yields [ErrNoScript].
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	ctx, span := observe.StartSpan(ctx, "scriptgen.generate")
	defer span.End()

	if strings.TrimSpace(req.Topic) == "" {
		return "", errors.New("scriptgen: topic must not be empty")
	}
	if len(req.Speakers) == 0 {
		return "", errors.New("scriptgen: at least one speaker is required")
	}

	style := req.Style
	if style == "" {
		style = types.StyleNatural
	}
	if !style.IsValid() {
		return "", fmt.Errorf("scriptgen: invalid conversation style %q", req.Style)
	}
	turns := req.Turns
	if turns <= 0 {
		turns = defaultTurns
	}

	start := time.Now()
	resp, err := g.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{{
			Role:    "user",
			Content: g.userPrompt(req.Topic, req.Speakers, style, turns),
		}},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	g.metrics.ScriptGenDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		g.metrics.RecordProviderError(ctx, "llm", "complete")
		return "", fmt.Errorf("scriptgen: complete script draft: %w", err)
	}

	script := cleanReply(resp.Content)
	if script == "" {
		return "", ErrNoScript
	}

	g.logger.Info("drafted conversation script",
		"topic", req.Topic,
		"speakers", len(req.Speakers),
		"style", string(style),
		"lines", strings.Count(script, "\n")+1,
		"tokens", resp.Usage.TotalTokens)
	return script, nil
}

// userPrompt renders the drafting instruction for one request.
func (g *Generator) userPrompt(topic string, speakers []string, style types.Style, turns int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s conversation of about %d turns about: %s\n", style, turns, topic)
	fmt.Fprintf(&b, "Speakers: %s\n", strings.Join(speakers, ", "))
	b.WriteString("Alternate speakers naturally; not every turn has to switch.")
	return b.String()
}

// cleanReply strips code fences and keeps only lines shaped like turns.
func cleanReply(reply string) string {
	var lines []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		if !speakerLine.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
