// Command polyvox turns a speaker-tagged script (or a topic) into a single
// mixed conversation WAV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/polyvox/internal/config"
	"github.com/MrWong99/polyvox/internal/engine"
	"github.com/MrWong99/polyvox/internal/observe"
	"github.com/MrWong99/polyvox/internal/scriptgen"
	"github.com/MrWong99/polyvox/pkg/audio/ambience"
	"github.com/MrWong99/polyvox/pkg/provider/llm"
	"github.com/MrWong99/polyvox/pkg/provider/llm/anyllm"
	"github.com/MrWong99/polyvox/pkg/provider/tts"
	"github.com/MrWong99/polyvox/pkg/provider/tts/edge"
	"github.com/MrWong99/polyvox/pkg/provider/tts/vibevoice"
	"github.com/MrWong99/polyvox/pkg/types"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	scriptPath := flag.String("script", "", "path to a speaker-tagged script file")
	topic := flag.String("topic", "", "draft the script from this topic via the configured LLM")
	speakers := flag.String("speakers", "", "comma-separated speaker names for --topic drafting")
	style := flag.String("style", "", "conversation style override (natural, podcast, interview, debate, casual, formal, dramatic)")
	output := flag.String("output", "conversation.wav", "path of the WAV file to write")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "polyvox: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "polyvox: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	// ── Telemetry ─────────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "polyvox"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	if cfg.Server.MetricsAddr != "" {
		go serveMetrics(cfg.Server.MetricsAddr)
	}

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	ttsProvider, err := reg.CreateTTS(cfg.Providers.TTS)
	if err != nil {
		slog.Error("failed to create TTS provider", "name", cfg.Providers.TTS.Name, "err", err)
		return 1
	}
	slog.Info("provider created", "kind", "tts", "name", cfg.Providers.TTS.Name)

	// ── Script input ──────────────────────────────────────────────────────────
	script, err := resolveScript(ctx, cfg, reg, *scriptPath, *topic, *speakers, *style)
	if err != nil {
		slog.Error("failed to resolve script", "err", err)
		return 1
	}

	// ── Conversation build ────────────────────────────────────────────────────
	conv := cfg.Conversation
	if *style != "" {
		conv.Style = types.Style(*style)
	}

	opts := []engine.Option{
		engine.WithAmbience(ambience.NewSynth()),
		engine.WithLogger(logger),
	}
	if conv.SegmentTimeout > 0 {
		opts = append(opts, engine.WithSegmentTimeout(conv.SegmentTimeout))
	}
	if conv.Seed != 0 {
		opts = append(opts, engine.WithRandSource(rand.NewSource(conv.Seed)))
	}
	eng := engine.New(ttsProvider, opts...)

	wav, meta, err := eng.CreateConversation(ctx, engine.Request{
		Script:                script,
		SpeakerVoices:         conv.SpeakerVoices,
		Style:                 conv.Style,
		NaturalInteractions:   conv.NaturalInteractions,
		EmotionalIntelligence: conv.EmotionalIntelligence,
		BackgroundSound:       conv.BackgroundSound,
		BackgroundVolume:      conv.BackgroundVolume,
	})
	if err != nil {
		slog.Error("conversation build failed", "err", err)
		return 1
	}

	if err := os.WriteFile(*output, wav, 0o644); err != nil {
		slog.Error("failed to write output", "path", *output, "err", err)
		return 1
	}

	slog.Info("conversation written",
		"path", *output,
		"duration", meta.Duration,
		"speakers", meta.SpeakerCount,
		"words", meta.WordCount,
		"complexity", fmt.Sprintf("%.2f", meta.InteractionComplexity),
	)
	return 0
}

// resolveScript returns the conversation script, reading it from a file or
// drafting it from a topic through the configured LLM provider.
func resolveScript(ctx context.Context, cfg *config.Config, reg *config.Registry, scriptPath, topic, speakers, styleOverride string) (string, error) {
	switch {
	case scriptPath != "" && topic != "":
		return "", errors.New("--script and --topic are mutually exclusive")
	case scriptPath != "":
		raw, err := os.ReadFile(scriptPath)
		if err != nil {
			return "", fmt.Errorf("read script %q: %w", scriptPath, err)
		}
		return string(raw), nil
	case topic != "":
		if cfg.Providers.LLM.Name == "" {
			return "", errors.New("--topic requires providers.llm to be configured")
		}
		llmProvider, err := reg.CreateLLM(cfg.Providers.LLM)
		if err != nil {
			return "", fmt.Errorf("create llm provider %q: %w", cfg.Providers.LLM.Name, err)
		}
		slog.Info("provider created", "kind", "llm", "name", cfg.Providers.LLM.Name)

		names := splitSpeakers(speakers)
		if len(names) == 0 {
			names = speakerNames(cfg.Conversation.SpeakerVoices)
		}
		if len(names) == 0 {
			return "", errors.New("--topic needs --speakers or conversation.speaker_voices")
		}

		style := cfg.Conversation.Style
		if styleOverride != "" {
			style = types.Style(styleOverride)
		}
		return scriptgen.New(llmProvider).Generate(ctx, scriptgen.Request{
			Topic:    topic,
			Speakers: names,
			Style:    style,
		})
	default:
		return "", errors.New("either --script or --topic is required")
	}
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("edge", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []edge.Option
		if timeout := optDuration(entry.Options, "timeout"); timeout > 0 {
			opts = append(opts, edge.WithTimeout(timeout))
		}
		return edge.New(opts...), nil
	})

	reg.RegisterTTS("vibevoice", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []vibevoice.Option
		if timeout := optDuration(entry.Options, "timeout"); timeout > 0 {
			opts = append(opts, vibevoice.WithTimeout(timeout))
		}
		if scale, ok := optFloat(entry.Options, "cfg_scale"); ok {
			opts = append(opts, vibevoice.WithCFGScale(scale))
		}
		return vibevoice.New(entry.BaseURL, opts...)
	})

	// ── LLM ───────────────────────────────────────────────────────────────────
	// openai, anthropic, gemini, deepseek, mistral, groq, llamacpp, llamafile
	// all share the same pattern: optional APIKey + optional BaseURL.
	for _, providerName := range []string{
		"openai", "anthropic", "gemini",
		"deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})
}

// ── Metrics endpoint ──────────────────────────────────────────────────────────

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Warn("metrics endpoint error", "err", err)
	}
}

// ── Logger ────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func splitSpeakers(s string) []string {
	if s == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

func speakerNames(voices map[string]string) []string {
	names := make([]string, 0, len(voices))
	for name := range voices {
		names = append(names, name)
	}
	return names
}

// optDuration extracts a duration value from a provider Options map. Accepts
// Go duration strings ("30s"). Returns 0 if absent or unparseable.
func optDuration(opts map[string]any, key string) time.Duration {
	s := optString(opts, key)
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		slog.Warn("ignoring unparseable duration option", "key", key, "value", s)
		return 0
	}
	return d
}

// optFloat extracts a float value from a provider Options map.
func optFloat(opts map[string]any, key string) (float64, bool) {
	if opts == nil {
		return 0, false
	}
	switch v := opts[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
