// Package config provides the configuration schema, loader, and provider
// registry for the Polyvox conversation synthesiser.
package config

import (
	"time"

	"github.com/MrWong99/polyvox/pkg/types"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Polyvox.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Providers    ProvidersConfig    `yaml:"providers"`
	Conversation ConversationConfig `yaml:"conversation"`
}

// ServerConfig holds logging and observability settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the TCP address serving Prometheus metrics (e.g.,
	// ":9090"). Empty disables the metrics endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each field selects a named provider registered in the
// [Registry].
type ProvidersConfig struct {
	// TTS selects the speech synthesis backend. Required for every build.
	TTS ProviderEntry `yaml:"tts"`

	// LLM selects the script drafting backend. Only needed when scripts are
	// generated from a topic instead of read from a file.
	LLM ProviderEntry `yaml:"llm"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "edge",
	// "vibevoice", "openai").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or
	// nested maps.
	Options map[string]any `yaml:"options"`
}

// ConversationConfig sets defaults for conversation builds. Command-line
// flags override individual fields per run.
type ConversationConfig struct {
	// Style selects pacing, pause timing and mixing treatment.
	Style types.Style `yaml:"style"`

	// NaturalInteractions enables listener interjections between turns.
	NaturalInteractions bool `yaml:"natural_interactions"`

	// EmotionalIntelligence enables per-utterance emotion detection.
	EmotionalIntelligence bool `yaml:"emotional_intelligence"`

	// BackgroundSound mixes a procedural ambience bed under the conversation.
	BackgroundSound bool `yaml:"background_sound"`

	// BackgroundVolume is the ambience loudness on a 10-100 scale.
	// 0 means the 50 midpoint.
	BackgroundVolume int `yaml:"background_volume"`

	// SegmentTimeout bounds a single TTS synthesis call (e.g., "90s").
	// 0 means the engine default.
	SegmentTimeout time.Duration `yaml:"segment_timeout"`

	// Seed fixes the random source driving speaker characteristics, pause
	// jitter and interjection placement. 0 means a time-based seed.
	Seed int64 `yaml:"seed"`

	// SpeakerVoices maps script speaker names to TTS voice IDs.
	SpeakerVoices map[string]string `yaml:"speaker_voices"`
}
