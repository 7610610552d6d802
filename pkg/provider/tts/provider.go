// Package tts defines the Provider interface for Text-to-Speech backends.
//
// A TTS provider wraps a speech synthesis service (e.g., Microsoft Edge neural
// voices or a local VibeVoice server) and presents a uniform batch interface:
// one GenerateSpeech call per utterance, returning a decoded PCM clip. The
// conversation engine handles pacing, pauses, and mixing itself, so providers
// only need to turn text into audio.
//
// Implementations must be safe for concurrent use.
package tts

import (
	"context"
	"errors"

	"github.com/MrWong99/polyvox/pkg/audio"
	"github.com/MrWong99/polyvox/pkg/types"
)

// ErrVoiceNotFound is returned by GenerateSpeech when the requested voice is
// not part of the provider's catalogue.
var ErrVoiceNotFound = errors.New("tts: voice not found")

// Provider is the abstraction over any TTS backend.
//
// Implementations must be safe for concurrent use; the engine may synthesise
// several segments in parallel.
type Provider interface {
	// GenerateSpeech synthesises a single utterance and returns the decoded PCM
	// clip. Providers should honour req.Emotion and req.Speed where the backend
	// supports them and silently ignore them where it does not; the engine never
	// embeds delivery markup into req.Text.
	//
	// Returns an error wrapping [ErrVoiceNotFound] if req.Voice names a voice
	// the provider does not have.
	GenerateSpeech(ctx context.Context, req Request) (audio.Clip, error)

	// ListVoices returns all voice profiles available from this provider. The
	// list reflects the provider's current catalogue and may change between
	// calls if the underlying service adds or removes voices.
	ListVoices(ctx context.Context) ([]types.VoiceProfile, error)

	// HasVoice reports whether the given voice ID is in the provider's
	// catalogue. It is a cheap membership check used by the engine when
	// resolving speaker assignments; implementations may serve it from a
	// cached catalogue.
	HasVoice(ctx context.Context, voiceID string) (bool, error)
}
