package tts

import "github.com/MrWong99/polyvox/pkg/types"

// Request describes a single synthesis call.
type Request struct {
	// Text is the plain text to speak. It must not contain SSML or markdown;
	// providers that speak SSML construct it internally and escape Text.
	Text string

	// Voice is the provider-specific voice ID to synthesise with.
	Voice string

	// Emotion is the delivery tone for this utterance. Providers without
	// emotion support ignore it.
	Emotion types.Emotion

	// Speed is the speaking-rate multiplier (1.0 = default). Zero means
	// unspecified and is treated as 1.0.
	Speed float64

	// MultiSpeaker marks Text as a multi-turn script of the form
	// "Speaker 0: … Speaker 1: …". Only providers whose voices report
	// MultiSpeaker support can honour it; others return an error.
	MultiSpeaker bool

	// SpeakerVoices maps script speaker labels (e.g., "Speaker 0") to voice
	// IDs for multi-speaker synthesis. Ignored when MultiSpeaker is false.
	SpeakerVoices map[string]string
}
