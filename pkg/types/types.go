// Package types defines the shared types used across all Polyvox packages.
//
// These types form the lingua franca between the conversation engine, the TTS
// providers, and the ambience generator. Each package defines its own domain
// types; cross-cutting data structures live here to avoid circular imports.
package types

// Style is a named conversation preset controlling pause timing, profile
// randomness ranges, and mixing filters.
type Style string

const (
	StyleNatural   Style = "natural"
	StyleInterview Style = "interview"
	StyleDebate    Style = "debate"
	StylePodcast   Style = "podcast"
	StyleCasual    Style = "casual"
	StyleFormal    Style = "formal"
	StyleDramatic  Style = "dramatic"
)

// IsValid reports whether s is a recognised conversation style.
func (s Style) IsValid() bool {
	switch s {
	case StyleNatural, StyleInterview, StyleDebate, StylePodcast,
		StyleCasual, StyleFormal, StyleDramatic:
		return true
	}
	return false
}

// Styles returns all recognised conversation styles in declaration order.
func Styles() []Style {
	return []Style{
		StyleNatural, StyleInterview, StyleDebate, StylePodcast,
		StyleCasual, StyleFormal, StyleDramatic,
	}
}

// Emotion labels the detected emotional tone of a single utterance. It is
// passed to TTS backends as a discrete parameter, never embedded into the
// synthesised text, where markup would be read aloud.
type Emotion string

const (
	EmotionNeutral    Emotion = "neutral"
	EmotionHappy      Emotion = "happy"
	EmotionExcited    Emotion = "excited"
	EmotionSad        Emotion = "sad"
	EmotionAngry      Emotion = "angry"
	EmotionSurprised  Emotion = "surprised"
	EmotionConfused   Emotion = "confused"
	EmotionConfident  Emotion = "confident"
	EmotionNervous    Emotion = "nervous"
	EmotionWhispering Emotion = "whispering"
)

// IsValid reports whether e is a recognised emotion label.
func (e Emotion) IsValid() bool {
	switch e {
	case EmotionNeutral, EmotionHappy, EmotionExcited, EmotionSad,
		EmotionAngry, EmotionSurprised, EmotionConfused, EmotionConfident,
		EmotionNervous, EmotionWhispering:
		return true
	}
	return false
}

// Emotions returns all recognised emotion labels in a fixed order. The order
// is load-bearing: emotion detection breaks score ties by iterating this slice,
// which keeps tie-breaking deterministic across runs.
func Emotions() []Emotion {
	return []Emotion{
		EmotionNeutral, EmotionHappy, EmotionExcited, EmotionSad,
		EmotionAngry, EmotionSurprised, EmotionConfused, EmotionConfident,
		EmotionNervous, EmotionWhispering,
	}
}

// VoiceProfile describes a synthesizable voice in a TTS provider's catalogue.
type VoiceProfile struct {
	// ID is the provider-specific voice identifier (e.g., "en-US-AvaNeural").
	ID string

	// Name is the human-readable voice name.
	Name string

	// Provider identifies which TTS provider this voice belongs to.
	Provider string

	// Gender is the voice gender as reported by the provider, if any.
	Gender string

	// Locale is the BCP-47 locale tag of the voice (e.g., "en-US").
	Locale string

	// MultiSpeaker indicates the voice can take part in a single multi-speaker
	// synthesis call ("Speaker 0: … Speaker 1: …" turn scripts).
	MultiSpeaker bool

	// Metadata holds provider-specific voice attributes (style list, pitch, etc.).
	Metadata map[string]string
}
