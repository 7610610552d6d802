package engine

import (
	"testing"

	"github.com/MrWong99/polyvox/pkg/types"
)

func TestDetectEmotion(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		previous types.Emotion
		want     types.Emotion
	}{
		{
			name:     "excited keywords",
			text:     "Wow, this is amazing and incredible!",
			previous: types.EmotionNeutral,
			want:     types.EmotionExcited,
		},
		{
			name:     "happy keywords",
			text:     "I'm so glad and pleased, haha",
			previous: types.EmotionNeutral,
			want:     types.EmotionHappy,
		},
		{
			name:     "angry keywords",
			text:     "That is ridiculous and completely unacceptable.",
			previous: types.EmotionNeutral,
			want:     types.EmotionAngry,
		},
		{
			name:     "confident keywords",
			text:     "Absolutely, I'm sure of it. Definitely.",
			previous: types.EmotionNeutral,
			want:     types.EmotionConfident,
		},
		{
			name:     "plain statement stays neutral",
			text:     "The meeting is at three.",
			previous: types.EmotionNeutral,
			want:     types.EmotionNeutral,
		},
		{
			name:     "single keyword passes the gate",
			text:     "wow",
			previous: types.EmotionNeutral,
			want:     types.EmotionExcited,
		},
		{
			name:     "continuity bonus alone is not enough",
			text:     "The meeting is at three.",
			previous: types.EmotionSad,
			want:     types.EmotionNeutral,
		},
		{
			name:     "continuity bonus tips a tie",
			text:     "That is sad, but wow.",
			previous: types.EmotionSad,
			want:     types.EmotionSad,
		},
		{
			name:     "case insensitive",
			text:     "WOW, AMAZING stuff!",
			previous: types.EmotionNeutral,
			want:     types.EmotionExcited,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectEmotion(tt.text, tt.previous); got != tt.want {
				t.Errorf("detectEmotion(%q, %s) = %s, want %s", tt.text, tt.previous, got, tt.want)
			}
		})
	}
}
