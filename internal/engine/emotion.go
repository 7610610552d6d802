package engine

import (
	"regexp"
	"strings"

	"github.com/MrWong99/polyvox/pkg/types"
)

// emotionPatterns maps each detectable emotion to the text patterns that
// signal it. Neutral and whispering have no patterns; they are reached by the
// fallback and by explicit backend hints respectively.
var emotionPatterns = map[types.Emotion][]*regexp.Regexp{
	types.EmotionExcited: {
		regexp.MustCompile(`\b(wow|amazing|incredible|fantastic|awesome)\b`),
		regexp.MustCompile(`[!]{2,}`),
		regexp.MustCompile(`\b(really|so|very) [a-z]+\b`),
	},
	types.EmotionHappy: {
		regexp.MustCompile(`\b(happy|glad|pleased|delighted|cheerful)\b`),
		regexp.MustCompile(`\b(haha|hehe|lol)\b`),
		regexp.MustCompile(`[😊😄😃😀🙂]`),
	},
	types.EmotionSad: {
		regexp.MustCompile(`\b(sad|disappointed|upset|sorry|unfortunately)\b`),
		regexp.MustCompile(`\b(oh no|that's terrible|how awful)\b`),
	},
	types.EmotionAngry: {
		regexp.MustCompile(`\b(angry|furious|outraged|ridiculous|unacceptable)\b`),
		regexp.MustCompile(`\b(damn|hell|stupid|idiotic)\b`),
	},
	types.EmotionSurprised: {
		regexp.MustCompile(`\b(what|really\?|no way|seriously\?|unbelievable)\b`),
		regexp.MustCompile(`[?!]{2,}`),
	},
	types.EmotionConfused: {
		regexp.MustCompile(`\b(confused|don't understand|what do you mean|huh)\b`),
		regexp.MustCompile(`\b(um|uh|er|well)\b.*[?]`),
	},
	types.EmotionConfident: {
		regexp.MustCompile(`\b(absolutely|definitely|certainly|of course|exactly)\b`),
		regexp.MustCompile(`\b(i know|i'm sure|without doubt)\b`),
	},
	types.EmotionNervous: {
		regexp.MustCompile(`\b(um|uh|er|well|you know|i think maybe)\b`),
		regexp.MustCompile(`\b(not sure|might be|possibly|perhaps)\b`),
	},
}

// detectEmotion scores the text against every emotion's patterns, gives a
// small continuity bonus to the previous utterance's emotion, and returns the
// top-scoring emotion. Ties break by the fixed order of [types.Emotions].
// Without strong evidence (score > 0.5) the result is neutral.
func detectEmotion(text string, previous types.Emotion) types.Emotion {
	lower := strings.ToLower(text)

	scores := make(map[types.Emotion]float64, len(types.Emotions()))
	for emotion, patterns := range emotionPatterns {
		for _, pattern := range patterns {
			scores[emotion] += float64(len(pattern.FindAllString(lower, -1)))
		}
	}

	if previous != types.EmotionNeutral {
		scores[previous] += 0.3
	}

	best := types.EmotionNeutral
	bestScore := 0.0
	for _, emotion := range types.Emotions() {
		if scores[emotion] > bestScore {
			best = emotion
			bestScore = scores[emotion]
		}
	}

	if bestScore > 0.5 {
		return best
	}
	return types.EmotionNeutral
}
