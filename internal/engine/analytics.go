package engine

import "github.com/MrWong99/polyvox/pkg/types"

// SpeakerStats summarises one speaker's activity across the engine's history.
type SpeakerStats struct {
	// Segments is how many turns the speaker has spoken.
	Segments int

	// AverageSpeechRate is the speaker's sampled speaking-rate multiplier.
	AverageSpeechRate float64

	// DominantEmotion is the speaker's most frequent detected emotion.
	DominantEmotion types.Emotion

	// InterruptionTendency is the speaker's sampled interruption likelihood.
	InterruptionTendency float64
}

// Analytics aggregates everything the engine has built since the last
// [Engine.ClearHistory].
type Analytics struct {
	// TotalSegments counts every annotated segment across all builds.
	TotalSegments int

	// AveragePause is the mean of each segment's combined leading and
	// trailing pause, in seconds.
	AveragePause float64

	// EmotionUsage maps each observed emotion to its fraction of segments.
	EmotionUsage map[types.Emotion]float64

	// SpeakerStats holds per-speaker summaries for the current profile set.
	SpeakerStats map[string]SpeakerStats

	// StyleUsage counts builds per conversation style.
	StyleUsage map[types.Style]int
}

// Analytics computes usage statistics over the accumulated history.
func (e *Engine) Analytics() Analytics {
	a := Analytics{
		TotalSegments: len(e.history),
		EmotionUsage:  make(map[types.Emotion]float64),
		SpeakerStats:  make(map[string]SpeakerStats, len(e.profiles)),
		StyleUsage:    make(map[types.Style]int, len(e.styleUse)),
	}
	for style, n := range e.styleUse {
		a.StyleUsage[style] = n
	}
	if len(e.history) == 0 {
		return a
	}

	var pauseSum float64
	emotionCounts := make(map[types.Emotion]int)
	for _, seg := range e.history {
		pauseSum += (seg.PauseBefore + seg.PauseAfter).Seconds()
		emotionCounts[seg.Emotion]++
	}
	a.AveragePause = pauseSum / float64(len(e.history))
	for emotion, n := range emotionCounts {
		a.EmotionUsage[emotion] = float64(n) / float64(len(e.history))
	}

	for name, profile := range e.profiles {
		var segments []Segment
		for _, seg := range e.history {
			if seg.Speaker == name {
				segments = append(segments, seg)
			}
		}
		a.SpeakerStats[name] = SpeakerStats{
			Segments:             len(segments),
			AverageSpeechRate:    profile.speakingRate,
			DominantEmotion:      dominantEmotion(segments),
			InterruptionTendency: profile.interruptionLikelihood,
		}
	}
	return a
}

// dominantEmotion returns the most frequent emotion in the segments, breaking
// ties by the fixed order of [types.Emotions]. Empty input yields neutral.
func dominantEmotion(segments []Segment) types.Emotion {
	if len(segments) == 0 {
		return types.EmotionNeutral
	}
	counts := make(map[types.Emotion]int)
	for _, seg := range segments {
		counts[seg.Emotion]++
	}
	best := types.EmotionNeutral
	bestCount := 0
	for _, emotion := range types.Emotions() {
		if counts[emotion] > bestCount {
			best = emotion
			bestCount = counts[emotion]
		}
	}
	return best
}
