package engine

import (
	"strings"
	"time"

	"github.com/MrWong99/polyvox/pkg/types"
)

// pauseTable holds the base pause lengths (in seconds) for one conversation
// style.
type pauseTable struct {
	sentenceEnd   float64
	comma         float64
	question      float64
	speakerChange float64
	interruption  float64
	thinking      float64
}

// pauseTables defines pacing per style. Formal and dramatic have no table of
// their own and fall back to natural.
var pauseTables = map[types.Style]pauseTable{
	types.StyleNatural: {
		sentenceEnd:   0.8,
		comma:         0.3,
		question:      1.2,
		speakerChange: 1.0,
		interruption:  0.1,
		thinking:      0.5,
	},
	types.StyleInterview: {
		sentenceEnd:   0.6,
		comma:         0.2,
		question:      2.0,
		speakerChange: 1.5,
		interruption:  0.05,
		thinking:      0.8,
	},
	types.StyleDebate: {
		sentenceEnd:   0.4,
		comma:         0.15,
		question:      1.0,
		speakerChange: 0.3,
		interruption:  0.0,
		thinking:      0.2,
	},
	types.StylePodcast: {
		sentenceEnd:   1.0,
		comma:         0.4,
		question:      1.5,
		speakerChange: 1.8,
		interruption:  0.02,
		thinking:      1.0,
	},
	types.StyleCasual: {
		sentenceEnd:   0.5,
		comma:         0.2,
		question:      0.8,
		speakerChange: 0.6,
		interruption:  0.2,
		thinking:      0.4,
	},
}

// thinkingWords trigger an extra thinking pause when they appear in a turn.
var thinkingWords = []string{"however", "therefore", "furthermore", "meanwhile"}

// pausesFor returns the style's pause table, falling back to natural.
func pausesFor(style types.Style) pauseTable {
	if table, ok := pauseTables[style]; ok {
		return table
	}
	return pauseTables[types.StyleNatural]
}

// calculatePauses derives the pause before and after one utterance.
//
// The pause before depends on whether the speaker changed; the pause after
// starts from the sentence-end base and escalates for questions and
// exclamations, picks up a thinking pause for discourse connectives, scales
// by the speaker's pause preference, and gets light random jitter. Minimums
// of 0.1 s before and 0.2 s after always hold.
func (e *Engine) calculatePauses(text, speaker, previousSpeaker string, style types.Style) (before, after time.Duration) {
	table := pausesFor(style)

	pauseBefore := 0.2
	if previousSpeaker != "" && previousSpeaker != speaker {
		pauseBefore = table.speakerChange
	}

	pauseAfter := table.sentenceEnd
	switch {
	case strings.HasSuffix(text, "?"):
		pauseAfter = table.question
	case strings.HasSuffix(text, "!"):
		pauseAfter *= 1.2
	case strings.Contains(text, ","):
		pauseAfter = max(pauseAfter, table.comma)
	}

	lower := strings.ToLower(text)
	for _, word := range thinkingWords {
		if strings.Contains(lower, word) {
			pauseAfter += table.thinking
			break
		}
	}

	if profile, ok := e.profiles[speaker]; ok {
		pauseAfter *= profile.pausePreference
	}

	pauseBefore += e.rnd.Float64()*0.2 - 0.1
	pauseAfter += e.rnd.Float64()*0.4 - 0.2

	pauseBefore = max(0.1, pauseBefore)
	pauseAfter = max(0.2, pauseAfter)

	return seconds(pauseBefore), seconds(pauseAfter)
}

// seconds converts a fractional second count to a Duration.
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
