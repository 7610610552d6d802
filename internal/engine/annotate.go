package engine

import (
	"regexp"
	"time"

	"github.com/MrWong99/polyvox/pkg/types"
)

// annotateScript parses the raw script and enhances each turn with emotion,
// pause timing, speaker speech rate and emphasis words, then optionally
// weaves in listener interjections. Returns [ErrEmptyScript] when no turns
// can be parsed.
func (e *Engine) annotateScript(script string, style types.Style, interactions, emotional bool) ([]Segment, error) {
	raw := parseScript(script)
	if len(raw) == 0 {
		return nil, ErrEmptyScript
	}
	e.logger.Debug("parsed conversation script", "segments", len(raw))

	segments := make([]Segment, 0, len(raw))
	previousEmotion := types.EmotionNeutral
	previousSpeaker := ""

	for _, turn := range raw {
		emotion := types.EmotionNeutral
		if emotional {
			emotion = detectEmotion(turn.text, previousEmotion)
		}

		before, after := e.calculatePauses(turn.text, turn.speaker, previousSpeaker, style)

		rate := 1.0
		if profile, ok := e.profiles[turn.speaker]; ok {
			rate = profile.speakingRate
		}

		segments = append(segments, Segment{
			Speaker:       turn.speaker,
			Text:          turn.text,
			Emotion:       emotion,
			PauseBefore:   before,
			PauseAfter:    after,
			SpeechRate:    rate,
			EmphasisWords: emphasisWords(turn.text, emotion),
		})
		previousEmotion = emotion
		previousSpeaker = turn.speaker
	}

	if interactions {
		segments = e.addInterjections(segments, style)
	}
	return segments, nil
}

// Structural emphasis markers.
var (
	allCapsPattern    = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	quotedPattern     = regexp.MustCompile(`"([^"]*)"`)
	starredPattern    = regexp.MustCompile(`\*([^*]*)\*`)
	excitedEmphasis   = regexp.MustCompile(`(?i)\b(amazing|incredible|fantastic|awesome|wow)\b`)
	angryEmphasis     = regexp.MustCompile(`(?i)\b(never|always|completely|absolutely|ridiculous)\b`)
	surprisedEmphasis = regexp.MustCompile(`(?i)\b(really|seriously|what|unbelievable)\b`)
)

// emphasisWords collects words likely to carry emphatic delivery: emotion
// keywords, ALL-CAPS words, quoted phrases and *starred* phrases. Duplicates
// are removed; order follows first appearance.
func emphasisWords(text string, emotion types.Emotion) []string {
	var candidates []string

	switch emotion {
	case types.EmotionExcited:
		candidates = append(candidates, excitedEmphasis.FindAllString(text, -1)...)
	case types.EmotionAngry:
		candidates = append(candidates, angryEmphasis.FindAllString(text, -1)...)
	case types.EmotionSurprised:
		candidates = append(candidates, surprisedEmphasis.FindAllString(text, -1)...)
	}

	candidates = append(candidates, allCapsPattern.FindAllString(text, -1)...)
	for _, m := range quotedPattern.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}
	for _, m := range starredPattern.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}

	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, word := range candidates {
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}

// reactions are the short listener interjections woven between turns.
var reactions = []string{"Mm-hmm", "Right", "Exactly", "Oh", "Wow", "Really?", "I see"}

// addInterjections inserts short reactive turns from the upcoming speaker
// with probability equal to that speaker's interruption likelihood. Formal
// conversations get none.
func (e *Engine) addInterjections(segments []Segment, style types.Style) []Segment {
	if style == types.StyleFormal {
		return segments
	}

	enhanced := make([]Segment, 0, len(segments))
	for i, segment := range segments {
		enhanced = append(enhanced, segment)

		if i >= len(segments)-1 {
			continue
		}
		next := segments[i+1]
		profile, ok := e.profiles[next.Speaker]
		if !ok || e.rnd.Float64() >= profile.interruptionLikelihood {
			continue
		}

		enhanced = append(enhanced, Segment{
			Speaker:     next.Speaker,
			Text:        reactions[e.rnd.Intn(len(reactions))],
			Emotion:     types.EmotionNeutral,
			PauseBefore: 100 * time.Millisecond,
			PauseAfter:  300 * time.Millisecond,
			SpeechRate:  profile.speakingRate * 1.2,
		})
	}
	return enhanced
}
