package engine

import (
	"context"
	"sort"

	"github.com/MrWong99/polyvox/pkg/types"
)

// speakerProfile carries the per-speaker delivery characteristics sampled for
// one build.
type speakerProfile struct {
	name                   string
	voiceID                string
	personality            string
	speakingRate           float64
	emotionTendency        types.Emotion
	interruptionLikelihood float64
	pausePreference        float64
}

// personalities are assigned round-robin by speaker ordinal.
var personalities = []string{"energetic", "calm", "authoritative", "friendly", "analytical", "creative"}

// initProfiles rebuilds the speaker profiles for a request. Speakers are
// processed in sorted name order so personality assignment and fallback voice
// rotation are deterministic for a given speaker set.
//
// Requested voice IDs missing from the provider's catalogue are replaced by
// catalogue voices, rotating through the catalogue so distinct speakers get
// distinct fallbacks. When the catalogue itself is unavailable the requested
// ID passes through and synthesis surfaces the error per segment.
func (e *Engine) initProfiles(ctx context.Context, speakerVoices map[string]string, style types.Style) {
	e.profiles = make(map[string]*speakerProfile, len(speakerVoices))

	names := make([]string, 0, len(speakerVoices))
	for name := range speakerVoices {
		names = append(names, name)
	}
	sort.Strings(names)

	var fallbacks []string
	fallbackIndex := 0
	catalogueLoaded := false

	for i, name := range names {
		requested := speakerVoices[name]

		voiceID := requested
		ok, err := e.tts.HasVoice(ctx, requested)
		if err != nil {
			e.logger.Warn("voice catalogue unavailable, using requested voice unchecked",
				"speaker", name, "voice", requested, "error", err)
		} else if !ok {
			if !catalogueLoaded {
				fallbacks = e.fallbackVoices(ctx)
				catalogueLoaded = true
			}
			if len(fallbacks) > 0 {
				voiceID = fallbacks[fallbackIndex%len(fallbacks)]
				fallbackIndex++
				e.logger.Warn("requested voice not found, using fallback",
					"speaker", name, "requested", requested, "fallback", voiceID)
			} else {
				e.logger.Warn("requested voice not found and no fallbacks available",
					"speaker", name, "requested", requested)
			}
		}

		rate, interruption, pausePref := e.sampleCharacteristics(style)
		profile := &speakerProfile{
			name:                   name,
			voiceID:                voiceID,
			personality:            personalities[i%len(personalities)],
			speakingRate:           rate,
			emotionTendency:        types.EmotionNeutral,
			interruptionLikelihood: interruption,
			pausePreference:        pausePref,
		}
		e.profiles[name] = profile

		e.logger.Debug("initialised speaker profile",
			"speaker", name,
			"voice", voiceID,
			"personality", profile.personality,
			"rate", profile.speakingRate)
	}
}

// fallbackVoices returns the provider catalogue's voice IDs, used to replace
// unresolvable voice requests.
func (e *Engine) fallbackVoices(ctx context.Context) []string {
	voices, err := e.tts.ListVoices(ctx)
	if err != nil {
		e.logger.Warn("listing fallback voices failed", "error", err)
		return nil
	}
	ids := make([]string, 0, len(voices))
	for _, v := range voices {
		ids = append(ids, v.ID)
	}
	return ids
}

// sampleCharacteristics draws speaking rate, interruption likelihood and
// pause preference from the style's ranges.
func (e *Engine) sampleCharacteristics(style types.Style) (rate, interruption, pausePref float64) {
	uniform := func(lo, hi float64) float64 {
		return lo + e.rnd.Float64()*(hi-lo)
	}
	switch style {
	case types.StyleDebate:
		return uniform(1.1, 1.3), uniform(0.2, 0.4), uniform(0.5, 0.8)
	case types.StylePodcast:
		return uniform(0.9, 1.1), uniform(0.01, 0.05), uniform(1.2, 1.5)
	case types.StyleCasual:
		return uniform(0.8, 1.2), uniform(0.1, 0.3), uniform(0.8, 1.2)
	default:
		return uniform(0.9, 1.1), uniform(0.05, 0.15), uniform(0.9, 1.1)
	}
}
