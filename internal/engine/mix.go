package engine

import (
	"context"
	"time"

	"github.com/MrWong99/polyvox/internal/observe"
	"github.com/MrWong99/polyvox/pkg/audio"
	"github.com/MrWong99/polyvox/pkg/types"
)

// styleBaseGains sets how far (in dB) the ambience bed sits below the speech
// for each style at the 50 volume midpoint.
var styleBaseGains = map[types.Style]float64{
	types.StylePodcast:   -25,
	types.StyleCasual:    -20,
	types.StyleDebate:    -28,
	types.StyleInterview: -23,
	types.StyleNatural:   -22,
	types.StyleFormal:    -27,
	types.StyleDramatic:  -18,
}

// pauseBedGain is the base gain for ambience rendered inside pauses, quieter
// than the continuous bed so pauses never out-sing the speech around them.
const pauseBedGain = -30

// mix assembles the final conversation: segments and their trailing pauses
// concatenated in order, style-specific mastering, and an optional ambience
// bed under the whole mix.
func (e *Engine) mix(ctx context.Context, synth synthResult, style types.Style, background bool, volume int) (audio.Clip, error) {
	ctx, span := observe.StartSpan(ctx, "engine.mix")
	defer span.End()
	start := time.Now()
	defer func() {
		e.metrics.MixDuration.Record(ctx, time.Since(start).Seconds())
	}()

	volumeAdjust := float64(volume-50) * 0.3

	parts := make([]audio.Clip, 0, len(synth.clips)*2)
	for i, clip := range synth.clips {
		parts = append(parts, clip.Convert(mixSampleRate, 1))

		pause := synth.pausesAfter[i]
		if pause < 100*time.Millisecond {
			continue
		}
		parts = append(parts, e.pauseFiller(ctx, style, pause, background, volumeAdjust))
	}

	mixed := audio.Concat(parts...)

	switch style {
	case types.StylePodcast:
		mixed = audio.Normalize(mixed)
	case types.StyleDebate:
		mixed = audio.LowPass(audio.HighPass(mixed, 100), 8000)
	}

	if background && e.ambience != nil {
		bed, err := e.ambience.BackgroundFor(ctx, style, mixed.Duration())
		if err != nil {
			e.logger.Warn("background bed generation failed, mixing without it", "error", err)
			return mixed, nil
		}
		gain := styleBaseGains[style] + volumeAdjust
		gain = max(-50, min(-5, gain))
		bed = audio.LoopTo(audio.GainDB(bed, gain), mixed.Duration())
		mixed = audio.Overlay(mixed, bed)
		e.logger.Debug("mixed background ambience", "style", string(style), "gain_db", gain)
	}

	return mixed, nil
}

// pauseFiller renders the gap after a segment: ambience at a reduced gain
// when background sound is on, digital silence otherwise.
func (e *Engine) pauseFiller(ctx context.Context, style types.Style, pause time.Duration, background bool, volumeAdjust float64) audio.Clip {
	if background && e.ambience != nil {
		bed, err := e.ambience.BackgroundFor(ctx, style, pause)
		if err == nil {
			return audio.LoopTo(audio.GainDB(bed.Convert(mixSampleRate, 1), pauseBedGain+volumeAdjust), pause)
		}
		e.logger.Warn("pause ambience generation failed, using silence", "error", err)
	}
	return audio.Silence(pause, mixSampleRate, 1)
}
