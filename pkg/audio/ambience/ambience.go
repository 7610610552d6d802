// Package ambience synthesises looping background beds for conversation
// mixes: room tone, electrical hum, cafe chatter and similar textures built
// from shaped noise and low-frequency sines. No sample assets are required;
// everything is generated on the fly and cached per style and duration.
package ambience

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/MrWong99/polyvox/internal/observe"
	"github.com/MrWong99/polyvox/pkg/audio"
	"github.com/MrWong99/polyvox/pkg/types"
)

// Generator produces a background bed for a conversation style. The returned
// clip has exactly the requested duration.
type Generator interface {
	BackgroundFor(ctx context.Context, style types.Style, duration time.Duration) (audio.Clip, error)
}

// Synth is the built-in procedural [Generator]. It is safe for concurrent use;
// concurrent requests for the same (style, duration) pair share a single
// synthesis pass.
type Synth struct {
	sampleRate int
	logger     *slog.Logger
	metrics    *observe.Metrics
	rnd        *rand.Rand
	rndMu      sync.Mutex

	group singleflight.Group

	mu    sync.Mutex
	cache map[string]audio.Clip
}

var _ Generator = (*Synth)(nil)

// Option configures a [Synth].
type Option func(*Synth)

// WithSampleRate sets the sample rate of generated beds. Defaults to 24000 Hz.
func WithSampleRate(rate int) Option {
	return func(s *Synth) {
		s.sampleRate = rate
	}
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synth) {
		s.logger = logger
	}
}

// WithRandSource sets the random source used for noise and event placement,
// which makes generated beds reproducible in tests.
func WithRandSource(src rand.Source) Option {
	return func(s *Synth) {
		s.rnd = rand.New(src)
	}
}

// WithMetrics sets the metrics instruments. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Synth) {
		s.metrics = m
	}
}

// NewSynth creates a procedural ambience generator.
func NewSynth(opts ...Option) *Synth {
	s := &Synth{
		sampleRate: 24000,
		logger:     slog.Default(),
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:      make(map[string]audio.Clip),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// environment names the acoustic scene a preset imitates.
type environment string

const (
	envStudio     environment = "studio"
	envOffice     environment = "office"
	envCafe       environment = "cafe"
	envConference environment = "conference"
	envHome       environment = "home"
)

// environmentFor maps a conversation style to its background scene.
func environmentFor(style types.Style) environment {
	switch style {
	case types.StylePodcast, types.StyleDramatic:
		return envStudio
	case types.StyleInterview:
		return envOffice
	case types.StyleDebate, types.StyleFormal:
		return envConference
	case types.StyleCasual:
		return envCafe
	default:
		return envHome
	}
}

// BackgroundFor returns the background bed for a style, generating and caching
// it on first use. Beds for the same environment and duration are shared
// across styles.
func (s *Synth) BackgroundFor(ctx context.Context, style types.Style, duration time.Duration) (audio.Clip, error) {
	if duration <= 0 {
		return audio.Clip{}, fmt.Errorf("ambience: non-positive duration %v", duration)
	}
	if err := ctx.Err(); err != nil {
		return audio.Clip{}, err
	}

	env := environmentFor(style)
	key := fmt.Sprintf("%s:%d", env, duration.Milliseconds())

	s.mu.Lock()
	if clip, ok := s.cache[key]; ok {
		s.mu.Unlock()
		s.metrics.AmbienceCacheHits.Add(ctx, 1,
			metric.WithAttributes(observe.Attr("environment", string(env))))
		return clip, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do(key, func() (any, error) {
		start := time.Now()
		clip := s.generate(env, duration)
		s.logger.Debug("generated ambience bed",
			"environment", string(env),
			"duration", duration,
			"elapsed", time.Since(start))

		s.mu.Lock()
		s.cache[key] = clip
		s.mu.Unlock()
		return clip, nil
	})
	if err != nil {
		return audio.Clip{}, err
	}
	return v.(audio.Clip), nil
}

// generate renders one environment bed of the exact requested duration.
func (s *Synth) generate(env environment, duration time.Duration) audio.Clip {
	var clip audio.Clip
	switch env {
	case envStudio:
		clip = audio.Overlay(s.noise(duration, -35), s.hum(duration, 60, -40))
		clip = audio.Overlay(clip, s.hum(duration, 120, -42))
		clip = audio.LowPass(clip, 8000)
	case envOffice:
		clip = audio.Overlay(s.noise(duration, -32), s.hum(duration, 40, -38))
		clip = audio.Overlay(clip, s.hum(duration, 85, -41))
		clip = s.scatter(clip, s.intn(4)+2, 150*time.Millisecond, -34, 2000)
	case envCafe:
		chatter := audio.LowPass(audio.HighPass(s.noise(duration, -36), 300), 3000)
		clip = audio.Overlay(s.noise(duration, -30), chatter)
		clip = s.scatter(clip, s.intn(6)+3, 80*time.Millisecond, -30, 4000)
	case envConference:
		clip = audio.Overlay(s.noise(duration, -36), s.hum(duration, 50, -40))
		clip = audio.Overlay(clip, s.hum(duration, 100, -43))
		clip = audio.Overlay(clip, s.hum(duration, 150, -45))
	default: // envHome
		clip = audio.LowPass(s.noise(duration, -33), 6000)
		for range s.intn(3) + 1 {
			burst := audio.LowPass(audio.HighPass(s.noiseBurst(400*time.Millisecond, -38), 200), 1000)
			clip = s.overlayAt(clip, burst)
		}
	}
	return audio.LoopTo(clip, duration)
}

// noise renders white noise at the given gain for the full duration.
func (s *Synth) noise(duration time.Duration, gainDB float64) audio.Clip {
	frames := int(int64(duration) * int64(s.sampleRate) / int64(time.Second))
	amp := math.Pow(10, gainDB/20) * 32767
	data := make([]byte, frames*2)
	s.rndMu.Lock()
	for i := range frames {
		v := int16(amp * (s.rnd.Float64()*2 - 1))
		data[2*i] = byte(v)
		data[2*i+1] = byte(v >> 8)
	}
	s.rndMu.Unlock()
	return audio.Clip{Data: data, SampleRate: s.sampleRate, Channels: 1}
}

// noiseBurst is a short noise event used for rustles, clinks and thumps.
func (s *Synth) noiseBurst(d time.Duration, gainDB float64) audio.Clip {
	return s.noise(d, gainDB)
}

// hum renders a steady sine tone, for mains hum and HVAC drones.
func (s *Synth) hum(duration time.Duration, freq, gainDB float64) audio.Clip {
	frames := int(int64(duration) * int64(s.sampleRate) / int64(time.Second))
	amp := math.Pow(10, gainDB/20) * 32767
	data := make([]byte, frames*2)
	for i := range frames {
		v := int16(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(s.sampleRate)))
		data[2*i] = byte(v)
		data[2*i+1] = byte(v >> 8)
	}
	return audio.Clip{Data: data, SampleRate: s.sampleRate, Channels: 1}
}

// scatter overlays count short high-passed noise events at random positions.
func (s *Synth) scatter(base audio.Clip, count int, eventLen time.Duration, gainDB, highPassHz float64) audio.Clip {
	out := base
	for range count {
		event := audio.HighPass(s.noiseBurst(eventLen, gainDB), highPassHz)
		out = s.overlayAt(out, event)
	}
	return out
}

// overlayAt mixes event into base at a random offset.
func (s *Synth) overlayAt(base, event audio.Clip) audio.Clip {
	if base.Empty() || event.Empty() {
		return base
	}
	maxStart := base.Frames() - event.Frames()
	if maxStart <= 0 {
		return audio.Overlay(base, event)
	}
	pad := audio.Silence(time.Duration(s.intn(maxStart))*time.Second/time.Duration(base.SampleRate), base.SampleRate, 1)
	return audio.Overlay(base, audio.Concat(pad, event))
}

func (s *Synth) intn(n int) int {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rnd.Intn(n)
}
