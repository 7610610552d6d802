// Package engine implements the multi-speaker conversation builder: it parses
// a speaker-tagged script, annotates each utterance with emotion and natural
// pause timing, synthesises the segments through a TTS provider, and mixes
// the result into a single WAV conversation with optional background
// ambience.
//
// An Engine instance carries per-build speaker profiles and an accumulated
// segment history for analytics. It is not safe for concurrent builds on one
// instance; create one Engine per concurrent pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/MrWong99/polyvox/internal/observe"
	"github.com/MrWong99/polyvox/pkg/audio"
	"github.com/MrWong99/polyvox/pkg/audio/ambience"
	"github.com/MrWong99/polyvox/pkg/provider/tts"
	"github.com/MrWong99/polyvox/pkg/types"
)

// Sentinel errors distinguishing bad input from build failures.
var (
	// ErrEmptyScript is returned when the script yields no parseable segments.
	ErrEmptyScript = errors.New("engine: script contains no conversation segments")

	// ErrInvalidStyle is returned for an unrecognised conversation style.
	ErrInvalidStyle = errors.New("engine: invalid conversation style")

	// ErrNoAudio is returned when every segment failed to synthesise.
	ErrNoAudio = errors.New("engine: no audio segments generated")
)

// mixSampleRate is the target format of the final conversation. Edge voices
// emit 24 kHz mono natively; everything else is converted to match.
const mixSampleRate = 24000

// defaultSegmentTimeout bounds a single TTS synthesis call.
const defaultSegmentTimeout = 60 * time.Second

// Segment is a single annotated utterance of the conversation.
type Segment struct {
	// Speaker is the script speaker name.
	Speaker string

	// Text is the utterance text as parsed (markdown is cleaned at synthesis
	// time, not here, so history keeps the original wording).
	Text string

	// Emotion is the detected delivery tone.
	Emotion types.Emotion

	// PauseBefore is the silence preceding the utterance.
	PauseBefore time.Duration

	// PauseAfter is the silence following the utterance.
	PauseAfter time.Duration

	// SpeechRate is the speaking-rate multiplier for this utterance.
	SpeechRate float64

	// EmphasisWords are words flagged for emphatic delivery. They are carried
	// for analytics and future backends; no markup is ever injected into the
	// synthesised text, where tags would be read aloud.
	EmphasisWords []string
}

// Request describes one conversation build.
type Request struct {
	// Script is the raw speaker-tagged conversation script.
	Script string

	// SpeakerVoices maps script speaker names to TTS voice IDs.
	SpeakerVoices map[string]string

	// Style selects pacing, pause timing and mixing treatment. Empty means
	// StyleNatural.
	Style types.Style

	// NaturalInteractions enables random listener interjections ("Mm-hmm",
	// "Right", …) between turns. Never applied to the formal style.
	NaturalInteractions bool

	// EmotionalIntelligence enables per-utterance emotion detection. When
	// false every segment synthesises as neutral.
	EmotionalIntelligence bool

	// BackgroundSound mixes a procedural ambience bed under the conversation.
	BackgroundSound bool

	// BackgroundVolume is the ambience loudness on a 10-100 scale. Zero means
	// the 50 midpoint. Values outside the scale are clamped.
	BackgroundVolume int
}

// Metadata summarises a built conversation.
type Metadata struct {
	// Duration is the playback length of the final mix.
	Duration time.Duration

	// SpeakerCount is the number of distinct speaker profiles.
	SpeakerCount int

	// WordCount is the total word count of successfully synthesised segments.
	WordCount int

	// EmotionDistribution maps each emotion to its fraction of synthesised
	// segments. The fractions sum to 1.
	EmotionDistribution map[types.Emotion]float64

	// InteractionComplexity scores how interactive the conversation is, 0-1.
	InteractionComplexity float64
}

// Engine builds conversations. Collaborators are injected; the zero value is
// not usable, construct with [New].
type Engine struct {
	tts      tts.Provider
	ambience ambience.Generator
	metrics  *observe.Metrics
	logger   *slog.Logger
	rnd      *rand.Rand

	segmentTimeout time.Duration

	profiles map[string]*speakerProfile
	history  []Segment
	styleUse map[types.Style]int
}

// Option configures an [Engine].
type Option func(*Engine)

// WithAmbience sets the background-bed generator. Without one, background
// sound requests fall back to silence.
func WithAmbience(g ambience.Generator) Option {
	return func(e *Engine) {
		e.ambience = g
	}
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics instruments. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithRandSource sets the random source driving profile sampling, pause
// jitter and interjection placement. Seeding it makes builds reproducible.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) {
		e.rnd = rand.New(src)
	}
}

// WithSegmentTimeout bounds each TTS synthesis call. Zero disables the bound.
// Defaults to 60 s.
func WithSegmentTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.segmentTimeout = d
	}
}

// New creates an Engine synthesising through the given TTS provider.
func New(provider tts.Provider, opts ...Option) *Engine {
	e := &Engine{
		tts:            provider,
		logger:         slog.Default(),
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
		segmentTimeout: defaultSegmentTimeout,
		profiles:       make(map[string]*speakerProfile),
		styleUse:       make(map[types.Style]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	return e
}

// CreateConversation runs the full pipeline for one request and returns the
// mixed conversation as WAV bytes plus its metadata.
//
// Individual segment synthesis failures are logged and skipped; the build
// fails with [ErrNoAudio] only when nothing could be synthesised at all.
func (e *Engine) CreateConversation(ctx context.Context, req Request) ([]byte, Metadata, error) {
	ctx, span := observe.StartSpan(ctx, "conversation.build")
	defer span.End()
	logger := observe.Logger(ctx)

	style := req.Style
	if style == "" {
		style = types.StyleNatural
	}
	if !style.IsValid() {
		return nil, Metadata{}, fmt.Errorf("%w: %q", ErrInvalidStyle, req.Style)
	}
	volume := req.BackgroundVolume
	if volume == 0 {
		volume = 50
	}
	volume = min(100, max(10, volume))

	e.metrics.ActiveBuilds.Add(ctx, 1)
	defer e.metrics.ActiveBuilds.Add(ctx, -1)
	start := time.Now()

	logger.Info("creating conversation",
		"style", string(style),
		"speakers", len(req.SpeakerVoices),
		"interactions", req.NaturalInteractions,
		"background", req.BackgroundSound)

	e.initProfiles(ctx, req.SpeakerVoices, style)

	segments, err := e.annotateScript(req.Script, style, req.NaturalInteractions, req.EmotionalIntelligence)
	if err != nil {
		return nil, Metadata{}, err
	}

	synth := e.synthesizeSegments(ctx, segments, style)
	if len(synth.clips) == 0 {
		return nil, Metadata{}, ErrNoAudio
	}

	mixed, err := e.mix(ctx, synth, style, req.BackgroundSound, volume)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("engine: mix conversation: %w", err)
	}

	meta := Metadata{
		Duration:              mixed.Duration(),
		SpeakerCount:          len(e.profiles),
		WordCount:             synth.wordCount,
		EmotionDistribution:   emotionDistribution(synth.emotionCounts, len(synth.clips)),
		InteractionComplexity: interactionComplexity(segments),
	}

	e.history = append(e.history, segments...)
	e.styleUse[style]++

	e.metrics.BuildDuration.Record(ctx, time.Since(start).Seconds())
	logger.Info("conversation created",
		"elapsed", time.Since(start),
		"duration", meta.Duration,
		"speakers", meta.SpeakerCount,
		"words", meta.WordCount)

	return audio.EncodeWAV(mixed), meta, nil
}

// emotionDistribution converts per-emotion counts into fractions of the
// synthesised segments. Every known emotion appears in the result.
func emotionDistribution(counts map[types.Emotion]int, total int) map[types.Emotion]float64 {
	dist := make(map[types.Emotion]float64, len(types.Emotions()))
	for _, em := range types.Emotions() {
		if total > 0 {
			dist[em] = float64(counts[em]) / float64(total)
		} else {
			dist[em] = 0
		}
	}
	return dist
}

// interactionComplexity scores conversation interactivity in [0,1]: the
// average of speaker-change density, emotional variety, and the density of
// questions and short reactive turns.
func interactionComplexity(segments []Segment) float64 {
	if len(segments) < 2 {
		return 0
	}

	speakerChanges := 0
	emotionsUsed := make(map[types.Emotion]struct{})
	questions := 0
	shortResponses := 0

	previousSpeaker := ""
	for _, seg := range segments {
		if previousSpeaker != "" && seg.Speaker != previousSpeaker {
			speakerChanges++
		}
		emotionsUsed[seg.Emotion] = struct{}{}
		if strings.Contains(seg.Text, "?") {
			questions++
		}
		if len(strings.Fields(seg.Text)) < 5 {
			shortResponses++
		}
		previousSpeaker = seg.Speaker
	}

	n := float64(len(segments))
	speakerVariety := float64(speakerChanges) / n
	emotionVariety := float64(len(emotionsUsed)) / float64(len(types.Emotions()))
	interactionDensity := float64(questions+shortResponses) / n

	return min(1.0, (speakerVariety+emotionVariety+interactionDensity)/3)
}

// ClearHistory drops the accumulated segment history, speaker profiles and
// style usage counters.
func (e *Engine) ClearHistory() {
	e.history = nil
	e.profiles = make(map[string]*speakerProfile)
	e.styleUse = make(map[types.Style]int)
	e.logger.Info("conversation history cleared")
}
