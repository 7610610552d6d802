package engine

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/polyvox/pkg/audio"
	"github.com/MrWong99/polyvox/pkg/audio/ambience"
	"github.com/MrWong99/polyvox/pkg/provider/tts"
	"github.com/MrWong99/polyvox/pkg/provider/tts/mock"
	"github.com/MrWong99/polyvox/pkg/types"
)

var testCatalogue = []types.VoiceProfile{
	{ID: "voice-a", Name: "Ava", Provider: "mock"},
	{ID: "voice-b", Name: "Ben", Provider: "mock"},
	{ID: "voice-c", Name: "Cleo", Provider: "mock"},
}

func newTestProvider() *mock.Provider {
	return &mock.Provider{
		GenerateClip:     audio.Silence(500*time.Millisecond, 24000, 1),
		ListVoicesResult: testCatalogue,
	}
}

func newTestEngine(p tts.Provider, opts ...Option) *Engine {
	opts = append([]Option{WithRandSource(rand.NewSource(7))}, opts...)
	return New(p, opts...)
}

func TestCreateConversationTwoSpeakers(t *testing.T) {
	p := newTestProvider()
	e := newTestEngine(p)

	wav, meta, err := e.CreateConversation(context.Background(), Request{
		Script: "Alice: Hello Bob, how have you been?\nBob: Great, thanks for asking!",
		SpeakerVoices: map[string]string{
			"Alice": "voice-a",
			"Bob":   "voice-b",
		},
		Style:                 types.StyleNatural,
		EmotionalIntelligence: true,
	})
	if err != nil {
		t.Fatalf("CreateConversation() error: %v", err)
	}
	if !bytes.HasPrefix(wav, []byte("RIFF")) {
		t.Error("output is not a WAV container")
	}
	if meta.SpeakerCount != 2 {
		t.Errorf("SpeakerCount = %d, want 2", meta.SpeakerCount)
	}
	if meta.WordCount == 0 {
		t.Error("WordCount = 0, want > 0")
	}
	if meta.Duration <= 0 {
		t.Errorf("Duration = %v, want > 0", meta.Duration)
	}

	if len(meta.EmotionDistribution) != len(types.Emotions()) {
		t.Errorf("EmotionDistribution has %d entries, want %d", len(meta.EmotionDistribution), len(types.Emotions()))
	}
	var sum float64
	for _, frac := range meta.EmotionDistribution {
		sum += frac
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("EmotionDistribution sums to %v, want 1", sum)
	}

	// Multi-speaker conversations tag the text with the speaker's sorted
	// ordinal and carry the complete label-to-voice map on every request.
	if len(p.GenerateSpeechCalls) != 2 {
		t.Fatalf("provider got %d synthesis calls, want 2", len(p.GenerateSpeechCalls))
	}
	first := p.GenerateSpeechCalls[0].Req
	second := p.GenerateSpeechCalls[1].Req
	if !first.MultiSpeaker || !second.MultiSpeaker {
		t.Error("requests should be flagged multi-speaker")
	}
	if !strings.HasPrefix(first.Text, "Speaker 0: ") {
		t.Errorf("Alice's text = %q, want Speaker 0 prefix", first.Text)
	}
	if !strings.HasPrefix(second.Text, "Speaker 1: ") {
		t.Errorf("Bob's text = %q, want Speaker 1 prefix", second.Text)
	}
	want := map[string]string{"Speaker 0": "voice-a", "Speaker 1": "voice-b"}
	for _, call := range p.GenerateSpeechCalls {
		if len(call.Req.SpeakerVoices) != len(want) {
			t.Fatalf("SpeakerVoices = %v, want %v", call.Req.SpeakerVoices, want)
		}
		for label, voice := range want {
			if call.Req.SpeakerVoices[label] != voice {
				t.Errorf("SpeakerVoices[%q] = %q, want %q", label, call.Req.SpeakerVoices[label], voice)
			}
		}
	}
}

func TestCreateConversationSingleSpeaker(t *testing.T) {
	p := newTestProvider()
	e := newTestEngine(p)

	_, meta, err := e.CreateConversation(context.Background(), Request{
		Script:        "Narrator: A story in one voice.",
		SpeakerVoices: map[string]string{"Narrator": "voice-c"},
	})
	if err != nil {
		t.Fatalf("CreateConversation() error: %v", err)
	}
	if meta.SpeakerCount != 1 {
		t.Errorf("SpeakerCount = %d, want 1", meta.SpeakerCount)
	}
	if len(p.GenerateSpeechCalls) != 1 {
		t.Fatalf("provider got %d synthesis calls, want 1", len(p.GenerateSpeechCalls))
	}
	req := p.GenerateSpeechCalls[0].Req
	if req.MultiSpeaker {
		t.Error("single-speaker request should not be flagged multi-speaker")
	}
	if req.Voice != "voice-c" {
		t.Errorf("Voice = %q, want voice-c", req.Voice)
	}
	if strings.HasPrefix(req.Text, "Speaker ") {
		t.Errorf("single-speaker text %q should not carry a speaker tag", req.Text)
	}
}

func TestCreateConversationVoiceFallback(t *testing.T) {
	p := newTestProvider()
	e := newTestEngine(p)

	_, _, err := e.CreateConversation(context.Background(), Request{
		Script: "Alice: One.\nBob: Two.",
		SpeakerVoices: map[string]string{
			"Alice": "no-such-voice",
			"Bob":   "also-missing",
		},
	})
	if err != nil {
		t.Fatalf("CreateConversation() error: %v", err)
	}

	// Distinct unresolvable requests rotate through the catalogue: Alice
	// (sorted first) gets the first catalogue voice, Bob the second.
	if got := e.profiles["Alice"].voiceID; got != "voice-a" {
		t.Errorf("Alice fallback voice = %q, want voice-a", got)
	}
	if got := e.profiles["Bob"].voiceID; got != "voice-b" {
		t.Errorf("Bob fallback voice = %q, want voice-b", got)
	}
}

func TestCreateConversationSkipsFailedSegments(t *testing.T) {
	p := newTestProvider()
	p.GenerateFunc = func(_ context.Context, req tts.Request) (audio.Clip, error) {
		if strings.Contains(req.Text, "broken") {
			return audio.Clip{}, errors.New("backend exploded")
		}
		return audio.Silence(500*time.Millisecond, 24000, 1), nil
	}
	e := newTestEngine(p)

	_, meta, err := e.CreateConversation(context.Background(), Request{
		Script: "Alice: This one is broken.\nBob: This one works fine.",
		SpeakerVoices: map[string]string{
			"Alice": "voice-a",
			"Bob":   "voice-b",
		},
	})
	if err != nil {
		t.Fatalf("CreateConversation() error: %v", err)
	}
	// Only Bob's four words survive into the count.
	if meta.WordCount != 4 {
		t.Errorf("WordCount = %d, want 4", meta.WordCount)
	}
}

func TestCreateConversationAllSegmentsFail(t *testing.T) {
	p := newTestProvider()
	p.GenerateErr = errors.New("backend down")
	e := newTestEngine(p)

	_, _, err := e.CreateConversation(context.Background(), Request{
		Script:        "Alice: Hello.\nBob: Hi.",
		SpeakerVoices: map[string]string{"Alice": "voice-a", "Bob": "voice-b"},
	})
	if !errors.Is(err, ErrNoAudio) {
		t.Errorf("CreateConversation() error = %v, want ErrNoAudio", err)
	}
}

func TestCreateConversationEmptyScript(t *testing.T) {
	e := newTestEngine(newTestProvider())

	_, _, err := e.CreateConversation(context.Background(), Request{
		Script:        "no speaker markers anywhere",
		SpeakerVoices: map[string]string{"Alice": "voice-a"},
	})
	if !errors.Is(err, ErrEmptyScript) {
		t.Errorf("CreateConversation() error = %v, want ErrEmptyScript", err)
	}
}

func TestCreateConversationInvalidStyle(t *testing.T) {
	e := newTestEngine(newTestProvider())

	_, _, err := e.CreateConversation(context.Background(), Request{
		Script:        "Alice: Hello.",
		SpeakerVoices: map[string]string{"Alice": "voice-a"},
		Style:         types.Style("freestyle"),
	})
	if !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("CreateConversation() error = %v, want ErrInvalidStyle", err)
	}
}

func TestCreateConversationWithBackground(t *testing.T) {
	p := newTestProvider()
	e := newTestEngine(p, WithAmbience(ambience.NewSynth(ambience.WithRandSource(rand.NewSource(3)))))

	wav, meta, err := e.CreateConversation(context.Background(), Request{
		Script:          "Alice: Welcome to the show.\nBob: Glad to be here.",
		SpeakerVoices:   map[string]string{"Alice": "voice-a", "Bob": "voice-b"},
		Style:           types.StylePodcast,
		BackgroundSound: true,
	})
	if err != nil {
		t.Fatalf("CreateConversation() error: %v", err)
	}
	if len(wav) == 0 || meta.Duration <= 0 {
		t.Errorf("background build produced empty output: %d bytes, %v", len(wav), meta.Duration)
	}
}

func TestAnalyticsAndClearHistory(t *testing.T) {
	e := newTestEngine(newTestProvider())

	_, _, err := e.CreateConversation(context.Background(), Request{
		Script:        "Alice: A question for you?\nBob: An answer for you.",
		SpeakerVoices: map[string]string{"Alice": "voice-a", "Bob": "voice-b"},
		Style:         types.StyleInterview,
	})
	if err != nil {
		t.Fatalf("CreateConversation() error: %v", err)
	}

	a := e.Analytics()
	if a.TotalSegments != 2 {
		t.Errorf("TotalSegments = %d, want 2", a.TotalSegments)
	}
	if a.AveragePause <= 0 {
		t.Errorf("AveragePause = %v, want > 0", a.AveragePause)
	}
	if a.StyleUsage[types.StyleInterview] != 1 {
		t.Errorf("StyleUsage[interview] = %d, want 1", a.StyleUsage[types.StyleInterview])
	}
	var fracs float64
	for _, f := range a.EmotionUsage {
		fracs += f
	}
	if math.Abs(fracs-1) > 1e-9 {
		t.Errorf("EmotionUsage sums to %v, want 1", fracs)
	}
	stats, ok := a.SpeakerStats["Alice"]
	if !ok {
		t.Fatal("SpeakerStats missing Alice")
	}
	if stats.Segments != 1 {
		t.Errorf("Alice segments = %d, want 1", stats.Segments)
	}

	e.ClearHistory()
	cleared := e.Analytics()
	if cleared.TotalSegments != 0 || len(cleared.StyleUsage) != 0 || len(cleared.SpeakerStats) != 0 {
		t.Errorf("Analytics after ClearHistory = %+v, want empty", cleared)
	}
}
