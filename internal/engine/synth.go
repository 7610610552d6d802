package engine

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/MrWong99/polyvox/internal/observe"
	"github.com/MrWong99/polyvox/pkg/audio"
	"github.com/MrWong99/polyvox/pkg/provider/tts"
	"github.com/MrWong99/polyvox/pkg/types"
)

// synthResult accumulates the per-segment synthesis outcome: each clip is
// paired with the pause that follows it.
type synthResult struct {
	clips         []audio.Clip
	pausesAfter   []time.Duration
	wordCount     int
	emotionCounts map[types.Emotion]int
}

// synthesizeSegments renders every annotated segment through the TTS
// provider. A failing segment is logged, counted and skipped; the remaining
// segments still make it into the conversation.
func (e *Engine) synthesizeSegments(ctx context.Context, segments []Segment, style types.Style) synthResult {
	result := synthResult{
		emotionCounts: make(map[types.Emotion]int),
	}

	for i, segment := range segments {
		logger := e.logger.With("segment", i+1, "speaker", segment.Speaker, "emotion", string(segment.Emotion))

		clip, err := e.synthesizeSegment(ctx, segment)
		if err != nil {
			logger.Error("segment synthesis failed, skipping", "error", err)
			e.metrics.RecordSegment(ctx, "tts", "failed")
			continue
		}
		e.metrics.RecordSegment(ctx, "tts", "ok")

		result.clips = append(result.clips, clip)
		result.pausesAfter = append(result.pausesAfter, segment.PauseAfter)
		result.wordCount += len(strings.Fields(segment.Text))
		result.emotionCounts[segment.Emotion]++
	}

	return result
}

// synthesizeSegment renders one segment. In multi-speaker conversations the
// cleaned text is tagged with the speaker's deterministic index and the
// request carries the full label-to-voice map, so providers that render whole
// scripts keep speaker assignments consistent across segments.
func (e *Engine) synthesizeSegment(ctx context.Context, segment Segment) (audio.Clip, error) {
	ctx, span := observe.StartSpan(ctx, "engine.synthesize")
	defer span.End()
	if e.segmentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.segmentTimeout)
		defer cancel()
	}
	start := time.Now()
	defer func() {
		e.metrics.SynthesisDuration.Record(ctx, time.Since(start).Seconds())
	}()

	text := CleanMarkdown(segment.Text)
	if text == "" {
		return audio.Clip{}, fmt.Errorf("segment text empty after markdown cleaning")
	}

	voiceID := segment.Speaker
	if profile, ok := e.profiles[segment.Speaker]; ok {
		voiceID = profile.voiceID
	}

	req := tts.Request{
		Text:    text,
		Voice:   voiceID,
		Emotion: segment.Emotion,
		Speed:   segment.SpeechRate,
	}

	if len(e.profiles) > 1 {
		names := make([]string, 0, len(e.profiles))
		for name := range e.profiles {
			names = append(names, name)
		}
		sort.Strings(names)

		index := 0
		speakerVoices := make(map[string]string, len(names))
		for i, name := range names {
			if name == segment.Speaker {
				index = i
			}
			speakerVoices[fmt.Sprintf("Speaker %d", i)] = e.profiles[name].voiceID
		}

		req.Text = fmt.Sprintf("Speaker %d: %s", index, text)
		req.MultiSpeaker = true
		req.SpeakerVoices = speakerVoices
	}

	clip, err := e.tts.GenerateSpeech(ctx, req)
	if err != nil {
		return audio.Clip{}, err
	}
	if clip.Empty() {
		return audio.Clip{}, fmt.Errorf("provider returned empty audio")
	}
	return clip, nil
}

// Markdown cleaning patterns, applied in order.
var markdownRules = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), "$1"},         // **bold**
	{regexp.MustCompile(`\*([^*]+)\*`), "$1"},             // *italic*
	{regexp.MustCompile(`__([^_]+)__`), "$1"},             // __bold__
	{regexp.MustCompile(`_([^_]+)_`), "$1"},               // _italic_
	{regexp.MustCompile(`#{1,6}\s+`), ""},                 // headers, also mid-line
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},   // [text](url)
	{regexp.MustCompile("(?s)```[^`]*```"), ""},           // fenced code
	{regexp.MustCompile("`([^`]+)`"), "$1"},               // inline code
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},          // bullet markers
	{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},          // numbered markers
	{regexp.MustCompile(`(?m)^>\s+`), ""},                 // blockquotes
	{regexp.MustCompile(`(?m)^[-*_]{3,}$`), ""},           // horizontal rules
	{regexp.MustCompile(`<[^>]+>`), ""},                   // HTML tags
	{regexp.MustCompile(`\n\s*\n`), " "},                  // paragraph breaks
	{regexp.MustCompile(`\s+`), " "},                      // whitespace runs
}

// CleanMarkdown strips markdown and HTML formatting that TTS engines would
// otherwise read aloud, keeping only the spoken text. Cleaning is idempotent:
// applying it to already-clean text returns the text unchanged.
func CleanMarkdown(text string) string {
	cleaned := text
	for _, rule := range markdownRules {
		cleaned = rule.pattern.ReplaceAllString(cleaned, rule.repl)
	}
	return strings.TrimSpace(cleaned)
}
