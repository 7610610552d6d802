// Package vibevoice provides a TTS provider backed by a locally-running
// VibeVoice inference server via its REST API. It implements the tts.Provider
// interface.
//
// VibeVoice is the only backend that can render a whole multi-speaker turn
// script ("Speaker 0: … Speaker 1: …") in a single call, which produces more
// natural turn-taking than stitching independent utterances. Single-utterance
// requests are also supported.
//
// Typical usage:
//
//	p, err := vibevoice.New("http://localhost:8100",
//	    vibevoice.WithTimeout(2*time.Minute),
//	)
//	clip, err := p.GenerateSpeech(ctx, tts.Request{Text: "Hello", Voice: "en-Alice_woman"})
package vibevoice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/MrWong99/polyvox/pkg/audio"
	"github.com/MrWong99/polyvox/pkg/provider/tts"
	"github.com/MrWong99/polyvox/pkg/types"
)

// Compile-time interface assertion.
var _ tts.Provider = (*Provider)(nil)

const (
	generateEndpoint = "/generate"
	voicesEndpoint   = "/voices"

	// defaultTimeout is generous: VibeVoice renders long multi-speaker scripts
	// in one pass and inference time scales with script length.
	defaultTimeout = 2 * time.Minute
)

// Option is a functional option for configuring a VibeVoice Provider.
type Option func(*Provider)

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithCFGScale sets the classifier-free guidance scale sent with each request.
// Zero (the default) lets the server use its own default.
func WithCFGScale(scale float64) Option {
	return func(p *Provider) {
		p.cfgScale = scale
	}
}

// Provider implements tts.Provider backed by a VibeVoice inference server.
// It is safe for concurrent use.
type Provider struct {
	serverURL  string
	cfgScale   float64
	httpClient *http.Client
}

// New creates a new VibeVoice Provider targeting the inference server at
// serverURL (e.g., "http://localhost:8100"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("vibevoice: serverURL must not be empty")
	}
	p := &Provider{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// generateRequest is the JSON body sent to POST /generate.
type generateRequest struct {
	Text     string   `json:"text"`
	Speakers []string `json:"speakers"`
	CFGScale float64  `json:"cfg_scale,omitempty"`
}

// voicesResponse is the JSON body returned by GET /voices.
type voicesResponse struct {
	Voices []string `json:"voices"`
}

// GenerateSpeech issues one POST /generate call and decodes the WAV response.
//
// For multi-speaker requests the speakers array is ordered by the sorted
// speaker labels of req.SpeakerVoices, matching the "Speaker N" indices in the
// script text. For single utterances the array holds just req.Voice.
func (p *Provider) GenerateSpeech(ctx context.Context, req tts.Request) (audio.Clip, error) {
	if strings.TrimSpace(req.Text) == "" {
		return audio.Clip{}, errors.New("vibevoice: text must not be empty")
	}

	var speakers []string
	if req.MultiSpeaker {
		if len(req.SpeakerVoices) == 0 {
			return audio.Clip{}, errors.New("vibevoice: multi-speaker request without speaker voices")
		}
		labels := make([]string, 0, len(req.SpeakerVoices))
		for label := range req.SpeakerVoices {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			speakers = append(speakers, req.SpeakerVoices[label])
		}
	} else {
		if req.Voice == "" {
			return audio.Clip{}, errors.New("vibevoice: voice must not be empty")
		}
		speakers = []string{req.Voice}
	}

	body := generateRequest{
		Text:     req.Text,
		Speakers: speakers,
		CFGScale: p.cfgScale,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("vibevoice: marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverURL+generateEndpoint, bytes.NewReader(data))
	if err != nil {
		return audio.Clip{}, fmt.Errorf("vibevoice: create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/wav")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("vibevoice: POST %s: %w", generateEndpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity {
		return audio.Clip{}, fmt.Errorf("vibevoice: %w: %v", tts.ErrVoiceNotFound, speakers)
	}
	if resp.StatusCode != http.StatusOK {
		return audio.Clip{}, fmt.Errorf("vibevoice: POST %s returned status %d", generateEndpoint, resp.StatusCode)
	}

	wav, err := io.ReadAll(resp.Body)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("vibevoice: read WAV response: %w", err)
	}
	clip, err := audio.DecodeWAV(wav)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("vibevoice: %w", err)
	}
	return clip, nil
}

// ListVoices retrieves the speaker preset names loaded by the server and maps
// each to a VoiceProfile. All VibeVoice presets can take part in multi-speaker
// synthesis.
func (p *Provider) ListVoices(ctx context.Context) ([]types.VoiceProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.serverURL+voicesEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("vibevoice: create list-voices request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vibevoice: GET %s: %w", voicesEndpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vibevoice: GET %s returned status %d", voicesEndpoint, resp.StatusCode)
	}

	var vr voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("vibevoice: decode voices response: %w", err)
	}

	names := make([]string, len(vr.Voices))
	copy(names, vr.Voices)
	sort.Strings(names)

	profiles := make([]types.VoiceProfile, 0, len(names))
	for _, name := range names {
		profiles = append(profiles, types.VoiceProfile{
			ID:           name,
			Name:         name,
			Provider:     "vibevoice",
			MultiSpeaker: true,
		})
	}
	return profiles, nil
}

// HasVoice reports whether voiceID is a loaded speaker preset.
func (p *Provider) HasVoice(ctx context.Context, voiceID string) (bool, error) {
	voices, err := p.ListVoices(ctx)
	if err != nil {
		return false, err
	}
	for _, v := range voices {
		if v.ID == voiceID {
			return true, nil
		}
	}
	return false, nil
}
