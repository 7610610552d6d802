// Package edge provides a TTS provider backed by the Microsoft Edge neural
// voice service. It implements the tts.Provider interface.
//
// Synthesis runs over the service's WebSocket protocol: a speech.config
// message selects the output format, an SSML message carries the utterance,
// and the service streams binary frames whose payloads are raw PCM. The
// provider requests raw-24khz-16bit-mono-pcm so no container decoding is
// needed. The voice catalogue comes from the service's voices/list endpoint
// and is cached for HasVoice lookups.
package edge

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/MrWong99/polyvox/pkg/audio"
	"github.com/MrWong99/polyvox/pkg/provider/tts"
	"github.com/MrWong99/polyvox/pkg/types"
)

// Compile-time interface assertion.
var _ tts.Provider = (*Provider)(nil)

const (
	trustedClientToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	wsEndpoint         = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1?TrustedClientToken=" + trustedClientToken
	voicesEndpoint     = "https://speech.platform.bing.com/consumer/speech/synthesize/readaloud/voices/list?trustedclienttoken=" + trustedClientToken

	// outputFormat selects headerless PCM so frames can be concatenated directly.
	outputFormat = "raw-24khz-16bit-mono-pcm"

	outputSampleRate = 24000
	defaultVoice     = "en-US-AvaNeural"
	defaultTimeout   = 30 * time.Second

	// voiceCacheTTL bounds how long the catalogue is served from memory.
	voiceCacheTTL = time.Hour
)

// Option is a functional option for configuring an edge Provider.
type Option func(*Provider)

// WithTimeout sets the per-synthesis timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.timeout = d
	}
}

// WithHTTPClient sets the HTTP client used for the voice catalogue endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// WithEndpoints overrides the WebSocket and voice-list endpoints. Intended for
// tests pointing at a local stub server.
func WithEndpoints(wsURL, voicesURL string) Option {
	return func(p *Provider) {
		p.wsURL = wsURL
		p.voicesURL = voicesURL
	}
}

// Provider implements tts.Provider backed by the Edge neural voice service.
// It is safe for concurrent use; each GenerateSpeech call opens its own
// WebSocket connection.
type Provider struct {
	wsURL      string
	voicesURL  string
	timeout    time.Duration
	httpClient *http.Client

	mu           sync.Mutex
	voices       []types.VoiceProfile
	voicesLoaded time.Time
}

// New creates a new Edge Provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		wsURL:      wsEndpoint,
		voicesURL:  voicesEndpoint,
		timeout:    defaultTimeout,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// emotionStyle maps an utterance emotion to the express-as style name the
// neural voices understand. Unmapped emotions synthesise with the default
// delivery.
func emotionStyle(e types.Emotion) string {
	switch e {
	case types.EmotionHappy:
		return "cheerful"
	case types.EmotionExcited:
		return "excited"
	case types.EmotionSad:
		return "sad"
	case types.EmotionAngry:
		return "angry"
	case types.EmotionConfused:
		return "empathetic"
	case types.EmotionNervous:
		return "embarrassed"
	case types.EmotionWhispering:
		return "whispering"
	default:
		return ""
	}
}

// GenerateSpeech synthesises one utterance over a fresh WebSocket connection.
// The emotion and speed are rendered as SSML attributes by the provider; the
// caller's text is XML-escaped and never interpreted as markup.
func (p *Provider) GenerateSpeech(ctx context.Context, req tts.Request) (audio.Clip, error) {
	if req.MultiSpeaker {
		return audio.Clip{}, errors.New("edge: multi-speaker synthesis is not supported")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return audio.Clip{}, errors.New("edge: text must not be empty")
	}
	voice := req.Voice
	if voice == "" {
		voice = defaultVoice
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, p.wsURL, nil)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("edge: dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")
	conn.SetReadLimit(1 << 24)

	if err := conn.Write(ctx, websocket.MessageText, speechConfigMessage()); err != nil {
		return audio.Clip{}, fmt.Errorf("edge: send speech.config: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, ssmlMessage(buildSSML(text, voice, req))); err != nil {
		return audio.Clip{}, fmt.Errorf("edge: send ssml: %w", err)
	}

	var pcm []byte
	for {
		msgType, msg, err := conn.Read(ctx)
		if err != nil {
			return audio.Clip{}, fmt.Errorf("edge: read: %w", err)
		}
		switch msgType {
		case websocket.MessageText:
			if strings.Contains(string(msg), "Path:turn.end") {
				if len(pcm) == 0 {
					return audio.Clip{}, errors.New("edge: synthesis produced no audio")
				}
				return audio.Clip{Data: pcm, SampleRate: outputSampleRate, Channels: 1}, nil
			}
		case websocket.MessageBinary:
			payload, ok := binaryAudioPayload(msg)
			if ok {
				pcm = append(pcm, payload...)
			}
		}
	}
}

// speechConfigMessage builds the Path:speech.config frame selecting the
// output format.
func speechConfigMessage() []byte {
	cfg := map[string]any{
		"context": map[string]any{
			"synthesis": map[string]any{
				"audio": map[string]any{
					"metadataoptions": map[string]any{
						"sentenceBoundaryEnabled": "false",
						"wordBoundaryEnabled":     "false",
					},
					"outputFormat": outputFormat,
				},
			},
		},
	}
	body, _ := json.Marshal(cfg)
	var b strings.Builder
	b.WriteString("X-Timestamp:" + time.Now().UTC().Format(time.RFC1123) + "\r\n")
	b.WriteString("Content-Type:application/json; charset=utf-8\r\n")
	b.WriteString("Path:speech.config\r\n\r\n")
	b.Write(body)
	return []byte(b.String())
}

// ssmlMessage wraps an SSML document in the Path:ssml frame headers.
func ssmlMessage(ssml string) []byte {
	var b strings.Builder
	b.WriteString("X-RequestId:" + requestID() + "\r\n")
	b.WriteString("X-Timestamp:" + time.Now().UTC().Format(time.RFC1123) + "\r\n")
	b.WriteString("Content-Type:application/ssml+xml\r\n")
	b.WriteString("Path:ssml\r\n\r\n")
	b.WriteString(ssml)
	return []byte(b.String())
}

// buildSSML renders the utterance. Emotion becomes an express-as style,
// speed a prosody rate percentage; the text itself is escaped.
func buildSSML(text, voice string, req tts.Request) string {
	var escaped strings.Builder
	xml.EscapeText(&escaped, []byte(text))
	inner := escaped.String()

	if style := emotionStyle(req.Emotion); style != "" {
		inner = fmt.Sprintf(`<mstts:express-as style="%s">%s</mstts:express-as>`, style, inner)
	}
	if req.Speed > 0 && req.Speed != 1.0 {
		inner = fmt.Sprintf(`<prosody rate="%+d%%">%s</prosody>`, int((req.Speed-1)*100), inner)
	}
	return fmt.Sprintf(
		`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xmlns:mstts="https://www.w3.org/2001/mstts" xml:lang="en-US"><voice name="%s">%s</voice></speak>`,
		voice, inner)
}

// binaryAudioPayload splits a binary frame into its header block and payload
// and returns the payload if the headers mark it as audio. The first two
// bytes are the big-endian header length.
func binaryAudioPayload(msg []byte) ([]byte, bool) {
	if len(msg) < 2 {
		return nil, false
	}
	headerLen := int(binary.BigEndian.Uint16(msg[:2]))
	if len(msg) < 2+headerLen {
		return nil, false
	}
	headers := string(msg[2 : 2+headerLen])
	if !strings.Contains(headers, "Path:audio") {
		return nil, false
	}
	return msg[2+headerLen:], true
}

func requestID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// ---- ListVoices ----

// edgeVoice is a single entry from the voices/list endpoint.
type edgeVoice struct {
	Name           string `json:"Name"`
	ShortName      string `json:"ShortName"`
	Gender         string `json:"Gender"`
	Locale         string `json:"Locale"`
	FriendlyName   string `json:"FriendlyName"`
	VoicePersonali string `json:"VoicePersonality,omitempty"`
}

// ListVoices returns the Edge neural voice catalogue. Results are cached for
// an hour; a fetch failure falls back to the stale cache when one exists.
func (p *Provider) ListVoices(ctx context.Context) ([]types.VoiceProfile, error) {
	p.mu.Lock()
	if p.voices != nil && time.Since(p.voicesLoaded) < voiceCacheTTL {
		cached := p.voices
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.voicesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("edge: create list-voices request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return p.staleOr(fmt.Errorf("edge: GET voices/list: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return p.staleOr(fmt.Errorf("edge: GET voices/list returned status %d", resp.StatusCode))
	}

	var raw []edgeVoice
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return p.staleOr(fmt.Errorf("edge: decode voices/list: %w", err))
	}

	profiles := make([]types.VoiceProfile, 0, len(raw))
	for _, v := range raw {
		name := v.FriendlyName
		if name == "" {
			name = v.ShortName
		}
		profiles = append(profiles, types.VoiceProfile{
			ID:       v.ShortName,
			Name:     name,
			Provider: "edge",
			Gender:   v.Gender,
			Locale:   v.Locale,
		})
	}

	p.mu.Lock()
	p.voices = profiles
	p.voicesLoaded = time.Now()
	p.mu.Unlock()
	return profiles, nil
}

// staleOr returns the stale cached catalogue if one exists, else err.
func (p *Provider) staleOr(err error) ([]types.VoiceProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.voices != nil {
		return p.voices, nil
	}
	return nil, err
}

// HasVoice reports whether voiceID is in the (cached) catalogue.
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
