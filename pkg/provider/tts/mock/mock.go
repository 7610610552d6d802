// Package mock provides a test double for the tts.Provider interface.
//
// Use Provider to return controlled clips to consumers and to verify the
// requests passed to the TTS backend.
//
// Example:
//
//	p := &mock.Provider{
//	    GenerateClip:     audio.Silence(time.Second, 24000, 1),
//	    ListVoicesResult: []types.VoiceProfile{{ID: "v1", Name: "Alice"}},
//	}
//	clip, _ := p.GenerateSpeech(ctx, tts.Request{Text: "hi", Voice: "v1"})
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/polyvox/pkg/audio"
	"github.com/MrWong99/polyvox/pkg/provider/tts"
	"github.com/MrWong99/polyvox/pkg/types"
)

// GenerateSpeechCall records a single invocation of GenerateSpeech.
type GenerateSpeechCall struct {
	// Ctx is the context passed to GenerateSpeech.
	Ctx context.Context
	// Req is the request passed to GenerateSpeech.
	Req tts.Request
}

// ListVoicesCall records a single invocation of ListVoices.
type ListVoicesCall struct {
	// Ctx is the context passed to ListVoices.
	Ctx context.Context
}

// HasVoiceCall records a single invocation of HasVoice.
type HasVoiceCall struct {
	// Ctx is the context passed to HasVoice.
	Ctx context.Context
	// VoiceID is the voice ID passed to HasVoice.
	VoiceID string
}

// Provider is a mock implementation of tts.Provider.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// GenerateClip is returned by GenerateSpeech when GenerateFunc is nil.
	GenerateClip audio.Clip

	// GenerateErr, if non-nil, is returned as the error from GenerateSpeech.
	GenerateErr error

	// GenerateFunc, if non-nil, computes the GenerateSpeech result per call.
	// It takes precedence over GenerateClip and GenerateErr.
	GenerateFunc func(ctx context.Context, req tts.Request) (audio.Clip, error)

	// ListVoicesResult is returned by ListVoices.
	ListVoicesResult []types.VoiceProfile

	// ListVoicesErr, if non-nil, is returned as the error from ListVoices.
	ListVoicesErr error

	// HasVoiceErr, if non-nil, is returned as the error from HasVoice.
	// When nil, HasVoice answers from ListVoicesResult.
	HasVoiceErr error

	// --- Call records ---

	// GenerateSpeechCalls records every call to GenerateSpeech in order.
	GenerateSpeechCalls []GenerateSpeechCall

	// ListVoicesCalls records every call to ListVoices in order.
	ListVoicesCalls []ListVoicesCall

	// HasVoiceCalls records every call to HasVoice in order.
	HasVoiceCalls []HasVoiceCall
}

// GenerateSpeech records the call and returns the configured clip or error.
func (p *Provider) GenerateSpeech(ctx context.Context, req tts.Request) (audio.Clip, error) {
	p.mu.Lock()
	p.GenerateSpeechCalls = append(p.GenerateSpeechCalls, GenerateSpeechCall{Ctx: ctx, Req: req})
	fn := p.GenerateFunc
	clip, err := p.GenerateClip, p.GenerateErr
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return audio.Clip{}, err
	}
	return clip, nil
}

// ListVoices records the call and returns ListVoicesResult, ListVoicesErr.
func (p *Provider) ListVoices(ctx context.Context) ([]types.VoiceProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListVoicesCalls = append(p.ListVoicesCalls, ListVoicesCall{Ctx: ctx})
	return p.ListVoicesResult, p.ListVoicesErr
}

// HasVoice records the call and answers from ListVoicesResult unless
// HasVoiceErr is set.
func (p *Provider) HasVoice(ctx context.Context, voiceID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.HasVoiceCalls = append(p.HasVoiceCalls, HasVoiceCall{Ctx: ctx, VoiceID: voiceID})
	if p.HasVoiceErr != nil {
		return false, p.HasVoiceErr
	}
	for _, v := range p.ListVoicesResult {
		if v.ID == voiceID {
			return true, nil
		}
	}
	return false, nil
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.GenerateSpeechCalls = nil
	p.ListVoicesCalls = nil
	p.HasVoiceCalls = nil
}

// Ensure Provider implements tts.Provider at compile time.
var _ tts.Provider = (*Provider)(nil)
