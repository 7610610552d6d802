package vibevoice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrWong99/polyvox/pkg/audio"
	"github.com/MrWong99/polyvox/pkg/provider/tts"
)

func TestNewRequiresServerURL(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New(\"\") should fail")
	}
	p, err := New("http://localhost:8100/")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.serverURL != "http://localhost:8100" {
		t.Errorf("serverURL = %q, want trailing slash trimmed", p.serverURL)
	}
}

func TestGenerateSpeech(t *testing.T) {
	wantClip := audio.Silence(500*time.Millisecond, 24000, 1)
	var gotReq generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != generateEndpoint {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(audio.EncodeWAV(wantClip))
	}))
	defer srv.Close()

	p, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	clip, err := p.GenerateSpeech(context.Background(), tts.Request{
		Text:  "Hello world.",
		Voice: "en-Alice_woman",
	})
	if err != nil {
		t.Fatalf("GenerateSpeech() error = %v", err)
	}
	if clip.Duration() != wantClip.Duration() {
		t.Errorf("Duration() = %v, want %v", clip.Duration(), wantClip.Duration())
	}
	if len(gotReq.Speakers) != 1 || gotReq.Speakers[0] != "en-Alice_woman" {
		t.Errorf("speakers = %v", gotReq.Speakers)
	}
}

func TestGenerateSpeechMultiSpeakerOrdersVoices(t *testing.T) {
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write(audio.EncodeWAV(audio.Silence(100*time.Millisecond, 24000, 1)))
	}))
	defer srv.Close()

	p, _ := New(srv.URL)
	_, err := p.GenerateSpeech(context.Background(), tts.Request{
		Text:         "Speaker 0: Hi.\nSpeaker 1: Hello.",
		MultiSpeaker: true,
		SpeakerVoices: map[string]string{
			"Speaker 1": "en-Frank_man",
			"Speaker 0": "en-Alice_woman",
		},
	})
	if err != nil {
		t.Fatalf("GenerateSpeech() error = %v", err)
	}
	want := []string{"en-Alice_woman", "en-Frank_man"}
	if len(gotReq.Speakers) != 2 || gotReq.Speakers[0] != want[0] || gotReq.Speakers[1] != want[1] {
		t.Errorf("speakers = %v, want %v (sorted by label)", gotReq.Speakers, want)
	}
}

func TestGenerateSpeechValidation(t *testing.T) {
	p, _ := New("http://localhost:1")
	tests := []struct {
		name string
		req  tts.Request
	}{
		{"empty text", tts.Request{Voice: "v"}},
		{"no voice", tts.Request{Text: "hi"}},
		{"multi-speaker without voices", tts.Request{Text: "hi", MultiSpeaker: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.GenerateSpeech(context.Background(), tt.req); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGenerateSpeechVoiceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown speaker", http.StatusNotFound)
	}))
	defer srv.Close()

	p, _ := New(srv.URL)
	_, err := p.GenerateSpeech(context.Background(), tts.Request{Text: "hi", Voice: "ghost"})
	if !errors.Is(err, tts.ErrVoiceNotFound) {
		t.Errorf("error = %v, want ErrVoiceNotFound", err)
	}
}

func TestListVoicesAndHasVoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != voicesEndpoint {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"voices":["en-Frank_man","en-Alice_woman"]}`))
	}))
	defer srv.Close()

	p, _ := New(srv.URL)
	voices, err := p.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices() error = %v", err)
	}
	if len(voices) != 2 || voices[0].ID != "en-Alice_woman" {
		t.Errorf("voices = %+v, want sorted list", voices)
	}
	for _, v := range voices {
		if !v.MultiSpeaker {
			t.Errorf("voice %s should report multi-speaker support", v.ID)
		}
	}

	ok, err := p.HasVoice(context.Background(), "en-Frank_man")
	if err != nil || !ok {
		t.Errorf("HasVoice(known) = %v, %v", ok, err)
	}
	ok, err = p.HasVoice(context.Background(), "ghost")
	if err != nil || ok {
		t.Errorf("HasVoice(unknown) = %v, %v", ok, err)
	}
}
