package config_test

import (
	"errors"
	"testing"

	"github.com/MrWong99/polyvox/internal/config"
	"github.com/MrWong99/polyvox/pkg/provider/llm"
	llmmock "github.com/MrWong99/polyvox/pkg/provider/llm/mock"
	"github.com/MrWong99/polyvox/pkg/provider/tts"
	ttsmock "github.com/MrWong99/polyvox/pkg/provider/tts/mock"
)

func TestRegistry_CreateTTS(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	var gotEntry config.ProviderEntry
	reg.RegisterTTS("fake", func(entry config.ProviderEntry) (tts.Provider, error) {
		gotEntry = entry
		return &ttsmock.Provider{}, nil
	})

	entry := config.ProviderEntry{Name: "fake", BaseURL: "http://localhost:7777"}
	p, err := reg.CreateTTS(entry)
	if err != nil {
		t.Fatalf("CreateTTS() error: %v", err)
	}
	if p == nil {
		t.Fatal("CreateTTS() returned nil provider")
	}
	if gotEntry.BaseURL != entry.BaseURL {
		t.Errorf("factory got entry %+v, want %+v", gotEntry, entry)
	}
}

func TestRegistry_CreateLLM(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	reg.RegisterLLM("fake", func(config.ProviderEntry) (llm.Provider, error) {
		return &llmmock.Provider{}, nil
	})

	if _, err := reg.CreateLLM(config.ProviderEntry{Name: "fake"}); err != nil {
		t.Fatalf("CreateLLM() error: %v", err)
	}
}

func TestRegistry_NotRegistered(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	if _, err := reg.CreateTTS(config.ProviderEntry{Name: "ghost"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateTTS() error = %v, want ErrProviderNotRegistered", err)
	}
	if _, err := reg.CreateLLM(config.ProviderEntry{Name: "ghost"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateLLM() error = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistry_OverwriteRegistration(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	first := &ttsmock.Provider{}
	second := &ttsmock.Provider{}
	reg.RegisterTTS("dup", func(config.ProviderEntry) (tts.Provider, error) { return first, nil })
	reg.RegisterTTS("dup", func(config.ProviderEntry) (tts.Provider, error) { return second, nil })

	p, err := reg.CreateTTS(config.ProviderEntry{Name: "dup"})
	if err != nil {
		t.Fatalf("CreateTTS() error: %v", err)
	}
	if p != second {
		t.Error("later registration should overwrite the earlier one")
	}
}
