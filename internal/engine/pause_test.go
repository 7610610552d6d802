package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/MrWong99/polyvox/pkg/provider/tts/mock"
	"github.com/MrWong99/polyvox/pkg/types"
)

func newBareEngine() *Engine {
	return New(&mock.Provider{}, WithRandSource(rand.NewSource(42)))
}

func TestCalculatePausesMinimums(t *testing.T) {
	e := newBareEngine()
	// Jitter is random, so check the clamps over many draws.
	for range 200 {
		before, after := e.calculatePauses("Hi.", "Alice", "Bob", types.StyleDebate)
		if before < 100*time.Millisecond {
			t.Fatalf("pause before = %v, want >= 100ms", before)
		}
		if after < 200*time.Millisecond {
			t.Fatalf("pause after = %v, want >= 200ms", after)
		}
	}
}

func TestCalculatePausesSpeakerChange(t *testing.T) {
	e := newBareEngine()

	var sameTotal, changeTotal time.Duration
	const n = 100
	for range n {
		same, _ := e.calculatePauses("Hello.", "Alice", "Alice", types.StylePodcast)
		change, _ := e.calculatePauses("Hello.", "Alice", "Bob", types.StylePodcast)
		sameTotal += same
		changeTotal += change
	}
	// Podcast speaker change base is 1.8s vs 0.2s for the same speaker; jitter
	// of ±0.1s cannot close that gap on average.
	if changeTotal <= sameTotal {
		t.Errorf("speaker change pause (avg %v) should exceed same-speaker pause (avg %v)",
			changeTotal/n, sameTotal/n)
	}
}

func TestCalculatePausesQuestionEscalation(t *testing.T) {
	e := newBareEngine()

	var statement, question time.Duration
	const n = 100
	for range n {
		_, s := e.calculatePauses("I think so.", "Alice", "", types.StyleInterview)
		_, q := e.calculatePauses("Do you think so?", "Alice", "", types.StyleInterview)
		statement += s
		question += q
	}
	// Interview question base is 2.0s vs 0.6s after a plain sentence.
	if question <= statement {
		t.Errorf("question pause (avg %v) should exceed statement pause (avg %v)",
			question/n, statement/n)
	}
}

func TestCalculatePausesThinkingWords(t *testing.T) {
	e := newBareEngine()

	var plain, thinking time.Duration
	const n = 100
	for range n {
		_, p := e.calculatePauses("We should go.", "Alice", "", types.StyleNatural)
		_, th := e.calculatePauses("However, we should go.", "Alice", "", types.StyleNatural)
		plain += p
		thinking += th
	}
	if thinking <= plain {
		t.Errorf("thinking pause (avg %v) should exceed plain pause (avg %v)",
			thinking/n, plain/n)
	}
}

func TestPausesForUnknownStyleFallsBackToNatural(t *testing.T) {
	if pausesFor(types.StyleDramatic) != pauseTables[types.StyleNatural] {
		t.Error("dramatic should use the natural pause table")
	}
	if pausesFor(types.StyleFormal) != pauseTables[types.StyleNatural] {
		t.Error("formal should use the natural pause table")
	}
}

func TestPausePreferenceScalesPauseAfter(t *testing.T) {
	e := newBareEngine()
	e.profiles["Slow"] = &speakerProfile{name: "Slow", pausePreference: 3.0}
	e.profiles["Fast"] = &speakerProfile{name: "Fast", pausePreference: 0.5}

	var slow, fast time.Duration
	const n = 100
	for range n {
		_, s := e.calculatePauses("A sentence.", "Slow", "", types.StyleNatural)
		_, f := e.calculatePauses("A sentence.", "Fast", "", types.StyleNatural)
		slow += s
		fast += f
	}
	if slow <= fast {
		t.Errorf("high pause preference (avg %v) should exceed low preference (avg %v)",
			slow/n, fast/n)
	}
}
