package audio

import (
	"math"
	"time"
)

// Concat joins clips back to back into a single clip. All clips must share the
// format of the first non-empty clip; callers are expected to Convert first.
// Empty clips are skipped.
func Concat(clips ...Clip) Clip {
	var out Clip
	total := 0
	for _, c := range clips {
		if c.Empty() {
			continue
		}
		if out.SampleRate == 0 {
			out.SampleRate = c.SampleRate
			out.Channels = c.Channels
		}
		total += len(c.Data)
	}
	if total == 0 {
		return out
	}
	out.Data = make([]byte, 0, total)
	for _, c := range clips {
		if c.Empty() {
			continue
		}
		out.Data = append(out.Data, c.Data...)
	}
	return out
}

// Overlay mixes bg under fg by sample addition with clamping. The result has
// fg's length and format; bg is converted to fg's format first and truncated
// or zero-padded to fit. This mirrors a DAW "overlay" rather than averaging,
// so the foreground keeps its level and the (already attenuated) background
// sits underneath it.
func Overlay(fg, bg Clip) Clip {
	if fg.Empty() {
		return fg
	}
	if bg.Empty() {
		return fg
	}
	bg = bg.Convert(fg.SampleRate, fg.Channels)

	a := fg.samples()
	b := bg.samples()
	out := make([]int16, len(a))
	for i := range a {
		v := int32(a[i])
		if i < len(b) {
			v += int32(b[i])
		}
		out[i] = clampInt16(v)
	}
	return fromSamples(out, fg.SampleRate, fg.Channels)
}

// GainDB returns a copy of the clip with the given gain applied, in decibels.
// Negative values attenuate, positive values amplify (with clamping).
func GainDB(c Clip, db float64) Clip {
	if c.Empty() || db == 0 {
		return c
	}
	factor := math.Pow(10, db/20)
	src := c.samples()
	out := make([]int16, len(src))
	for i, v := range src {
		out[i] = clampInt16(int32(math.Round(float64(v) * factor)))
	}
	return fromSamples(out, c.SampleRate, c.Channels)
}

// Normalize scales the clip so its peak sits just below full scale, leaving
// 0.1 dB of headroom. A silent clip is returned unchanged.
func Normalize(c Clip) Clip {
	if c.Empty() {
		return c
	}
	src := c.samples()
	var peak int32
	for _, v := range src {
		a := int32(v)
		if a < 0 {
			a = -a
		}
		if a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return c
	}
	target := math.Pow(10, -0.1/20) * 32767
	factor := target / float64(peak)
	out := make([]int16, len(src))
	for i, v := range src {
		out[i] = clampInt16(int32(math.Round(float64(v) * factor)))
	}
	return fromSamples(out, c.SampleRate, c.Channels)
}

// LowPass applies a first-order low-pass filter with the given cutoff
// frequency. Each channel is filtered independently.
func LowPass(c Clip, cutoffHz float64) Clip {
	if c.Empty() || cutoffHz <= 0 || c.SampleRate <= 0 {
		return c
	}
	rc := 1 / (2 * math.Pi * cutoffHz)
	dt := 1 / float64(c.SampleRate)
	alpha := dt / (rc + dt)

	src := c.samples()
	out := make([]int16, len(src))
	prev := make([]float64, c.Channels)
	for i, v := range src {
		ch := i % c.Channels
		y := prev[ch] + alpha*(float64(v)-prev[ch])
		prev[ch] = y
		out[i] = clampInt16(int32(math.Round(y)))
	}
	return fromSamples(out, c.SampleRate, c.Channels)
}

// HighPass applies a first-order high-pass filter with the given cutoff
// frequency. Each channel is filtered independently.
func HighPass(c Clip, cutoffHz float64) Clip {
	if c.Empty() || cutoffHz <= 0 || c.SampleRate <= 0 {
		return c
	}
	rc := 1 / (2 * math.Pi * cutoffHz)
	dt := 1 / float64(c.SampleRate)
	alpha := rc / (rc + dt)

	src := c.samples()
	out := make([]int16, len(src))
	prevX := make([]float64, c.Channels)
	prevY := make([]float64, c.Channels)
	for i, v := range src {
		ch := i % c.Channels
		x := float64(v)
		y := alpha * (prevY[ch] + x - prevX[ch])
		prevX[ch] = x
		prevY[ch] = y
		out[i] = clampInt16(int32(math.Round(y)))
	}
	return fromSamples(out, c.SampleRate, c.Channels)
}

// LoopTo repeats (or truncates) the clip so its duration matches d exactly.
// An empty clip yields silence of the requested duration and format.
func LoopTo(c Clip, d time.Duration) Clip {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return c
	}
	if c.Empty() {
		return Silence(d, c.SampleRate, c.Channels)
	}
	wantFrames := int(int64(d) * int64(c.SampleRate) / int64(time.Second))
	wantBytes := wantFrames * 2 * c.Channels
	if wantBytes <= 0 {
		return Clip{SampleRate: c.SampleRate, Channels: c.Channels}
	}

	data := make([]byte, 0, wantBytes)
	for len(data) < wantBytes {
		remain := wantBytes - len(data)
		if remain >= len(c.Data) {
			data = append(data, c.Data...)
		} else {
			data = append(data, c.Data[:remain]...)
		}
	}
	return Clip{Data: data, SampleRate: c.SampleRate, Channels: c.Channels}
}
