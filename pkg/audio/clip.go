// Package audio provides the PCM clip type and the mixing primitives used by
// the conversation engine: format conversion, concatenation, overlay, gain,
// normalisation, simple filtering, and WAV container encode/decode.
//
// All operations work on little-endian 16-bit PCM. Clips are value types; the
// functions in this package never mutate their inputs and always return fresh
// buffers, so clips can be shared freely between goroutines.
package audio

import "time"

// Clip is a buffer of little-endian int16 PCM samples together with its format.
type Clip struct {
	// Data is interleaved little-endian int16 PCM.
	Data []byte

	// SampleRate in Hz (e.g., 24000 for Edge neural voices).
	SampleRate int

	// Channels: 1 for mono, 2 for stereo.
	Channels int
}

// Empty reports whether the clip contains no audio data.
func (c Clip) Empty() bool {
	return len(c.Data) < 2
}

// Frames returns the number of sample frames (samples per channel).
func (c Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Data) / (2 * c.Channels)
}

// Duration returns the playback length of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Silence returns a clip of digital silence with the given duration and format.
func Silence(d time.Duration, sampleRate, channels int) Clip {
	if d < 0 {
		d = 0
	}
	frames := int(int64(d) * int64(sampleRate) / int64(time.Second))
	return Clip{
		Data:       make([]byte, frames*2*channels),
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// samples decodes the clip's raw bytes into int16 samples. A trailing odd byte
// (corrupt input) is dropped.
func (c Clip) samples() []int16 {
	n := len(c.Data) / 2
	out := make([]int16, n)
	for i := range n {
		out[i] = int16(c.Data[2*i]) | int16(c.Data[2*i+1])<<8
	}
	return out
}

// fromSamples re-encodes int16 samples into a clip with the given format.
func fromSamples(s []int16, sampleRate, channels int) Clip {
	data := make([]byte, len(s)*2)
	for i, v := range s {
		data[2*i] = byte(v)
		data[2*i+1] = byte(v >> 8)
	}
	return Clip{Data: data, SampleRate: sampleRate, Channels: channels}
}

// clampInt16 clamps a 32-bit intermediate value into the int16 range.
func clampInt16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
