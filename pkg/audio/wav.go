package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned by DecodeWAV when the input is not a decodable
// RIFF/WAVE container.
var ErrInvalidWAV = errors.New("audio: invalid wav data")

// DecodeWAV parses a WAV container and returns its PCM payload as a Clip.
// Bit depths other than 16 are converted to 16-bit. Returns [ErrInvalidWAV]
// (possibly wrapped) if the container cannot be parsed.
func DecodeWAV(data []byte) (Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return Clip{}, ErrInvalidWAV
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return Clip{}, fmt.Errorf("%w: empty data chunk", ErrInvalidWAV)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	samples := toInt16(buf, bitDepth)

	sampleRate := 16000
	channels := 1
	if buf.Format != nil {
		if buf.Format.SampleRate > 0 {
			sampleRate = buf.Format.SampleRate
		}
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
	}
	return fromSamples(samples, sampleRate, channels), nil
}

// toInt16 converts a decoded PCM buffer of arbitrary bit depth to int16 samples.
func toInt16(buf *gaudio.IntBuffer, bitDepth int) []int16 {
	out := make([]int16, len(buf.Data))
	switch {
	case bitDepth == 16:
		for i, v := range buf.Data {
			out[i] = clampInt16(int32(v))
		}
	case bitDepth < 16:
		shift := uint(16 - bitDepth)
		for i, v := range buf.Data {
			out[i] = clampInt16(int32(v) << shift)
		}
	default:
		shift := uint(bitDepth - 16)
		for i, v := range buf.Data {
			out[i] = int16(v >> shift)
		}
	}
	return out
}

// EncodeWAV wraps the clip's PCM payload in a standard 16-bit PCM WAV
// container. The go-audio encoder requires an io.WriteSeeker, so the header is
// written directly; the payload length is known up front, no seeking needed.
func EncodeWAV(c Clip) []byte {
	const (
		bitsPerSample = 16
		audioFormat   = 1 // PCM
	)
	channels := c.Channels
	if channels <= 0 {
		channels = 1
	}
	sampleRate := c.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	dataSize := uint32(len(c.Data))
	byteRate := uint32(sampleRate * channels * bitsPerSample / 8)
	blockAlign := uint16(channels * bitsPerSample / 8)

	var buf bytes.Buffer
	buf.Grow(44 + len(c.Data))

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36)+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(audioFormat))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(c.Data)

	return buf.Bytes()
}
