package audio

// Convert returns a copy of the clip converted to the target sample rate and
// channel count. If the clip already matches, it is returned unchanged (zero
// allocation). Resampling happens before channel conversion so stereo input is
// never resampled when the target is mono.
func (c Clip) Convert(sampleRate, channels int) Clip {
	if c.SampleRate == sampleRate && c.Channels == channels {
		return c
	}
	out := c
	if out.SampleRate != sampleRate && sampleRate > 0 && out.SampleRate > 0 {
		out = out.resample(sampleRate)
	}
	if out.Channels != channels {
		switch {
		case out.Channels == 1 && channels == 2:
			out = out.monoToStereo()
		case out.Channels == 2 && channels == 1:
			out = out.stereoToMono()
		}
	}
	return out
}

// resample converts the clip to dstRate using linear interpolation, preserving
// the channel count. Interleaved channels are interpolated independently.
func (c Clip) resample(dstRate int) Clip {
	srcFrames := c.Frames()
	if srcFrames == 0 || c.SampleRate == dstRate {
		return Clip{Data: c.Data, SampleRate: dstRate, Channels: c.Channels}
	}
	dstFrames := int(int64(srcFrames) * int64(dstRate) / int64(c.SampleRate))
	if dstFrames == 0 {
		return Clip{SampleRate: dstRate, Channels: c.Channels}
	}

	src := c.samples()
	dst := make([]int16, dstFrames*c.Channels)
	ratio := float64(c.SampleRate) / float64(dstRate)

	for i := range dstFrames {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)
		for ch := range c.Channels {
			s0 := src[idx*c.Channels+ch]
			s1 := s0
			if idx+1 < srcFrames {
				s1 = src[(idx+1)*c.Channels+ch]
			}
			dst[i*c.Channels+ch] = int16(float64(s0)*(1-frac) + float64(s1)*frac)
		}
	}
	return fromSamples(dst, dstRate, c.Channels)
}

// monoToStereo duplicates each mono sample into an L+R pair.
func (c Clip) monoToStereo() Clip {
	src := c.samples()
	dst := make([]int16, len(src)*2)
	for i, v := range src {
		dst[2*i] = v
		dst[2*i+1] = v
	}
	return fromSamples(dst, c.SampleRate, 2)
}

// stereoToMono averages each L+R pair. Uses int32 arithmetic to avoid overflow.
func (c Clip) stereoToMono() Clip {
	src := c.samples()
	frames := len(src) / 2
	dst := make([]int16, frames)
	for i := range frames {
		dst[i] = clampInt16((int32(src[2*i]) + int32(src[2*i+1])) / 2)
	}
	return fromSamples(dst, c.SampleRate, 1)
}
