package oggopus

// FrameAligner reslices arbitrary-length PCM chunks into fixed-size frames,
// carrying partial remainders across calls.
type FrameAligner struct {
	frameSamples int
	channels     int
	frameBytes   int
	leftover     []byte
}

// NewFrameAligner creates an aligner for frames of frameSamples samples per
// channel of 16-bit interleaved PCM.
func NewFrameAligner(frameSamples, channels int) *FrameAligner {
	return &FrameAligner{
		frameSamples: frameSamples,
		channels:     channels,
		frameBytes:   frameSamples * 2 * channels,
	}
}

// FrameBytes returns the byte size of one full frame.
func (a *FrameAligner) FrameBytes() int {
	return a.frameBytes
}

// Buffered returns the number of bytes held back for the next frame.
func (a *FrameAligner) Buffered() int {
	return len(a.leftover)
}

// Push appends b to the pending bytes and returns every full frame that
// can be cut from them. The returned frames do not alias b.
func (a *FrameAligner) Push(b []byte) []AudioFrame {
	total := len(a.leftover) + len(b)
	if total < a.frameBytes {
		a.leftover = append(a.leftover, b...)
		return nil
	}

	frames := make([]AudioFrame, 0, total/a.frameBytes)
	for len(a.leftover)+len(b) >= a.frameBytes {
		pcm := make([]byte, a.frameBytes)
		n := copy(pcm, a.leftover)
		b = b[copy(pcm[n:], b):]
		a.leftover = a.leftover[:0]
		frames = append(frames, AudioFrame{
			PCM:      pcm,
			Samples:  a.frameSamples,
			Channels: a.channels,
		})
	}
	a.leftover = append(a.leftover, b...)
	return frames
}

// Finish returns the final frame, zero-padded to full size. Its Samples is
// the true length of the remainder, so padding never adds duration. It
// returns false if nothing is pending.
func (a *FrameAligner) Finish() (AudioFrame, bool) {
	if len(a.leftover) == 0 {
		return AudioFrame{}, false
	}
	pcm := make([]byte, a.frameBytes)
	copy(pcm, a.leftover)
	samples := len(a.leftover) / (2 * a.channels)
	a.leftover = a.leftover[:0]
	return AudioFrame{
		PCM:      pcm,
		Samples:  samples,
		Channels: a.channels,
	}, true
}
