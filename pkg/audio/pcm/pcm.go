package pcm

import (
	"fmt"
	"time"
)

// Depth is the bit depth of every format in this package.
const Depth = 16

// Format describes interleaved signed 16-bit little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// Common formats.
var (
	L16Mono16K   = Format{SampleRate: 16000, Channels: 1}
	L16Mono24K   = Format{SampleRate: 24000, Channels: 1}
	L16Mono48K   = Format{SampleRate: 48000, Channels: 1}
	L16Stereo48K = Format{SampleRate: 48000, Channels: 2}
)

// Validate reports whether the format can describe a real stream.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("pcm: invalid sample rate %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("pcm: invalid channel count %d", f.Channels)
	}
	return nil
}

// FrameBytes returns the size of one sample across all channels.
func (f Format) FrameBytes() int {
	return f.Channels * Depth / 8
}

// Samples returns the number of per-channel samples in the given number of
// bytes.
func (f Format) Samples(bytes int64) int64 {
	return bytes / int64(f.FrameBytes())
}

// SamplesInDuration returns the number of per-channel samples in d.
func (f Format) SamplesInDuration(d time.Duration) int64 {
	return int64(time.Duration(f.SampleRate) * d / time.Second)
}

// BytesInDuration returns the number of bytes in d.
func (f Format) BytesInDuration(d time.Duration) int64 {
	return f.SamplesInDuration(d) * int64(f.FrameBytes())
}

// Duration returns the duration of the given number of bytes.
func (f Format) Duration(bytes int64) time.Duration {
	return time.Duration(f.Samples(bytes)) * time.Second / time.Duration(f.SampleRate)
}

// BytesRate returns the byte rate of the audio data.
func (f Format) BytesRate() int {
	return f.SampleRate * f.FrameBytes()
}

func (f Format) String() string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=%d", f.SampleRate, f.Channels)
}
