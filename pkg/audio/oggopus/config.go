package oggopus

import (
	"fmt"
	"slices"
)

const (
	// GranuleRate is the reference clock of Ogg-Opus granule positions.
	GranuleRate = 48000

	// DefaultPreSkip is the pre-skip written into generated ID headers.
	// RFC 7845 §5.1 recommends 80ms (3840 samples at 48kHz).
	DefaultPreSkip = 3840

	// DefaultVendor is used when Config.Vendor is empty.
	DefaultVendor = "opusmux"

	// defaultFrameMillis is the frame duration used when Config.FrameSize
	// is zero.
	defaultFrameMillis = 40
)

// SampleRates lists the input sample rates libopus accepts.
var SampleRates = []int{8000, 12000, 16000, 24000, 48000}

// Config describes one muxing session.
type Config struct {
	// SampleRate is the input sample rate in Hz.
	SampleRate int

	// Channels is the number of interleaved channels.
	Channels int

	// FrameSize is the number of samples per channel in one encoder frame.
	// Zero selects 40ms at SampleRate.
	FrameSize int

	// Vendor is written into the comment header. Empty selects DefaultVendor.
	Vendor string

	// Comments are written into the comment header in order. Pairs whose
	// value is nil are skipped.
	Comments []Comment

	// FlushPackets forces every data packet onto its own page. Header packets
	// are paged as RFC 7845 requires regardless of this setting.
	FlushPackets bool
}

// Defaults returns a copy of c with zero fields filled in.
func (c Config) Defaults() Config {
	if c.SampleRate == 0 {
		c.SampleRate = GranuleRate
	}
	if c.Channels == 0 {
		c.Channels = 1
	}
	if c.FrameSize == 0 {
		c.FrameSize = c.SampleRate * defaultFrameMillis / 1000
	}
	if c.Vendor == "" {
		c.Vendor = DefaultVendor
	}
	return c
}

// Validate checks the configuration against what a mapping family 0 stream
// can carry.
func (c Config) Validate() error {
	if !slices.Contains(SampleRates, c.SampleRate) {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, c.SampleRate)
	}
	if c.Channels < 1 || c.Channels > 2 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, c.Channels)
	}
	if c.FrameSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFrameSize, c.FrameSize)
	}
	return nil
}

// FrameBytes returns the byte size of one full 16-bit PCM frame.
func (c Config) FrameBytes() int {
	return c.FrameSize * 2 * c.Channels
}

// CommentBlock returns the comment block described by the configuration.
func (c Config) CommentBlock() CommentBlock {
	return CommentBlock{Vendor: c.Vendor, Comments: c.Comments}
}

// granuleDelta scales a sample count at rate to the 48kHz reference clock.
func granuleDelta(samples, rate int) int64 {
	return int64(samples) * GranuleRate / int64(rate)
}
