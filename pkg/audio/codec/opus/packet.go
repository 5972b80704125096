// Package opus encodes PCM with libopus and inspects Opus packets.
//
// Packet parsing follows the table-of-contents byte layout of RFC 6716
// section 3.1:
//
//	 0 1 2 3 4 5 6 7
//	+-+-+-+-+-+-+-+-+
//	| config  |s| c |
//	+-+-+-+-+-+-+-+-+
package opus

import (
	"fmt"
	"slices"
	"time"
)

// Packet is one encoded Opus packet.
type Packet []byte

// Mode is the codec layer a configuration uses.
type Mode byte

const (
	SILK Mode = iota + 1
	Hybrid
	CELT
)

func (m Mode) String() string {
	switch m {
	case SILK:
		return "SILK"
	case Hybrid:
		return "Hybrid"
	case CELT:
		return "CELT"
	}
	return "Invalid"
}

// Bandwidth is the audio bandwidth a configuration codes.
type Bandwidth byte

const (
	Narrowband Bandwidth = iota + 1
	Mediumband
	Wideband
	SuperWideband
	Fullband
)

func (b Bandwidth) String() string {
	switch b {
	case Narrowband:
		return "NB"
	case Mediumband:
		return "MB"
	case Wideband:
		return "WB"
	case SuperWideband:
		return "SWB"
	case Fullband:
		return "FB"
	}
	return "Invalid"
}

// SampleRate returns the effective sample rate for this bandwidth.
func (b Bandwidth) SampleRate() int {
	switch b {
	case Narrowband:
		return 8000
	case Mediumband:
		return 12000
	case Wideband:
		return 16000
	case SuperWideband:
		return 24000
	case Fullband:
		return 48000
	}
	return 0
}

type config struct {
	mode      Mode
	bandwidth Bandwidth
	samples   int // per frame, at 48 kHz
}

// configs is indexed by the 5-bit configuration number.
var configs = func() (t [32]config) {
	silk := []int{480, 960, 1920, 2880}
	celt := []int{120, 240, 480, 960}
	for i := range 4 {
		t[i] = config{SILK, Narrowband, silk[i]}
		t[4+i] = config{SILK, Mediumband, silk[i]}
		t[8+i] = config{SILK, Wideband, silk[i]}
		t[16+i] = config{CELT, Narrowband, celt[i]}
		t[20+i] = config{CELT, Wideband, celt[i]}
		t[24+i] = config{CELT, SuperWideband, celt[i]}
		t[28+i] = config{CELT, Fullband, celt[i]}
	}
	t[12] = config{Hybrid, SuperWideband, 480}
	t[13] = config{Hybrid, SuperWideband, 960}
	t[14] = config{Hybrid, Fullband, 480}
	t[15] = config{Hybrid, Fullband, 960}
	return t
}()

// Config returns the 5-bit configuration number.
func (p Packet) Config() int {
	if len(p) == 0 {
		return 0
	}
	return int(p[0] >> 3)
}

// IsStereo reports whether the stereo flag is set.
func (p Packet) IsStereo() bool {
	return len(p) > 0 && p[0]&0x04 != 0
}

// Mode returns the codec layer, or 0 for an empty packet.
func (p Packet) Mode() Mode {
	if len(p) == 0 {
		return 0
	}
	return configs[p.Config()].mode
}

// Bandwidth returns the coded bandwidth, or 0 for an empty packet.
func (p Packet) Bandwidth() Bandwidth {
	if len(p) == 0 {
		return 0
	}
	return configs[p.Config()].bandwidth
}

// FrameCount returns the number of frames in the packet. Code 3 packets
// carry the count in the second byte; a truncated one yields 0.
func (p Packet) FrameCount() int {
	if len(p) == 0 {
		return 0
	}
	switch p[0] & 0x03 {
	case 0:
		return 1
	case 1, 2:
		return 2
	}
	if len(p) < 2 {
		return 0
	}
	return int(p[1] & 0x3f)
}

// Samples returns the number of samples per channel the packet decodes to
// at 48 kHz.
func (p Packet) Samples() int {
	if len(p) == 0 {
		return 0
	}
	return configs[p.Config()].samples * p.FrameCount()
}

// Duration returns the audio duration of the packet.
func (p Packet) Duration() time.Duration {
	return time.Duration(p.Samples()) * time.Second / 48000
}

// Clone returns a copy of the packet.
func (p Packet) Clone() Packet {
	return slices.Clone(p)
}

func (p Packet) String() string {
	if len(p) == 0 {
		return "opus: empty packet"
	}
	return fmt.Sprintf("opus: %s %s stereo=%v frames=%d %s",
		p.Mode(), p.Bandwidth(), p.IsStereo(), p.FrameCount(), p.Duration())
}
