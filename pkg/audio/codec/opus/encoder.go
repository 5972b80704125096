package opus

// For go build: use pkg-config to find system libopus
// For bazel build: cdeps provides opus headers and library

/*
#cgo pkg-config: opus
#include <opus.h>
#include <stdlib.h>

// Wrapper functions for variadic opus_encoder_ctl
static int opus_encoder_set_bitrate(OpusEncoder *enc, opus_int32 bitrate) {
    return opus_encoder_ctl(enc, OPUS_SET_BITRATE(bitrate));
}

static int opus_encoder_set_complexity(OpusEncoder *enc, opus_int32 complexity) {
    return opus_encoder_ctl(enc, OPUS_SET_COMPLEXITY(complexity));
}

static int opus_encoder_get_lookahead(OpusEncoder *enc, opus_int32 *lookahead) {
    return opus_encoder_ctl(enc, OPUS_GET_LOOKAHEAD(lookahead));
}
*/
import "C"
import (
	"errors"
	"fmt"
	"time"
	"unsafe"
)

// Application type constants for encoder initialization.
const (
	// ApplicationVoIP gives best quality at a given bitrate for voice signals.
	ApplicationVoIP = int(C.OPUS_APPLICATION_VOIP)

	// ApplicationAudio gives best quality at a given bitrate for most non-voice signals.
	ApplicationAudio = int(C.OPUS_APPLICATION_AUDIO)

	// ApplicationRestrictedLowdelay configures the minimum possible coding delay.
	ApplicationRestrictedLowdelay = int(C.OPUS_APPLICATION_RESTRICTED_LOWDELAY)
)

// MaxPacketSize is the output buffer size used per encoded packet.
const MaxPacketSize = 4000

// ErrClosed is returned by calls on a closed encoder.
var ErrClosed = errors.New("opus: encoder is closed")

// Encoder wraps a libopus encoder. It is not safe for concurrent use.
type Encoder struct {
	sampleRate int
	channels   int
	cEnc       *C.OpusEncoder
	buf        [MaxPacketSize]byte
}

// NewEncoder creates a new Opus encoder.
//
// Parameters:
//   - sampleRate: Sample rate of input signal (8000, 12000, 16000, 24000, or 48000)
//   - channels: Number of channels (1 or 2)
//   - application: Intended application type (ApplicationVoIP, ApplicationAudio, etc.)
func NewEncoder(sampleRate, channels, application int) (*Encoder, error) {
	var err C.int
	cEnc := C.opus_encoder_create(C.opus_int32(sampleRate), C.int(channels), C.int(application), &err)
	if err != C.OPUS_OK {
		return nil, fmt.Errorf("opus: encoder create failed: %s", C.GoString(C.opus_strerror(err)))
	}
	return &Encoder{
		sampleRate: sampleRate,
		channels:   channels,
		cEnc:       cEnc,
	}, nil
}

// NewVoIPEncoder creates a new Opus encoder optimized for voice.
func NewVoIPEncoder(sampleRate, channels int) (*Encoder, error) {
	return NewEncoder(sampleRate, channels, ApplicationVoIP)
}

// NewAudioEncoder creates a new Opus encoder optimized for music/audio.
func NewAudioEncoder(sampleRate, channels int) (*Encoder, error) {
	return NewEncoder(sampleRate, channels, ApplicationAudio)
}

// Close releases the encoder resources.
func (e *Encoder) Close() {
	if e.cEnc != nil {
		C.opus_encoder_destroy(e.cEnc)
		e.cEnc = nil
	}
}

// Encode encodes frameSize samples per channel of interleaved int16 PCM
// into one Opus packet. The returned slice is freshly allocated.
func (e *Encoder) Encode(pcm []int16, frameSize int) (Packet, error) {
	if e.cEnc == nil {
		return nil, ErrClosed
	}
	if frameSize <= 0 || len(pcm) < frameSize*e.channels {
		return nil, fmt.Errorf("opus: need %d samples, got %d", frameSize*e.channels, len(pcm))
	}

	n := C.opus_encode(e.cEnc,
		(*C.opus_int16)(unsafe.Pointer(&pcm[0])), C.int(frameSize),
		(*C.uchar)(unsafe.Pointer(&e.buf[0])), C.opus_int32(len(e.buf)))
	if n < 0 {
		return nil, fmt.Errorf("opus: encode failed: %s", C.GoString(C.opus_strerror(n)))
	}
	return Packet(e.buf[:n]).Clone(), nil
}

// EncodeBytes encodes little-endian int16 PCM held in a byte slice.
func (e *Encoder) EncodeBytes(pcm []byte, frameSize int) ([]byte, error) {
	if len(pcm) < 2 {
		return nil, fmt.Errorf("opus: need %d samples, got 0", frameSize*e.channels)
	}
	samples := unsafe.Slice((*int16)(unsafe.Pointer(&pcm[0])), len(pcm)/2)
	return e.Encode(samples, frameSize)
}

// SampleRate returns the sample rate of this encoder.
func (e *Encoder) SampleRate() int {
	return e.sampleRate
}

// Channels returns the number of channels of this encoder.
func (e *Encoder) Channels() int {
	return e.channels
}

// SetBitrate sets the target bitrate in bits per second.
func (e *Encoder) SetBitrate(bitrate int) error {
	if e.cEnc == nil {
		return ErrClosed
	}
	ret := C.opus_encoder_set_bitrate(e.cEnc, C.opus_int32(bitrate))
	if ret != C.OPUS_OK {
		return fmt.Errorf("opus: set bitrate failed: %s", C.GoString(C.opus_strerror(ret)))
	}
	return nil
}

// SetComplexity sets the encoder's computational complexity (0-10).
func (e *Encoder) SetComplexity(complexity int) error {
	if e.cEnc == nil {
		return ErrClosed
	}
	ret := C.opus_encoder_set_complexity(e.cEnc, C.opus_int32(complexity))
	if ret != C.OPUS_OK {
		return fmt.Errorf("opus: set complexity failed: %s", C.GoString(C.opus_strerror(ret)))
	}
	return nil
}

// Lookahead returns the encoder delay in samples at the input rate.
func (e *Encoder) Lookahead() (int, error) {
	if e.cEnc == nil {
		return 0, ErrClosed
	}
	var v C.opus_int32
	ret := C.opus_encoder_get_lookahead(e.cEnc, &v)
	if ret != C.OPUS_OK {
		return 0, fmt.Errorf("opus: get lookahead failed: %s", C.GoString(C.opus_strerror(ret)))
	}
	return int(v), nil
}

// FrameSize returns the samples per channel for a frame of duration d.
func (e *Encoder) FrameSize(d time.Duration) int {
	return int(int64(e.sampleRate) * int64(d) / int64(time.Second))
}
