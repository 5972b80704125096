package oggopus

import "fmt"

// Encoder is the compression capability: it turns one fixed-size frame of
// 16-bit little-endian PCM into an Opus packet. frameSize is the number of
// samples per channel.
type Encoder interface {
	EncodeBytes(pcm []byte, frameSize int) ([]byte, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(pcm []byte, frameSize int) ([]byte, error)

// EncodeBytes calls f(pcm, frameSize).
func (f EncoderFunc) EncodeBytes(pcm []byte, frameSize int) ([]byte, error) {
	return f(pcm, frameSize)
}

// FrameEncoder feeds aligned frames to an Encoder and tags each result with
// the sample count of its source frame.
type FrameEncoder struct {
	enc       Encoder
	frameSize int
}

// NewFrameEncoder wraps enc for frames of frameSize samples per channel.
func NewFrameEncoder(enc Encoder, frameSize int) *FrameEncoder {
	return &FrameEncoder{enc: enc, frameSize: frameSize}
}

// Encode compresses f. The encoder always receives a full frame; the result
// keeps f.Samples so a padded final frame reports its true duration.
func (e *FrameEncoder) Encode(f AudioFrame) (EncodedFrame, error) {
	data, err := e.enc.EncodeBytes(f.PCM, e.frameSize)
	if err != nil {
		return EncodedFrame{}, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}
	return EncodedFrame{Data: data, Samples: f.Samples}, nil
}
