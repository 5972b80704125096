package oggopus

import "errors"

var (
	// ErrInvalidSampleRate is returned when the configured sample rate is not
	// one of 8000, 12000, 16000, 24000 or 48000.
	ErrInvalidSampleRate = errors.New("oggopus: invalid sample rate (must be 8000, 12000, 16000, 24000, or 48000)")

	// ErrInvalidChannels is returned for a channel count that mapping family 0
	// cannot describe.
	ErrInvalidChannels = errors.New("oggopus: invalid channel count (must be 1 or 2)")

	// ErrInvalidFrameSize is returned for a non-positive frame size.
	ErrInvalidFrameSize = errors.New("oggopus: invalid frame size")

	// ErrEncodeFailure wraps any error reported by the encode capability.
	// The original error stays in the chain.
	ErrEncodeFailure = errors.New("oggopus: encode failed")

	// ErrMalformedCodecPrivate is returned when a container-provided ID
	// header is missing, too short or lacks the "OpusHead" magic.
	ErrMalformedCodecPrivate = errors.New("oggopus: malformed codec private data")

	// ErrMalformedCommentBlock is returned when decoding a comment block that
	// is truncated or lacks the "OpusTags" magic.
	ErrMalformedCommentBlock = errors.New("oggopus: malformed comment block")

	// ErrDoubleClose is returned by a second Muxer.Close.
	ErrDoubleClose = errors.New("oggopus: muxer already closed")

	// ErrStateViolation is returned when frames are pushed into a closed muxer.
	ErrStateViolation = errors.New("oggopus: push after close")

	// ErrIncompleteStream reports a session that ended without Close. The
	// packets already written are valid, but the trailing frame and the
	// end-of-stream flag were never committed.
	ErrIncompleteStream = errors.New("oggopus: stream ended before close")
)
