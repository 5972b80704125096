package resampler

import (
	"errors"
	"io"
)

// frameReader wraps an io.Reader so that every Read returns whole PCM frames.
// Bytes that do not yet complete a frame are carried over to the next call;
// a partial frame left at end of input is dropped.
type frameReader struct {
	r         io.Reader
	frameSize int
	carry     []byte
}

func newSampleReader(r io.Reader, frameSize int) *frameReader {
	return &frameReader{r: r, frameSize: frameSize, carry: make([]byte, 0, frameSize)}
}

// Read returns a multiple of frameSize bytes. It returns io.ErrShortBuffer
// if p cannot hold one frame.
func (fr *frameReader) Read(p []byte) (int, error) {
	if len(p) < fr.frameSize {
		return 0, io.ErrShortBuffer
	}
	p = p[:len(p)/fr.frameSize*fr.frameSize]
	n := copy(p, fr.carry)
	fr.carry = fr.carry[:0]

	rn, err := io.ReadAtLeast(fr.r, p[n:], max(fr.frameSize-n, 1))
	n += rn
	whole := n / fr.frameSize * fr.frameSize
	fr.carry = append(fr.carry, p[whole:n]...)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		if err == io.EOF {
			fr.carry = fr.carry[:0]
		}
		if whole > 0 && err == io.EOF {
			return whole, nil
		}
	}
	return whole, err
}
