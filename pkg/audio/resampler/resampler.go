package resampler

import (
	"fmt"
	"io"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/haivivi/opusmux/pkg/audio/pcm"
)

// chunkFrames is how many source frames are pulled per conversion step.
const chunkFrames = 1024

// Resampler wraps an io.Reader of src-format PCM and produces dst-format PCM.
// It converts the channel layout (mono and stereo only) and then the sample
// rate.
type Resampler struct {
	src    io.Reader
	srcFmt pcm.Format
	dstFmt pcm.Format

	mu       sync.Mutex
	closeErr error
	rs       resampling.Resampler
	readBuf  []byte
	mixBuf   []byte
	floats   []float64
	pending  []byte
}

// New creates a Resampler from srcFmt to dstFmt.
func New(src io.Reader, srcFmt, dstFmt pcm.Format) (*Resampler, error) {
	for _, f := range []pcm.Format{srcFmt, dstFmt} {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if f.Channels > 2 {
			return nil, fmt.Errorf("resampler: unsupported channel count %d", f.Channels)
		}
	}
	r := &Resampler{
		src:     newSampleReader(src, srcFmt.FrameBytes()),
		srcFmt:  srcFmt,
		dstFmt:  dstFmt,
		readBuf: make([]byte, chunkFrames*srcFmt.FrameBytes()),
	}
	if srcFmt.SampleRate != dstFmt.SampleRate {
		rs, err := resampling.New(&resampling.Config{
			InputRate:  float64(srcFmt.SampleRate),
			OutputRate: float64(dstFmt.SampleRate),
			Channels:   dstFmt.Channels,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("resampler: %w", err)
		}
		r.rs = rs
	}
	return r, nil
}

// SrcFormat returns the input format.
func (r *Resampler) SrcFormat() pcm.Format { return r.srcFmt }

// DstFormat returns the output format.
func (r *Resampler) DstFormat() pcm.Format { return r.dstFmt }

// Read fills p with converted audio. It returns whole frames only, so len(p)
// must hold at least one output frame. Not safe for concurrent use with
// itself.
func (r *Resampler) Read(p []byte) (int, error) {
	fb := r.dstFmt.FrameBytes()
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) < fb {
		return 0, io.ErrShortBuffer
	}
	p = p[:len(p)/fb*fb]

	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.pending) == 0 {
		if r.closeErr != nil {
			return 0, r.closeErr
		}
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// fill converts one chunk of source audio into r.pending. A source error is
// recorded as the close error once the converted data has been handed out.
func (r *Resampler) fill() error {
	n, err := r.src.Read(r.readBuf)
	if n > 0 {
		out, cerr := r.convert(r.readBuf[:n])
		if cerr != nil {
			return cerr
		}
		r.pending = out
	}
	if err != nil {
		r.closeErr = err
	}
	return nil
}

func (r *Resampler) convert(b []byte) ([]byte, error) {
	switch {
	case r.srcFmt.Channels == 2 && r.dstFmt.Channels == 1:
		b = pcm.Downmix(b)
	case r.srcFmt.Channels == 1 && r.dstFmt.Channels == 2:
		r.mixBuf = pcm.Upmix(r.mixBuf[:0], b)
		b = r.mixBuf
	}
	if r.rs == nil {
		return append([]byte(nil), b...), nil
	}
	r.floats = pcm.Float64s(r.floats, b)
	out, err := r.rs.Process(r.floats)
	if err != nil {
		return nil, fmt.Errorf("resampler: %w", err)
	}
	// Keep whole output frames; the library returns interleaved samples.
	out = out[:len(out)/r.dstFmt.Channels*r.dstFmt.Channels]
	return pcm.AppendInt16s(nil, out), nil
}

// Close releases the resampler. Subsequent Read calls return
// io.ErrClosedPipe.
func (r *Resampler) Close() error {
	return r.CloseWithError(fmt.Errorf("resampler: %w", io.ErrClosedPipe))
}

// CloseWithError closes the resampler so that subsequent Read calls return
// err. Buffered output is discarded.
func (r *Resampler) CloseWithError(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeErr = err
	r.pending = nil
	r.rs = nil
	return nil
}
