package oggopus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"
)

// readFrames is how many frames EncodePCM asks the reader for at once.
const readFrames = 4

// Stats summarizes a finished muxing session.
type Stats struct {
	// Frames is the number of audio frames muxed.
	Frames int

	// Packets is the number of packets written, headers included.
	Packets int64

	// Granule is the final granule position.
	Granule int64
}

// Duration returns the audio duration covered by Granule.
func (s Stats) Duration() time.Duration {
	return time.Duration(s.Granule) * time.Second / GranuleRate
}

// EncodePCM reads 16-bit little-endian interleaved PCM from r until EOF,
// encodes it with enc and writes the resulting Ogg-Opus packets to w.
//
// If ctx is canceled or r fails, the session is abandoned and the returned
// error wraps both the cause and ErrIncompleteStream.
func EncodePCM(ctx context.Context, r io.Reader, enc Encoder, w PacketWriter, cfg Config) (Stats, error) {
	m, err := NewMuxer(cfg)
	if err != nil {
		return Stats{}, err
	}
	cfg = m.Config()

	s := &session{m: m, w: w}
	aligner := NewFrameAligner(cfg.FrameSize, cfg.Channels)
	fe := NewFrameEncoder(enc, cfg.FrameSize)

	encode := func(f AudioFrame) error {
		ef, err := fe.Encode(f)
		if err != nil {
			return err
		}
		return s.push(ef)
	}

	buf := make([]byte, cfg.FrameBytes()*readFrames)
	for {
		if err := ctx.Err(); err != nil {
			return s.abort(err)
		}
		n, rerr := r.Read(buf)
		for _, f := range aligner.Push(buf[:n]) {
			if err := encode(f); err != nil {
				return s.abort(err)
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return s.abort(fmt.Errorf("oggopus: read pcm: %w", rerr))
		}
	}

	if f, ok := aligner.Finish(); ok {
		if err := encode(f); err != nil {
			return s.abort(err)
		}
	}
	return s.close()
}

// MuxFrames writes already-encoded Opus frames to w as one Ogg-Opus stream.
// Each frame's Samples is counted at cfg.SampleRate.
//
// An error yielded by frames, or a canceled ctx, abandons the session the
// same way EncodePCM does.
func MuxFrames(ctx context.Context, frames iter.Seq2[EncodedFrame, error], w PacketWriter, cfg Config) (Stats, error) {
	m, err := NewMuxer(cfg)
	if err != nil {
		return Stats{}, err
	}

	s := &session{m: m, w: w}
	for f, err := range frames {
		if err != nil {
			return s.abort(err)
		}
		if err := ctx.Err(); err != nil {
			return s.abort(err)
		}
		if err := s.push(f); err != nil {
			return s.abort(err)
		}
	}
	return s.close()
}

// session connects a Muxer to a PacketWriter and keeps the counters.
type session struct {
	m     *Muxer
	w     PacketWriter
	stats Stats
}

func (s *session) push(f EncodedFrame) error {
	pkts, err := s.m.PushFrame(f)
	if err != nil {
		return err
	}
	s.stats.Frames++
	return s.write(pkts)
}

func (s *session) write(pkts []Packet) error {
	if err := writePackets(s.w, pkts); err != nil {
		return fmt.Errorf("oggopus: write packet: %w", err)
	}
	s.stats.Packets += int64(len(pkts))
	return nil
}

func (s *session) close() (Stats, error) {
	pkts, err := s.m.Close()
	if err != nil {
		return s.stats, err
	}
	if err := s.write(pkts); err != nil {
		return s.stats, err
	}
	s.stats.Granule = s.m.Granule()
	return s.stats, nil
}

// abort ends a session that never reached Close. The result always wraps
// ErrIncompleteStream, also when no packet was written yet.
func (s *session) abort(cause error) (Stats, error) {
	s.stats.Granule = s.m.Granule()
	_ = s.m.Abandon()
	return s.stats, errors.Join(cause, ErrIncompleteStream)
}
