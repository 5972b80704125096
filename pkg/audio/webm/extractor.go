package webm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/haivivi/opusmux/pkg/audio/codec/ebml"
	"github.com/haivivi/opusmux/pkg/audio/oggopus"
)

// FrameSize is the duration, in 48kHz samples, assumed for every Opus block.
// WebM does not state it per block; 20ms is what browsers record.
const FrameSize = 960

// OpusCodecID is the Matroska codec ID of Opus tracks.
const OpusCodecID = "A_OPUS"

// trackTypeAudio is the Matroska TrackType value of audio tracks.
const trackTypeAudio = 2

// ErrNoAudio is returned when a Segment ends without any Opus block.
var ErrNoAudio = errors.New("webm: no opus audio in segment")

type trackEntry struct {
	number       uint64
	trackType    uint64
	codecID      string
	channels     int
	codecPrivate []byte
}

// Extractor re-muxes the Opus track of a WebM stream into Ogg-Opus packets.
//
// It is a state machine driven by EBML events: Handle takes one event and
// returns the packets it completes. Each block is held until the next
// block or a DiscardPadding decides its duration.
type Extractor struct {
	cfg   oggopus.Config
	muxer *oggopus.Muxer

	entry    trackEntry // TrackEntry being read, or the latched values
	track    trackEntry
	hasTrack bool
	isOpus   bool

	pending    []byte
	hasPending bool
	frames     int
	ended      bool
}

// NewExtractor creates an extractor. cfg supplies the vendor, comments and
// paging options; the sample rate and frame size are fixed by WebM Opus.
func NewExtractor(cfg oggopus.Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Frames returns the number of frames handed to the muxer.
func (x *Extractor) Frames() int {
	return x.frames
}

// Ended reports whether the Segment end has been seen.
func (x *Extractor) Ended() bool {
	return x.ended
}

// Granule returns the muxer's granule position, or 0 before the first block.
func (x *Extractor) Granule() int64 {
	if x.muxer == nil {
		return 0
	}
	return x.muxer.Granule()
}

// Handle feeds one event to the state machine.
func (x *Extractor) Handle(ev ebml.Event) ([]oggopus.Packet, error) {
	if x.ended {
		return nil, nil
	}

	switch ev.Kind {
	case ebml.Start:
		if ev.ID == ebml.IDTrackEntry {
			x.entry = trackEntry{}
		}
		return nil, nil
	case ebml.End:
		switch ev.ID {
		case ebml.IDTrackEntry:
			x.selectTrack()
		case ebml.IDSegment:
			return x.endSegment()
		}
		return nil, nil
	}

	switch ev.ID {
	case ebml.IDTrackNumber:
		n, err := ebml.Uint(ev.Data)
		if err != nil {
			return nil, fmt.Errorf("webm: TrackNumber: %w", err)
		}
		x.entry.number = n
	case ebml.IDTrackType:
		n, err := ebml.Uint(ev.Data)
		if err != nil {
			return nil, fmt.Errorf("webm: TrackType: %w", err)
		}
		x.entry.trackType = n
	case ebml.IDCodecID:
		x.entry.codecID = ebml.String(ev.Data)
	case ebml.IDChannels:
		n, err := ebml.Uint(ev.Data)
		if err != nil {
			return nil, fmt.Errorf("webm: Channels: %w", err)
		}
		x.entry.channels = int(n)
	case ebml.IDCodecPrivate:
		x.entry.codecPrivate = bytes.Clone(ev.Data)
	case ebml.IDBlock, ebml.IDSimpleBlock:
		return x.handleBlock(ev)
	case ebml.IDDiscardPadding:
		return x.handleDiscardPadding(ev)
	}
	return nil, nil
}

// selectTrack keeps the first A_OPUS track, or the last audio track when no
// entry names its codec.
func (x *Extractor) selectTrack() {
	e := x.entry
	switch {
	case x.isOpus:
	case e.codecID == OpusCodecID:
		x.track, x.hasTrack, x.isOpus = e, true, true
	case e.codecID == "" && (e.trackType == trackTypeAudio || e.trackType == 0):
		x.track, x.hasTrack = e, true
	default:
		slog.Debug("webm: skipping track", "number", e.number, "codec", e.codecID)
	}
}

func (x *Extractor) handleBlock(ev ebml.Event) ([]oggopus.Packet, error) {
	b, err := ParseBlock(ev.Data)
	if err != nil {
		return nil, err
	}

	if !x.hasTrack {
		// No TrackEntry closed before the first block; use what was latched.
		x.track, x.hasTrack = x.entry, true
	}
	if x.track.number != 0 && b.Track != x.track.number {
		return nil, nil
	}
	if x.muxer == nil {
		if err := x.start(); err != nil {
			return nil, err
		}
	}
	if len(b.Frames) > 1 {
		slog.Debug("webm: dropping laced frames", "track", b.Track, "lacing", b.Lacing(), "dropped", len(b.Frames)-1)
	}

	var out []oggopus.Packet
	if x.hasPending {
		pkts, err := x.flush(FrameSize)
		if err != nil {
			return nil, err
		}
		out = pkts
	}
	x.pending = bytes.Clone(b.Frames[0])
	x.hasPending = true
	return out, nil
}

func (x *Extractor) handleDiscardPadding(ev ebml.Event) ([]oggopus.Packet, error) {
	ns, err := ebml.Int(ev.Data)
	if err != nil {
		return nil, fmt.Errorf("webm: DiscardPadding: %w", err)
	}
	if !x.hasPending {
		return nil, nil
	}
	return x.flush(FrameSize - discardSamples(ns))
}

// discardSamples converts a DiscardPadding duration to 48kHz samples, at
// most one frame. Negative padding (trimming at the start) counts as none.
func discardSamples(ns int64) int {
	switch {
	case ns <= 0:
		return 0
	case ns >= FrameSize*1e9/oggopus.GranuleRate:
		return FrameSize
	}
	return int(ns * oggopus.GranuleRate / 1e9)
}

// start creates the muxer from the selected track. Blocks can only follow
// the track headers, so everything the muxer needs is known here.
func (x *Extractor) start() error {
	header, err := oggopus.ParseIDHeader(x.track.codecPrivate)
	if err != nil {
		return err
	}
	channels := x.track.channels
	if channels == 0 {
		channels = int(header.Channels)
	}

	cfg := x.cfg
	cfg.SampleRate = oggopus.GranuleRate
	cfg.Channels = channels
	cfg.FrameSize = FrameSize
	m, err := oggopus.NewMuxer(cfg, oggopus.WithIDHeader(x.track.codecPrivate))
	if err != nil {
		return err
	}
	x.muxer = m
	return nil
}

// flush hands the pending frame to the muxer with the given duration,
// clamped at zero.
func (x *Extractor) flush(samples int) ([]oggopus.Packet, error) {
	data := x.pending
	x.pending = nil
	x.hasPending = false
	x.frames++
	return x.muxer.PushFrame(oggopus.EncodedFrame{Data: data, Samples: max(0, samples)})
}

func (x *Extractor) endSegment() ([]oggopus.Packet, error) {
	x.ended = true
	if x.muxer == nil {
		return nil, ErrNoAudio
	}
	var out []oggopus.Packet
	if x.hasPending {
		pkts, err := x.flush(FrameSize)
		if err != nil {
			return nil, err
		}
		out = pkts
	}
	tail, err := x.muxer.Close()
	if err != nil {
		return nil, err
	}
	return append(out, tail...), nil
}

// Abandon ends an unfinished extraction. It returns ErrIncompleteStream
// unless the Segment end was already handled.
func (x *Extractor) Abandon() error {
	if x.ended {
		return nil
	}
	x.ended = true
	if x.muxer != nil {
		// Nil when no packet was emitted yet; the extraction is incomplete
		// either way.
		_ = x.muxer.Abandon()
	}
	return oggopus.ErrIncompleteStream
}

// Extract drives an Extractor over events and writes the packets to w.
// Input that ends before the Segment closes yields ErrIncompleteStream.
func Extract(ctx context.Context, events iter.Seq2[ebml.Event, error], w oggopus.PacketWriter, cfg oggopus.Config) (oggopus.Stats, error) {
	x := NewExtractor(cfg)
	var stats oggopus.Stats

	abort := func(cause error) (oggopus.Stats, error) {
		stats.Frames = x.Frames()
		stats.Granule = x.Granule()
		return stats, errors.Join(cause, x.Abandon())
	}

	for ev, err := range events {
		if err != nil {
			return abort(fmt.Errorf("webm: decode: %w", err))
		}
		if err := ctx.Err(); err != nil {
			return abort(err)
		}
		pkts, err := x.Handle(ev)
		if err != nil {
			return abort(err)
		}
		for _, p := range pkts {
			if err := w.WritePacket(p); err != nil {
				return abort(fmt.Errorf("webm: write packet: %w", err))
			}
		}
		stats.Packets += int64(len(pkts))
		if x.Ended() {
			break
		}
	}

	if !x.Ended() {
		return abort(nil)
	}
	stats.Frames = x.Frames()
	stats.Granule = x.Granule()
	return stats, nil
}
