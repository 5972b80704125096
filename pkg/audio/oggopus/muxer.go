package oggopus

import "fmt"

// State is the lifecycle phase of a Muxer.
type State int

const (
	// StateUnheadered is the initial state: nothing has been emitted.
	StateUnheadered State = iota

	// StateStreaming means both header packets have been emitted.
	StateStreaming

	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnheadered:
		return "unheadered"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MuxerOption configures a Muxer.
type MuxerOption func(*Muxer) error

// WithIDHeader uses raw as the ID header packet instead of generating one.
// It is meant for container sources that already carry an OpusHead, such as
// WebM CodecPrivate. raw is validated with ParseIDHeader.
func WithIDHeader(raw []byte) MuxerOption {
	return func(m *Muxer) error {
		if _, err := ParseIDHeader(raw); err != nil {
			return err
		}
		m.idHeader = append([]byte(nil), raw...)
		return nil
	}
}

// Muxer turns encoded frames into the logical packets of one Ogg-Opus
// stream.
//
// Each data packet is held back by one step: the Ogg end-of-stream flag has
// to sit on the last packet, and that packet is only known once Close is
// called. A Muxer is not safe for concurrent use.
type Muxer struct {
	cfg      Config
	idHeader []byte

	state    State
	packetNo int64
	granule  int64
	held     *Packet
}

// NewMuxer creates a muxer for cfg. Zero fields of cfg take their defaults.
func NewMuxer(cfg Config, opts ...MuxerOption) (*Muxer, error) {
	cfg = cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Muxer{cfg: cfg}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.idHeader == nil {
		m.idHeader = NewStreamHeader(cfg.SampleRate, cfg.Channels).Bytes()
	}
	return m, nil
}

// Config returns the effective configuration.
func (m *Muxer) Config() Config {
	return m.cfg
}

// State returns the current lifecycle phase.
func (m *Muxer) State() State {
	return m.state
}

// Granule returns the cumulative granule position of the frames pushed so
// far, including the held one.
func (m *Muxer) Granule() int64 {
	return m.granule
}

// PacketCount returns the number of packets built so far, including the
// held one.
func (m *Muxer) PacketCount() int64 {
	return m.packetNo
}

// PushFrame accepts the next encoded frame and returns the packets that are
// ready to be written. The first call also returns both header packets.
func (m *Muxer) PushFrame(f EncodedFrame) ([]Packet, error) {
	if m.state == StateClosed {
		return nil, ErrStateViolation
	}

	var out []Packet
	if m.state == StateUnheadered {
		out = m.appendHeaders(out)
	}
	if m.held != nil {
		out = append(out, *m.held)
		m.held = nil
	}

	m.granule += granuleDelta(f.Samples, m.cfg.SampleRate)
	m.held = &Packet{
		Data:       f.Data,
		GranulePos: m.granule,
		PacketNo:   m.nextPacketNo(),
		Flush:      m.cfg.FlushPackets,
	}
	return out, nil
}

// Close marks the held packet as end of stream and returns it.
//
// Closing a muxer that never saw a frame still produces a decodable stream:
// the two header packets are returned with the end-of-stream flag on the
// comment packet.
func (m *Muxer) Close() ([]Packet, error) {
	switch m.state {
	case StateClosed:
		return nil, ErrDoubleClose
	case StateUnheadered:
		out := m.appendHeaders(nil)
		out[len(out)-1].EOS = true
		m.state = StateClosed
		return out, nil
	}

	m.state = StateClosed
	if m.held == nil {
		return nil, nil
	}
	last := *m.held
	last.EOS = true
	m.held = nil
	return []Packet{last}, nil
}

// Abandon ends the session without committing the held packet. It returns
// ErrIncompleteStream if packets were emitted but the stream was never
// closed, and nil if nothing was started or Close already ran.
func (m *Muxer) Abandon() error {
	started := m.state == StateStreaming
	m.state = StateClosed
	m.held = nil
	if started {
		return ErrIncompleteStream
	}
	return nil
}

func (m *Muxer) appendHeaders(out []Packet) []Packet {
	out = append(out,
		Packet{
			Data:       m.idHeader,
			GranulePos: -1,
			PacketNo:   m.nextPacketNo(),
			BOS:        true,
		},
		Packet{
			Data:       CommentHeader(m.cfg.CommentBlock()),
			GranulePos: m.granule,
			PacketNo:   m.nextPacketNo(),
			Flush:      true,
		},
	)
	m.state = StateStreaming
	return out
}

func (m *Muxer) nextPacketNo() int64 {
	n := m.packetNo
	m.packetNo++
	return n
}
