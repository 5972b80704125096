package oggopus

// AudioFrame is one fixed-size block of interleaved 16-bit little-endian PCM.
// Samples is the number of samples per channel the frame really carries;
// the last frame of a stream may be zero-padded beyond it.
type AudioFrame struct {
	PCM      []byte
	Samples  int
	Channels int
}

// EncodedFrame is one compressed Opus packet. Samples travels with the
// payload because the compressed size alone does not reveal the duration.
type EncodedFrame struct {
	Data    []byte
	Samples int
}

// Packet is a logical Ogg packet ready for page serialization.
type Packet struct {
	// Data is the packet payload.
	Data []byte

	// GranulePos is the end time of the packet on the 48kHz clock, or -1
	// when the packet carries no timing.
	GranulePos int64

	// PacketNo is the packet sequence number, contiguous from 0.
	PacketNo int64

	// BOS marks the first packet of the logical stream.
	BOS bool

	// EOS marks the last packet of the logical stream.
	EOS bool

	// Flush asks the page writer to close the page after this packet.
	Flush bool
}

// IsHeader reports whether the packet is the OpusHead or OpusTags header.
func (p Packet) IsHeader() bool {
	return p.PacketNo < 2 && IsHeaderPacket(p.Data)
}

// PacketWriter serializes logical packets into physical Ogg pages.
type PacketWriter interface {
	WritePacket(Packet) error
}

// PacketWriterFunc adapts a function to PacketWriter.
type PacketWriterFunc func(Packet) error

// WritePacket calls f(p).
func (f PacketWriterFunc) WritePacket(p Packet) error {
	return f(p)
}

func writePackets(w PacketWriter, pkts []Packet) error {
	for _, p := range pkts {
		if err := w.WritePacket(p); err != nil {
			return err
		}
	}
	return nil
}
