package oggopus

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	idHeaderMagic      = "OpusHead"
	commentHeaderMagic = "OpusTags"

	// IDHeaderSize is the size of a mapping family 0 ID header, magic
	// included.
	IDHeaderSize = 19
)

// StreamHeader holds the fields of the OpusHead packet.
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|      'O'      |      'p'      |      'u'      |      's'      |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|      'H'      |      'e'      |      'a'      |      'd'      |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|  Version = 1  | Channel Count |           Pre-skip            |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                     Input Sample Rate (Hz)                    |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|   Output Gain (Q7.8 in dB)    | Mapping Family|               |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+               :
//
// https://datatracker.ietf.org/doc/html/rfc7845#section-5.1
type StreamHeader struct {
	Version         uint8
	Channels        uint8
	PreSkip         uint16
	InputSampleRate uint32
	OutputGain      int16
	MappingFamily   uint8
}

// NewStreamHeader returns the header written for a PCM session: version 1,
// the default pre-skip, unity gain and mapping family 0.
func NewStreamHeader(sampleRate, channels int) StreamHeader {
	return StreamHeader{
		Version:         1,
		Channels:        uint8(channels),
		PreSkip:         DefaultPreSkip,
		InputSampleRate: uint32(sampleRate),
	}
}

// Bytes returns the 19-byte ID header packet.
func (h StreamHeader) Bytes() []byte {
	b := make([]byte, IDHeaderSize)
	copy(b[0:], idHeaderMagic)                                  // Magic Signature 'OpusHead'
	b[8] = h.Version                                            // Version
	b[9] = h.Channels                                           // Channel count
	binary.LittleEndian.PutUint16(b[10:], h.PreSkip)            // Pre-skip
	binary.LittleEndian.PutUint32(b[12:], h.InputSampleRate)    // Input sample rate
	binary.LittleEndian.PutUint16(b[16:], uint16(h.OutputGain)) // Output gain
	b[18] = h.MappingFamily                                     // 0 = one stream, mono or stereo
	return b
}

// ParseIDHeader validates an OpusHead packet and decodes its fixed fields.
// Channel mapping tables of families other than 0 are accepted but not
// decoded.
func ParseIDHeader(pkt []byte) (StreamHeader, error) {
	if len(pkt) < IDHeaderSize {
		return StreamHeader{}, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedCodecPrivate, len(pkt), IDHeaderSize)
	}
	if !bytes.HasPrefix(pkt, []byte(idHeaderMagic)) {
		return StreamHeader{}, fmt.Errorf("%w: missing %q magic", ErrMalformedCodecPrivate, idHeaderMagic)
	}
	h := StreamHeader{
		Version:         pkt[8],
		Channels:        pkt[9],
		PreSkip:         binary.LittleEndian.Uint16(pkt[10:]),
		InputSampleRate: binary.LittleEndian.Uint32(pkt[12:]),
		OutputGain:      int16(binary.LittleEndian.Uint16(pkt[16:])),
		MappingFamily:   pkt[18],
	}
	// Only the major version (upper nibble) must be 0.
	if h.Version>>4 != 0 {
		return StreamHeader{}, fmt.Errorf("%w: unsupported version %d", ErrMalformedCodecPrivate, h.Version)
	}
	if h.Channels == 0 {
		return StreamHeader{}, fmt.Errorf("%w: zero channels", ErrMalformedCodecPrivate)
	}
	return h, nil
}

// IsHeaderPacket reports whether pkt starts with the OpusHead or OpusTags
// magic.
func IsHeaderPacket(pkt []byte) bool {
	return bytes.HasPrefix(pkt, []byte(idHeaderMagic)) || bytes.HasPrefix(pkt, []byte(commentHeaderMagic))
}
