package webm

import (
	"errors"
	"fmt"
)

// ErrMalformedBlock is returned for a Block or SimpleBlock payload whose
// header or lacing does not fit its size.
var ErrMalformedBlock = errors.New("webm: malformed block")

// Lacing is the lacing mode stored in bits 1-2 of the block flags.
type Lacing uint8

const (
	LacingNone  Lacing = 0
	LacingXiph  Lacing = 1
	LacingFixed Lacing = 2
	LacingEBML  Lacing = 3
)

func (l Lacing) String() string {
	switch l {
	case LacingNone:
		return "none"
	case LacingXiph:
		return "xiph"
	case LacingFixed:
		return "fixed"
	case LacingEBML:
		return "ebml"
	default:
		return fmt.Sprintf("Lacing(%d)", uint8(l))
	}
}

// Block is a parsed Matroska Block or SimpleBlock.
type Block struct {
	// Track is the track number the block belongs to.
	Track uint64

	// Timecode is relative to the enclosing Cluster timestamp.
	Timecode int16

	// Flags is the raw flag byte.
	Flags byte

	// Frames are the laced frame payloads; one frame when unlaced. They
	// alias the input.
	Frames [][]byte
}

// Lacing returns the block's lacing mode.
func (b Block) Lacing() Lacing {
	return Lacing(b.Flags>>1) & 0x03
}

// Keyframe reports the SimpleBlock keyframe flag.
func (b Block) Keyframe() bool {
	return b.Flags&0x80 != 0
}

// ParseBlock decodes the header and lacing of a Block or SimpleBlock
// payload.
//
//	+-------------+----------+-------+--------------+-----------+
//	| track vint  | int16 TC | flags | [lace count] | [lacing]  | frames...
//	+-------------+----------+-------+--------------+-----------+
func ParseBlock(data []byte) (Block, error) {
	track, n, err := readVint(data)
	if err != nil {
		return Block{}, fmt.Errorf("%w: track number: %w", ErrMalformedBlock, err)
	}
	data = data[n:]
	if len(data) < 3 {
		return Block{}, fmt.Errorf("%w: header truncated", ErrMalformedBlock)
	}
	b := Block{
		Track:    track,
		Timecode: int16(uint16(data[0])<<8 | uint16(data[1])),
		Flags:    data[2],
	}
	data = data[3:]

	if b.Lacing() == LacingNone {
		b.Frames = [][]byte{data}
		return b, nil
	}

	if len(data) < 1 {
		return Block{}, fmt.Errorf("%w: missing lace count", ErrMalformedBlock)
	}
	count := int(data[0]) + 1
	data = data[1:]

	sizes := make([]int, count)
	switch b.Lacing() {
	case LacingXiph:
		for i := range count - 1 {
			size := 0
			for {
				if len(data) == 0 {
					return Block{}, fmt.Errorf("%w: xiph lace %d truncated", ErrMalformedBlock, i)
				}
				v := data[0]
				data = data[1:]
				size += int(v)
				if v != 0xFF {
					break
				}
			}
			sizes[i] = size
		}

	case LacingEBML:
		first, n, err := readVint(data)
		if err != nil {
			return Block{}, fmt.Errorf("%w: ebml lace 0: %w", ErrMalformedBlock, err)
		}
		data = data[n:]
		sizes[0] = int(first)
		for i := 1; i < count-1; i++ {
			diff, n, err := readSignedVint(data)
			if err != nil {
				return Block{}, fmt.Errorf("%w: ebml lace %d: %w", ErrMalformedBlock, i, err)
			}
			data = data[n:]
			sizes[i] = sizes[i-1] + int(diff)
			if sizes[i] < 0 {
				return Block{}, fmt.Errorf("%w: ebml lace %d has negative size", ErrMalformedBlock, i)
			}
		}

	case LacingFixed:
		if len(data)%count != 0 {
			return Block{}, fmt.Errorf("%w: %d bytes do not split into %d fixed laces", ErrMalformedBlock, len(data), count)
		}
		for i := range sizes {
			sizes[i] = len(data) / count
		}
	}

	if b.Lacing() != LacingFixed {
		used := 0
		for _, s := range sizes[:count-1] {
			used += s
		}
		if used > len(data) {
			return Block{}, fmt.Errorf("%w: laces need %d bytes, have %d", ErrMalformedBlock, used, len(data))
		}
		sizes[count-1] = len(data) - used
	}

	b.Frames = make([][]byte, count)
	for i, s := range sizes {
		b.Frames[i] = data[:s:s]
		data = data[s:]
	}
	return b, nil
}

// readVint reads an unsigned EBML vint with the marker bit removed.
func readVint(data []byte) (uint64, int, error) {
	if len(data) == 0 {
		return 0, 0, errors.New("empty vint")
	}
	n := 0
	for i := range 8 {
		if data[0]&(0x80>>i) != 0 {
			n = i + 1
			break
		}
	}
	if n == 0 {
		return 0, 0, errors.New("vint has no length marker")
	}
	if len(data) < n {
		return 0, 0, fmt.Errorf("vint needs %d bytes, have %d", n, len(data))
	}
	v := uint64(data[0]) & (0xFF >> n)
	for _, b := range data[1:n] {
		v = v<<8 | uint64(b)
	}
	return v, n, nil
}

// readSignedVint reads the signed form used by EBML lacing, where the value
// is biased by half the vint range.
func readSignedVint(data []byte) (int64, int, error) {
	v, n, err := readVint(data)
	if err != nil {
		return 0, 0, err
	}
	bias := int64(1)<<(7*n-1) - 1
	return int64(v) - bias, n, nil
}
