package oggopus

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// Comment is one user comment of a Vorbis-style comment block.
// A nil Value marks the pair as undefined; it is dropped when the block is
// serialized.
type Comment struct {
	Key   string
	Value *string
}

// NewComment returns a defined comment pair.
func NewComment(key, value string) Comment {
	return Comment{Key: key, Value: &value}
}

// UnsetComment returns a comment pair with an undefined value.
func UnsetComment(key string) Comment {
	return Comment{Key: key}
}

// IsSet reports whether the comment has a value.
func (c Comment) IsSet() bool {
	return c.Value != nil
}

// String returns the "key=value" form written on the wire.
func (c Comment) String() string {
	if c.Value == nil {
		return c.Key
	}
	return c.Key + "=" + *c.Value
}

// CommentBlock is the vendor string and user comments carried by the
// OpusTags header.
//
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                     Vendor String Length                      |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	:                        Vendor String...                       :
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                   User Comment List Length                    |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                 User Comment #0 String Length                 |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	:                   User Comment #0 String...                   :
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//
// All lengths are little-endian uint32.
type CommentBlock struct {
	Vendor   string
	Comments []Comment
}

// Retained returns the comments that will be serialized, in order.
func (b CommentBlock) Retained() []Comment {
	out := make([]Comment, 0, len(b.Comments))
	for _, c := range b.Comments {
		if c.IsSet() {
			out = append(out, c)
		}
	}
	return out
}

// Get returns the first value stored under key, compared case-insensitively
// as Vorbis comment field names are.
func (b CommentBlock) Get(key string) (string, bool) {
	for _, c := range b.Comments {
		if c.IsSet() && strings.EqualFold(c.Key, key) {
			return *c.Value, true
		}
	}
	return "", false
}

// MarshalBinary serializes the block without the "OpusTags" magic.
func (b CommentBlock) MarshalBinary() ([]byte, error) {
	return b.AppendBinary(nil)
}

// AppendBinary appends the serialized block to dst.
func (b CommentBlock) AppendBinary(dst []byte) ([]byte, error) {
	retained := b.Retained()

	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(b.Vendor)))
	dst = append(dst, b.Vendor...)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(retained)))
	for _, c := range retained {
		s := c.String()
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(s)))
		dst = append(dst, s...)
	}
	return dst, nil
}

// UnmarshalBinary decodes a serialized block (without magic). Bytes after
// the last comment are ignored; RFC 7845 lets encoders put padding there.
func (b *CommentBlock) UnmarshalBinary(data []byte) error {
	vendor, rest, err := readLengthPrefixed(data)
	if err != nil {
		return fmt.Errorf("%w: vendor: %w", ErrMalformedCommentBlock, err)
	}
	if len(rest) < 4 {
		return fmt.Errorf("%w: missing comment count", ErrMalformedCommentBlock)
	}
	count := binary.LittleEndian.Uint32(rest)
	rest = rest[4:]

	// Every comment needs at least its 4-byte length.
	if uint64(count)*4 > uint64(len(rest)) {
		return fmt.Errorf("%w: %d comments do not fit in %d bytes", ErrMalformedCommentBlock, count, len(rest))
	}

	comments := make([]Comment, 0, count)
	for i := range count {
		var raw string
		raw, rest, err = readLengthPrefixed(rest)
		if err != nil {
			return fmt.Errorf("%w: comment %d: %w", ErrMalformedCommentBlock, i, err)
		}
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			comments = append(comments, UnsetComment(raw))
			continue
		}
		comments = append(comments, NewComment(key, value))
	}

	b.Vendor = vendor
	b.Comments = comments
	return nil
}

// ParseCommentBlock decodes a serialized block (without magic).
func ParseCommentBlock(data []byte) (CommentBlock, error) {
	var b CommentBlock
	err := b.UnmarshalBinary(data)
	return b, err
}

// CommentHeader returns the full OpusTags packet for the block.
func CommentHeader(b CommentBlock) []byte {
	pkt := []byte(commentHeaderMagic)
	pkt, _ = b.AppendBinary(pkt)
	return pkt
}

// ParseCommentHeader decodes an OpusTags packet.
func ParseCommentHeader(pkt []byte) (CommentBlock, error) {
	if !bytes.HasPrefix(pkt, []byte(commentHeaderMagic)) {
		return CommentBlock{}, fmt.Errorf("%w: missing %q magic", ErrMalformedCommentBlock, commentHeaderMagic)
	}
	return ParseCommentBlock(pkt[len(commentHeaderMagic):])
}

func readLengthPrefixed(data []byte) (string, []byte, error) {
	if len(data) < 4 {
		return "", nil, fmt.Errorf("short length prefix (%d bytes)", len(data))
	}
	n := binary.LittleEndian.Uint32(data)
	data = data[4:]
	if uint64(n) > uint64(len(data)) {
		return "", nil, fmt.Errorf("length %d exceeds %d remaining bytes", n, len(data))
	}
	return string(data[:n]), data[n:], nil
}
