// Package ebml decodes EBML byte streams, the binary format under Matroska
// and WebM, into a flat sequence of events.
//
// Master elements produce a Start event, their children, then an End event.
// Leaf elements produce a single Tag event holding the raw payload. The
// decoder is streaming: it never seeks and holds at most one leaf payload in
// memory.
//
// Example usage:
//
//	dec := ebml.NewDecoder(r)
//	for ev, err := range dec.Events() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(ev.Kind, ev.Name)
//	}
//
// Live WebM writers (browsers' MediaRecorder among them) emit Segment and
// Cluster with unknown size. Such an element ends when an element that
// cannot be its child appears, or at end of input. Input that ends inside a
// known-size master is reported as io.ErrUnexpectedEOF.
package ebml

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
)

// DefaultMaxElementSize caps the payload of a single leaf element.
const DefaultMaxElementSize = 16 << 20

var (
	// ErrInvalidVint is returned for an ID or size whose length marker is
	// missing or too long.
	ErrInvalidVint = errors.New("ebml: invalid variable-length integer")

	// ErrElementTooLarge is returned for a leaf larger than the decoder's
	// limit.
	ErrElementTooLarge = errors.New("ebml: element too large")

	// ErrUnknownSize is returned when a leaf or an unknown element declares
	// an unknown size, which cannot be skipped.
	ErrUnknownSize = errors.New("ebml: unknown size on non-master element")
)

// Kind discriminates decoder events.
type Kind uint8

const (
	// Start opens a master element.
	Start Kind = iota + 1
	// End closes a master element.
	End
	// Tag carries a leaf element.
	Tag
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case End:
		return "end"
	case Tag:
		return "tag"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Event is one step of the decoded element tree.
type Event struct {
	Kind Kind
	ID   ID
	Name string

	// Data is the payload of a Tag event. It is owned by the receiver.
	Data []byte

	// Offset is the byte offset of the element header in the input.
	Offset int64

	// Size is the declared payload size, or -1 for unknown size.
	Size int64
}

type openElement struct {
	id     ID
	offset int64
	size   int64
	end    int64 // -1 when size is unknown
}

// Decoder reads EBML elements from a stream.
type Decoder struct {
	r       *bufio.Reader
	off     int64
	stack   []openElement
	pending []Event
	maxSize int64
	err     error
	done    bool
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:       bufio.NewReader(r),
		maxSize: DefaultMaxElementSize,
	}
}

// SetMaxElementSize changes the leaf payload limit.
func (d *Decoder) SetMaxElementSize(n int64) {
	d.maxSize = n
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.off
}

// Next returns the next event. It returns io.EOF after the End event of the
// last open master element.
func (d *Decoder) Next() (Event, error) {
	for {
		if len(d.pending) > 0 {
			ev := d.pending[0]
			d.pending = d.pending[1:]
			return ev, nil
		}
		if d.err != nil {
			return Event{}, d.err
		}
		if d.done {
			return Event{}, io.EOF
		}

		err := d.step()
		switch {
		case err == io.EOF:
			d.finish()
		case err != nil:
			d.err = err
		}
	}
}

// Events returns an iterator over the remaining events. Iteration stops
// after the first error.
func (d *Decoder) Events() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := d.Next()
			if err == io.EOF {
				return
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

// step decodes one element header and queues the events it produces. It
// returns io.EOF only at a clean element boundary.
func (d *Decoder) step() error {
	d.closeEnded()

	start := d.off
	id, err := d.readID()
	if err != nil {
		if err == io.EOF && d.off == start {
			return io.EOF
		}
		return unexpected(err)
	}
	size, err := d.readSize()
	if err != nil {
		return unexpected(err)
	}

	el, known := elements[id]
	if known && !el.global {
		d.closeUnknown(el.parent)
	}

	switch {
	case known && el.master:
		end := int64(-1)
		if size >= 0 {
			end = d.off + size
		}
		d.stack = append(d.stack, openElement{id: id, offset: start, size: size, end: end})
		d.pending = append(d.pending, Event{Kind: Start, ID: id, Name: el.name, Offset: start, Size: size})

	case known:
		if size < 0 {
			return fmt.Errorf("%w: %s at offset %d", ErrUnknownSize, el.name, start)
		}
		if size > d.maxSize {
			return fmt.Errorf("%w: %s is %d bytes at offset %d", ErrElementTooLarge, el.name, size, start)
		}
		data := make([]byte, size)
		n, err := io.ReadFull(d.r, data)
		d.off += int64(n)
		if err != nil {
			return unexpected(err)
		}
		d.pending = append(d.pending, Event{Kind: Tag, ID: id, Name: el.name, Data: data, Offset: start, Size: size})

	default:
		if size < 0 {
			return fmt.Errorf("%w: %s at offset %d", ErrUnknownSize, id, start)
		}
		n, err := io.CopyN(io.Discard, d.r, size)
		d.off += n
		if err != nil {
			return unexpected(err)
		}
	}
	return nil
}

// finish handles end of input at an element boundary. Unknown-size masters
// end here; a known-size master still open was cut short.
func (d *Decoder) finish() {
	for _, e := range d.stack {
		if e.end > d.off {
			d.err = fmt.Errorf("%w: %s at offset %d ends at %d, input ends at %d",
				io.ErrUnexpectedEOF, e.id.Name(), e.offset, e.end, d.off)
			return
		}
	}
	d.closeTo(0)
	d.done = true
}

// closeEnded closes every known-size master whose payload ends at or before
// the current offset, together with anything nested inside it.
func (d *Decoder) closeEnded() {
	for i, e := range d.stack {
		if e.end >= 0 && e.end <= d.off {
			d.closeTo(i)
			return
		}
	}
}

// closeUnknown closes unknown-size masters on top of the stack until the
// top is parent or a known-size master. An element whose parent is not open
// at all is taken as misplaced and closes nothing.
func (d *Decoder) closeUnknown(parent ID) {
	if parent != root && !slices.ContainsFunc(d.stack, func(e openElement) bool { return e.id == parent }) {
		return
	}
	for len(d.stack) > 0 {
		top := d.stack[len(d.stack)-1]
		if top.id == parent || top.end >= 0 {
			return
		}
		d.closeTo(len(d.stack) - 1)
	}
}

// closeTo pops the stack down to depth n, queueing End events innermost
// first.
func (d *Decoder) closeTo(n int) {
	for len(d.stack) > n {
		e := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		d.pending = append(d.pending, Event{Kind: End, ID: e.id, Name: e.id.Name(), Offset: e.offset, Size: e.size})
	}
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err == nil {
		d.off++
	}
	return b, err
}

// readID reads an element ID, keeping the length marker. IDs are at most
// 4 bytes long.
func (d *Decoder) readID() (ID, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	n := vintLen(b)
	if n == 0 || n > 4 {
		return 0, fmt.Errorf("%w: ID byte 0x%02X at offset %d", ErrInvalidVint, b, d.off-1)
	}
	id := ID(b)
	for range n - 1 {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		id = id<<8 | ID(b)
	}
	return id, nil
}

// readSize reads an element data size. It returns -1 when all value bits
// are set, which EBML reserves for "unknown size".
func (d *Decoder) readSize() (int64, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	n := vintLen(b)
	if n == 0 {
		return 0, fmt.Errorf("%w: size byte 0x00 at offset %d", ErrInvalidVint, d.off-1)
	}
	v := uint64(b) & (0xFF >> n)
	allOnes := v == 0xFF>>n
	for range n - 1 {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		v = v<<8 | uint64(b)
		allOnes = allOnes && b == 0xFF
	}
	if allOnes {
		return -1, nil
	}
	if v > 1<<56-2 {
		return 0, fmt.Errorf("%w: size %d", ErrElementTooLarge, v)
	}
	return int64(v), nil
}

// vintLen returns the total length of a vint from its first byte, or 0 if
// the byte has no marker bit.
func vintLen(b byte) int {
	for n := 1; n <= 8; n++ {
		if b&(0x80>>(n-1)) != 0 {
			return n
		}
	}
	return 0
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
