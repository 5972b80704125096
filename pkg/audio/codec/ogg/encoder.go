package ogg

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

// Encoder writes one logical bitstream as Ogg pages to an io.Writer.
//
// Granule positions, packet numbers and stream flags come from the caller;
// the encoder only decides page boundaries.
type Encoder struct {
	w       io.Writer
	stream  *StreamState
	pages   int64
	written int64
}

// RandomSerial draws a stream serial number from crypto/rand.
func RandomSerial() (int32, error) {
	var serialNo int32
	if err := binary.Read(rand.Reader, binary.LittleEndian, &serialNo); err != nil {
		return 0, err
	}
	return serialNo, nil
}

// NewEncoder creates an encoder with a random serial number.
func NewEncoder(w io.Writer) (*Encoder, error) {
	serialNo, err := RandomSerial()
	if err != nil {
		return nil, err
	}
	return NewEncoderWithSerial(w, serialNo)
}

// NewEncoderWithSerial creates an encoder with a specific serial number.
func NewEncoderWithSerial(w io.Writer, serialNo int32) (*Encoder, error) {
	stream, err := NewStreamState(serialNo)
	if err != nil {
		return nil, err
	}
	return &Encoder{w: w, stream: stream}, nil
}

// SerialNo returns the stream serial number.
func (e *Encoder) SerialNo() int32 {
	return e.stream.SerialNo()
}

// Pages returns the number of pages written.
func (e *Encoder) Pages() int64 {
	return e.pages
}

// BytesWritten returns the number of bytes written.
func (e *Encoder) BytesWritten() int64 {
	return e.written
}

// WritePacket submits one packet. With flush set the packet closes its page
// immediately; otherwise pages are written as libogg fills them. An EOS
// packet always ends its page.
func (e *Encoder) WritePacket(data []byte, granulePos, packetNo int64, bos, eos, flush bool) error {
	if err := e.stream.PacketIn(data, granulePos, packetNo, bos, eos); err != nil {
		return err
	}
	if flush {
		return e.Flush()
	}
	return e.drain(e.stream.PageOut)
}

// Flush writes every pending packet, full page or not.
func (e *Encoder) Flush() error {
	return e.drain(e.stream.Flush)
}

func (e *Encoder) drain(next func() ([]byte, []byte, error)) error {
	for {
		header, body, err := next()
		if err == ErrNoPacket {
			return nil
		}
		if err != nil {
			return err
		}
		if err := e.writePage(header, body); err != nil {
			return err
		}
	}
}

func (e *Encoder) writePage(header, body []byte) error {
	n, err := e.w.Write(header)
	e.written += int64(n)
	if err != nil {
		return err
	}
	n, err = e.w.Write(body)
	e.written += int64(n)
	if err != nil {
		return err
	}
	e.pages++
	return nil
}

// Close flushes pending packets and releases resources. It does not close
// the underlying writer.
func (e *Encoder) Close() error {
	err := e.Flush()
	e.stream.Clear()
	return err
}
