// Package ogg wraps libogg for writing and reading Ogg physical bitstreams
// (RFC 3533).
//
// The writing side takes logical packets with caller-chosen granule
// positions, sequence numbers and stream flags, and turns them into
// CRC-checked pages. The reading side syncs pages out of a byte stream and
// hands back the packets with their page-derived metadata.
//
// Both sides hold C memory. Call Close (or Clear on the low-level states)
// when done; a runtime cleanup releases it otherwise.
package ogg

/*
#cgo pkg-config: ogg
#include <ogg/ogg.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"
import (
	"unsafe"
)

// Page header type flags.
const (
	// Continued marks a page whose first packet started on the previous page.
	Continued = 0x01
	// BOS marks the first page of a logical stream.
	BOS = 0x02
	// EOS marks the last page of a logical stream.
	EOS = 0x04
)

// Page is an Ogg page as returned by a SyncState. Its data is owned by the
// sync state and valid until the next sync call.
type Page struct {
	page C.ogg_page
}

// Header returns a copy of the page header.
func (p *Page) Header() []byte {
	return C.GoBytes(unsafe.Pointer(p.page.header), C.int(p.page.header_len))
}

// Body returns a copy of the page body.
func (p *Page) Body() []byte {
	return C.GoBytes(unsafe.Pointer(p.page.body), C.int(p.page.body_len))
}

// SerialNo returns the logical stream serial number.
func (p *Page) SerialNo() int32 {
	return int32(C.ogg_page_serialno(&p.page))
}

// PageNo returns the page sequence number.
func (p *Page) PageNo() int64 {
	return int64(C.ogg_page_pageno(&p.page))
}

// IsBOS reports whether the page starts a logical stream.
func (p *Page) IsBOS() bool {
	return C.ogg_page_bos(&p.page) != 0
}

// IsEOS reports whether the page ends a logical stream.
func (p *Page) IsEOS() bool {
	return C.ogg_page_eos(&p.page) != 0
}

// GranulePos returns the granule position of the last packet completed on
// the page, or -1 if none completes.
func (p *Page) GranulePos() int64 {
	return int64(C.ogg_page_granulepos(&p.page))
}

// Packets returns the number of packets completed on the page.
func (p *Page) Packets() int {
	return int(C.ogg_page_packets(&p.page))
}

// Packet is a logical packet read back from a stream. Data is a Go copy.
type Packet struct {
	Data       []byte
	GranulePos int64
	PacketNo   int64
	SerialNo   int32
	BOS        bool
	EOS        bool
}
