package ogg

/*
#include <ogg/ogg.h>
#include <stdlib.h>
#include <string.h>

static ogg_stream_state* alloc_stream_state() {
    return (ogg_stream_state*)calloc(1, sizeof(ogg_stream_state));
}

static void free_stream_state(ogg_stream_state *state) {
    if (state) {
        ogg_stream_clear(state);
        free(state);
    }
}

static long page_header_len(ogg_page *page) { return page->header_len; }
static long page_body_len(ogg_page *page) { return page->body_len; }

static void copy_page(ogg_page *page, unsigned char *header, unsigned char *body) {
    memcpy(header, page->header, page->header_len);
    if (page->body_len > 0) {
        memcpy(body, page->body, page->body_len);
    }
}

static long packet_bytes(ogg_packet *packet) { return packet->bytes; }

static void copy_packet(ogg_packet *packet, unsigned char *dst) {
    memcpy(dst, packet->packet, packet->bytes);
}
*/
import "C"
import (
	"errors"
	"runtime"
	"sync/atomic"
	"unsafe"
)

var (
	// ErrStream is returned when libogg rejects a page or packet.
	ErrStream = errors.New("ogg: stream error")
	// ErrNoPacket means no complete packet or page is available yet.
	ErrNoPacket = errors.New("ogg: no packet available")
	// ErrHole means pages are missing between the last packet and the next.
	ErrHole = errors.New("ogg: hole in data")
)

// StreamState is the libogg state of one logical bitstream. It packs
// packets into pages when writing and unpacks pages into packets when
// reading. Call Clear when done.
type StreamState struct {
	state    *C.ogg_stream_state
	serialNo int32
	page     C.ogg_page
	packet   C.ogg_packet
	cleared  atomic.Bool
	cleanup  runtime.Cleanup
}

func freeStreamState(ptr uintptr) {
	C.free_stream_state((*C.ogg_stream_state)(unsafe.Pointer(ptr)))
}

// NewStreamState creates a stream state with the given serial number.
func NewStreamState(serialNo int32) (*StreamState, error) {
	state := C.alloc_stream_state()
	if state == nil {
		return nil, errors.New("ogg: failed to allocate stream state")
	}
	if C.ogg_stream_init(state, C.int(serialNo)) != 0 {
		C.free(unsafe.Pointer(state))
		return nil, errors.New("ogg: failed to init stream state")
	}
	s := &StreamState{
		state:    state,
		serialNo: serialNo,
	}
	s.cleanup = runtime.AddCleanup(s, freeStreamState, uintptr(unsafe.Pointer(state)))
	return s, nil
}

// Clear releases resources. Safe to call multiple times.
func (s *StreamState) Clear() {
	if s.cleared.CompareAndSwap(false, true) {
		s.cleanup.Stop()
		C.free_stream_state(s.state)
		s.state = nil
	}
}

// SerialNo returns the stream serial number.
func (s *StreamState) SerialNo() int32 {
	return s.serialNo
}

// EOS reports whether the end-of-stream packet has been seen.
func (s *StreamState) EOS() bool {
	return C.ogg_stream_eos(s.state) != 0
}

// PageIn submits a page read from a SyncState.
func (s *StreamState) PageIn(page *Page) error {
	if C.ogg_stream_pagein(s.state, &page.page) != 0 {
		return ErrStream
	}
	return nil
}

// PacketOut extracts the next complete packet into p. It returns
// ErrNoPacket when the submitted pages hold no further complete packet and
// ErrHole when pages are missing.
func (s *StreamState) PacketOut(p *Packet) error {
	switch C.ogg_stream_packetout(s.state, &s.packet) {
	case 1:
	case 0:
		return ErrNoPacket
	default:
		return ErrHole
	}

	p.Data = make([]byte, C.packet_bytes(&s.packet))
	if len(p.Data) > 0 {
		C.copy_packet(&s.packet, (*C.uchar)(unsafe.Pointer(&p.Data[0])))
	}
	p.GranulePos = int64(s.packet.granulepos)
	p.PacketNo = int64(s.packet.packetno)
	p.SerialNo = s.serialNo
	p.BOS = s.packet.b_o_s != 0
	p.EOS = s.packet.e_o_s != 0
	return nil
}

// PacketIn submits a packet for paging. The data is copied. Zero-length
// packets are valid in Ogg and accepted.
func (s *StreamState) PacketIn(data []byte, granulePos, packetNo int64, bos, eos bool) error {
	var cPacket C.ogg_packet

	var cData unsafe.Pointer
	if len(data) > 0 {
		cData = C.malloc(C.size_t(len(data)))
		if cData == nil {
			return errors.New("ogg: malloc failed")
		}
		defer C.free(cData)
		C.memcpy(cData, unsafe.Pointer(&data[0]), C.size_t(len(data)))
	}

	cPacket.packet = (*C.uchar)(cData)
	cPacket.bytes = C.long(len(data))
	cPacket.granulepos = C.ogg_int64_t(granulePos)
	cPacket.packetno = C.ogg_int64_t(packetNo)
	if bos {
		cPacket.b_o_s = 1
	}
	if eos {
		cPacket.e_o_s = 1
	}

	if C.ogg_stream_packetin(s.state, &cPacket) != 0 {
		return ErrStream
	}
	return nil
}

// PageOut returns the next page if libogg considers it full, or if the
// stream has just begun or ended. It returns ErrNoPacket otherwise.
func (s *StreamState) PageOut() (header, body []byte, err error) {
	if C.ogg_stream_pageout(s.state, &s.page) == 0 {
		return nil, nil, ErrNoPacket
	}
	header, body = s.copyPage()
	return header, body, nil
}

// Flush returns a page holding whatever packets are pending, full or not.
// It returns ErrNoPacket when nothing is pending.
func (s *StreamState) Flush() (header, body []byte, err error) {
	if C.ogg_stream_flush(s.state, &s.page) == 0 {
		return nil, nil, ErrNoPacket
	}
	header, body = s.copyPage()
	return header, body, nil
}

func (s *StreamState) copyPage() (header, body []byte) {
	header = make([]byte, C.page_header_len(&s.page))
	body = make([]byte, C.page_body_len(&s.page))

	bodyPtr := (*C.uchar)(nil)
	if len(body) > 0 {
		bodyPtr = (*C.uchar)(unsafe.Pointer(&body[0]))
	}
	C.copy_page(&s.page, (*C.uchar)(unsafe.Pointer(&header[0])), bodyPtr)
	return header, body
}
