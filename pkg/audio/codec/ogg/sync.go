package ogg

/*
#include <ogg/ogg.h>
#include <stdlib.h>

static ogg_sync_state* alloc_sync_state() {
    ogg_sync_state* state = (ogg_sync_state*)calloc(1, sizeof(ogg_sync_state));
    if (state) {
        ogg_sync_init(state);
    }
    return state;
}

static void free_sync_state(ogg_sync_state* state) {
    if (state) {
        ogg_sync_clear(state);
        free(state);
    }
}
*/
import "C"
import (
	"errors"
	"io"
	"runtime"
	"sync/atomic"
	"unsafe"
)

// ErrNeedMore means the sync state needs more input before the next page.
var ErrNeedMore = errors.New("ogg: need more data")

// SyncState finds page boundaries in a raw byte stream. Call Clear when
// done.
type SyncState struct {
	state   *C.ogg_sync_state
	cleared atomic.Bool
	cleanup runtime.Cleanup
}

// NewSyncState creates a sync state.
func NewSyncState() (*SyncState, error) {
	state := C.alloc_sync_state()
	if state == nil {
		return nil, errors.New("ogg: failed to allocate sync state")
	}
	s := &SyncState{state: state}
	s.cleanup = runtime.AddCleanup(s, freeSyncState, uintptr(unsafe.Pointer(state)))
	return s, nil
}

func freeSyncState(ptr uintptr) {
	C.free_sync_state((*C.ogg_sync_state)(unsafe.Pointer(ptr)))
}

// Clear releases resources. Safe to call multiple times.
func (s *SyncState) Clear() {
	if s.cleared.CompareAndSwap(false, true) {
		s.cleanup.Stop()
		C.free_sync_state(s.state)
		s.state = nil
	}
}

// Write copies data into the sync buffer.
func (s *SyncState) Write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	buf := C.ogg_sync_buffer(s.state, C.long(len(data)))
	if buf == nil {
		return 0, errors.New("ogg: sync buffer allocation failed")
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(buf)), len(data)), data)
	if C.ogg_sync_wrote(s.state, C.long(len(data))) != 0 {
		return 0, errors.New("ogg: sync buffer overflow")
	}
	return len(data), nil
}

// PageSeek looks for the next page. It returns the number of garbage bytes
// skipped before it, and ErrNeedMore when no complete page is buffered.
func (s *SyncState) PageSeek(page *Page) (skipped int, err error) {
	for {
		n := C.ogg_sync_pageseek(s.state, &page.page)
		switch {
		case n > 0:
			return skipped, nil
		case n == 0:
			return skipped, ErrNeedMore
		default:
			skipped += int(-n)
		}
	}
}

// PageReader reads pages from an io.Reader.
type PageReader struct {
	r       io.Reader
	sync    *SyncState
	buf     []byte
	page    Page
	skipped int64
}

// NewPageReader creates a page reader.
func NewPageReader(r io.Reader) (*PageReader, error) {
	sync, err := NewSyncState()
	if err != nil {
		return nil, err
	}
	return &PageReader{
		r:    r,
		sync: sync,
		buf:  make([]byte, 4096),
	}, nil
}

// Close releases resources. It does not close the underlying reader.
func (d *PageReader) Close() error {
	d.sync.Clear()
	return nil
}

// Skipped returns the number of bytes discarded while resyncing.
func (d *PageReader) Skipped() int64 {
	return d.skipped
}

// ReadPage returns the next page. The page is valid until the next call.
// It returns io.EOF at the end of input; trailing bytes that do not form a
// page are counted in Skipped.
func (d *PageReader) ReadPage() (*Page, error) {
	for {
		skipped, err := d.sync.PageSeek(&d.page)
		d.skipped += int64(skipped)
		if err == nil {
			return &d.page, nil
		}

		n, rerr := d.r.Read(d.buf)
		if n > 0 {
			if _, werr := d.sync.Write(d.buf[:n]); werr != nil {
				return nil, werr
			}
			continue
		}
		if rerr != nil {
			return nil, rerr
		}
	}
}
