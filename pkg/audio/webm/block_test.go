package webm

import (
	"errors"
	"testing"
)

func TestParseBlock(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		wantTrack  uint64
		wantLacing Lacing
		wantFrames []string
	}{
		{
			name:       "unlaced",
			data:       []byte{0x81, 0x00, 0x14, 0x80, 'a', 'b', 'c'},
			wantTrack:  1,
			wantLacing: LacingNone,
			wantFrames: []string{"abc"},
		},
		{
			name:       "two byte track number",
			data:       []byte{0x40, 0x85, 0x00, 0x00, 0x00, 'x'},
			wantTrack:  0x85,
			wantLacing: LacingNone,
			wantFrames: []string{"x"},
		},
		// 3 frames: sizes 2, 1, rest.
		{
			name:       "xiph",
			data:       []byte{0x82, 0x00, 0x00, 0x02, 0x02, 0x02, 0x01, 'a', 'a', 'b', 'c', 'c', 'c'},
			wantTrack:  2,
			wantLacing: LacingXiph,
			wantFrames: []string{"aa", "b", "ccc"},
		},
		{
			name:       "fixed",
			data:       []byte{0x81, 0x00, 0x00, 0x04, 0x01, 'a', 'a', 'b', 'b'},
			wantTrack:  1,
			wantLacing: LacingFixed,
			wantFrames: []string{"aa", "bb"},
		},
		// 3 frames: size 3, then 0xBD (61 - 63 = -2) for size 1, rest.
		{
			name:       "ebml",
			data:       []byte{0x81, 0x00, 0x00, 0x06, 0x02, 0x83, 0xBD, 'a', 'a', 'a', 'b', 'c', 'c'},
			wantTrack:  1,
			wantLacing: LacingEBML,
			wantFrames: []string{"aaa", "b", "cc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBlock(tt.data)
			if err != nil {
				t.Fatalf("ParseBlock failed: %v", err)
			}
			if b.Track != tt.wantTrack {
				t.Errorf("Track = %d, want %d", b.Track, tt.wantTrack)
			}
			if b.Lacing() != tt.wantLacing {
				t.Errorf("Lacing() = %v, want %v", b.Lacing(), tt.wantLacing)
			}
			if len(b.Frames) != len(tt.wantFrames) {
				t.Fatalf("got %d frames, want %d", len(b.Frames), len(tt.wantFrames))
			}
			for i, want := range tt.wantFrames {
				if string(b.Frames[i]) != want {
					t.Errorf("frame %d = %q, want %q", i, b.Frames[i], want)
				}
			}
		})
	}
}

func TestParseBlock_Header(t *testing.T) {
	b, err := ParseBlock([]byte{0x81, 0xFF, 0xEC, 0x80, 0x01})
	if err != nil {
		t.Fatalf("ParseBlock failed: %v", err)
	}
	if b.Timecode != -20 {
		t.Errorf("Timecode = %d, want -20", b.Timecode)
	}
	if !b.Keyframe() {
		t.Error("Keyframe() = false, want true")
	}
}

func TestParseBlock_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"no marker", []byte{0x00, 0, 0, 0}},
		{"short header", []byte{0x81, 0x00}},
		{"missing lace count", []byte{0x81, 0x00, 0x00, 0x02}},
		{"xiph truncated", []byte{0x81, 0x00, 0x00, 0x02, 0x01, 0xFF}},
		{"xiph overrun", []byte{0x81, 0x00, 0x00, 0x02, 0x01, 0x09, 'a'}},
		{"fixed uneven", []byte{0x81, 0x00, 0x00, 0x04, 0x01, 'a', 'b', 'c'}},
		{"ebml negative", []byte{0x81, 0x00, 0x00, 0x06, 0x02, 0x81, 0x80, 'a'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBlock(tt.data); !errors.Is(err, ErrMalformedBlock) {
				t.Errorf("ParseBlock() error = %v, want ErrMalformedBlock", err)
			}
		})
	}
}
