package oggopus

import (
	"bytes"
	"testing"
)

func TestFrameAligner_Chunkings(t *testing.T) {
	const (
		frameSamples = 160
		channels     = 2
		frameBytes   = frameSamples * 2 * channels
	)

	// 3.5 frames of a recognizable byte pattern.
	input := make([]byte, frameBytes*3+frameBytes/2)
	for i := range input {
		input[i] = byte(i % 251)
	}

	chunkSizes := []int{1, 3, 7, 100, frameBytes - 1, frameBytes, frameBytes + 1, len(input)}
	for _, size := range chunkSizes {
		a := NewFrameAligner(frameSamples, channels)
		var frames []AudioFrame
		for off := 0; off < len(input); off += size {
			end := min(off+size, len(input))
			frames = append(frames, a.Push(input[off:end])...)
		}
		last, ok := a.Finish()
		if !ok {
			t.Fatalf("chunk %d: Finish() returned no frame", size)
		}
		frames = append(frames, last)

		if len(frames) != 4 {
			t.Fatalf("chunk %d: got %d frames, want 4", size, len(frames))
		}
		var joined []byte
		for i, f := range frames {
			if len(f.PCM) != frameBytes {
				t.Errorf("chunk %d: frame %d has %d bytes, want %d", size, i, len(f.PCM), frameBytes)
			}
			if f.Channels != channels {
				t.Errorf("chunk %d: frame %d Channels = %d", size, i, f.Channels)
			}
			want := frameSamples
			if i == len(frames)-1 {
				want = frameSamples / 2
			}
			if f.Samples != want {
				t.Errorf("chunk %d: frame %d Samples = %d, want %d", size, i, f.Samples, want)
			}
			joined = append(joined, f.PCM...)
		}
		if !bytes.Equal(joined[:len(input)], input) {
			t.Errorf("chunk %d: frames do not reproduce input", size)
		}
		for _, b := range joined[len(input):] {
			if b != 0 {
				t.Errorf("chunk %d: padding is not zero", size)
				break
			}
		}
	}
}

func TestFrameAligner_FinishEmpty(t *testing.T) {
	a := NewFrameAligner(960, 1)
	if frames := a.Push(make([]byte, 1920*2)); len(frames) != 2 {
		t.Fatalf("Push returned %d frames, want 2", len(frames))
	}
	if _, ok := a.Finish(); ok {
		t.Error("Finish() returned a frame for an empty remainder")
	}
	if a.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0", a.Buffered())
	}
}

func TestFrameAligner_PartialSample(t *testing.T) {
	a := NewFrameAligner(960, 2)
	a.Push(make([]byte, 10))

	f, ok := a.Finish()
	if !ok {
		t.Fatal("Finish() returned no frame")
	}
	// 10 bytes hold two whole stereo samples; the trailing 2 bytes are a
	// fragment.
	if f.Samples != 2 {
		t.Errorf("Samples = %d, want 2", f.Samples)
	}
	if len(f.PCM) != a.FrameBytes() {
		t.Errorf("len(PCM) = %d, want %d", len(f.PCM), a.FrameBytes())
	}
}

func TestFrameAligner_NoAlias(t *testing.T) {
	a := NewFrameAligner(2, 1)
	in := []byte{1, 2, 3, 4}
	frames := a.Push(in)
	in[0] = 9
	if frames[0].PCM[0] != 1 {
		t.Error("frame aliases the pushed slice")
	}
}
