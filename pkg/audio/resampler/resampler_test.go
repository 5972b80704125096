package resampler

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/haivivi/opusmux/pkg/audio/pcm"
)

func sine(f pcm.Format, hz float64, frames int) []byte {
	var out []float64
	for i := range frames {
		v := 0.5 * math.Sin(2*math.Pi*hz*float64(i)/float64(f.SampleRate))
		for range f.Channels {
			out = append(out, v)
		}
	}
	return pcm.AppendInt16s(nil, out)
}

func TestResampler_Passthrough(t *testing.T) {
	in := sine(pcm.L16Mono48K, 440, 4800)
	r, err := New(bytes.NewReader(in), pcm.L16Mono48K, pcm.L16Mono48K)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, in) {
		t.Fatalf("passthrough changed %d bytes of audio", len(in))
	}
}

func TestResampler_ChannelConversion(t *testing.T) {
	mono := sine(pcm.L16Mono48K, 440, 960)

	up, err := New(bytes.NewReader(mono), pcm.L16Mono48K, pcm.L16Stereo48K)
	if err != nil {
		t.Fatal(err)
	}
	stereo, err := io.ReadAll(up)
	if err != nil {
		t.Fatal(err)
	}
	if len(stereo) != 2*len(mono) {
		t.Fatalf("upmix produced %d bytes, want %d", len(stereo), 2*len(mono))
	}

	down, err := New(bytes.NewReader(stereo), pcm.L16Stereo48K, pcm.L16Mono48K)
	if err != nil {
		t.Fatal(err)
	}
	back, err := io.ReadAll(down)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, mono) {
		t.Fatal("upmix then downmix did not restore the signal")
	}
}

func TestResampler_RateConversion(t *testing.T) {
	src := pcm.L16Mono16K
	in := sine(src, 440, 16000) // one second
	r, err := New(bytes.NewReader(in), src, pcm.L16Mono48K)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(out)%2 != 0 {
		t.Fatalf("output length %d is not whole samples", len(out))
	}
	// Filter delay may hold back a little of the tail.
	got := pcm.L16Mono48K.Duration(int64(len(out)))
	if got < 900e6 || got > 1010e6 {
		t.Fatalf("output duration = %v, want about 1s", got)
	}
}

func TestResampler_InvalidFormat(t *testing.T) {
	if _, err := New(bytes.NewReader(nil), pcm.Format{}, pcm.L16Mono48K); err == nil {
		t.Error("expected error for zero source format")
	}
	surround := pcm.Format{SampleRate: 48000, Channels: 6}
	if _, err := New(bytes.NewReader(nil), surround, pcm.L16Mono48K); err == nil {
		t.Error("expected error for 6 channels")
	}
}

func TestResampler_ShortBuffer(t *testing.T) {
	r, err := New(bytes.NewReader(make([]byte, 8)), pcm.L16Mono48K, pcm.L16Stereo48K)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Read(make([]byte, 3)); err != io.ErrShortBuffer {
		t.Fatalf("Read error = %v, want io.ErrShortBuffer", err)
	}
}

func TestResampler_Close(t *testing.T) {
	r, err := New(bytes.NewReader(make([]byte, 4096)), pcm.L16Mono48K, pcm.L16Mono48K)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Read(make([]byte, 64)); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("Read after Close = %v, want io.ErrClosedPipe", err)
	}

	boom := errors.New("boom")
	r, _ = New(bytes.NewReader(make([]byte, 4096)), pcm.L16Mono48K, pcm.L16Mono48K)
	r.CloseWithError(boom)
	if _, err := r.Read(make([]byte, 64)); err != boom {
		t.Fatalf("Read after CloseWithError = %v, want %v", err, boom)
	}
}
