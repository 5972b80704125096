package oggopus

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"testing"
	"testing/iotest"
	"time"
)

// fakeEncoder records the frames it sees and returns a short marker packet.
type fakeEncoder struct {
	calls  int
	sizes  []int
	failAt int
}

func (e *fakeEncoder) EncodeBytes(pcm []byte, frameSize int) ([]byte, error) {
	e.calls++
	if e.failAt > 0 && e.calls == e.failAt {
		return nil, errors.New("encoder exploded")
	}
	e.sizes = append(e.sizes, len(pcm))
	return []byte{0xf8, byte(e.calls)}, nil
}

type packetRecorder struct {
	pkts []Packet
	err  error
}

func (r *packetRecorder) WritePacket(p Packet) error {
	if r.err != nil {
		return r.err
	}
	r.pkts = append(r.pkts, p)
	return nil
}

func TestEncodePCM_OneSecondSilence(t *testing.T) {
	pcm := make([]byte, 48000*2)
	enc := &fakeEncoder{}
	rec := &packetRecorder{}

	stats, err := EncodePCM(context.Background(), bytes.NewReader(pcm), enc, rec, Config{
		SampleRate:   48000,
		Channels:     1,
		FrameSize:    960,
		FlushPackets: true,
	})
	if err != nil {
		t.Fatalf("EncodePCM failed: %v", err)
	}

	if len(rec.pkts) != 52 {
		t.Fatalf("got %d packets, want 2 headers + 50 data", len(rec.pkts))
	}
	if !bytes.HasPrefix(rec.pkts[0].Data, []byte("OpusHead")) {
		t.Error("packet 0 is not the ID header")
	}
	if !bytes.HasPrefix(rec.pkts[1].Data, []byte("OpusTags")) {
		t.Error("packet 1 is not the comment header")
	}
	checkStream(t, rec.pkts)

	last := rec.pkts[len(rec.pkts)-1]
	if last.GranulePos != 48000 {
		t.Errorf("final granule = %d, want 48000", last.GranulePos)
	}
	if stats.Frames != 50 || stats.Packets != 52 || stats.Granule != 48000 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Duration() != time.Second {
		t.Errorf("Duration() = %v, want 1s", stats.Duration())
	}
	for i, n := range enc.sizes {
		if n != 1920 {
			t.Errorf("encoder call %d got %d bytes, want 1920", i, n)
		}
	}
}

func TestEncodePCM_PartialTail(t *testing.T) {
	// 2.25 frames of stereo 16kHz audio, read one byte at a time.
	const frameSize = 320
	pcm := make([]byte, frameSize*4*2+frameSize)
	enc := &fakeEncoder{}
	rec := &packetRecorder{}

	stats, err := EncodePCM(context.Background(), iotest.OneByteReader(bytes.NewReader(pcm)), enc, rec, Config{
		SampleRate: 16000,
		Channels:   2,
		FrameSize:  frameSize,
	})
	if err != nil {
		t.Fatalf("EncodePCM failed: %v", err)
	}
	if enc.calls != 3 {
		t.Errorf("encoder called %d times, want 3", enc.calls)
	}
	for i, n := range enc.sizes {
		if n != frameSize*4 {
			t.Errorf("encoder call %d got %d bytes, want %d", i, n, frameSize*4)
		}
	}
	// 2*320 + 80 samples at 16kHz.
	if want := int64((2*frameSize + frameSize/4) * 3); stats.Granule != want {
		t.Errorf("Granule = %d, want %d", stats.Granule, want)
	}
	checkStream(t, rec.pkts)
}

func TestEncodePCM_Empty(t *testing.T) {
	rec := &packetRecorder{}
	stats, err := EncodePCM(context.Background(), bytes.NewReader(nil), &fakeEncoder{}, rec, Config{})
	if err != nil {
		t.Fatalf("EncodePCM failed: %v", err)
	}
	if stats.Frames != 0 || len(rec.pkts) != 2 {
		t.Errorf("stats = %+v, packets = %d", stats, len(rec.pkts))
	}
}

func TestEncodePCM_EncodeFailure(t *testing.T) {
	pcm := make([]byte, 960*2*5)
	rec := &packetRecorder{}
	_, err := EncodePCM(context.Background(), bytes.NewReader(pcm), &fakeEncoder{failAt: 3}, rec, Config{FrameSize: 960})
	if !errors.Is(err, ErrEncodeFailure) {
		t.Errorf("error = %v, want ErrEncodeFailure", err)
	}
	if !errors.Is(err, ErrIncompleteStream) {
		t.Errorf("error = %v, want ErrIncompleteStream", err)
	}
	for _, p := range rec.pkts {
		if p.EOS {
			t.Error("EOS written for a failed session")
		}
	}
}

func TestEncodePCM_ReadError(t *testing.T) {
	boom := errors.New("disk gone")
	r := io.MultiReader(bytes.NewReader(make([]byte, 960*2*3)), iotest.ErrReader(boom))
	_, err := EncodePCM(context.Background(), r, &fakeEncoder{}, &packetRecorder{}, Config{FrameSize: 960})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
	if !errors.Is(err, ErrIncompleteStream) {
		t.Errorf("error = %v, want ErrIncompleteStream", err)
	}
}

func TestEncodePCM_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := EncodePCM(ctx, bytes.NewReader(make([]byte, 1920)), &fakeEncoder{}, &packetRecorder{}, Config{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if !errors.Is(err, ErrIncompleteStream) {
		t.Errorf("error = %v, want ErrIncompleteStream before the first frame too", err)
	}
}

func TestMuxFrames_SourceErrorBeforeFirstFrame(t *testing.T) {
	boom := errors.New("source failed")
	rec := &packetRecorder{}
	_, err := MuxFrames(context.Background(), frameSeq(nil, boom), rec, Config{})
	if !errors.Is(err, boom) || !errors.Is(err, ErrIncompleteStream) {
		t.Errorf("error = %v, want source error joined with ErrIncompleteStream", err)
	}
	if len(rec.pkts) != 0 {
		t.Errorf("wrote %d packets, want none", len(rec.pkts))
	}
}

func TestEncodePCM_WriteError(t *testing.T) {
	boom := errors.New("pipe closed")
	_, err := EncodePCM(context.Background(), bytes.NewReader(make([]byte, 1920*3)), &fakeEncoder{}, &packetRecorder{err: boom}, Config{FrameSize: 960})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}

func TestEncodePCM_InvalidRate(t *testing.T) {
	_, err := EncodePCM(context.Background(), bytes.NewReader(nil), &fakeEncoder{}, &packetRecorder{}, Config{SampleRate: 44100})
	if !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("error = %v, want ErrInvalidSampleRate", err)
	}
}

func frameSeq(frames []EncodedFrame, tail error) iter.Seq2[EncodedFrame, error] {
	return func(yield func(EncodedFrame, error) bool) {
		for _, f := range frames {
			if !yield(f, nil) {
				return
			}
		}
		if tail != nil {
			yield(EncodedFrame{}, tail)
		}
	}
}

func TestMuxFrames(t *testing.T) {
	frames := []EncodedFrame{
		{Data: []byte{1}, Samples: 480},
		{Data: []byte{2}, Samples: 480},
		{Data: []byte{3}, Samples: 240},
	}
	rec := &packetRecorder{}
	stats, err := MuxFrames(context.Background(), frameSeq(frames, nil), rec, Config{SampleRate: 24000})
	if err != nil {
		t.Fatalf("MuxFrames failed: %v", err)
	}
	if stats.Granule != 2400 {
		t.Errorf("Granule = %d, want 2400", stats.Granule)
	}
	if len(rec.pkts) != 5 {
		t.Fatalf("got %d packets, want 5", len(rec.pkts))
	}
	checkStream(t, rec.pkts)
}

func TestMuxFrames_SourceError(t *testing.T) {
	boom := errors.New("source failed")
	frames := []EncodedFrame{{Data: []byte{1}, Samples: 960}}
	_, err := MuxFrames(context.Background(), frameSeq(frames, boom), &packetRecorder{}, Config{})
	if !errors.Is(err, boom) || !errors.Is(err, ErrIncompleteStream) {
		t.Errorf("error = %v, want source error joined with ErrIncompleteStream", err)
	}
}
