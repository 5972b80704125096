package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/haivivi/opusmux/pkg/audio/codec/ogg"
	"github.com/haivivi/opusmux/pkg/audio/oggopus"
	"github.com/haivivi/opusmux/pkg/cli"
	"github.com/haivivi/opusmux/pkg/storage"
)

// stdio is the name that selects stdin or stdout.
const stdio = "-"

func s3Options(p *cli.Profile) storage.S3Options {
	if p.S3 == nil {
		return storage.S3Options{}
	}
	return storage.S3Options{
		Region:          p.S3.Region,
		Endpoint:        p.S3.Endpoint,
		AccessKeyID:     p.S3.AccessKeyID,
		SecretAccessKey: p.S3.SecretAccessKey,
		PathStyle:       p.S3.PathStyle,
	}
}

// openInput opens a local path, an s3:// location or stdin.
func openInput(ctx context.Context, name string, p *cli.Profile) (io.ReadCloser, error) {
	if name == stdio {
		return io.NopCloser(os.Stdin), nil
	}
	loc, err := storage.ParseLocation(name)
	if err != nil {
		return nil, err
	}
	slog.Debug("opening input", "location", loc)
	r, err := storage.Open(loc, s3Options(p)).Open(ctx, loc.Name)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return r, nil
}

// createOutput starts a staged output. Stdout cannot be staged, so a failed
// conversion may leave a partial stream there.
func createOutput(ctx context.Context, name string, p *cli.Profile) (storage.Writer, error) {
	if name == stdio {
		return stdoutWriter{os.Stdout}, nil
	}
	loc, err := storage.ParseLocation(name)
	if err != nil {
		return nil, err
	}
	slog.Debug("creating output", "location", loc)
	w, err := storage.Open(loc, s3Options(p)).Create(ctx, loc.Name)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return w, nil
}

type stdoutWriter struct{ io.Writer }

func (stdoutWriter) Commit() error { return nil }
func (stdoutWriter) Abort() error  { return nil }

// oggSink pages muxer packets with libogg.
type oggSink struct {
	enc *ogg.Encoder
}

// newOggSink creates a sink writing to w. A negative serial picks a random
// one.
func newOggSink(w io.Writer, serial int64) (*oggSink, error) {
	var (
		enc *ogg.Encoder
		err error
	)
	if serial < 0 {
		enc, err = ogg.NewEncoder(w)
	} else {
		enc, err = ogg.NewEncoderWithSerial(w, int32(uint32(serial)))
	}
	if err != nil {
		return nil, err
	}
	return &oggSink{enc: enc}, nil
}

func (s *oggSink) WritePacket(p oggopus.Packet) error {
	return s.enc.WritePacket(p.Data, p.GranulePos, p.PacketNo, p.BOS, p.EOS, p.Flush)
}

// convert runs fn with an Ogg sink on a staged output. The output is
// committed only when fn and the final page flush both succeed.
func convert(ctx context.Context, output string, serial int64, p *cli.Profile, fn func(oggopus.PacketWriter) (oggopus.Stats, error)) (result, error) {
	w, err := createOutput(ctx, output, p)
	if err != nil {
		return result{}, err
	}
	sink, err := newOggSink(w, serial)
	if err != nil {
		w.Abort()
		return result{}, err
	}

	stats, err := fn(sink)
	if err == nil {
		err = sink.enc.Close()
	} else {
		sink.enc.Close()
	}
	if err != nil {
		if aerr := w.Abort(); aerr != nil {
			slog.Warn("failed to discard output", "output", output, "error", aerr)
		}
		return result{}, err
	}
	if err := w.Commit(); err != nil {
		return result{}, fmt.Errorf("commit output: %w", err)
	}
	return result{
		Output:   output,
		Serial:   uint32(sink.enc.SerialNo()),
		Frames:   stats.Frames,
		Packets:  stats.Packets,
		Pages:    sink.enc.Pages(),
		Bytes:    sink.enc.BytesWritten(),
		Granule:  stats.Granule,
		Duration: stats.Duration(),
	}, nil
}

// result describes one written Ogg-Opus file.
type result struct {
	Output   string
	Serial   uint32
	Frames   int
	Packets  int64
	Pages    int64
	Bytes    int64
	Granule  int64
	Duration time.Duration
}

// report prints a one-line summary. When the stream went to stdout the
// summary goes to stderr.
func report(r result) {
	line := fmt.Sprintf("%s: %d frames, %d pages, %s, %s (serial %d)",
		r.Output, r.Frames, r.Pages, cli.FormatBytes(r.Bytes), cli.FormatDuration(r.Duration), r.Serial)
	if r.Output == stdio {
		fmt.Fprintln(os.Stderr, line)
		return
	}
	cli.PrintSuccess("%s", line)
}
