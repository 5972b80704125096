package commands

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/haivivi/opusmux/pkg/audio/codec/opus"
	"github.com/haivivi/opusmux/pkg/audio/oggopus"
	"github.com/haivivi/opusmux/pkg/audio/pcm"
	"github.com/haivivi/opusmux/pkg/audio/resampler"
	"github.com/haivivi/opusmux/pkg/cli"
)

// frameDurations are the Opus frame durations, in milliseconds, that a
// whole-millisecond flag can express.
var frameDurations = []int{5, 10, 20, 40, 60}

var applications = map[string]int{
	"voip":     opus.ApplicationVoIP,
	"audio":    opus.ApplicationAudio,
	"lowdelay": opus.ApplicationRestrictedLowdelay,
}

type encodeFlags struct {
	streamFlags

	rate          int
	channels      int
	inputRate     int
	inputChannels int
	frameMillis   int
	bitrate       int
	complexity    int
	application   string
}

var encodeOpts encodeFlags

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode raw PCM into an Ogg-Opus file",
	Long: `Encode signed 16-bit little-endian interleaved PCM into Ogg-Opus.

The encoder runs at --rate, which must be one Opus accepts (8000, 12000,
16000, 24000 or 48000). Input at any other rate or channel layout is
converted first when --input-rate or --input-channels say so.

The last partial frame is padded with silence; the granule position still
ends at the true sample count.

Examples:
  opusmux encode -i speech.pcm --rate 16000
  opusmux encode -i cd.pcm --input-rate 44100 --input-channels 2 --channels 2 -o cd.ogg
  arecord -f S16_LE -r 48000 | opusmux encode -i - -o s3://media/live.ogg --tag TITLE=live`,
	Args: cobra.NoArgs,
	RunE: runEncode,
}

func init() {
	f := encodeCmd.Flags()
	encodeOpts.register(encodeCmd)
	f.IntVarP(&encodeOpts.rate, "rate", "r", oggopus.GranuleRate, "encoder sample rate in Hz")
	f.IntVarP(&encodeOpts.channels, "channels", "c", 1, "encoder channels (1 or 2)")
	f.IntVar(&encodeOpts.inputRate, "input-rate", 0, "input sample rate in Hz (default: --rate)")
	f.IntVar(&encodeOpts.inputChannels, "input-channels", 0, "input channels (default: --channels)")
	f.IntVar(&encodeOpts.frameMillis, "frame-ms", 40, "frame duration in ms (5, 10, 20, 40 or 60)")
	f.IntVarP(&encodeOpts.bitrate, "bitrate", "b", 0, "target bitrate in bits per second (default: libopus chooses)")
	f.IntVar(&encodeOpts.complexity, "complexity", -1, "encoder complexity 0-10 (default: libopus chooses)")
	f.StringVar(&encodeOpts.application, "application", "audio", "encoder application: voip, audio or lowdelay")
	rootCmd.AddCommand(encodeCmd)
}

func (f *encodeFlags) resolve(cmd *cobra.Command, p *cli.Profile) error {
	f.streamFlags.resolve(cmd, p)
	f.rate = intSetting(cmd, "rate", f.rate, p.SampleRate)
	f.channels = intSetting(cmd, "channels", f.channels, p.Channels)
	f.frameMillis = intSetting(cmd, "frame-ms", f.frameMillis, p.FrameMillis)
	f.bitrate = intSetting(cmd, "bitrate", f.bitrate, p.Bitrate)
	f.application = stringSetting(cmd, "application", f.application, p.Application)
	if !cmd.Flags().Changed("complexity") && p.Complexity != nil {
		f.complexity = *p.Complexity
	}
	if f.inputRate == 0 {
		f.inputRate = f.rate
	}
	if f.inputChannels == 0 {
		f.inputChannels = f.channels
	}

	if !slices.Contains(frameDurations, f.frameMillis) {
		return fmt.Errorf("invalid frame duration %dms (want one of %v)", f.frameMillis, frameDurations)
	}
	if _, ok := applications[f.application]; !ok {
		return fmt.Errorf("invalid application %q (want voip, audio or lowdelay)", f.application)
	}
	if f.complexity > 10 {
		return fmt.Errorf("invalid complexity %d (want 0-10)", f.complexity)
	}
	return nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, err := resolveProfile()
	if err != nil {
		return err
	}
	opts := &encodeOpts
	if err := opts.resolve(cmd, p); err != nil {
		return err
	}
	comments, err := opts.comments()
	if err != nil {
		return err
	}

	cfg := oggopus.Config{
		SampleRate:   opts.rate,
		Channels:     opts.channels,
		FrameSize:    opts.rate * opts.frameMillis / 1000,
		Vendor:       opts.vendor,
		Comments:     comments,
		FlushPackets: opts.flush,
	}
	if err := cfg.Defaults().Validate(); err != nil {
		return err
	}

	enc, err := opus.NewEncoder(opts.rate, opts.channels, applications[opts.application])
	if err != nil {
		return err
	}
	defer enc.Close()
	if opts.bitrate > 0 {
		if err := enc.SetBitrate(opts.bitrate); err != nil {
			return err
		}
	}
	if opts.complexity >= 0 {
		if err := enc.SetComplexity(opts.complexity); err != nil {
			return err
		}
	}

	in, err := openInput(ctx, opts.input, p)
	if err != nil {
		return err
	}
	defer in.Close()

	var src io.Reader = in
	srcFmt := pcm.Format{SampleRate: opts.inputRate, Channels: opts.inputChannels}
	dstFmt := pcm.Format{SampleRate: opts.rate, Channels: opts.channels}
	if srcFmt != dstFmt {
		rs, err := resampler.New(in, srcFmt, dstFmt)
		if err != nil {
			return err
		}
		defer rs.Close()
		src = rs
		slog.Debug("converting input", "from", srcFmt, "to", dstFmt)
	}

	slog.Debug("encoding",
		"input", opts.input,
		"output", opts.output,
		"rate", opts.rate,
		"channels", opts.channels,
		"frame_ms", opts.frameMillis,
		"application", opts.application,
		"tags", len(comments))

	res, err := convert(ctx, opts.output, opts.serial, p, func(w oggopus.PacketWriter) (oggopus.Stats, error) {
		return oggopus.EncodePCM(ctx, src, enc, w, cfg)
	})
	if err != nil {
		return err
	}
	report(res)
	return nil
}
