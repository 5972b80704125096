package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haivivi/opusmux/pkg/audio/codec/ebml"
	"github.com/haivivi/opusmux/pkg/audio/oggopus"
	"github.com/haivivi/opusmux/pkg/audio/webm"
)

var webmOpts streamFlags

var webmCmd = &cobra.Command{
	Use:   "webm",
	Short: "Re-mux the Opus track of a WebM recording into Ogg-Opus",
	Long: `Copy the Opus packets of a WebM (Matroska) file into an Ogg-Opus file
without re-encoding.

The first A_OPUS track is used. Files that omit CodecID fall back to the
last audio track. Its CodecPrivate becomes the Ogg ID header unchanged.
DiscardPadding on the last block trims the final granule position.

Examples:
  opusmux webm -i recording.webm
  curl -s https://example.com/rec.webm | opusmux webm -i - -o rec.ogg`,
	Args: cobra.NoArgs,
	RunE: runWebm,
}

func init() {
	webmOpts.register(webmCmd)
	rootCmd.AddCommand(webmCmd)
}

func runWebm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, err := resolveProfile()
	if err != nil {
		return err
	}
	opts := &webmOpts
	opts.resolve(cmd, p)
	comments, err := opts.comments()
	if err != nil {
		return err
	}
	cfg := oggopus.Config{
		Vendor:       opts.vendor,
		Comments:     comments,
		FlushPackets: opts.flush,
	}

	in, err := openInput(ctx, opts.input, p)
	if err != nil {
		return err
	}
	defer in.Close()

	slog.Debug("extracting", "input", opts.input, "output", opts.output, "tags", len(comments))
	dec := ebml.NewDecoder(in)
	res, err := convert(ctx, opts.output, opts.serial, p, func(w oggopus.PacketWriter) (oggopus.Stats, error) {
		return webm.Extract(ctx, dec.Events(), w, cfg)
	})
	if err != nil {
		return err
	}
	report(res)
	return nil
}
