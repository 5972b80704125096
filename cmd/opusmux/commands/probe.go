package commands

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/opusmux/pkg/audio/codec/ogg"
	"github.com/haivivi/opusmux/pkg/audio/codec/opus"
	"github.com/haivivi/opusmux/pkg/audio/oggopus"
	"github.com/haivivi/opusmux/pkg/cli"
)

var (
	probeFormat string
	probeQuery  string
)

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Inspect the headers and packets of an Ogg-Opus file",
	Long: `Read an Ogg-Opus file and summarize its ID header, comment header and
audio packets.

The first logical stream is reported; later chained streams are skipped.
Without --format the summary is drawn for a terminal. --query applies a jq
expression to the report and implies --format yaml unless one is given.

Examples:
  opusmux probe speech.ogg
  opusmux probe s3://media/song.ogg --format json
  opusmux probe speech.ogg --query .comments`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().StringVar(&probeFormat, "format", "", "output format: yaml, json (default: terminal summary)")
	probeCmd.Flags().StringVarP(&probeQuery, "query", "q", "", "jq expression applied to the report")
	rootCmd.AddCommand(probeCmd)
}

// probeReport is what probe prints.
type probeReport struct {
	Serial          uint32         `json:"serial" yaml:"serial"`
	Version         uint8          `json:"version" yaml:"version"`
	Channels        uint8          `json:"channels" yaml:"channels"`
	PreSkip         uint16         `json:"pre_skip" yaml:"pre_skip"`
	InputSampleRate uint32         `json:"input_sample_rate" yaml:"input_sample_rate"`
	OutputGain      int16          `json:"output_gain" yaml:"output_gain"`
	MappingFamily   uint8          `json:"mapping_family" yaml:"mapping_family"`
	Vendor          string         `json:"vendor" yaml:"vendor"`
	Comments        []string       `json:"comments" yaml:"comments"`
	Packets         int64          `json:"packets" yaml:"packets"`
	Bytes           int64          `json:"bytes" yaml:"bytes"`
	Samples         int64          `json:"samples" yaml:"samples"`
	Granule         int64          `json:"granule" yaml:"granule"`
	DurationMillis  int64          `json:"duration_ms" yaml:"duration_ms"`
	Bitrate         float64        `json:"bitrate" yaml:"bitrate"`
	Modes           map[string]int `json:"modes" yaml:"modes"`
	EOS             bool           `json:"eos" yaml:"eos"`
	Holes           int            `json:"holes,omitempty" yaml:"holes,omitempty"`
}

func (r *probeReport) duration() time.Duration {
	return time.Duration(r.DurationMillis) * time.Millisecond
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, err := resolveProfile()
	if err != nil {
		return err
	}
	in, err := openInput(ctx, args[0], p)
	if err != nil {
		return err
	}
	defer in.Close()

	report, err := probe(ogg.ReadPackets(in))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	format := cli.OutputFormat(probeFormat)
	if format == "" && probeQuery == "" {
		fmt.Fprintln(os.Stdout, report.summary(args[0]))
		return nil
	}
	return cli.Output(report, cli.OutputOptions{Format: format, Query: probeQuery})
}

// probe collects the report of the first logical stream in pkts.
func probe(pkts iter.Seq2[*ogg.Packet, error]) (*probeReport, error) {
	var (
		r       = &probeReport{Modes: make(map[string]int)}
		serial  int32
		started bool
		skipped bool
		n       int
		head    oggopus.StreamHeader
	)
	for pkt, err := range pkts {
		if errors.Is(err, ogg.ErrHole) {
			r.Holes++
			continue
		}
		if err != nil {
			return nil, err
		}
		if !started {
			serial, started = pkt.SerialNo, true
			r.Serial = uint32(serial)
		}
		if pkt.SerialNo != serial {
			if !skipped {
				slog.Warn("skipping other logical stream", "serial", uint32(pkt.SerialNo))
				skipped = true
			}
			continue
		}

		n++
		switch n {
		case 1:
			h, err := oggopus.ParseIDHeader(pkt.Data)
			if err != nil {
				return nil, err
			}
			head = h
		case 2:
			block, err := oggopus.ParseCommentHeader(pkt.Data)
			if err != nil {
				return nil, err
			}
			r.Vendor = block.Vendor
			for _, c := range block.Retained() {
				r.Comments = append(r.Comments, c.String())
			}
		default:
			op := opus.Packet(pkt.Data)
			r.Packets++
			r.Bytes += int64(len(pkt.Data))
			r.Samples += int64(op.Samples())
			r.Modes[op.Mode().String()]++
		}
		if pkt.GranulePos >= 0 {
			r.Granule = pkt.GranulePos
		}
		r.EOS = pkt.EOS
	}
	if !started {
		return nil, errors.New("no ogg pages found")
	}

	r.Version = head.Version
	r.Channels = head.Channels
	r.PreSkip = head.PreSkip
	r.InputSampleRate = head.InputSampleRate
	r.OutputGain = head.OutputGain
	r.MappingFamily = head.MappingFamily

	playable := max(r.Granule-int64(r.PreSkip), 0)
	r.DurationMillis = playable * 1000 / oggopus.GranuleRate
	if playable > 0 {
		r.Bitrate = float64(r.Bytes*8) * oggopus.GranuleRate / float64(playable)
	}
	return r, nil
}

func (r *probeReport) summary(name string) string {
	rows := []cli.Row{
		{Label: "Channels", Value: strconv.Itoa(int(r.Channels))},
		{Label: "Input rate", Value: fmt.Sprintf("%d Hz", r.InputSampleRate)},
		{Label: "Pre-skip", Value: strconv.Itoa(int(r.PreSkip))},
		{Label: "Output gain", Value: fmt.Sprintf("%.2f dB", float64(r.OutputGain)/256)},
		{Label: "Vendor", Value: r.Vendor},
		{Label: "Duration", Value: cli.FormatDuration(r.duration())},
		{Label: "Bitrate", Value: cli.FormatBitrate(r.Bitrate)},
		{Label: "Size", Value: cli.FormatBytes(r.Bytes)},
	}
	for _, c := range r.Comments {
		rows = append(rows, cli.Row{Label: "Tag", Value: c})
	}

	note := fmt.Sprintf("%d packets, %d samples, granule %d", r.Packets, r.Samples, r.Granule)
	if !r.EOS {
		note += ", no end-of-stream"
	}
	if r.Holes > 0 {
		note += fmt.Sprintf(", %d holes", r.Holes)
	}
	return cli.Summary{
		Styles: cli.NewStyles(cli.DefaultTheme),
		Title:  fmt.Sprintf("%s (serial %d)", name, r.Serial),
		Rows:   rows,
		Note:   note,
	}.Render()
}
