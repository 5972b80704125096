package commands

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/opusmux/pkg/audio/oggopus"
	"github.com/haivivi/opusmux/pkg/cli"
)

// streamFlags are shared by every command that writes an Ogg-Opus file.
type streamFlags struct {
	input    string
	output   string
	vendor   string
	tagsFile string
	tags     []string
	flush    bool
	serial   int64
}

func (f *streamFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", `input file, s3://bucket/key, or "-" for stdin (required)`)
	cmd.Flags().StringVarP(&f.output, "output", "o", "", `output file, s3://bucket/key, or "-" for stdout (default: input with .ogg extension)`)
	cmd.Flags().StringVar(&f.vendor, "vendor", oggopus.DefaultVendor, "vendor string of the comment header")
	cmd.Flags().StringVar(&f.tagsFile, "tags", "", "YAML or JSON file of comment tags")
	cmd.Flags().StringArrayVar(&f.tags, "tag", nil, "comment tag KEY=VALUE, appended after --tags (repeatable)")
	cmd.Flags().BoolVar(&f.flush, "flush", true, "put every audio packet on its own page")
	cmd.Flags().Int64Var(&f.serial, "serial", -1, "Ogg stream serial number (default: random)")
	cmd.MarkFlagRequired("input")
}

// resolve fills unset flags from the profile.
func (f *streamFlags) resolve(cmd *cobra.Command, p *cli.Profile) {
	f.vendor = stringSetting(cmd, "vendor", f.vendor, p.Vendor)
	f.tagsFile = stringSetting(cmd, "tags", f.tagsFile, p.TagsFile)
	if !cmd.Flags().Changed("flush") && p.FlushPackets != nil {
		f.flush = *p.FlushPackets
	}
	if f.output == "" {
		f.output = defaultOutput(f.input)
	}
}

// comments loads the tags file and appends the --tag values.
func (f *streamFlags) comments() ([]oggopus.Comment, error) {
	var comments []oggopus.Comment
	if f.tagsFile != "" {
		loaded, err := cli.LoadTags(f.tagsFile)
		if err != nil {
			return nil, err
		}
		comments = loaded
	}
	for _, t := range f.tags {
		if key, value, ok := strings.Cut(t, "="); ok {
			comments = append(comments, oggopus.NewComment(key, value))
		} else {
			comments = append(comments, oggopus.UnsetComment(t))
		}
	}
	return comments, nil
}

// defaultOutput swaps the input's extension for .ogg. Stdin maps to stdout.
func defaultOutput(input string) string {
	if input == stdio {
		return stdio
	}
	ext := filepath.Ext(input)
	if ext == ".ogg" {
		return strings.TrimSuffix(input, ext) + ".opus.ogg"
	}
	return strings.TrimSuffix(input, ext) + ".ogg"
}

// intSetting returns the flag value when it was given or the profile has
// nothing, otherwise the profile value. The flag default is the built-in
// default.
func intSetting(cmd *cobra.Command, name string, flag, profile int) int {
	if cmd.Flags().Changed(name) || profile == 0 {
		return flag
	}
	return profile
}

func stringSetting(cmd *cobra.Command, name string, flag, profile string) string {
	if cmd.Flags().Changed(name) || profile == "" {
		return flag
	}
	return profile
}
