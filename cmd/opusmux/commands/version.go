package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/opusmux/cmd/opusmux/internal/build"
	"github.com/haivivi/opusmux/pkg/cli"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFormat != "" {
			return cli.Output(build.Get(), cli.OutputOptions{Format: cli.OutputFormat(versionFormat)})
		}
		fmt.Println(build.String())
		if IsVerbose() {
			info := build.Get()
			fmt.Printf("  go:     %s\n", info.Go)
			if cfg, err := GetConfig(); err == nil {
				fmt.Printf("  config: %s\n", cfg.Path())
			} else {
				fmt.Printf("  config: (unavailable: %v)\n", err)
			}
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "", "output format: yaml, json")
	rootCmd.AddCommand(versionCmd)
}
