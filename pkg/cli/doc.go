// Package cli provides common CLI utilities for the opusmux command.
//
// This package includes:
//   - Profile configuration stored in ~/.opusmux/config.yaml, kubectl style
//   - Comment tag files (YAML or JSON, order preserved)
//   - Output formatting (JSON, YAML) and styled terminal summaries
//
// Example usage:
//
//	cfg, err := cli.LoadConfig()
//	profile, err := cfg.ResolveProfile("")
//
//	cli.Output(report, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	})
package cli
