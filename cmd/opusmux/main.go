// Package main is the entry point for the opusmux CLI.
//
// Usage:
//
//	opusmux [flags] <command> [args]
//
// Commands:
//
//	encode   - Encode raw PCM into an Ogg-Opus file
//	webm     - Re-mux the Opus track of a WebM recording into Ogg-Opus
//	probe    - Inspect the headers and packets of an Ogg-Opus file
//	config   - Manage encoding profiles
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/opusmux/cmd/opusmux/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
