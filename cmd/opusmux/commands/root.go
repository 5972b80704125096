package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/haivivi/opusmux/pkg/cli"
)

var (
	// Global flags
	verbose     bool
	cfgFile     string
	profileName string

	// Global configuration, loaded on first use
	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "opusmux",
	Short: "Package Opus audio into Ogg files",
	Long: `opusmux - build Ogg-Opus files from raw PCM or WebM recordings.

Inputs and outputs are local paths, s3://bucket/key locations, or "-" for
stdin/stdout. Outputs only appear once the whole stream has been written.

Encoding defaults come from the current profile in ~/.opusmux/config.yaml;
command-line flags override them.

Examples:
  # Encode 16kHz mono PCM
  opusmux encode -i speech.pcm -o speech.ogg --rate 16000

  # Resample 44.1kHz stereo to 48kHz and upload
  opusmux encode -i song.pcm --input-rate 44100 --channels 2 -o s3://media/song.ogg

  # Convert a browser recording
  opusmux webm -i recording.webm -o recording.ogg

  # Inspect the result
  opusmux probe recording.ogg`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// Execute runs the root command. An interrupt cancels the running
// conversion and discards its output.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.opusmux/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (default is the current profile)")
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// GetConfig returns the global configuration, loading it on first use.
func GetConfig() (*cli.Config, error) {
	if globalConfig == nil {
		cfg, err := cli.LoadConfigWithPath(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// resolveProfile returns the profile selected by --profile or the current
// profile. Without a readable config and without --profile, every setting
// falls back to its built-in default.
func resolveProfile() (*cli.Profile, error) {
	cfg, err := GetConfig()
	if err != nil {
		if profileName != "" {
			return nil, err
		}
		slog.Debug("using built-in defaults", "error", err)
		return &cli.Profile{}, nil
	}
	return cfg.ResolveProfile(profileName)
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
