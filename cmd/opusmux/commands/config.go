package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/opusmux/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage encoding profiles",
	Long: `Manage named profiles of encoding defaults.

A profile holds defaults for encode and webm: sample rate, channels, frame
duration, bitrate, tags file, S3 credentials and so on. The current profile
is used unless --profile names another one; flags always win.

Examples:
  opusmux config add speech
  opusmux config set speech sample_rate 16000
  opusmux config set speech s3.region eu-west-1
  opusmux config use speech
  opusmux config list
  opusmux config show speech`,
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		names := cfg.ListProfiles()
		if len(names) == 0 {
			fmt.Println("No profiles configured.")
			fmt.Println("Create one with: opusmux config add <name>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tRATE\tCHANNELS")
		for _, name := range names {
			current := ""
			if name == cfg.CurrentProfile {
				current = "*"
			}
			p := cfg.Profiles[name]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", current, name, orDefault(p.SampleRate), orDefault(p.Channels))
		}
		return w.Flush()
	},
}

func orDefault(v int) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprint(v)
}

var configAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := args[0]
		if err := validateProfileName(name); err != nil {
			return err
		}
		if _, ok := cfg.Profiles[name]; ok {
			return fmt.Errorf("profile %q already exists", name)
		}
		if err := cfg.AddProfile(name, &cli.Profile{}); err != nil {
			return err
		}
		fmt.Printf("Profile %q created.\n", name)
		fmt.Printf("Configure it with: opusmux config set %s <key> <value>\n", name)
		return nil
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("Profile %q deleted.\n", args[0])
		return nil
	},
}

var configUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the current profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("Switched to profile %q.\n", args[0])
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <name> <key> <value>",
	Short: "Set a profile value",
	Long: `Set one value of a profile.

Keys: ` + strings.Join(cli.ProfileKeys, ", "),
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name, key, value := args[0], args[1], args[2]
		p, err := cfg.GetProfile(name)
		if err != nil {
			return err
		}
		if err := p.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		if strings.Contains(key, "secret") {
			value = cli.MaskSecret(value)
		}
		fmt.Printf("Set %s = %s (profile: %s)\n", key, value, name)
		return nil
	},
}

var configShowFormat string

var configShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile (default: the current one)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := cfg.CurrentProfile
		if len(args) == 1 {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf("no current profile; name one or run 'opusmux config use <name>'")
		}
		p, err := cfg.GetProfile(name)
		if err != nil {
			return err
		}
		return cli.Output(p.Masked(), cli.OutputOptions{Format: cli.OutputFormat(configShowFormat)})
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		fmt.Println(cfg.Path())
		return nil
	},
}

// validateProfileName rejects names that would not survive a round trip
// through the command line.
func validateProfileName(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if strings.ContainsAny(name, " \t\n/\\") {
		return fmt.Errorf("profile name %q must not contain spaces or path separators", name)
	}
	return nil
}

func init() {
	configShowCmd.Flags().StringVar(&configShowFormat, "format", "yaml", "output format: yaml, json")

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configDeleteCmd)
	configCmd.AddCommand(configUseCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}
