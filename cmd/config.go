package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bnema/seatctl/internal/config"
	"github.com/bnema/seatctl/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage seatctl configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, ui.FormatHeader("Configuration", config.GetConfigPath()))

		fmt.Fprintln(out, ui.HeaderStyle.Render("[gateway]"))
		fmt.Fprintf(out, "  Socket: %s\n", cfg.Gateway.SocketPath)
		fmt.Fprintf(out, "  Acquire Timeout: %s\n", cfg.Gateway.AcquireTimeout)
		fmt.Fprintf(out, "  Dial Timeout: %s\n", cfg.Gateway.DialTimeout)

		fmt.Fprintln(out, ui.HeaderStyle.Render("[logging]"))
		fmt.Fprintf(out, "  File Logging: %v\n", cfg.Logging.FileLogging)
		level := cfg.Logging.LogLevel
		if level == "" {
			level = "(LOG_LEVEL)"
		}
		fmt.Fprintf(out, "  Level: %s\n", level)

		fmt.Fprintln(out, ui.HeaderStyle.Render("[compositor]"))
		for _, s := range cfg.Compositor.Seats {
			fmt.Fprintf(out, "  Seat %s: %s\n", s.Name, strings.Join(s.Capabilities, ", "))
		}
		for _, s := range cfg.Compositor.Surfaces {
			fmt.Fprintf(out, "  Surface %d: accepts [%s] focus [%s]\n",
				s.ID, strings.Join(s.AcceptedSeats, ", "), strings.Join(s.Focus, ", "))
		}

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		configPath := config.GetConfigPath()
		if _, err := os.Stat(configPath); err == nil {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				fmt.Fprintf(out, "Configuration file already exists at: %s\n", configPath)
				fmt.Fprintln(out, "Use --force to overwrite")
				return nil
			}
		}

		if err := config.Save(); err != nil {
			return err
		}

		fmt.Fprintln(out, ui.FormatResult(true, "Configuration initialized at: "+configPath))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().Bool("force", false, "Force overwrite existing configuration")

	rootCmd.AddCommand(configCmd)
}
