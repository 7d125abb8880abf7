package cmd

import (
	"fmt"

	"github.com/bnema/seatctl/internal/compositor"
	"github.com/bnema/seatctl/internal/config"
	"github.com/bnema/seatctl/internal/logger"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference compositor on the control socket",
	Long: `Run an in-memory compositor that owns seat and surface state and serves the
control socket. Seats and surfaces are seeded from the [compositor] section of
the config file. Stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	if cfg.Logging.FileLogging {
		closer, err := logger.SetupFileLogging("compositor", logger.FileOptions{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		})
		if err != nil {
			logger.Warnf("File logging disabled: %v", err)
		} else {
			defer closer.Close()
		}
	}

	state, err := cfg.Compositor.BuildState()
	if err != nil {
		return fmt.Errorf("invalid compositor config: %w", err)
	}

	srv := compositor.NewServer(state, cfg.Gateway.SocketPath)
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	logger.Info("Reference compositor running",
		"seats", len(cfg.Compositor.Seats),
		"surfaces", len(cfg.Compositor.Surfaces))

	<-cmd.Context().Done()
	logger.Info("Shutting down")
	return nil
}
