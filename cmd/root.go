package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bnema/seatctl/internal/config"
	"github.com/bnema/seatctl/internal/control"
	"github.com/bnema/seatctl/internal/gateway"
	"github.com/bnema/seatctl/internal/logger"
	"github.com/bnema/seatctl/internal/remote"
	"github.com/bnema/seatctl/internal/surface"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFile string
	socketPath string
	timeout    time.Duration
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "seatctl",
		Short: "seatctl - input acceptance and focus control",
		Long: `seatctl controls which input seats may deliver events to which compositor
surfaces, and which surfaces hold keyboard, pointer or touch focus.

Every command talks to the compositor control socket. Run 'seatctl serve' to
start the built-in reference compositor.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ~/.config/seatctl/seatctl.toml)")
	rootCmd.PersistentFlags().StringVarP(&socketPath, "socket", "s", "", "Compositor control socket")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 0, "How long to wait for the compositor context (0 waits forever)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func setup(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		config.SetConfigPath(configFile)
	}

	// Bound here rather than in init so a viper reset does not drop them
	flags := cmd.Root().PersistentFlags()
	if err := viper.BindPFlag("logging.log_level", flags.Lookup("log-level")); err != nil {
		return err
	}
	if f := flags.Lookup("socket"); f.Changed {
		if err := viper.BindPFlag("gateway.socket_path", f); err != nil {
			return err
		}
	}
	if f := flags.Lookup("timeout"); f.Changed {
		if err := viper.BindPFlag("gateway.acquire_timeout", f); err != nil {
			return err
		}
	}

	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	if level := config.Get().Logging.LogLevel; level != "" {
		logger.SetLevel(level)
	}
	return nil
}

// newController wires a controller to the configured control socket. The
// returned func closes the connection.
func newController() (*control.Controller, func()) {
	cfg := config.Get()
	logger.Debug("Using compositor socket", "path", cfg.Gateway.SocketPath)

	client := remote.NewClient(cfg.Gateway.SocketPath, cfg.Gateway.DialTimeout)
	gw := gateway.New(client, gateway.WithAcquireTimeout(cfg.Gateway.AcquireTimeout))
	return control.New(gw), func() {
		if err := client.Close(); err != nil {
			logger.Debugf("Failed to close control connection: %v", err)
		}
	}
}

func parseSurfaceID(s string) (surface.ID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid surface id %q", s)
	}
	return surface.ID(v), nil
}

func parseSurfaceIDs(args []string) ([]surface.ID, error) {
	var ids []surface.ID
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			if strings.TrimSpace(field) == "" {
				continue
			}
			id, err := parseSurfaceID(field)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
