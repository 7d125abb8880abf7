// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/seatctl/internal/compositor"
	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/surface"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Control socket and acquisition settings
	Gateway GatewayConfig `mapstructure:"gateway"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`

	// Initial state for the reference compositor started by `seatctl serve`
	Compositor CompositorConfig `mapstructure:"compositor"`
}

// GatewayConfig contains control socket settings
type GatewayConfig struct {
	SocketPath     string        `mapstructure:"socket_path"`
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout"` // 0 waits forever
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	FileLogging bool   `mapstructure:"file_logging"` // Enable/disable file logging
	LogLevel    string `mapstructure:"log_level"`    // Override LOG_LEVEL env var
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
}

// CompositorConfig seeds the reference compositor
type CompositorConfig struct {
	Seats    []SeatConfig    `mapstructure:"seats"`
	Surfaces []SurfaceConfig `mapstructure:"surfaces"`
}

// SeatConfig describes one seat by name and capability names
type SeatConfig struct {
	Name         string   `mapstructure:"name" toml:"name"`
	Capabilities []string `mapstructure:"capabilities" toml:"capabilities"` // keyboard, pointer, touch
}

// SurfaceConfig describes one surface
type SurfaceConfig struct {
	ID            uint32   `mapstructure:"id" toml:"id"`
	AcceptedSeats []string `mapstructure:"accepted_seats" toml:"accepted_seats,omitempty"`
	Focus         []string `mapstructure:"focus" toml:"focus,omitempty"`
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Gateway: GatewayConfig{
			SocketPath:     DefaultSocketPath(),
			AcquireTimeout: 5 * time.Second,
			DialTimeout:    2 * time.Second,
		},
		Logging: LoggingConfig{
			FileLogging: false,
			LogLevel:    "", // Empty means use LOG_LEVEL env var
			MaxSizeMB:   10,
			MaxBackups:  3,
		},
		Compositor: CompositorConfig{
			Seats: []SeatConfig{
				{Name: "seat0", Capabilities: []string{"pointer", "keyboard"}},
			},
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("seatctl")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		// Add config paths in order of precedence
		viper.AddConfigPath("/etc/seatctl")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "seatctl"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("SEATCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("gateway.socket_path", DefaultConfig.Gateway.SocketPath)
	viper.SetDefault("gateway.acquire_timeout", DefaultConfig.Gateway.AcquireTimeout)
	viper.SetDefault("gateway.dial_timeout", DefaultConfig.Gateway.DialTimeout)

	viper.SetDefault("logging.file_logging", DefaultConfig.Logging.FileLogging)
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)
	viper.SetDefault("logging.max_size_mb", DefaultConfig.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", DefaultConfig.Logging.MaxBackups)

	viper.SetDefault("compositor.seats", DefaultConfig.Compositor.Seats)
	viper.SetDefault("compositor.surfaces", DefaultConfig.Compositor.Surfaces)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	return nil
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if c.Gateway.SocketPath == "" {
		return fmt.Errorf("gateway.socket_path must not be empty")
	}
	if c.Gateway.AcquireTimeout < 0 {
		return fmt.Errorf("gateway.acquire_timeout must not be negative")
	}
	if _, err := c.Compositor.BuildState(); err != nil {
		return fmt.Errorf("invalid compositor section: %w", err)
	}
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save writes the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		if os.IsPermission(err) && strings.Contains(configPath, "/etc/") {
			return fmt.Errorf("failed to create config directory %s: permission denied. Try running with sudo", dir)
		}
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/seatctl/seatctl.toml"
	}
	return filepath.Join(home, ".config", "seatctl", "seatctl.toml")
}

// DefaultSocketPath returns $XDG_RUNTIME_DIR/seatctl.sock, or a per-user path in /tmp
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "seatctl.sock")
	}

	name := "seatctl"
	if u, err := user.Current(); err == nil {
		name = fmt.Sprintf("seatctl-%s", u.Username)
	}
	return filepath.Join("/tmp", name+".sock")
}

// BuildState turns the compositor section into an initial compositor state
func (c CompositorConfig) BuildState() (*compositor.State, error) {
	state := compositor.NewState()

	seen := make(map[string]bool)
	for _, sc := range c.Seats {
		if sc.Name == "" {
			return nil, fmt.Errorf("seat without a name")
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("duplicate seat %q", sc.Name)
		}
		seen[sc.Name] = true

		caps, err := seat.ParseCapabilities(sc.Capabilities)
		if err != nil {
			return nil, fmt.Errorf("seat %q: %w", sc.Name, err)
		}
		state.AddSeat(seat.Seat{Name: sc.Name, Capabilities: caps})
	}

	for _, sc := range c.Surfaces {
		id := surface.ID(sc.ID)
		if err := state.AddSurface(id); err != nil {
			return nil, err
		}
		for _, name := range sc.AcceptedSeats {
			if err := state.NotifyAcceptanceChange(name, id, true); err != nil {
				return nil, fmt.Errorf("surface %d: %w", id, err)
			}
		}
		focus, err := seat.ParseCapabilities(sc.Focus)
		if err != nil {
			return nil, fmt.Errorf("surface %d: %w", id, err)
		}
		if focus != 0 {
			if err := state.NotifyFocusChange(id, focus, true); err != nil {
				return nil, fmt.Errorf("surface %d: %w", id, err)
			}
		}
	}

	return state, nil
}
