package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger *log.Logger

func init() {
	Logger = log.New(os.Stderr)

	// Set log level from environment variable
	SetLevel(os.Getenv("LOG_LEVEL"))
}

// SetLevel sets the log level by name. Unknown or empty names select INFO.
func SetLevel(level string) {
	Logger.SetLevel(ParseLevel(level))
}

// ParseLevel maps a level name to a log.Level, defaulting to INFO
func ParseLevel(level string) log.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return log.DebugLevel
	case "INFO":
		return log.InfoLevel
	case "WARN", "WARNING":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	case "FATAL":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// FileOptions controls log file rotation
type FileOptions struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
}

// SetupFileLogging redirects log output to a rotating file named after role.
// The returned closer restores stderr output and closes the file.
func SetupFileLogging(role string, opts FileOptions) (io.Closer, error) {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultLogDir()
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}

	path := filepath.Join(dir, strings.ToLower(role)+".log")
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: opts.MaxBackups,
	}

	Logger.SetOutput(lj)
	Logger.SetPrefix(strings.ToUpper(role))
	Logger.SetReportTimestamp(true)

	return &fileSink{lj: lj}, nil
}

type fileSink struct {
	lj *lumberjack.Logger
}

func (f *fileSink) Close() error {
	Logger.SetOutput(os.Stderr)
	Logger.SetPrefix("")
	Logger.SetReportTimestamp(false)
	return f.lj.Close()
}

// DefaultLogDir returns $XDG_STATE_HOME/seatctl, falling back to ~/.local/state/seatctl
func DefaultLogDir() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "seatctl")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "seatctl")
	}
	return filepath.Join(os.TempDir(), "seatctl")
}

// Convenience functions for common operations
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
}

func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	Logger.Errorf(format, args...)
}
