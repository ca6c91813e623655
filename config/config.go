package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/ardnew/softinput/pkg"
)

// =============================================================================
// Configuration Types
// =============================================================================

// Config is the complete input stack configuration.
type Config struct {
	Monitor MonitorConfig `toml:"monitor"`
	Stream  StreamConfig  `toml:"stream"`
	Log     LogConfig     `toml:"log"`
}

// MonitorConfig selects and parameterizes the device monitor.
type MonitorConfig struct {
	// Backend is the monitor implementation: "netlink" (kernel uevent
	// socket, the default) or "watcher" (filesystem notification
	// fallback for environments without uevent access).
	Backend string `toml:"backend"`

	// DeviceDir is the directory holding device nodes.
	DeviceDir string `toml:"device_dir"`

	// SysfsDir is the sysfs input class directory used for enumeration.
	SysfsDir string `toml:"sysfs_dir"`
}

// StreamConfig parameterizes the stream multiplexer.
type StreamConfig struct {
	// BufferCapacity is the initial capacity of the pending event
	// buffer. The buffer grows past this as needed.
	BufferCapacity int `toml:"buffer_capacity"`

	// MaxPollEvents is the number of readiness events collected per
	// poller wait.
	MaxPollEvents int `toml:"max_poll_events"`
}

// LogConfig parameterizes process-wide logging.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Backend:   "netlink",
			DeviceDir: "/dev/input",
			SysfsDir:  "/sys/class/input",
		},
		Stream: StreamConfig{
			BufferCapacity: 64,
			MaxPollEvents:  64,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// =============================================================================
// Load / Save
// =============================================================================

// Load reads the configuration at path. A missing file is created with
// the defaults and is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
		pkg.LogInfo(pkg.ComponentConfig, "created default config", "path", path)
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	pkg.LogDebug(pkg.ComponentConfig, "loaded config", "path", path)
	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories as
// needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Stream.BufferCapacity < 0 {
		return fmt.Errorf("%w: buffer_capacity %d", pkg.ErrInvalidParameter, c.Stream.BufferCapacity)
	}
	if c.Stream.MaxPollEvents <= 0 {
		return fmt.Errorf("%w: max_poll_events %d", pkg.ErrInvalidParameter, c.Stream.MaxPollEvents)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := parseFormat(c.Log.Format); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// Logging
// =============================================================================

// Apply configures process-wide logging from the log section.
func (c LogConfig) Apply() error {
	level, err := parseLevel(c.Level)
	if err != nil {
		return err
	}
	format, err := parseFormat(c.Format)
	if err != nil {
		return err
	}

	pkg.SetLogLevel(level)
	pkg.SetLogFormat(format)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "", "warn":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: log level %q", pkg.ErrInvalidParameter, s)
	}
}

func parseFormat(s string) (pkg.LogFormat, error) {
	switch s {
	case "", "text":
		return pkg.LogFormatText, nil
	case "json":
		return pkg.LogFormatJSON, nil
	default:
		return 0, fmt.Errorf("%w: log format %q", pkg.ErrInvalidParameter, s)
	}
}
