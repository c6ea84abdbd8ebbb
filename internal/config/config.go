package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// Config holds the settings shared by the daemon and the CLI.
type Config struct {
	// GRPCAddress is where the daemon serves the CLI and where the CLI dials.
	GRPCAddress string `yaml:"grpc_addr" env:"ALARM_CLOCK_GRPC_ADDR" env-default:"127.0.0.1:50071"`
	// HTTPAddress is where the daemon serves browser front-ends.
	HTTPAddress string `yaml:"http_addr" env:"ALARM_CLOCK_HTTP_ADDR" env-default:"127.0.0.1:8071"`
	// CORSOrigins lists origins allowed to call the HTTP API.
	CORSOrigins []string `yaml:"cors_origins" env:"ALARM_CLOCK_CORS_ORIGINS" env-separator:","`
	// Storage selects where the alarm list is persisted.
	Storage Storage `yaml:"storage"`
	// PollInterval is the period of the alarm polling loop.
	PollInterval time.Duration `yaml:"poll_interval" env:"ALARM_CLOCK_POLL_INTERVAL" env-default:"1s"`
	// Snooze is how far a snooze pushes the ringing alarm.
	Snooze time.Duration `yaml:"snooze" env:"ALARM_CLOCK_SNOOZE" env-default:"5m"`
	// Sound configures the alert sound.
	Sound Sound `yaml:"sound"`
	// LogLevel is one of debug, info, warn, error, fatal.
	LogLevel string `yaml:"log_level" env:"ALARM_CLOCK_LOG_LEVEL" env-default:"info"`
	// Timeout bounds each CLI call to the daemon.
	Timeout time.Duration `yaml:"timeout" env:"ALARM_CLOCK_TIMEOUT" env-default:"5s"`
}

// Storage configures the key-value store behind the alarm list.
type Storage struct {
	// Driver is "file" or "sqlite".
	Driver string `yaml:"driver" env:"ALARM_CLOCK_STORAGE_DRIVER" env-default:"file"`
	// Path is the file or database location.
	Path string `yaml:"path" env:"ALARM_CLOCK_STORAGE_PATH"`
}

// Sound configures the command looped while an alert rings.
type Sound struct {
	// Command is a full command line; it overrides File.
	Command string `yaml:"command" env:"ALARM_CLOCK_SOUND_COMMAND"`
	// File is played with the platform's stock player when Command is empty.
	File string `yaml:"file" env:"ALARM_CLOCK_SOUND_FILE"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultGRPCAddress is the default loopback gRPC endpoint.
	DefaultGRPCAddress = "127.0.0.1:50071"

	// DefaultHTTPAddress is the default loopback HTTP endpoint.
	DefaultHTTPAddress = "127.0.0.1:8071"

	// DefaultStorageDriver is the default key-value driver.
	DefaultStorageDriver = "file"

	// DefaultFileStoragePath is the default JSON document for the file driver.
	DefaultFileStoragePath = "alarm-clock-storage.json"

	// DefaultSQLiteStoragePath is the default database for the sqlite driver.
	DefaultSQLiteStoragePath = "alarm-clock.db"

	// DefaultPollInterval is the default polling period.
	DefaultPollInterval = time.Second

	// DefaultSnooze is the default snooze interval.
	DefaultSnooze = 5 * time.Minute

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultTimeout is the default duration for CLI calls.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// ErrUnknownStorageDriver is returned for a driver other than file or sqlite.
	ErrUnknownStorageDriver = errors.New("unknown storage driver")
	// ErrPollIntervalTooLong is returned when polls could skip a whole trigger window.
	ErrPollIntervalTooLong = fmt.Errorf("poll interval must be shorter than %s", scheduler.TriggerWindow)
	// ErrSnoozeTooShort is returned for a snooze under one minute.
	ErrSnoozeTooShort = errors.New("snooze must be at least one minute")
)

// Default returns settings with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Validate only fills defaults on an empty config.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path, applies environment
// overrides and validates it. A missing file at the default path is not an
// error: defaults and environment variables are used instead.
func Load(path string) (*Config, error) {
	isDefault := path == ""
	if isDefault {
		path = DefaultConfigFilename
	}

	var cfg Config

	_, statErr := os.Stat(filepath.Clean(path))

	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(filepath.Clean(path), &cfg); err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	case isDefault && errors.Is(statErr, os.ErrNotExist):
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read settings from environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("read settings: %w", statErr)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults for empty fields and checks addresses and the storage driver.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.GRPCAddress == "" {
		settings.GRPCAddress = DefaultGRPCAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.GRPCAddress); err != nil {
		return fmt.Errorf("invalid gRPC address: %w", err)
	}

	if settings.HTTPAddress == "" {
		settings.HTTPAddress = DefaultHTTPAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.HTTPAddress); err != nil {
		return fmt.Errorf("invalid HTTP address: %w", err)
	}

	settings.Storage.Driver = strings.ToLower(strings.TrimSpace(settings.Storage.Driver))

	switch settings.Storage.Driver {
	case "", DefaultStorageDriver:
		settings.Storage.Driver = DefaultStorageDriver

		if settings.Storage.Path == "" {
			settings.Storage.Path = DefaultFileStoragePath
		}
	case "sqlite":
		if settings.Storage.Path == "" {
			settings.Storage.Path = DefaultSQLiteStoragePath
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, settings.Storage.Driver)
	}

	if settings.PollInterval <= 0 {
		settings.PollInterval = DefaultPollInterval
	}

	// Every trigger window must contain at least one poll.
	if settings.PollInterval >= scheduler.TriggerWindow {
		return fmt.Errorf("%w: %s", ErrPollIntervalTooLong, settings.PollInterval)
	}

	if settings.Snooze <= 0 {
		settings.Snooze = DefaultSnooze
	}

	// A shorter snooze lands in the minute that is ringing now.
	if settings.Snooze < time.Minute {
		return fmt.Errorf("%w: %s", ErrSnoozeTooShort, settings.Snooze)
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	// Set default timeout if not specified
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	return nil
}

// CommandLine splits the configured sound command into program and arguments.
// It returns nil when no command is configured.
func (s Sound) CommandLine() []string {
	fields := strings.Fields(s.Command)
	if len(fields) == 0 {
		return nil
	}

	return fields
}
