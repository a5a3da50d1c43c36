package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the commands and paths shared by the bootstrap binaries.
type Config struct {
	// Runtime is the interpreter executable used for every step.
	Runtime string `yaml:"runtime"`
	// WindowlessRuntime is the console-less interpreter preferred by the detached launcher.
	WindowlessRuntime string `yaml:"windowless_runtime"`
	// RuntimeDownloadURL is shown to the operator when the runtime is missing.
	RuntimeDownloadURL string `yaml:"runtime_download_url"`
	// Manifest is the dependency manifest passed to the package manager.
	Manifest string `yaml:"manifest"`
	// EntryPoint is the monitoring application script.
	EntryPoint string `yaml:"entry_point"`
	// WorkDir is the directory every subprocess runs in. Empty means the current directory.
	WorkDir string `yaml:"work_dir"`
	// LogDir receives the detached launcher log files.
	LogDir string `yaml:"log_dir"`
	// LaunchRecord is the JSON file describing the last detached launch.
	LaunchRecord string `yaml:"launch_record"`
	// CommandTimeout bounds each subprocess. Zero waits indefinitely.
	CommandTimeout time.Duration `yaml:"command_timeout"`
	// LivenessGrace is how long a detached start must survive to count as started.
	LivenessGrace time.Duration `yaml:"liveness_grace"`
	// LogLevel is the zap level name for diagnostic logging.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for bootstrap settings.
	DefaultConfigFilename = "monitor-bootstrap.yaml"

	// DefaultRuntime is the interpreter looked up on PATH.
	DefaultRuntime = "python"

	// DefaultWindowlessRuntime is the console-less interpreter on Windows.
	DefaultWindowlessRuntime = "pythonw"

	// DefaultRuntimeDownloadURL is where the operator can get the runtime.
	DefaultRuntimeDownloadURL = "https://www.python.org/downloads/"

	// DefaultManifest is the dependency manifest filename.
	DefaultManifest = "requirements.txt"

	// DefaultEntryPoint is the monitoring application script.
	DefaultEntryPoint = "main.py"

	// DefaultLogDir is the directory for detached launcher logs.
	DefaultLogDir = "logs"

	// DefaultLaunchRecordFilename stores the last detached launch.
	DefaultLaunchRecordFilename = "monitor-launch.json"

	// DefaultLivenessGrace is the default survival window for a detached start.
	DefaultLivenessGrace = time.Second

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600

	// DefaultDirPermissions is used when creating the log directory.
	DefaultDirPermissions = 0o750
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeTimeout is returned when the command timeout is below zero.
	errNegativeTimeout = errors.New("command timeout must not be negative")
	// errNegativeGrace is returned when the liveness grace is below zero.
	errNegativeGrace = errors.New("liveness grace must not be negative")
)

// Default returns a configuration populated with built-in values.
func Default() *Config {
	cfg := new(Config)

	// Validate only fills defaults here and cannot fail on an empty config.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file at the default path yields the built-in defaults,
// so the binaries stay usable with zero arguments.
func Load(path string) (*Config, error) {
	explicit := path != "" && path != DefaultConfigFilename
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Config to the provided path.
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

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings for formatting errors.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.CommandTimeout < 0 {
		return errNegativeTimeout
	}

	if cfg.LivenessGrace < 0 {
		return errNegativeGrace
	}

	if cfg.LivenessGrace == 0 {
		cfg.LivenessGrace = DefaultLivenessGrace
	}

	setDefault(&cfg.Runtime, DefaultRuntime)
	setDefault(&cfg.WindowlessRuntime, DefaultWindowlessRuntime)
	setDefault(&cfg.RuntimeDownloadURL, DefaultRuntimeDownloadURL)
	setDefault(&cfg.Manifest, DefaultManifest)
	setDefault(&cfg.EntryPoint, DefaultEntryPoint)
	setDefault(&cfg.LogDir, DefaultLogDir)
	setDefault(&cfg.LaunchRecord, DefaultLaunchRecordFilename)
	setDefault(&cfg.LogLevel, DefaultLogLevel)

	if _, err := url.ParseRequestURI(cfg.RuntimeDownloadURL); err != nil {
		return fmt.Errorf("invalid runtime download URL: %w", err)
	}

	return nil
}

// ResolvePath joins a relative path onto WorkDir.
func (c *Config) ResolvePath(path string) string {
	if filepath.IsAbs(path) || c.WorkDir == "" {
		return filepath.Clean(path)
	}

	return filepath.Join(c.WorkDir, path)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
