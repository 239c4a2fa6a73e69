package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/jamesainslie/logsift/pkg/logsift/archive"
	"github.com/jamesainslie/logsift/pkg/logsift/engine"
	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/segment"
	"github.com/jamesainslie/logsift/pkg/logsift/source"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Console    string            `mapstructure:"console"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// DaemonConfig configures the background daemon.
type DaemonConfig struct {
	AutoStart  bool   `mapstructure:"auto_start"`
	BinaryPath string `mapstructure:"binary_path"` // Path to logsiftd binary (auto-discovered if empty)
	SocketPath string `mapstructure:"socket_path"`
	PIDPath    string `mapstructure:"pid_path"`
}

// LimitsConfig holds injected extraction limits.
type LimitsConfig struct {
	MaxArchiveSize  string `mapstructure:"max_archive_size"`
	MaxEntrySize    string `mapstructure:"max_entry_size"`
	MaxLookbackDays int    `mapstructure:"max_lookback_days"`
}

// AnchorsConfig names the anchor pattern per source.
type AnchorsConfig struct {
	Archive string `mapstructure:"archive"`
	Local   string `mapstructure:"local"`
	Tail    string `mapstructure:"tail"`
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Path    string        `mapstructure:"path"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// S3Config configures object storage access.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

// LocalConfig locates local service folders.
type LocalConfig struct {
	Root string `mapstructure:"root"`
}

// TailConfig configures tail sessions.
type TailConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Heartbeat time.Duration `mapstructure:"heartbeat"`
}

// OutputConfig selects the default formatter.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Config represents the application configuration.
type Config struct {
	Local   LocalConfig   `mapstructure:"local"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Tail    TailConfig    `mapstructure:"tail"`
	Anchors AnchorsConfig `mapstructure:"anchors"`
	Cache   CacheConfig   `mapstructure:"cache"`
	S3      S3Config      `mapstructure:"s3"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Daemon  DaemonConfig  `mapstructure:"daemon"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("local.root", "")
	v.SetDefault("limits.max_archive_size", DefaultMaxArchiveSize)
	v.SetDefault("limits.max_entry_size", DefaultMaxEntrySize)
	v.SetDefault("limits.max_lookback_days", DefaultMaxLookbackDays)
	v.SetDefault("tail.interval", DefaultTailInterval)
	v.SetDefault("tail.heartbeat", DefaultHeartbeat)
	v.SetDefault("anchors.archive", DefaultArchiveAnchor)
	v.SetDefault("anchors.local", DefaultLocalAnchor)
	v.SetDefault("anchors.tail", DefaultTailAnchor)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "") // Empty means use DefaultCachePath
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.path_style", false)
	v.SetDefault("output.format", DefaultOutputFormat)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.console", "")
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"daemon":  "info",
		"tailer":  "info",
		"archive": "warn",
		"local":   "warn",
	})

	// Daemon defaults
	v.SetDefault("daemon.auto_start", false)
	v.SetDefault("daemon.binary_path", "")
	v.SetDefault("daemon.socket_path", "") // Empty means use default XDG path
	v.SetDefault("daemon.pid_path", "")    // Empty means use default XDG path
}

// New returns a viper instance with config paths, environment binding and
// defaults set, but nothing read yet.
func New() (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "logsift"))
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "logsift"))

	v.SetEnvPrefix("LOGSIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	return v, nil
}

// Read loads the config file into v. A missing file is not an error.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// Decode unmarshals v into a Config and expands ~ in paths.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.Local.Root, &cfg.Cache.Path, &cfg.Logging.Path, &cfg.Daemon.SocketPath, &cfg.Daemon.PIDPath} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}
	return &cfg, nil
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/logsift/config.yaml
//   - $HOME/.config/logsift/config.yaml
//
// Environment variables are prefixed with LOGSIFT_ (e.g., LOGSIFT_LOCAL_ROOT).
func Load() (*Config, error) {
	v, err := New()
	if err != nil {
		return nil, err
	}
	if err := Read(v); err != nil {
		return nil, err
	}
	return Decode(v)
}

// EngineOptions converts the limits, anchors and tail settings.
func (c *Config) EngineOptions() (engine.Options, error) {
	opts := engine.DefaultOptions()

	var err error
	if opts.Limits, err = c.ArchiveLimits(); err != nil {
		return opts, err
	}
	if c.Limits.MaxLookbackDays > 0 {
		opts.MaxLookbackDays = c.Limits.MaxLookbackDays
	}
	for _, a := range []struct {
		name string
		raw  string
		dst  *segment.Pattern
	}{
		{"anchors.archive", c.Anchors.Archive, &opts.Anchors.Archive},
		{"anchors.local", c.Anchors.Local, &opts.Anchors.Local},
		{"anchors.tail", c.Anchors.Tail, &opts.Anchors.Tail},
	} {
		p, err := segment.ParsePattern(a.raw)
		if err != nil {
			return opts, fmt.Errorf("%s: %w", a.name, err)
		}
		*a.dst = p
	}
	if c.Tail.Interval > 0 {
		opts.TailInterval = c.Tail.Interval
	}
	if c.Tail.Heartbeat != 0 {
		opts.HeartbeatInterval = c.Tail.Heartbeat
	}
	return opts, nil
}

// ArchiveLimits parses the size limits.
func (c *Config) ArchiveLimits() (archive.Limits, error) {
	var l archive.Limits
	var err error
	if c.Limits.MaxArchiveSize != "" {
		if l.MaxArchiveSize, err = types.ParseSize(c.Limits.MaxArchiveSize); err != nil {
			return l, fmt.Errorf("limits.max_archive_size: %w", err)
		}
	}
	if c.Limits.MaxEntrySize != "" {
		if l.MaxEntrySize, err = types.ParseSize(c.Limits.MaxEntrySize); err != nil {
			return l, fmt.Errorf("limits.max_entry_size: %w", err)
		}
	}
	return l, nil
}

// SourceOptions configures archive loading.
func (c *Config) SourceOptions() (source.Options, error) {
	l, err := c.ArchiveLimits()
	if err != nil {
		return source.Options{}, err
	}
	return source.Options{
		MaxSize: l.MaxArchiveSize,
		S3: source.S3Options{
			Region:    c.S3.Region,
			Endpoint:  c.S3.Endpoint,
			PathStyle: c.S3.PathStyle,
		},
	}, nil
}

// LoggingOptions converts the logging section.
func (c *Config) LoggingOptions() (logging.Config, error) {
	rot := logging.DefaultRotationConfig()
	if c.Logging.Rotation.MaxSize != "" {
		n, err := types.ParseSize(c.Logging.Rotation.MaxSize)
		if err != nil {
			return logging.Config{}, fmt.Errorf("logging.rotation.max_size: %w", err)
		}
		rot.MaxSize = n
	}
	rot.MaxAge = c.Logging.Rotation.MaxAge
	rot.MaxBackups = c.Logging.Rotation.MaxBackups
	rot.Daily = c.Logging.Rotation.Daily

	return logging.Config{
		Level:        c.Logging.Level,
		Path:         c.Logging.Path,
		Rotation:     rot,
		Components:   c.Logging.Components,
		ConsoleLevel: c.Logging.Console,
	}, nil
}

// CachePath returns the configured cache directory or the default.
func (c *Config) CachePath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return DefaultCachePath()
}

// SocketPath returns the configured socket or the default.
func (c *Config) SocketPath() string {
	if c.Daemon.SocketPath != "" {
		return c.Daemon.SocketPath
	}
	return DefaultSocketPath()
}

// PIDPath returns the configured PID file or the default.
func (c *Config) PIDPath() string {
	if c.Daemon.PIDPath != "" {
		return c.Daemon.PIDPath
	}
	return DefaultPIDPath()
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "logsift"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "logsift"), nil
}

// ConfigPath returns the path of the config file Load reads first.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists and returns its
// path. An existing file is left untouched.
func WriteDefault() (string, error) {
	if err := EnsureConfigDir(); err != nil {
		return "", err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# logsift configuration

# Root directory holding one folder per service, used by folders/local/tail
local:
  root: ""

# Limits applied to archive extraction and date lookback
limits:
  max_archive_size: %s
  max_entry_size: %s
  max_lookback_days: %d

# Tail polling
tail:
  interval: %s
  heartbeat: %s

# Anchor pattern per source: permissive or strict
anchors:
  archive: %s
  local: %s
  tail: %s

# Result cache (keyed by archive content)
cache:
  enabled: true
  # Empty means use default: $XDG_CACHE_HOME/logsift/results
  path: ""
  ttl: %s

# Object storage for s3://bucket/key archives
s3:
  region: ""
  endpoint: ""
  path_style: false

output:
  # auto (pretty on a terminal, plain otherwise), pretty, plain, json, jsonl,
  # yaml, csv, tsv, markdown, template
  format: %s

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/logsift/logsift.log)
  path: ""
  # Mirror entries at or above this level to stderr (empty disables)
  console: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    daemon: info
    tailer: info
    archive: warn
    local: warn

# Daemon configuration
daemon:
  # Start logsiftd automatically when a command could use it
  auto_start: false
  # Unix socket path (empty means use default: $XDG_DATA_HOME/logsift/logsift.sock)
  socket_path: ""
  # PID file path (empty means use default: $XDG_DATA_HOME/logsift/logsift.pid)
  pid_path: ""
`, DefaultMaxArchiveSize, DefaultMaxEntrySize, DefaultMaxLookbackDays,
		DefaultTailInterval, DefaultHeartbeat,
		DefaultArchiveAnchor, DefaultLocalAnchor, DefaultTailAnchor,
		DefaultCacheTTL, DefaultOutputFormat)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/logsift/ for the socket and pid files.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "logsift")
}

// CacheDir returns $XDG_CACHE_HOME/logsift/.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "logsift")
}

// DefaultSocketPath returns the default Unix socket path.
func DefaultSocketPath() string {
	return filepath.Join(DataDir(), "logsift.sock")
}

// DefaultPIDPath returns the default PID file path.
func DefaultPIDPath() string {
	return filepath.Join(DataDir(), "logsift.pid")
}

// DefaultCachePath returns the default result cache directory.
func DefaultCachePath() string {
	return filepath.Join(CacheDir(), "results")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// DefaultBinaryPath returns logsiftd from the standard Go install
// locations (GOBIN, GOPATH/bin, ~/go/bin), or "" if none holds it.
func DefaultBinaryPath() string {
	var dirs []string
	if gobin := os.Getenv("GOBIN"); gobin != "" {
		dirs = append(dirs, gobin)
	}
	if gopath := os.Getenv("GOPATH"); gopath != "" {
		for _, p := range filepath.SplitList(gopath) {
			dirs = append(dirs, filepath.Join(p, "bin"))
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "go", "bin"))
	}
	for _, dir := range dirs {
		candidate := filepath.Join(dir, "logsiftd")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
