package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config captures the settings shopsync needs to reach the backend and keep
// local state.
type Config struct {
	APIBase        string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	DataDir        string
	Buyer          string
	PageSize       int
}

const (
	defaultConfigPath     = "~/.config/shopsync/config.toml"
	defaultAPIBase        = "http://127.0.0.1:5000"
	defaultPollInterval   = 10 * time.Second
	defaultRequestTimeout = 10 * time.Second
	defaultDataDir        = "~/.local/share/shopsync"
	defaultPageSize       = 100

	databaseName = "shopsync.db"
	logName      = "shopsync.log"
)

type rawConfig struct {
	APIBase        string `toml:"api_base" yaml:"api_base"`
	PollInterval   string `toml:"poll_interval" yaml:"poll_interval"`
	RequestTimeout string `toml:"request_timeout" yaml:"request_timeout"`
	DataDir        string `toml:"data_dir" yaml:"data_dir"`
	Buyer          string `toml:"buyer" yaml:"buyer"`
	PageSize       int    `toml:"page_size" yaml:"page_size"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBase:        defaultAPIBase,
		PollInterval:   defaultPollInterval,
		RequestTimeout: defaultRequestTimeout,
		DataDir:        mustExpand(defaultDataDir),
		PageSize:       defaultPageSize,
	}
}

// Load locates and parses the config file, falling back to defaults when
// missing. Files ending in .yaml or .yml are parsed as YAML, anything else
// as TOML.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &raw)
	default:
		err = toml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return raw.resolve()
}

func (raw rawConfig) resolve() (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		dir, err := expandPath(v)
		if err != nil {
			return Config{}, fmt.Errorf("data_dir: %w", err)
		}
		cfg.DataDir = dir
	}
	cfg.Buyer = strings.TrimSpace(raw.Buyer)

	var err error
	if cfg.PollInterval, err = parseDuration("poll_interval", raw.PollInterval, defaultPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, defaultRequestTimeout); err != nil {
		return Config{}, err
	}

	switch {
	case raw.PageSize < 0:
		return Config{}, fmt.Errorf("page_size must be positive, got %d", raw.PageSize)
	case raw.PageSize > 0:
		cfg.PageSize = raw.PageSize
	}
	return cfg, nil
}

// DatabasePath returns the SQLite file holding the basket snapshot.
func (c Config) DatabasePath() string {
	return filepath.Join(c.dataDir(), databaseName)
}

// LogPath returns the log file written while the TUI owns the terminal.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), logName)
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
