package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
	defaultGitBinary = "git"
	configFileName   = "quickmerge.toml"
)

var (
	supportedLevels  = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "warning": {}, "error": {}}
	supportedFormats = map[string]struct{}{"text": {}, "json": {}}
)

// Config captures runtime options sourced from the config file, environment
// variables and command-line flags, in increasing order of precedence.
type Config struct {
	Log        LogConfig `toml:"log"`
	Git        GitConfig `toml:"git"`
	DryRun     bool      `toml:"dry_run"`
	Verbose    bool      `toml:"verbose"`
	ReportFile string    `toml:"report_file"`

	// Repo is the path the repository is discovered from. Empty means the
	// working directory.
	Repo string `toml:"-"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	// File is the append-only log sink. "-" writes to stderr.
	File string `toml:"file"`
}

type GitConfig struct {
	Binary string `toml:"binary"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			File:   defaultLogFile(),
		},
		Git: GitConfig{Binary: defaultGitBinary},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/quickmerge.toml or the platform
// equivalent.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "-"
	}
	return filepath.Join(dir, "quickmerge", "quickmerge.log")
}

// LoadConfig reads the TOML file at path (or the default location when path is
// empty), applies environment overrides and validates the result. A missing
// file is only an error when path was given explicitly.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		if p, err := DefaultConfigPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg.Finalize()
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("QUICKMERGE_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("QUICKMERGE_LOG_FORMAT")); v != "" {
		c.Log.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("QUICKMERGE_LOG_FILE")); v != "" {
		c.Log.File = v
	}
	if v := strings.TrimSpace(os.Getenv("QUICKMERGE_GIT_BINARY")); v != "" {
		c.Git.Binary = v
	}
	if v := strings.TrimSpace(os.Getenv("QUICKMERGE_REPORT_FILE")); v != "" {
		c.ReportFile = v
	}

	if raw := strings.TrimSpace(os.Getenv("QUICKMERGE_DRY_RUN")); raw != "" {
		dryRun, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse QUICKMERGE_DRY_RUN: %w", err)
		}
		c.DryRun = dryRun
	}

	if raw := strings.TrimSpace(os.Getenv("QUICKMERGE_VERBOSE")); raw != "" {
		verbose, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse QUICKMERGE_VERBOSE: %w", err)
		}
		c.Verbose = verbose
	}

	return nil
}

// Finalize normalises values, fills empty fields with defaults and validates.
// It is safe to call again after applying flag overrides.
func (c Config) Finalize() (Config, error) {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Log.File = expandTilde(strings.TrimSpace(c.Log.File))
	c.Git.Binary = strings.TrimSpace(c.Git.Binary)
	c.ReportFile = expandTilde(strings.TrimSpace(c.ReportFile))
	c.Repo = expandTilde(strings.TrimSpace(c.Repo))

	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
	if c.Log.File == "" {
		c.Log.File = defaultLogFile()
	}
	if c.Git.Binary == "" {
		c.Git.Binary = defaultGitBinary
	}

	if _, ok := supportedLevels[c.Log.Level]; !ok {
		return Config{}, fmt.Errorf("unsupported log level %q", c.Log.Level)
	}
	if _, ok := supportedFormats[c.Log.Format]; !ok {
		return Config{}, fmt.Errorf("unsupported log format %q", c.Log.Format)
	}

	if c.Verbose {
		c.Log.Level = "debug"
	}

	return c, nil
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
