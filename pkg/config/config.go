// Package config loads, validates and saves the launcher settings file.
// Settings are stored as YAML; every missing value falls back to a default so
// an absent or empty file is a valid configuration.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/blockfetch/pkg/download"
	"github.com/glorpus-work/blockfetch/pkg/errors"
	"github.com/glorpus-work/blockfetch/pkg/fsutil"
	"github.com/glorpus-work/blockfetch/pkg/hooks"
	"github.com/glorpus-work/blockfetch/pkg/http"
	"github.com/glorpus-work/blockfetch/pkg/layout"
	"github.com/glorpus-work/blockfetch/pkg/platform"
	"github.com/glorpus-work/blockfetch/pkg/requirement"
	"github.com/glorpus-work/blockfetch/pkg/resolve"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// PlatformConfig overrides the platform game files are fetched for.
type PlatformConfig struct {
	// OS is one of windows, linux or macos. Empty means the running OS.
	OS string `yaml:"os,omitempty"`
	// Arch is one of amd64, 386 or arm64. Empty means the running architecture.
	Arch string `yaml:"arch,omitempty"`
}

// HooksConfig holds the paths of the Tengo hook scripts.
type HooksConfig struct {
	PostResolve  string `yaml:"post_resolve,omitempty"`
	PostDownload string `yaml:"post_download,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// Layout settings
	RootDir string `yaml:"root_dir,omitempty"`

	// Upstream settings
	CatalogURL   string `yaml:"catalog_url"`
	AssetBaseURL string `yaml:"asset_base_url"`
	UserAgent    string `yaml:"user_agent"`

	// Network settings
	HTTPTimeout            time.Duration `yaml:"http_timeout"`
	TaskTimeout            time.Duration `yaml:"task_timeout"`
	MaxConcurrentDownloads int           `yaml:"max_concurrent_downloads"`

	// Verification settings
	StrictVerify bool `yaml:"strict_verify"`

	// Platform settings
	Platform PlatformConfig `yaml:"platform,omitempty"`

	// Hook scripts
	Hooks HooksConfig `yaml:"hooks,omitempty"`

	// Metrics are written in the Prometheus text format after each install.
	MetricsTextfile string `yaml:"metrics_textfile,omitempty"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
}

// Default configuration values.
const (
	// DefaultHTTPTimeout bounds connection setup and response headers.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTaskTimeout bounds a single file download.
	DefaultTaskTimeout = 5 * time.Minute

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	rootDir, err := fsutil.GetDataDir()
	if err != nil {
		rootDir = filepath.Join(".", fsutil.AppName)
	}
	current := platform.CurrentPlatform()

	return &Config{
		Settings: Settings{
			RootDir:                rootDir,
			CatalogURL:             resolve.DefaultCatalogURL,
			AssetBaseURL:           requirement.DefaultAssetBaseURL,
			UserAgent:              http.DefaultUserAgent,
			HTTPTimeout:            DefaultHTTPTimeout,
			TaskTimeout:            DefaultTaskTimeout,
			MaxConcurrentDownloads: download.DefaultConcurrency,
			OutputFormat:           "text",
			LogLevel:               "info",
			Platform: PlatformConfig{
				OS:   current.OS,
				Arch: current.Arch,
			},
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Classify(errors.ErrConfigValidation, err)
	}

	return &config, nil
}

// SaveConfig writes the configuration to path, replacing any previous file atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	if err := encoder.Close(); err != nil {
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	if err := fsutil.WriteFileAtomic(absPath, buf.Bytes(), fsutil.FileModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validatePlatform(c.Settings.Platform); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validatePlatform(p PlatformConfig) error {
	if p.OS != "" && !platform.IsSupportedOS(p.OS) {
		return errors.ErrInvalidOSValueWithDetails(p.OS, platform.ValidOS())
	}
	if p.Arch != "" && !slices.Contains(platform.ValidArch(), platform.NormalizeArch(p.Arch)) {
		return errors.ErrInvalidArchValueWithDetails(p.Arch, platform.ValidArch())
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if s.TaskTimeout < 0 {
		return errors.ErrTaskTimeoutNegative
	}
	if s.MaxConcurrentDownloads < 1 {
		return errors.ErrMaxConcurrentInvalid
	}
	if s.CatalogURL == "" {
		return fmt.Errorf("catalog_url: %w", errors.ErrEmptyURL)
	}
	if s.AssetBaseURL == "" {
		return fmt.Errorf("asset_base_url: %w", errors.ErrEmptyURL)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return errors.ErrInvalidOutputFormatWithDetails(s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, fsutil.AppName, "config.yaml"), nil
}

// Layout returns the on-disk layout rooted at root_dir.
func (c *Config) Layout() layout.Layout {
	return layout.New(c.Settings.RootDir)
}

// TargetPlatform returns the normalized platform game files are fetched for.
func (c *Config) TargetPlatform() platform.Platform {
	return platform.Platform{
		OS:   platform.NormalizeOS(c.Settings.Platform.OS),
		Arch: platform.NormalizeArch(c.Settings.Platform.Arch),
	}
}

// HookPaths maps each hook type to its configured script path.
func (c *Config) HookPaths() map[hooks.HookType]string {
	return map[hooks.HookType]string{
		hooks.PostResolve:  c.Settings.Hooks.PostResolve,
		hooks.PostDownload: c.Settings.Hooks.PostDownload,
	}
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.RootDir == "" {
		c.Settings.RootDir = defaults.Settings.RootDir
	}
	if c.Settings.CatalogURL == "" {
		c.Settings.CatalogURL = defaults.Settings.CatalogURL
	}
	if c.Settings.AssetBaseURL == "" {
		c.Settings.AssetBaseURL = defaults.Settings.AssetBaseURL
	}
	if c.Settings.UserAgent == "" {
		c.Settings.UserAgent = defaults.Settings.UserAgent
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.TaskTimeout == 0 {
		c.Settings.TaskTimeout = defaults.Settings.TaskTimeout
	}
	if c.Settings.MaxConcurrentDownloads == 0 {
		c.Settings.MaxConcurrentDownloads = defaults.Settings.MaxConcurrentDownloads
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.Platform.OS == "" {
		c.Settings.Platform.OS = defaults.Settings.Platform.OS
	}
	if c.Settings.Platform.Arch == "" {
		c.Settings.Platform.Arch = defaults.Settings.Platform.Arch
	}
}
