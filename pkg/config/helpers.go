package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/glorpus-work/blockfetch/pkg/errors"
)

// Keys lists the keys understood by SetValue and GetValue, in display order.
func Keys() []string {
	return []string{
		"root_dir",
		"catalog_url",
		"asset_base_url",
		"user_agent",
		"http_timeout",
		"task_timeout",
		"max_concurrent_downloads",
		"strict_verify",
		"platform.os",
		"platform.arch",
		"hooks.post_resolve",
		"hooks.post_download",
		"metrics_textfile",
		"output_format",
		"log_level",
	}
}

// SetValue sets a configuration value by key. Nested settings use dotted keys
// such as platform.os. The result is validated before it is kept.
func (c *Config) SetValue(key, value string) error {
	next := *c
	s := &next.Settings

	switch key {
	case "root_dir":
		s.RootDir = value
	case "catalog_url":
		s.CatalogURL = value
	case "asset_base_url":
		s.AssetBaseURL = value
	case "user_agent":
		s.UserAgent = value
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		s.HTTPTimeout = d
	case "task_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		s.TaskTimeout = d
	case "max_concurrent_downloads":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		s.MaxConcurrentDownloads = n
	case "strict_verify":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		s.StrictVerify = b
	case "platform.os":
		s.Platform.OS = value
	case "platform.arch":
		s.Platform.Arch = value
	case "hooks.post_resolve":
		s.Hooks.PostResolve = value
	case "hooks.post_download":
		s.Hooks.PostDownload = value
	case "metrics_textfile":
		s.MetricsTextfile = value
	case "output_format":
		s.OutputFormat = value
	case "log_level":
		s.LogLevel = value
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}

	if err := next.Validate(); err != nil {
		return errors.Classify(errors.ErrConfigValidation, err)
	}
	*c = next
	return nil
}

// GetValue returns the value for key formatted as a string.
func (c *Config) GetValue(key string) (string, error) {
	s := c.Settings
	switch key {
	case "root_dir":
		return s.RootDir, nil
	case "catalog_url":
		return s.CatalogURL, nil
	case "asset_base_url":
		return s.AssetBaseURL, nil
	case "user_agent":
		return s.UserAgent, nil
	case "http_timeout":
		return s.HTTPTimeout.String(), nil
	case "task_timeout":
		return s.TaskTimeout.String(), nil
	case "max_concurrent_downloads":
		return strconv.Itoa(s.MaxConcurrentDownloads), nil
	case "strict_verify":
		return strconv.FormatBool(s.StrictVerify), nil
	case "platform.os":
		return s.Platform.OS, nil
	case "platform.arch":
		return s.Platform.Arch, nil
	case "hooks.post_resolve":
		return s.Hooks.PostResolve, nil
	case "hooks.post_download":
		return s.Hooks.PostDownload, nil
	case "metrics_textfile":
		return s.MetricsTextfile, nil
	case "output_format":
		return s.OutputFormat, nil
	case "log_level":
		return s.LogLevel, nil
	default:
		return "", fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
}

// ToMap returns every key with its current value.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string, len(Keys()))
	for _, key := range Keys() {
		value, _ := c.GetValue(key)
		result[key] = value
	}
	return result
}
