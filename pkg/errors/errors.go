// Package errors defines the error taxonomy shared by the manifest store, the
// resolver, the requirement collector and the download orchestrator.
//
// Every failure that crosses a package boundary wraps one of the sentinels below
// with %w, so callers classify failures with errors.Is.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Resolution and transfer errors.
var (
	// ErrNetwork is returned when a request fails or the server answers with a non-2xx status.
	// It is the only class of failure a caller may reasonably retry.
	ErrNetwork = fmt.Errorf("network error")

	// ErrMalformedManifest is returned when a manifest body is not valid JSON
	// or lacks a required field.
	ErrMalformedManifest = fmt.Errorf("malformed manifest")

	// ErrFilesystem is returned when a directory or file cannot be created, written or inspected.
	ErrFilesystem = fmt.Errorf("filesystem error")

	// ErrIntegrityMismatch is returned when downloaded bytes disagree with the declared size or hash.
	ErrIntegrityMismatch = fmt.Errorf("integrity mismatch")

	// ErrVersionNotFound is returned when the requested id is absent from the version catalog.
	ErrVersionNotFound = fmt.Errorf("version not found")

	// ErrLibraryUnresolvable marks a library without a usable download target for the running platform.
	// It is a soft error: the library is omitted and resolution continues.
	ErrLibraryUnresolvable = fmt.Errorf("library unresolvable")

	// ErrTimeout is returned when a single task exceeds its network deadline.
	ErrTimeout = fmt.Errorf("timeout")

	// ErrCancelled is reported for tasks that never started because their run was cancelled.
	ErrCancelled = fmt.Errorf("cancelled")

	// ErrInvalidPath is returned when a path is empty or escapes its root.
	ErrInvalidPath = fmt.Errorf("invalid path")
)

// Config errors.
var (
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config to YAML")

	// ErrUnknownConfigKey is returned by the config get/set helpers.
	ErrUnknownConfigKey = fmt.Errorf("unknown configuration key")

	ErrInvalidOSValue       = fmt.Errorf("invalid OS value")
	ErrInvalidArchValue     = fmt.Errorf("invalid architecture value")
	ErrInvalidLogLevel      = fmt.Errorf("invalid log level")
	ErrInvalidOutputFormat  = fmt.Errorf("invalid output format")
	ErrHTTPTimeoutNegative  = fmt.Errorf("http_timeout cannot be negative")
	ErrTaskTimeoutNegative  = fmt.Errorf("task_timeout cannot be negative")
	ErrMaxConcurrentInvalid = fmt.Errorf("max_concurrent_downloads must be at least 1")
	ErrEmptyURL             = fmt.Errorf("url cannot be empty")
)

// Hook errors.
var (
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// Wrap wraps an error with additional context.
// If the error is nil, Wrap returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
// If the error is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Classify attaches a taxonomy sentinel to err, keeping err's own chain intact.
func Classify(sentinel, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Retryable reports whether a caller-level retry could succeed.
// This package never retries on its own.
func Retryable(err error) bool {
	return stderrors.Is(err, ErrNetwork) || stderrors.Is(err, ErrTimeout)
}

// Is and As re-export the standard library helpers so callers importing this
// package under the name "errors" keep them available.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// ErrVersionNotFoundWithID creates a version-not-found error naming the id.
func ErrVersionNotFoundWithID(id string) error {
	return fmt.Errorf("%w: %q", ErrVersionNotFound, id)
}

// ErrHTTPStatus creates a network error for an unexpected status code.
func ErrHTTPStatus(url string, code int) error {
	return fmt.Errorf("%w: unexpected status code: %d for %s", ErrNetwork, code, url)
}

// ErrMissingField creates a malformed-manifest error for a required field.
func ErrMissingField(manifest, field string) error {
	return fmt.Errorf("%w: %s: missing %s", ErrMalformedManifest, manifest, field)
}

// ErrSizeMismatch creates an integrity error for a byte count disagreement.
func ErrSizeMismatch(path string, want, got int64) error {
	return fmt.Errorf("%w: %s: expected %d bytes, got %d", ErrIntegrityMismatch, path, want, got)
}

// ErrHashMismatch creates an integrity error for a hash disagreement.
func ErrHashMismatch(path, want, got string) error {
	return fmt.Errorf("%w: %s: expected sha1 %s, got %s", ErrIntegrityMismatch, path, want, got)
}

// ErrInvalidOSValueWithDetails is a helper to create a wrapped error with the invalid value and valid options.
func ErrInvalidOSValueWithDetails(value string, validOS []string) error {
	return fmt.Errorf("%w: %s. Valid values are: %v", ErrInvalidOSValue, value, validOS)
}

// ErrInvalidArchValueWithDetails is a helper to create a wrapped error with the invalid value and valid options.
func ErrInvalidArchValueWithDetails(value string, validArch []string) error {
	return fmt.Errorf("%w: %s. Valid values are: %v", ErrInvalidArchValue, value, validArch)
}

// ErrInvalidOutputFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidOutputFormat, format)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}
