package cache

import (
	"fmt"

	"github.com/glorpus-work/blockfetch/internal/logger"
)

// Operation renders cache management results for the command line.
type Operation struct {
	manager Manager
}

// NewOperation creates a new cache operation instance.
func NewOperation(manager Manager) *Operation {
	return &Operation{manager: manager}
}

// Clean cleans the cache and returns a human-readable summary.
func (op *Operation) Clean(manifests, objects bool) (string, error) {
	options := CleanOptions{Manifests: manifests, Objects: objects}

	logger.Debug("Cleaning cache", logger.Fields{
		"directory": op.manager.GetDirectory(),
		"manifests": options.Manifests,
		"objects":   options.Objects,
	})

	result, err := op.manager.Clean(options)
	if err != nil {
		return "", fmt.Errorf("failed to clean cache: %w", err)
	}

	if result.TotalFreed == 0 {
		return "No files were removed from the cache.", nil
	}

	msg := fmt.Sprintf("Successfully cleaned cache. Freed %s of disk space.", formatBytes(result.TotalFreed))
	if result.ManifestsFreed > 0 {
		msg += fmt.Sprintf("\n- Manifests: %s", formatBytes(result.ManifestsFreed))
	}
	if result.ObjectsFreed > 0 {
		msg += fmt.Sprintf("\n- Objects: %s", formatBytes(result.ObjectsFreed))
	}
	return msg, nil
}

// GetInfo returns a human-readable description of the cache.
func (op *Operation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", fmt.Errorf("failed to get cache info: %w", err)
	}

	return fmt.Sprintf(`Cache Information:
  Directory:    %s
  Total Size:   %s
  Manifests:    %s (%d files)
  Objects:      %s (%d files)`,
		info.Directory,
		formatBytes(info.TotalSize),
		formatBytes(info.ManifestSize),
		info.ManifestFiles,
		formatBytes(info.ObjectSize),
		info.ObjectFiles,
	), nil
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"K", "M", "G", "T", "P", "E"}
	if exp < len(units) {
		return fmt.Sprintf("%.1f %sB", float64(bytes)/float64(div), units[exp])
	}
	return fmt.Sprintf("%d B", bytes)
}
