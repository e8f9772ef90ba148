package hooks

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/blockfetch/internal/logger"
	"github.com/glorpus-work/blockfetch/pkg/errors"
)

// HookFileExtension is the conventional extension of hook scripts.
const HookFileExtension = ".tengo"

// LoadHooksFromPaths registers the scripts found at the given paths.
// Empty paths and missing files are skipped.
func LoadHooksFromPaths(manager HookManager, paths map[HookType]string) error {
	for _, hookType := range HookTypes() {
		path := paths[hookType]
		if path == "" {
			continue
		}

		content, err := os.ReadFile(filepath.Clean(path))
		if os.IsNotExist(err) {
			logger.Debugf("Hook script %s not found, skipping %s", path, hookType)
			continue
		}
		if err != nil {
			return errors.Wrapf(errors.Classify(errors.ErrHookLoad, err), "error reading hook file %s", path)
		}

		if err := manager.AddHook(Hook{Type: hookType, Content: string(content)}); err != nil {
			return errors.Wrapf(err, "error adding hook %s", hookType)
		}
		logger.Debugf("Loaded %s hook from %s", hookType, path)
	}
	return nil
}

// HookTemplate generates a starter script for a hook type.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PostResolve:
		return `// Post-resolve hook
// Runs after the requirement list was computed, before downloads start.
// Available variables:
// - versionId: string - id of the version being installed
// - rootDir: string - launcher root directory
// - requirements: int - number of files that will be downloaded
// Assign a message to err to abort the install.

/*
if requirements > 5000 {
    err = "refusing to download " + requirements + " files"
}
*/`

	case PostDownload:
		return `// Post-download hook
// Runs once every download task finished.
// Available variables:
// - versionId: string - id of the version being installed
// - rootDir: string - launcher root directory
// - completed: int - number of completed tasks
// - failed: int - number of failed tasks

/*
fmt := import("fmt")
fmt.println(versionId, ": ", completed, " files fetched, ", failed, " failed")
*/`

	default:
		return "// Unknown hook type: " + string(hookType)
	}
}
