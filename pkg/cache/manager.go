package cache

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/glorpus-work/blockfetch/pkg/errors"
	"github.com/glorpus-work/blockfetch/pkg/fsutil"
	"github.com/glorpus-work/blockfetch/pkg/layout"
)

// DefaultManager implements Manager over a game file layout.
type DefaultManager struct {
	layout layout.Layout
}

var _ Manager = (*DefaultManager)(nil)

// NewManager creates a new cache manager for the given layout.
func NewManager(l layout.Layout) *DefaultManager {
	return &DefaultManager{layout: l}
}

func (cm *DefaultManager) manifestDirs() []string {
	return []string{cm.layout.VersionsDir(), cm.layout.AssetIndexesDir()}
}

func (cm *DefaultManager) objectDirs() []string {
	return []string{
		cm.layout.ClientsDir(),
		cm.layout.LibrariesDir(),
		cm.layout.AssetObjectsDir(),
		cm.layout.NativesRoot(),
	}
}

// Clean removes cached files according to the specified options.
func (cm *DefaultManager) Clean(options CleanOptions) (*CleanResult, error) {
	if !options.Manifests && !options.Objects {
		options.Manifests = true
		options.Objects = true
	}

	result := &CleanResult{}

	if options.Manifests {
		size, err := cleanDirectories(cm.manifestDirs())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to clean manifest cache")
		}
		result.ManifestsFreed = size
		result.TotalFreed += size
	}

	if options.Objects {
		size, err := cleanDirectories(cm.objectDirs())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to clean object cache")
		}
		result.ObjectsFreed = size
		result.TotalFreed += size
	}

	return result, nil
}

// GetInfo returns information about the cache.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	info := &Info{Directory: cm.layout.Root()}

	for _, dir := range cm.manifestDirs() {
		size, files, err := getDirSizeAndFiles(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get manifest cache info")
		}
		info.ManifestSize += size
		info.ManifestFiles += files
	}

	for _, dir := range cm.objectDirs() {
		size, files, err := getDirSizeAndFiles(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get object cache info")
		}
		info.ObjectSize += size
		info.ObjectFiles += files
	}

	info.TotalSize = info.ManifestSize + info.ObjectSize
	return info, nil
}

// GetDirectory returns the layout root.
func (cm *DefaultManager) GetDirectory() string {
	return cm.layout.Root()
}

func cleanDirectories(dirs []string) (int64, error) {
	var total int64
	for _, dir := range dirs {
		size, err := cleanDirectory(dir)
		total += size
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// cleanDirectory removes a directory and returns bytes freed.
// The directory is recreated empty.
func cleanDirectory(dir string) (int64, error) {
	size, _, err := getDirSizeAndFiles(dir)
	if err != nil {
		return 0, err
	}

	if err := os.RemoveAll(dir); err != nil {
		return 0, errors.Classify(errors.ErrFilesystem, errors.Wrapf(err, "failed to remove directory %s", dir))
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return size, errors.Classify(errors.ErrFilesystem, errors.Wrapf(err, "failed to recreate directory %s", dir))
	}

	return size, nil
}

// getDirSizeAndFiles calculates directory size and file count.
// A missing directory counts as empty.
func getDirSizeAndFiles(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}

	err = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		count++
		return nil
	})
	if err != nil {
		err = errors.Classify(errors.ErrFilesystem, errors.Wrapf(err, "error walking directory %s", dir))
	}
	return size, count, err
}
