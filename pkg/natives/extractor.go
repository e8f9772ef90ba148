// Package natives unpacks native library classifiers into a version's
// natives directory once they have been downloaded.
package natives

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	"github.com/glorpus-work/blockfetch/internal/logger"
	"github.com/glorpus-work/blockfetch/pkg/errors"
	"github.com/glorpus-work/blockfetch/pkg/fsutil"
)

// DefaultExclude lists the archive prefixes never extracted.
var DefaultExclude = []string{"META-INF/"}

// Extractor unpacks native archives.
type Extractor struct{}

// NewExtractor creates a new Extractor instance.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract writes every regular file of the archive at archivePath below
// destDir, except entries under one of the exclude prefixes. A nil exclude
// uses DefaultExclude. Entries that would land outside destDir fail the
// extraction with ErrInvalidPath.
func (e *Extractor) Extract(ctx context.Context, archivePath, destDir string, exclude []string) error {
	if exclude == nil {
		exclude = DefaultExclude
	}

	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	if err := fsutil.EnsureDir(destDir); err != nil {
		return errors.Classify(errors.ErrFilesystem, err)
	}

	extracted := 0
	walkErr := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == "." {
			return nil
		}
		if excluded(path, exclude) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		wrote, err := e.extractEntry(fsys, path, destDir, d)
		if wrote {
			extracted++
		}
		return err
	})
	if walkErr != nil {
		return errors.Wrapf(walkErr, "extracting %s", filepath.Base(archivePath))
	}

	logger.Debug("Extracted natives", logger.Fields{"archive": archivePath, "dest": destDir, "files": extracted})
	return nil
}

func excluded(path string, exclude []string) bool {
	for _, prefix := range exclude {
		if strings.HasPrefix(path, prefix) || path == strings.TrimSuffix(prefix, "/") {
			return true
		}
	}
	return false
}

// extractEntry processes a single archive entry and reports whether a file was written.
func (e *Extractor) extractEntry(fsys fs.FS, path, destDir string, d fs.DirEntry) (bool, error) {
	targetPath := filepath.Join(destDir, filepath.FromSlash(path))
	if !fsutil.IsWithin(destDir, targetPath) {
		return false, errors.Wrapf(errors.ErrInvalidPath, "archive entry %q escapes %s", path, destDir)
	}

	if d.IsDir() {
		return false, errors.Classify(errors.ErrFilesystem, fsutil.EnsureDir(targetPath))
	}

	info, err := d.Info()
	if err != nil {
		return false, fmt.Errorf("failed to get file info for %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		logger.Debug("Skipping non-regular archive entry", logger.Fields{"entry": path, "mode": info.Mode().String()})
		return false, nil
	}

	return true, e.writeRegularFile(fsys, path, targetPath)
}

// writeRegularFile copies the archive entry at path to targetPath, replacing any previous copy.
func (e *Extractor) writeRegularFile(fsys fs.FS, path, targetPath string) error {
	srcFile, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", path, err)
	}
	defer func() { _ = srcFile.Close() }()

	if err := fsutil.EnsureFileDir(targetPath); err != nil {
		return errors.Classify(errors.ErrFilesystem, err)
	}

	dstFile, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Classify(errors.ErrFilesystem, err)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.Classify(errors.ErrFilesystem, fmt.Errorf("failed to copy file %s: %w", path, err))
	}
	return nil
}
