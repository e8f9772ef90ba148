package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/blockfetch/pkg/cache"
	"github.com/glorpus-work/blockfetch/pkg/fsutil"
	"github.com/glorpus-work/blockfetch/pkg/layout"
)

// populate writes a small launcher tree: 3 manifest files (30 bytes) and
// 4 object files (400 bytes).
func populate(t *testing.T, l layout.Layout) {
	t.Helper()

	libPath, err := l.LibraryPath("org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1.jar")
	require.NoError(t, err)

	nativesDir, err := l.NativesDir("1.20.1")
	require.NoError(t, err)
	descriptorPath, err := l.DescriptorPath("1.20.1")
	require.NoError(t, err)
	indexPath, err := l.AssetIndexPath("5")
	require.NoError(t, err)
	nativePath := filepath.Join(nativesDir, "liblwjgl.so")

	files := map[string]int{
		l.CatalogPath():                 10,
		descriptorPath:                  10,
		indexPath:                       10,
		clientJar(t, l):                 100,
		libPath:                         100,
		l.AssetObjectPath("ab12cd34ef"): 100,
		nativePath:                      100,
	}
	for path, size := range files {
		require.NoError(t, fsutil.EnsureFileDir(path))
		require.NoError(t, os.WriteFile(path, make([]byte, size), fsutil.FileModeDefault))
	}
}

func clientJar(t *testing.T, l layout.Layout) string {
	t.Helper()
	path, err := l.ClientJarPath("1.20.1")
	require.NoError(t, err)
	return path
}

func newPopulated(t *testing.T) (*cache.DefaultManager, layout.Layout) {
	t.Helper()
	l := layout.New(t.TempDir())
	populate(t, l)
	return cache.NewManager(l), l
}

func TestGetDirectory(t *testing.T) {
	dir := t.TempDir()
	mgr := cache.NewManager(layout.New(dir))
	assert.Equal(t, filepath.Clean(dir), mgr.GetDirectory())
}

func TestGetInfo(t *testing.T) {
	mgr, _ := newPopulated(t)

	info, err := mgr.GetInfo()
	require.NoError(t, err)

	assert.Equal(t, int64(30), info.ManifestSize)
	assert.Equal(t, 3, info.ManifestFiles)
	assert.Equal(t, int64(400), info.ObjectSize)
	assert.Equal(t, 4, info.ObjectFiles)
	assert.Equal(t, int64(430), info.TotalSize)
}

func TestGetInfoEmptyCache(t *testing.T) {
	mgr := cache.NewManager(layout.New(filepath.Join(t.TempDir(), "absent")))

	info, err := mgr.GetInfo()
	require.NoError(t, err)
	assert.Zero(t, info.TotalSize)
	assert.Zero(t, info.ManifestFiles)
	assert.Zero(t, info.ObjectFiles)
}

func TestClean(t *testing.T) {
	tests := []struct {
		name          string
		options       cache.CleanOptions
		wantManifests int64
		wantObjects   int64
	}{
		{name: "default cleans both", options: cache.CleanOptions{}, wantManifests: 30, wantObjects: 400},
		{name: "both", options: cache.CleanOptions{Manifests: true, Objects: true}, wantManifests: 30, wantObjects: 400},
		{name: "manifests only", options: cache.CleanOptions{Manifests: true}, wantManifests: 30},
		{name: "objects only", options: cache.CleanOptions{Objects: true}, wantObjects: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, l := newPopulated(t)

			result, err := mgr.Clean(tt.options)
			require.NoError(t, err)
			assert.Equal(t, tt.wantManifests, result.ManifestsFreed)
			assert.Equal(t, tt.wantObjects, result.ObjectsFreed)
			assert.Equal(t, tt.wantManifests+tt.wantObjects, result.TotalFreed)

			info, err := mgr.GetInfo()
			require.NoError(t, err)
			assert.Equal(t, 30-tt.wantManifests, info.ManifestSize)
			assert.Equal(t, 400-tt.wantObjects, info.ObjectSize)

			if tt.wantObjects > 0 {
				assert.DirExists(t, l.AssetObjectsDir(), "cleaned directories are recreated")
				assert.NoFileExists(t, clientJar(t, l))
			} else {
				assert.FileExists(t, clientJar(t, l))
			}
		})
	}
}

func TestCleanNonExistentDirectories(t *testing.T) {
	mgr := cache.NewManager(layout.New(t.TempDir()))

	result, err := mgr.Clean(cache.CleanOptions{})
	require.NoError(t, err)
	assert.Zero(t, result.TotalFreed)
}

func TestOperationClean(t *testing.T) {
	mgr, _ := newPopulated(t)
	op := cache.NewOperation(mgr)

	msg, err := op.Clean(true, false)
	require.NoError(t, err)
	assert.Contains(t, msg, "Freed 30 B")
	assert.Contains(t, msg, "- Manifests: 30 B")
	assert.NotContains(t, msg, "- Objects")

	msg, err = op.Clean(false, false)
	require.NoError(t, err)
	assert.Contains(t, msg, "- Objects: 400 B")

	msg, err = op.Clean(false, false)
	require.NoError(t, err)
	assert.Equal(t, "No files were removed from the cache.", msg)
}

func TestOperationGetInfo(t *testing.T) {
	mgr, _ := newPopulated(t)
	op := cache.NewOperation(mgr)

	msg, err := op.GetInfo()
	require.NoError(t, err)
	assert.Contains(t, msg, mgr.GetDirectory())
	assert.Contains(t, msg, "Total Size:   430 B")
	assert.Contains(t, msg, "Manifests:    30 B (3 files)")
	assert.Contains(t, msg, "Objects:      400 B (4 files)")
}
