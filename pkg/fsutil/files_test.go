package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("creates file and parents", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "versions", "manifest_version.json")

		require.NoError(t, WriteFileAtomic(path, []byte(`{"a":1}`), FileModeDefault))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(data))
	})

	t.Run("replaces existing content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "index.json")
		require.NoError(t, os.WriteFile(path, []byte("old old old"), FileModeDefault))

		require.NoError(t, WriteFileAtomic(path, []byte("new"), FileModeDefault))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteFileAtomic(filepath.Join(dir, "a.json"), []byte("x"), FileModeDefault))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "a.json", entries[0].Name())
	})

	t.Run("empty path", func(t *testing.T) {
		assert.Error(t, WriteFileAtomic("", []byte("x"), FileModeDefault))
	})
}

func TestSHA1Helpers(t *testing.T) {
	// sha1("hello")
	const want = "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"

	assert.Equal(t, want, BytesSHA1([]byte("hello")))

	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("hello"), FileModeDefault))
	got, err := FileSHA1(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = FileSHA1(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	assert.Equal(t, want, NormalizeHex("  AAF4C61DDCC5E8A2DABEDE0F3B482CD9AEA9434D\n"))
}

func TestIsWithin(t *testing.T) {
	root := filepath.Join("/tmp", "natives")
	tests := []struct {
		target string
		want   bool
	}{
		{filepath.Join(root, "lwjgl.so"), true},
		{filepath.Join(root, "sub", "a.dll"), true},
		{root, true},
		{filepath.Join(root, "..", "escape"), false},
		{filepath.Join("/tmp", "nativesX", "a"), false},
		{"/etc/passwd", false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithin(root, tt.target))
		})
	}
}
