package manifest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glorpus-work/blockfetch/pkg/errors"
	"github.com/glorpus-work/blockfetch/pkg/fsutil"
	"github.com/glorpus-work/blockfetch/pkg/http"
	mockhttp "github.com/glorpus-work/blockfetch/pkg/http/mocks"
	"github.com/glorpus-work/blockfetch/pkg/model"
)

const (
	indexURL  = "https://meta.example/indexes/5.json"
	indexBody = `{"objects":{"icons/icon_16x16.png":{"hash":"bdf48ef6b5d0d23bbb02e17d04865216179f510a","size":3665}}}`
)

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestLoadOrFetch_CacheReuse(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mockhttp.NewMockTransport(ctrl)
	transport.EXPECT().
		Get(gomock.Any(), indexURL).
		Return(respond(200, indexBody), nil).
		Times(1)

	store := NewStore(transport)
	path := filepath.Join(t.TempDir(), "assets", "indexes", "5.json")

	var first model.AssetIndex
	require.NoError(t, store.LoadOrFetch(context.Background(), path, indexURL, &first))
	assert.Len(t, first.Objects, 1)

	persisted, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, indexBody, string(persisted), "raw bytes are persisted")

	var second model.AssetIndex
	require.NoError(t, store.LoadOrFetch(context.Background(), path, indexURL, &second))
	assert.Equal(t, first, second)
}

func TestLoadOrFetch_CorruptCacheIsRefetched(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mockhttp.NewMockTransport(ctrl)
	transport.EXPECT().Get(gomock.Any(), indexURL).Return(respond(200, indexBody), nil).Times(1)

	path := filepath.Join(t.TempDir(), "5.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"objects":{"x":{"hash":"ab`), fsutil.FileModeDefault))

	var idx model.AssetIndex
	require.NoError(t, NewStore(transport).LoadOrFetch(context.Background(), path, indexURL, &idx))
	assert.Len(t, idx.Objects, 1)

	persisted, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, indexBody, string(persisted))
}

func TestLoadOrFetch_InvalidCacheIsRefetched(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mockhttp.NewMockTransport(ctrl)
	transport.EXPECT().Get(gomock.Any(), indexURL).Return(respond(200, indexBody), nil).Times(1)

	path := filepath.Join(t.TempDir(), "5.json")
	// valid JSON, but fails validation
	require.NoError(t, os.WriteFile(path, []byte(`{"objects":{"bad":{"hash":"XYZ","size":1}}}`), fsutil.FileModeDefault))

	var idx model.AssetIndex
	require.NoError(t, NewStore(transport).LoadOrFetch(context.Background(), path, indexURL, &idx))
	assert.NotContains(t, idx.Objects, "bad", "stale decode does not leak into the result")
	assert.Contains(t, idx.Objects, "icons/icon_16x16.png")
}

func TestLoadOrFetch_Failures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m *mockhttp.MockTransport)
		wantErr error
	}{
		{
			name: "not found",
			setup: func(m *mockhttp.MockTransport) {
				m.EXPECT().Get(gomock.Any(), indexURL).Return(respond(404, "not found"), nil)
			},
			wantErr: errors.ErrNetwork,
		},
		{
			name: "transport error",
			setup: func(m *mockhttp.MockTransport) {
				m.EXPECT().Get(gomock.Any(), indexURL).Return(nil, fmt.Errorf("connection refused"))
			},
			wantErr: errors.ErrNetwork,
		},
		{
			name: "not json",
			setup: func(m *mockhttp.MockTransport) {
				m.EXPECT().Get(gomock.Any(), indexURL).Return(respond(200, "<html>"), nil)
			},
			wantErr: errors.ErrMalformedManifest,
		},
		{
			name: "missing required field",
			setup: func(m *mockhttp.MockTransport) {
				m.EXPECT().Get(gomock.Any(), indexURL).Return(respond(200, `{"virtual":true}`), nil)
			},
			wantErr: errors.ErrMalformedManifest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			transport := mockhttp.NewMockTransport(ctrl)
			tt.setup(transport)

			dir := t.TempDir()
			path := filepath.Join(dir, "indexes", "5.json")

			var idx model.AssetIndex
			err := NewStore(transport).LoadOrFetch(context.Background(), path, indexURL, &idx)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoFileExists(t, path, "no partial cache file on failure")
		})
	}
}

func TestLoadOrFetch_FilesystemError(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mockhttp.NewMockTransport(ctrl)
	transport.EXPECT().Get(gomock.Any(), indexURL).Return(respond(200, indexBody), nil)

	dir := t.TempDir()
	blocker := filepath.Join(dir, "assets")
	require.NoError(t, os.WriteFile(blocker, []byte("a file where a directory should be"), fsutil.FileModeDefault))

	var idx model.AssetIndex
	err := NewStore(transport).LoadOrFetch(context.Background(), filepath.Join(blocker, "indexes", "5.json"), indexURL, &idx)
	assert.ErrorIs(t, err, errors.ErrFilesystem)
}

func TestLoadOrFetchVerified(t *testing.T) {
	goodSHA := fsutil.BytesSHA1([]byte(indexBody))

	t.Run("fetched body with wrong hash is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		transport := mockhttp.NewMockTransport(ctrl)
		transport.EXPECT().Get(gomock.Any(), indexURL).Return(respond(200, indexBody), nil)

		path := filepath.Join(t.TempDir(), "5.json")
		var idx model.AssetIndex
		err := NewStore(transport).LoadOrFetchVerified(context.Background(), path, indexURL, strings.Repeat("0", 40), &idx)
		assert.ErrorIs(t, err, errors.ErrIntegrityMismatch)
		assert.NoFileExists(t, path)
	})

	t.Run("stale cached file is replaced", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		transport := mockhttp.NewMockTransport(ctrl)
		transport.EXPECT().Get(gomock.Any(), indexURL).Return(respond(200, indexBody), nil).Times(1)

		path := filepath.Join(t.TempDir(), "5.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"objects":{}}`), fsutil.FileModeDefault))

		store := NewStore(transport)
		var idx model.AssetIndex
		require.NoError(t, store.LoadOrFetchVerified(context.Background(), path, indexURL, strings.ToUpper(goodSHA), &idx))
		assert.Len(t, idx.Objects, 1)

		// now cached with the right hash
		var again model.AssetIndex
		require.NoError(t, store.LoadOrFetchVerified(context.Background(), path, indexURL, goodSHA, &again))
		assert.Len(t, again.Objects, 1)
	})
}
