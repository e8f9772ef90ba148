// Package manifest implements the durable manifest cache: a manifest is read
// from its local path when present and valid, and otherwise fetched once,
// validated and persisted atomically before being returned.
package manifest

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"reflect"

	"github.com/glorpus-work/blockfetch/internal/logger"
	"github.com/glorpus-work/blockfetch/pkg/errors"
	"github.com/glorpus-work/blockfetch/pkg/fsutil"
	"github.com/glorpus-work/blockfetch/pkg/http"
)

// Manifest is any decoded manifest that can check its own required fields.
type Manifest interface {
	Validate() error
}

// Store loads manifests through a local cache.
// It holds no state besides its transport and may be shared between goroutines.
type Store struct {
	transport http.Transport
}

// NewStore creates a Store fetching cache misses through transport.
func NewStore(transport http.Transport) *Store {
	return &Store{transport: transport}
}

// LoadOrFetch decodes the manifest at localPath into out. When the file is
// missing or does not decode and validate, remoteURL is fetched instead and
// its body is persisted at localPath. Nothing is written on failure.
func (s *Store) LoadOrFetch(ctx context.Context, localPath, remoteURL string, out Manifest) error {
	return s.load(ctx, localPath, remoteURL, "", out)
}

// LoadOrFetchVerified is LoadOrFetch with a known SHA-1 of the raw body.
// A cached file with a different hash counts as a miss; a fetched body with a
// different hash fails with ErrIntegrityMismatch.
func (s *Store) LoadOrFetchVerified(ctx context.Context, localPath, remoteURL, sha1 string, out Manifest) error {
	return s.load(ctx, localPath, remoteURL, fsutil.NormalizeHex(sha1), out)
}

func (s *Store) load(ctx context.Context, localPath, remoteURL, sha1 string, out Manifest) error {
	if s.loadCached(localPath, sha1, out) {
		return nil
	}

	logger.Debug("Manifest cache miss, fetching", logger.Fields{"path": localPath, "url": remoteURL})

	body, err := s.fetch(ctx, remoteURL)
	if err != nil {
		return err
	}
	if sha1 != "" {
		if got := fsutil.BytesSHA1(body); got != sha1 {
			return errors.ErrHashMismatch(remoteURL, sha1, got)
		}
	}

	reset(out)
	if err := decode(body, out); err != nil {
		return errors.Wrapf(err, "decoding %s", remoteURL)
	}

	if err := fsutil.WriteFileAtomic(localPath, body, fsutil.FileModeDefault); err != nil {
		return errors.Classify(errors.ErrFilesystem, err)
	}
	return nil
}

// loadCached reports whether out was filled from a valid cached file.
func (s *Store) loadCached(localPath, sha1 string, out Manifest) bool {
	data, err := os.ReadFile(localPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Debug("Manifest cache unreadable", logger.Fields{"path": localPath, "error": err.Error()})
		}
		return false
	}

	if sha1 != "" && fsutil.BytesSHA1(data) != sha1 {
		logger.Debug("Cached manifest hash differs, refetching", logger.Fields{"path": localPath})
		return false
	}

	if err := decode(data, out); err != nil {
		logger.Debug("Cached manifest is corrupt, refetching", logger.Fields{"path": localPath, "error": err.Error()})
		return false
	}

	logger.Debug("Manifest cache hit", logger.Fields{"path": localPath})
	return true
}

func (s *Store) fetch(ctx context.Context, remoteURL string) ([]byte, error) {
	if remoteURL == "" {
		return nil, errors.Wrap(errors.ErrNetwork, "no remote url for manifest")
	}

	resp, err := s.transport.Get(ctx, remoteURL)
	if err != nil {
		return nil, errors.Classify(errors.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !resp.OK() {
		return nil, errors.ErrHTTPStatus(remoteURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Classify(errors.ErrNetwork, errors.Wrapf(err, "reading %s", remoteURL))
	}
	return body, nil
}

func decode(data []byte, out Manifest) error {
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Classify(errors.ErrMalformedManifest, err)
	}
	if err := out.Validate(); err != nil {
		return errors.Classify(errors.ErrMalformedManifest, err)
	}
	return nil
}

// reset zeroes out so a partially decoded cache file leaves nothing behind.
func reset(out Manifest) {
	v := reflect.ValueOf(out)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v.Elem().SetZero()
	}
}
