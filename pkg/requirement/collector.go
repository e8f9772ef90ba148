// Package requirement flattens a ResolvedVersion into the files that still
// have to be fetched: the client jar, one file per selected library target
// and one file per asset object, deduplicated by destination path and minus
// whatever already exists on disk.
package requirement

import (
	"io/fs"
	"maps"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/glorpus-work/blockfetch/internal/logger"
	"github.com/glorpus-work/blockfetch/pkg/errors"
	"github.com/glorpus-work/blockfetch/pkg/fsutil"
	"github.com/glorpus-work/blockfetch/pkg/layout"
	"github.com/glorpus-work/blockfetch/pkg/model"
)

// DefaultAssetBaseURL is the upstream asset object CDN.
const DefaultAssetBaseURL = "http://resources.download.minecraft.net"

// Options configure a Collector.
type Options struct {
	// Strict also compares the SHA-1 of existing files when the requirement
	// carries one. Off by default: hashing every asset on every run is slow.
	Strict bool
	// AssetBaseURL is joined with "{shard}/{hash}" for asset objects.
	AssetBaseURL string
	// SkipNatives leaves native classifiers out of the result.
	SkipNatives bool
}

// Collector computes file requirements against a layout.
type Collector struct {
	layout layout.Layout
	opts   Options
}

// New creates a Collector.
func New(l layout.Layout, opts Options) *Collector {
	if opts.AssetBaseURL == "" {
		opts.AssetBaseURL = DefaultAssetBaseURL
	}
	opts.AssetBaseURL = strings.TrimRight(opts.AssetBaseURL, "/")
	return &Collector{layout: l, opts: opts}
}

// Collect returns the requirements of resolved that are not yet satisfied on
// disk. The result has set semantics; callers must not rely on its order.
func (c *Collector) Collect(resolved *model.ResolvedVersion) ([]model.FileRequirement, error) {
	if resolved == nil || resolved.Descriptor == nil {
		return nil, errors.Wrap(errors.ErrMalformedManifest, "nothing resolved")
	}

	candidates, err := c.candidates(resolved)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]model.FileRequirement, 0, len(candidates))
	for _, req := range candidates {
		if _, dup := seen[req.Path]; dup {
			continue
		}
		seen[req.Path] = struct{}{}

		satisfied, err := c.satisfied(req)
		if err != nil {
			return nil, err
		}
		if satisfied {
			logger.Debug("Requirement already satisfied", logger.Fields{"path": req.Path})
			continue
		}
		out = append(out, req)
	}

	logger.Debug("Collected requirements", logger.Fields{
		"version":    resolved.VersionID,
		"candidates": len(candidates),
		"unique":     len(seen),
		"missing":    len(out),
	})
	return out, nil
}

func (c *Collector) candidates(resolved *model.ResolvedVersion) ([]model.FileRequirement, error) {
	d := resolved.Descriptor
	clientPath, err := c.layout.ClientJarPath(resolved.VersionID)
	if err != nil {
		return nil, err
	}
	var objects int
	if resolved.AssetIndex != nil {
		objects = len(resolved.AssetIndex.Objects)
	}
	reqs := make([]model.FileRequirement, 0, 1+len(resolved.Libraries)+objects)

	client := d.Downloads.Client
	reqs = append(reqs, model.FileRequirement{
		URL:  client.URL,
		Path: clientPath,
		Size: client.Size,
		SHA1: client.SHA1,
		Kind: model.RequirementClient,
	})

	for _, lib := range resolved.Libraries {
		if lib.Native && c.opts.SkipNatives {
			continue
		}
		path, err := c.layout.LibraryPath(lib.Artifact.Path)
		if err != nil {
			logger.Debug("Skipping library without a usable path", logger.Fields{"library": lib.Name, "error": err.Error()})
			continue
		}
		kind := model.RequirementLibrary
		if lib.Native {
			kind = model.RequirementNative
		}
		reqs = append(reqs, model.FileRequirement{
			URL:  lib.Artifact.URL,
			Path: path,
			Size: lib.Artifact.Size,
			SHA1: lib.Artifact.SHA1,
			Kind: kind,
		})
	}

	if resolved.AssetIndex != nil {
		// sorted so the output is stable between runs
		for _, name := range slices.Sorted(maps.Keys(resolved.AssetIndex.Objects)) {
			obj := resolved.AssetIndex.Objects[name]
			reqs = append(reqs, model.FileRequirement{
				URL:  c.assetURL(obj),
				Path: c.layout.AssetObjectPath(obj.Hash),
				Size: obj.Size,
				SHA1: obj.Hash,
				Kind: model.RequirementAsset,
			})
		}
	}
	return reqs, nil
}

func (c *Collector) assetURL(obj model.AssetObject) string {
	u, err := url.JoinPath(c.opts.AssetBaseURL, obj.Shard(), obj.Hash)
	if err != nil {
		return c.opts.AssetBaseURL + "/" + obj.Shard() + "/" + obj.Hash
	}
	return u
}

// satisfied reports whether the file already at req.Path counts as present.
func (c *Collector) satisfied(req model.FileRequirement) (bool, error) {
	info, err := os.Stat(req.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, errors.Classify(errors.ErrFilesystem, err)
	case !info.Mode().IsRegular():
		return false, nil
	case info.Size() != req.Size:
		return false, nil
	}

	if !c.opts.Strict || req.SHA1 == "" {
		return true, nil
	}
	got, err := fsutil.FileSHA1(req.Path)
	if err != nil {
		return false, errors.Classify(errors.ErrFilesystem, err)
	}
	return got == fsutil.NormalizeHex(req.SHA1), nil
}
