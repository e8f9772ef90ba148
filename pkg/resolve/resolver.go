// Package resolve turns a version id into a ResolvedVersion by walking the
// version catalog, the package descriptor and the asset index, and by
// selecting one download target per library for the configured platform.
package resolve

import (
	"context"

	"github.com/glorpus-work/blockfetch/internal/logger"
	"github.com/glorpus-work/blockfetch/pkg/errors"
	"github.com/glorpus-work/blockfetch/pkg/layout"
	"github.com/glorpus-work/blockfetch/pkg/manifest"
	"github.com/glorpus-work/blockfetch/pkg/model"
	"github.com/glorpus-work/blockfetch/pkg/platform"
)

// DefaultCatalogURL is the upstream version catalog.
const DefaultCatalogURL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"

// ManifestLoader is the part of manifest.Store the resolver depends on.
type ManifestLoader interface {
	LoadOrFetch(ctx context.Context, localPath, remoteURL string, out manifest.Manifest) error
	LoadOrFetchVerified(ctx context.Context, localPath, remoteURL, sha1 string, out manifest.Manifest) error
}

// Options configure a Resolver.
type Options struct {
	CatalogURL string
	Platform   platform.Platform
}

var _ ManifestLoader = (*manifest.Store)(nil)

// Resolver resolves version ids against a manifest store rooted at a layout.
type Resolver struct {
	store  ManifestLoader
	layout layout.Layout
	opts   Options
}

// New creates a Resolver. An empty CatalogURL selects the upstream catalog
// and a zero Platform selects the running one.
func New(store ManifestLoader, l layout.Layout, opts Options) *Resolver {
	if opts.CatalogURL == "" {
		opts.CatalogURL = DefaultCatalogURL
	}
	if opts.Platform.OS == "" {
		opts.Platform = platform.CurrentPlatform()
	}
	return &Resolver{store: store, layout: l, opts: opts}
}

// Catalog loads the version catalog through the store.
func (r *Resolver) Catalog(ctx context.Context) (*model.VersionCatalog, error) {
	var catalog model.VersionCatalog
	if err := r.store.LoadOrFetch(ctx, r.layout.CatalogPath(), r.opts.CatalogURL, &catalog); err != nil {
		return nil, errors.Wrap(err, "loading version catalog")
	}
	return &catalog, nil
}

// Resolve loads every manifest of versionID and selects its libraries.
// Each step depends on the previous one, so the first failure aborts.
func (r *Resolver) Resolve(ctx context.Context, versionID string) (*model.ResolvedVersion, error) {
	catalog, err := r.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	entry, ok := catalog.Find(versionID)
	if !ok {
		return nil, errors.ErrVersionNotFoundWithID(versionID)
	}

	descriptorPath, err := r.layout.DescriptorPath(entry.ID)
	if err != nil {
		return nil, errors.Wrap(err, "version catalog")
	}
	var descriptor model.PackageDescriptor
	if err := r.store.LoadOrFetch(ctx, descriptorPath, entry.URL, &descriptor); err != nil {
		return nil, errors.Wrapf(err, "loading package descriptor %s", entry.ID)
	}

	ref := descriptor.AssetIndex
	indexPath, err := r.layout.AssetIndexPath(ref.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "package descriptor %s", entry.ID)
	}
	var index model.AssetIndex
	if err := r.store.LoadOrFetchVerified(ctx, indexPath, ref.URL, ref.SHA1, &index); err != nil {
		return nil, errors.Wrapf(err, "loading asset index %s", ref.ID)
	}

	resolved := &model.ResolvedVersion{
		VersionID:  entry.ID,
		Descriptor: &descriptor,
		AssetIndex: &index,
	}
	for i := range descriptor.Libraries {
		lib := &descriptor.Libraries[i]
		target, err := r.selectTarget(lib)
		switch {
		case err == nil:
			resolved.Libraries = append(resolved.Libraries, target)
		case errors.Is(err, errSkipped):
			logger.Debug("Library excluded by rules", logger.Fields{"library": lib.Name, "os": r.opts.Platform.OS})
		default:
			logger.Warn("Omitting library", logger.Fields{"library": lib.Name, "error": err.Error()})
			resolved.Omitted = append(resolved.Omitted, lib.Name)
		}
	}

	logger.Debug("Resolved version", logger.Fields{
		"version":   entry.ID,
		"libraries": len(resolved.Libraries),
		"omitted":   len(resolved.Omitted),
		"assets":    len(index.Objects),
	})
	return resolved, nil
}

var errSkipped = errors.Wrap(errors.ErrLibraryUnresolvable, "excluded for platform")

// selectTarget prefers the native classifier for this OS and falls back to
// the generic artifact.
func (r *Resolver) selectTarget(lib *model.LibraryEntry) (model.ResolvedLibrary, error) {
	p := r.opts.Platform
	if !lib.Allows(p.ManifestOS()) {
		return model.ResolvedLibrary{}, errSkipped
	}

	if key, art, ok := r.nativeClassifier(lib); ok {
		return model.ResolvedLibrary{Name: lib.Name, Artifact: art, Native: true, Classifier: key}, nil
	}
	if lib.Downloads.Artifact != nil && lib.Downloads.Artifact.URL != "" {
		return model.ResolvedLibrary{Name: lib.Name, Artifact: *lib.Downloads.Artifact}, nil
	}
	if len(lib.Natives) > 0 || len(lib.Downloads.Classifiers) > 0 {
		return model.ResolvedLibrary{}, errors.Wrapf(errors.ErrLibraryUnresolvable, "%s: no native classifier for %s", lib.Name, p.OS)
	}
	return model.ResolvedLibrary{}, errors.Wrapf(errors.ErrLibraryUnresolvable, "%s: no artifact", lib.Name)
}

func (r *Resolver) nativeClassifier(lib *model.LibraryEntry) (string, model.Artifact, bool) {
	if len(lib.Downloads.Classifiers) == 0 {
		return "", model.Artifact{}, false
	}
	p := r.opts.Platform

	var keys []string
	if key, ok := lib.Natives[p.ManifestOS()]; ok {
		keys = append(keys, p.ExpandNativeKey(key))
	} else if len(lib.Natives) > 0 {
		// declares natives, but not for this OS
		return "", model.Artifact{}, false
	}
	keys = append(keys, p.NativeKeys()...)

	for _, key := range keys {
		if art, ok := lib.Downloads.Classifiers[key]; ok && art.URL != "" {
			return key, art, true
		}
	}
	return "", model.Artifact{}, false
}
