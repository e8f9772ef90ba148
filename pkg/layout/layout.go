// Package layout maps logical game files onto the on-disk cache layout.
//
// The layout is shared with other launchers reading the same root and must
// stay stable. Version and asset index ids must be single path elements:
//
//	{root}/versions/manifest_version.json
//	{root}/versions/{id}.json
//	{root}/assets/indexes/{id}.json
//	{root}/assets/objects/{xx}/{hash}
//	{root}/libraries/{path}
//	{root}/clients/{version}/client.jar
//	{root}/natives/{version}/
package layout

import (
	"path/filepath"
	"strings"

	"github.com/glorpus-work/blockfetch/pkg/errors"
)

const (
	versionsDir    = "versions"
	catalogFile    = "manifest_version.json"
	assetsDir      = "assets"
	indexesDir     = "indexes"
	objectsDir     = "objects"
	librariesDir   = "libraries"
	clientsDir     = "clients"
	clientJarFile  = "client.jar"
	nativesDir     = "natives"
	manifestSuffix = ".json"
)

// Layout resolves paths below a single root directory.
type Layout struct {
	root string
}

// New returns a Layout rooted at root.
func New(root string) Layout {
	return Layout{root: filepath.Clean(root)}
}

// Root returns the cleaned root directory.
func (l Layout) Root() string { return l.root }

// CatalogPath is where the version catalog is cached.
func (l Layout) CatalogPath() string {
	return filepath.Join(l.root, versionsDir, catalogFile)
}

// DescriptorPath is where the package descriptor of a version is cached.
func (l Layout) DescriptorPath(versionID string) (string, error) {
	if err := checkID("version", versionID); err != nil {
		return "", err
	}
	return filepath.Join(l.root, versionsDir, versionID+manifestSuffix), nil
}

// AssetIndexPath is where an asset index is cached.
func (l Layout) AssetIndexPath(indexID string) (string, error) {
	if err := checkID("asset index", indexID); err != nil {
		return "", err
	}
	return filepath.Join(l.root, assetsDir, indexesDir, indexID+manifestSuffix), nil
}

// AssetObjectPath returns the content-addressed location of an asset object.
func (l Layout) AssetObjectPath(hash string) string {
	return filepath.Join(l.root, assetsDir, objectsDir, shard(hash), hash)
}

// LibraryPath maps a library's relative artifact path under the libraries
// root. Paths that would escape the root are rejected with ErrInvalidPath.
func (l Layout) LibraryPath(rel string) (string, error) {
	if rel == "" {
		return "", errors.Wrap(errors.ErrInvalidPath, "empty library path")
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(errors.ErrInvalidPath, "library path %q escapes the libraries root", rel)
	}
	return filepath.Join(l.LibrariesDir(), clean), nil
}

// ClientJarPath is where the client jar of a version is stored.
func (l Layout) ClientJarPath(versionID string) (string, error) {
	if err := checkID("version", versionID); err != nil {
		return "", err
	}
	return filepath.Join(l.root, clientsDir, versionID, clientJarFile), nil
}

// NativesDir is the extraction target for a version's native libraries.
func (l Layout) NativesDir(versionID string) (string, error) {
	if err := checkID("version", versionID); err != nil {
		return "", err
	}
	return filepath.Join(l.root, nativesDir, versionID), nil
}

// VersionsDir holds the catalog and the descriptors.
func (l Layout) VersionsDir() string { return filepath.Join(l.root, versionsDir) }

// AssetIndexesDir holds the cached asset indexes.
func (l Layout) AssetIndexesDir() string { return filepath.Join(l.root, assetsDir, indexesDir) }

// AssetObjectsDir holds the content-addressed asset objects.
func (l Layout) AssetObjectsDir() string { return filepath.Join(l.root, assetsDir, objectsDir) }

// LibrariesDir holds the library jars.
func (l Layout) LibrariesDir() string { return filepath.Join(l.root, librariesDir) }

// ClientsDir holds the per-version client jars.
func (l Layout) ClientsDir() string { return filepath.Join(l.root, clientsDir) }

// NativesRoot holds every version's extracted natives.
func (l Layout) NativesRoot() string { return filepath.Join(l.root, nativesDir) }

// checkID rejects ids that are not a single path element, so upstream ids
// can never place files outside the root.
func checkID(kind, id string) error {
	switch {
	case id == "":
		return errors.Wrapf(errors.ErrInvalidPath, "empty %s id", kind)
	case id == "." || id == "..", strings.ContainsAny(id, `/\`), filepath.IsAbs(id), filepath.VolumeName(id) != "":
		return errors.Wrapf(errors.ErrInvalidPath, "%s id %q is not a plain name", kind, id)
	}
	return nil
}

func shard(hash string) string {
	if len(hash) < 2 {
		return hash
	}
	return hash[:2]
}
