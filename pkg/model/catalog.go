// Package model holds the typed entities of version resolution: the version
// catalog, package descriptors, asset indexes, and the file requirements and
// task statuses derived from them.
package model

import (
	"time"

	"github.com/hashicorp/go-version"

	"github.com/glorpus-work/blockfetch/pkg/errors"
)

// VersionKind classifies a catalog entry.
type VersionKind string

// Known version kinds.
const (
	KindRelease  VersionKind = "release"
	KindSnapshot VersionKind = "snapshot"
	KindOldBeta  VersionKind = "old_beta"
	KindOldAlpha VersionKind = "old_alpha"
)

// LatestVersions names the newest release and snapshot ids.
type LatestVersions struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// CatalogEntry is one entry in the master version list.
type CatalogEntry struct {
	ID          string      `json:"id"`
	Kind        VersionKind `json:"type"`
	URL         string      `json:"url"`
	ReleaseTime time.Time   `json:"releaseTime"`
}

// VersionCatalog is the top-level list of every published version.
type VersionCatalog struct {
	Latest   LatestVersions `json:"latest"`
	Versions []CatalogEntry `json:"versions"`
}

// Validate checks that every entry has an id and a URL and that ids are unique.
func (c *VersionCatalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Versions))
	for i, v := range c.Versions {
		if v.ID == "" {
			return errors.ErrMissingField("version catalog", "id of entry "+itoa(i))
		}
		if v.URL == "" {
			return errors.ErrMissingField("version catalog", "url of "+v.ID)
		}
		if _, dup := seen[v.ID]; dup {
			return errors.Wrapf(errors.ErrMalformedManifest, "version catalog: duplicate id %q", v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	return nil
}

// Find returns the entry with exactly the given id.
func (c *VersionCatalog) Find(id string) (CatalogEntry, bool) {
	for _, v := range c.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return CatalogEntry{}, false
}

// LatestRelease returns the entry the catalog marks as the newest release.
func (c *VersionCatalog) LatestRelease() (CatalogEntry, bool) {
	if c.Latest.Release == "" {
		return CatalogEntry{}, false
	}
	return c.Find(c.Latest.Release)
}

// LatestSnapshot returns the entry the catalog marks as the newest snapshot.
func (c *VersionCatalog) LatestSnapshot() (CatalogEntry, bool) {
	if c.Latest.Snapshot == "" {
		return CatalogEntry{}, false
	}
	return c.Find(c.Latest.Snapshot)
}

// Filter returns the entries of the given kind whose id satisfies constraint,
// keeping catalog order. An empty kind or constraint matches everything.
// Ids that do not parse as versions never satisfy a non-empty constraint.
func (c *VersionCatalog) Filter(kind VersionKind, constraint string) ([]CatalogEntry, error) {
	var constraints version.Constraints
	if constraint != "" {
		parsed, err := version.NewConstraint(constraint)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid version constraint %q", constraint)
		}
		constraints = parsed
	}

	var out []CatalogEntry
	for _, v := range c.Versions {
		if kind != "" && v.Kind != kind {
			continue
		}
		if constraints != nil {
			parsed, err := version.NewVersion(v.ID)
			if err != nil || !constraints.Check(parsed) {
				continue
			}
		}
		out = append(out, v)
	}
	return out, nil
}
