package model

import "strconv"

// ResolvedVersion aggregates everything needed to compute the file
// requirements of one version on one platform.
type ResolvedVersion struct {
	// VersionID is the catalog id the version was resolved under. Per-version
	// paths are keyed by it rather than by the descriptor's own id.
	VersionID  string
	Descriptor *PackageDescriptor
	AssetIndex *AssetIndex
	Libraries  []ResolvedLibrary
	// Omitted names libraries that had no usable target for the platform.
	Omitted []string
}

// RequirementKind says which part of a version a file belongs to.
type RequirementKind string

// Requirement kinds.
const (
	RequirementClient  RequirementKind = "client"
	RequirementLibrary RequirementKind = "library"
	RequirementNative  RequirementKind = "native"
	RequirementAsset   RequirementKind = "asset"
)

// FileRequirement is one file that must exist at Path with Size bytes
// and, when SHA1 is set, that content hash.
type FileRequirement struct {
	URL  string          `json:"url"`
	Path string          `json:"path"`
	Size int64           `json:"size"`
	SHA1 string          `json:"sha1,omitempty"`
	Kind RequirementKind `json:"kind"`
}

func itoa(i int) string { return strconv.Itoa(i) }
