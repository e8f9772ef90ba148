package cache

// Manager defines the interface for cache management operations.
type Manager interface {
	Clean(options CleanOptions) (*CleanResult, error)
	GetInfo() (*Info, error)
	GetDirectory() string
}

// CleanOptions specifies what to clean from the cache.
// With neither flag set, both groups are cleaned.
type CleanOptions struct {
	// Manifests covers the version catalog, package descriptors and asset indexes.
	Manifests bool
	// Objects covers client jars, libraries, asset objects and extracted natives.
	Objects bool
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed     int64
	ManifestsFreed int64
	ObjectsFreed   int64
}

// Info represents cache information.
type Info struct {
	Directory     string
	TotalSize     int64
	ManifestSize  int64
	ManifestFiles int
	ObjectSize    int64
	ObjectFiles   int
}
