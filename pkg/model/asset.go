package model

import (
	"github.com/glorpus-work/blockfetch/pkg/errors"
)

// AssetObject is one content-addressed resource.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Shard returns the two-character directory the object is stored under.
func (o AssetObject) Shard() string {
	if len(o.Hash) < 2 {
		return o.Hash
	}
	return o.Hash[:2]
}

// Validate requires a lowercase hex hash long enough to shard.
func (o AssetObject) Validate() error {
	if len(o.Hash) < 2 {
		return errors.Wrapf(errors.ErrMalformedManifest, "asset hash %q is too short", o.Hash)
	}
	for _, r := range o.Hash {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return errors.Wrapf(errors.ErrMalformedManifest, "asset hash %q is not lowercase hex", o.Hash)
		}
	}
	if o.Size < 0 {
		return errors.Wrapf(errors.ErrMalformedManifest, "asset %s has negative size", o.Hash)
	}
	return nil
}

// AssetIndex maps logical asset names to content-addressed objects.
type AssetIndex struct {
	Objects        map[string]AssetObject `json:"objects"`
	Virtual        bool                   `json:"virtual,omitempty"`
	MapToResources bool                   `json:"map_to_resources,omitempty"`
}

// Validate checks that the index has an objects map and that every object is well formed.
func (a *AssetIndex) Validate() error {
	if a.Objects == nil {
		return errors.ErrMissingField("asset index", "objects")
	}
	for name, obj := range a.Objects {
		if err := obj.Validate(); err != nil {
			return errors.Wrapf(err, "asset %q", name)
		}
	}
	return nil
}

// TotalSize sums the declared sizes of every object.
func (a *AssetIndex) TotalSize() int64 {
	var n int64
	for _, o := range a.Objects {
		n += o.Size
	}
	return n
}
