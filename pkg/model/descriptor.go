package model

import (
	"encoding/json"
	"strings"

	"github.com/glorpus-work/blockfetch/pkg/errors"
)

// Artifact is one downloadable file as described by a manifest.
// Path is only present on library artifacts.
type Artifact struct {
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// AssetIndexRef is the descriptor's pointer to its asset index manifest.
type AssetIndexRef struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize"`
	URL       string `json:"url"`
}

// JavaVersion is the runtime a version requires.
type JavaVersion struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

// Downloads lists the top-level artifacts of a version.
type Downloads struct {
	Client Artifact  `json:"client"`
	Server *Artifact `json:"server,omitempty"`
}

// Variant distinguishes plain descriptors from ones patched by a mod loader.
// It is either Vanilla or ModdedWith.
type Variant interface {
	isVariant()
}

// Vanilla is an unmodified upstream descriptor.
type Vanilla struct{}

// ModdedWith is a descriptor produced by a mod loader installer.
type ModdedWith struct {
	TweakClass     string
	ExtraMainClass string
}

func (Vanilla) isVariant()    {}
func (ModdedWith) isVariant() {}

// PackageDescriptor is the per-version manifest.
type PackageDescriptor struct {
	ID              string         `json:"id"`
	Kind            VersionKind    `json:"type"`
	MainClass       string         `json:"mainClass"`
	Assets          string         `json:"assets"`
	ComplianceLevel int            `json:"complianceLevel"`
	Downloads       Downloads      `json:"downloads"`
	Libraries       []LibraryEntry `json:"libraries"`
	AssetIndex      AssetIndexRef  `json:"assetIndex"`
	JavaVersion     JavaVersion    `json:"javaVersion"`

	// Variant is derived while decoding and is never serialized.
	Variant Variant `json:"-"`
}

// launcher fields that only mod loader descriptors carry
type loaderFields struct {
	InheritsFrom       string `json:"inheritsFrom"`
	TweakClass         string `json:"tweakClass"`
	MinecraftArguments string `json:"minecraftArguments"`
}

// UnmarshalJSON decodes the descriptor and derives its Variant.
func (d *PackageDescriptor) UnmarshalJSON(data []byte) error {
	type plain PackageDescriptor
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var lf loaderFields
	if err := json.Unmarshal(data, &lf); err != nil {
		return err
	}
	*d = PackageDescriptor(p)
	d.Variant = lf.variant(d.MainClass)
	return nil
}

func (lf loaderFields) variant(mainClass string) Variant {
	tweak := lf.TweakClass
	if tweak == "" {
		tweak = tweakClassArg(lf.MinecraftArguments)
	}
	if lf.InheritsFrom == "" && tweak == "" {
		return Vanilla{}
	}
	m := ModdedWith{TweakClass: tweak}
	if lf.InheritsFrom != "" {
		m.ExtraMainClass = mainClass
	}
	return m
}

// tweakClassArg extracts the value following --tweakClass in a legacy
// argument string.
func tweakClassArg(args string) string {
	fields := strings.Fields(args)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == "--tweakClass" {
			return fields[i+1]
		}
	}
	return ""
}

// IsModded reports whether the descriptor came from a mod loader.
func (d *PackageDescriptor) IsModded() bool {
	_, ok := d.Variant.(ModdedWith)
	return ok
}

// Validate checks the fields resolution depends on.
func (d *PackageDescriptor) Validate() error {
	const name = "package descriptor"
	switch {
	case d.ID == "":
		return errors.ErrMissingField(name, "id")
	case d.MainClass == "":
		return errors.ErrMissingField(name, "mainClass")
	case d.Downloads.Client.URL == "":
		return errors.ErrMissingField(name, "downloads.client.url")
	case d.AssetIndex.ID == "":
		return errors.ErrMissingField(name, "assetIndex.id")
	case d.AssetIndex.URL == "":
		return errors.ErrMissingField(name, "assetIndex.url")
	}
	for i := range d.Libraries {
		if d.Libraries[i].Name == "" {
			return errors.ErrMissingField(name, "name of library "+itoa(i))
		}
	}
	if d.Variant == nil {
		d.Variant = Vanilla{}
	}
	return nil
}
