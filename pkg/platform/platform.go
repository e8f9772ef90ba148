package platform

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
)

// Platform represents a target platform with OS and Architecture.
type Platform struct {
	OS   string `yaml:"os" json:"os"`
	Arch string `yaml:"arch" json:"arch"`
}

// CurrentPlatform returns the current platform (OS and architecture)
func CurrentPlatform() Platform {
	return Platform{
		OS:   NormalizeOS(runtime.GOOS),
		Arch: NormalizeArch(runtime.GOARCH),
	}
}

// String returns a string representation of the platform
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// NormalizeOS normalizes OS names to a common format
func NormalizeOS(os string) string {
	os = strings.ToLower(strings.TrimSpace(os))
	switch os {
	case "darwin", "osx", "mac", "macos":
		return OSMacOS
	case "win", "windows":
		return OSWindows
	default:
		return os
	}
}

// NormalizeArch normalizes architecture names to a common format
func NormalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))
	switch arch {
	case "x86_64", "x64":
		return ArchAMD64
	case "x86", "i386", "i686":
		return Arch386
	case "aarch64":
		return ArchARM64
	default:
		return arch
	}
}

// IsSupportedOS reports whether os, once normalized, is one the launcher
// ships natives for.
func IsSupportedOS(os string) bool {
	return slices.Contains(ValidOS(), NormalizeOS(os))
}

// ManifestOS returns the key upstream library manifests use for this OS in
// their "natives" maps and classifier names.
func (p Platform) ManifestOS() string {
	if p.OS == OSMacOS {
		return manifestOSX
	}
	return p.OS
}

// NativeKeys returns the classifier keys to try, in order, for a library that
// declares no explicit natives mapping for this OS.
func (p Platform) NativeKeys() []string {
	keys := []string{nativesPrefix + p.ManifestOS()}
	if p.OS == OSMacOS {
		keys = append(keys, nativesPrefix+OSMacOS)
	}
	return keys
}

// ExpandNativeKey substitutes the ${arch} placeholder some manifests use in
// classifier names ("natives-windows-${arch}") with the pointer width.
func (p Platform) ExpandNativeKey(key string) string {
	bits := "64"
	if p.Arch == Arch386 {
		bits = "32"
	}
	return strings.ReplaceAll(key, "${arch}", bits)
}
