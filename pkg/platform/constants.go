// Package platform describes the machine the game files are fetched for and
// maps it onto the OS keys used by upstream library manifests.
package platform

const (
	// OSWindows represents the Windows operating system.
	OSWindows = "windows"
	// OSLinux represents the Linux operating system.
	OSLinux = "linux"
	// OSMacOS is the normalized name for darwin.
	OSMacOS = "macos"

	// ArchAMD64 represents the AMD64 (x86_64) architecture.
	ArchAMD64 = "amd64"
	// Arch386 represents the 32-bit x86 architecture.
	Arch386 = "386"
	// ArchARM64 represents the ARM64 (AArch64) architecture.
	ArchARM64 = "arm64"
)

// upstream manifests still name macOS "osx"
const manifestOSX = "osx"

// nativesPrefix is the conventional classifier prefix, e.g. "natives-linux".
const nativesPrefix = "natives-"

// ValidOS returns a list of valid OS values.
func ValidOS() []string {
	return []string{OSWindows, OSLinux, OSMacOS}
}

// ValidArch returns a list of valid architecture values.
func ValidArch() []string {
	return []string{ArchAMD64, Arch386, ArchARM64}
}
