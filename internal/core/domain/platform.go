package domain

import "runtime"

// Platform identifies a solve target in conda subdir notation
// (e.g. "linux-64", "osx-arm64", "win-64").
type Platform string

const (
	// PlatformLinux64 is x86_64 Linux.
	PlatformLinux64 Platform = "linux-64"
	// PlatformLinuxAarch64 is ARM64 Linux.
	PlatformLinuxAarch64 Platform = "linux-aarch64"
	// PlatformOsx64 is x86_64 macOS.
	PlatformOsx64 Platform = "osx-64"
	// PlatformOsxArm64 is ARM64 macOS.
	PlatformOsxArm64 Platform = "osx-arm64"
	// PlatformWin64 is x86_64 Windows.
	PlatformWin64 Platform = "win-64"
	// PlatformNoarch holds platform-independent packages and is implicitly
	// searched for every solve target.
	PlatformNoarch Platform = "noarch"
)

// CurrentPlatform maps the running OS and architecture to its subdir name.
func CurrentPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return PlatformOsxArm64
		}
		return PlatformOsx64
	case "windows":
		return PlatformWin64
	default:
		if runtime.GOARCH == "arm64" {
			return PlatformLinuxAarch64
		}
		return PlatformLinux64
	}
}

func (p Platform) String() string {
	return string(p)
}
