package obs

import "runtime/debug"

// BuildVersion resolves the module version embedded by the Go toolchain,
// falling back to the provided default for non-module builds.
func BuildVersion(fallback string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return fallback
	}
	return info.Main.Version
}
