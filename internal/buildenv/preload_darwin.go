package buildenv

// preloadVariableName is dyld's preload environment variable on macOS.
const preloadVariableName = "DYLD_INSERT_LIBRARIES"

// additionalPreloadVars forces dyld's flat namespace so the inserted
// library's interposed symbols (exec*, posix_spawn*) take priority over
// the same symbols in two-level-namespace images, matching the
// original's macOS preload invariant.
func additionalPreloadVars(libraryPath string) map[string]string {
	return map[string]string{
		"DYLD_FORCE_FLAT_NAMESPACE": "1",
	}
}
