package buildenv

// preloadVariableName is the dynamic linker's preload environment
// variable on Linux.
const preloadVariableName = "LD_PRELOAD"

// additionalPreloadVars returns platform-specific overrides beyond the
// preload variable itself. Linux's dynamic linker needs nothing extra.
func additionalPreloadVars(libraryPath string) map[string]string {
	return nil
}
