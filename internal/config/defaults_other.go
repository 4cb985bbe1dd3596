//go:build !linux

package config

// defaultInterceptMode matches config.rs's cfg(target_os) default for
// macOS/Windows/BSDs: wrapper mode, since LD_PRELOAD-equivalent
// mechanisms are either unavailable (Windows) or unreliable with
// flat-namespace restrictions (Darwin without DYLD_FORCE_FLAT_NAMESPACE).
func defaultInterceptMode() InterceptMode { return InterceptWrapper }

func defaultPreloadLibraryPath() string { return "/usr/local/lib/bear/libbear-preload.dylib" }

func defaultWrapperExecutablePath() string { return "/usr/local/libexec/bear/bear-wrapper" }
