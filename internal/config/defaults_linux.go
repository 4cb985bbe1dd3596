//go:build linux

package config

// defaultInterceptMode matches config.rs's cfg(target_os) default:
// dynamic-linker preloading is the lower-overhead mechanism on
// platforms where LD_PRELOAD is reliable.
func defaultInterceptMode() InterceptMode { return InterceptPreload }

func defaultPreloadLibraryPath() string { return "/usr/local/lib/bear/libbear-preload.so" }

func defaultWrapperExecutablePath() string { return "/usr/local/libexec/bear/bear-wrapper" }
