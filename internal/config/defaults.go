package config

import (
	"os"
	"path/filepath"
)

const (
	defaultOutputRoot   = "./output"
	defaultCacheDirName = "sessionlocator_cache"
	defaultCacheBackend = BackendFile
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Persisted cache tier backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputRoot: defaultOutputRoot,
			CacheDir:   defaultCacheDir(),
			Subdirs:    map[string]string{},
		},
		Extensions: map[string]string{},
		Subjects:   map[string]string{},
		Cache: Cache{
			Backend:    defaultCacheBackend,
			StrictScan: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// defaultCacheDir lives under the system temp directory, so a reboot may clear it.
func defaultCacheDir() string {
	return filepath.Join(os.TempDir(), defaultCacheDirName)
}
