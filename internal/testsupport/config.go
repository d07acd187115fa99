package testsupport

import (
	"path/filepath"
	"testing"

	"sessionlocator/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The data root holds "preprocessed" (.hdf) and "raw" (.nwb) subdirectories
// and one subject, beig -> beignet, with YYYYMMDD dates.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.DateFormatID = "%Y%m%d"
	cfgVal.Paths.DataRoot = filepath.Join(base, "data")
	cfgVal.Paths.OutputRoot = filepath.Join(base, "output")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.Subdirs = map[string]string{
		"preprocessed": "preprocessed",
		"raw":          "raw",
	}
	cfgVal.Extensions = map[string]string{
		"hdf": "preprocessed",
		"nwb": "raw",
	}
	cfgVal.Subjects = map[string]string{"beig": "beignet"}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDateFormat overrides the date format identifier.
func WithDateFormat(id string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DateFormatID = id
	}
}

// WithSubject adds a subject code -> name mapping.
func WithSubject(code, name string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Subjects == nil {
			b.cfg.Subjects = map[string]string{}
		}
		b.cfg.Subjects[code] = name
	}
}

// WithBackend selects the persisted cache backend.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = backend
	}
}

// WithLenientScan makes a missing data directory yield empty results.
func WithLenientScan() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.StrictScan = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataRoot)
}

// SubdirPath returns the absolute path of a named data subdirectory.
func SubdirPath(cfg *config.Config, key string) string {
	return filepath.Join(cfg.Paths.DataRoot, cfg.Paths.Subdirs[key])
}
