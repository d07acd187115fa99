package testsupport

import (
	"testing"

	"sessionlocator/internal/config"
	"sessionlocator/internal/filecache"
	"sessionlocator/internal/logging"
	"sessionlocator/internal/scan"
)

// MustOpenCache builds a filecache.Cache backed by the store cfg selects and
// registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *filecache.Cache {
	t.Helper()

	logger := logging.NewNop()
	cache, err := filecache.New(filecache.Options{
		Scanner: scan.New(cfg.Cache.StrictScan, logger),
		Store:   filecache.OpenStore(cfg, logger),
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("filecache.New: %v", err)
	}
	t.Cleanup(func() {
		cache.Close()
	})
	return cache
}
