package filecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"sessionlocator/internal/config"
	"sessionlocator/internal/logging"
	"sessionlocator/internal/scan"
)

// Scanner produces the listing for a cache miss.
type Scanner interface {
	Scan(ctx context.Context, root, ext string, limit int) ([]string, error)
}

// Options configures a Cache. Store may be nil for a memory-only cache.
type Options struct {
	Scanner Scanner
	Store   Store
	Logger  *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// GetOptions tunes a single lookup. Limit <= 0 requests every matching file.
type GetOptions struct {
	Limit        int
	ForceRefresh bool
}

// Stats describes the current contents of both tiers.
type Stats struct {
	MemoryEntries int
	MemoryPaths   int
	// Persisted is nil for a memory-only cache.
	Persisted []Listing
}

// Cache is a two-tier cache of directory listings: an in-memory map backed
// by an optional persisted Store. Safe for concurrent use; refreshes of the
// same key are serialized.
type Cache struct {
	scanner Scanner
	store   Store
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	entries map[Key]Entry

	locksMu sync.Mutex
	locks   map[Key]*sync.Mutex
}

// New builds a Cache from opts.
func New(opts Options) (*Cache, error) {
	if opts.Scanner == nil {
		return nil, errors.New("filecache: scanner is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		scanner: opts.Scanner,
		store:   opts.Store,
		logger:  logging.NewComponentLogger(logger, "filecache"),
		now:     now,
		entries: make(map[Key]Entry),
		locks:   make(map[Key]*sync.Mutex),
	}, nil
}

// Get returns the files under dir ending in ext. Lookups try memory, then
// the persisted store, then scan. Persisted-tier failures never surface;
// only scanner errors do.
func (c *Cache) Get(ctx context.Context, dir, ext string, opts GetOptions) ([]string, error) {
	key, err := NewKey(dir, ext)
	if err != nil {
		return nil, err
	}

	if !opts.ForceRefresh {
		if paths, ok := c.fromMemory(key, opts.Limit); ok {
			return paths, nil
		}
	}

	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if !opts.ForceRefresh {
		// A concurrent caller may have filled the entry while we waited.
		if paths, ok := c.fromMemory(key, opts.Limit); ok {
			return paths, nil
		}
		if paths, ok := c.fromStore(ctx, key, opts.Limit); ok {
			return paths, nil
		}
	}
	return c.refresh(ctx, key, opts.Limit)
}

func (c *Cache) fromMemory(key Key, limit int) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || !entry.satisfies(limit) {
		return nil, false
	}
	return entry.view(limit), true
}

func (c *Cache) fromStore(ctx context.Context, key Key, limit int) ([]string, bool) {
	if c.store == nil {
		return nil, false
	}
	entry, status, err := c.store.Load(ctx, key)
	switch status {
	case LoadHit:
	case LoadAbsent:
		return nil, false
	default:
		c.logger.Debug("persisted listing unusable, rescanning",
			logging.EventType("filecache_load_"+status.String()),
			logging.String("key", key.String()),
			logging.String("location", c.store.Location(key.Ext)),
			logging.Error(err))
		return nil, false
	}
	if len(entry.Paths) == 0 || !entry.satisfies(limit) {
		return nil, false
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	c.logger.Debug("loaded persisted listing",
		logging.String("key", key.String()),
		logging.Int("files", len(entry.Paths)),
		logging.Bool("complete", entry.Complete))
	return entry.view(limit), true
}

func (c *Cache) refresh(ctx context.Context, key Key, limit int) ([]string, error) {
	correlationID := uuid.NewString()
	start := c.now()
	paths, err := c.scanner.Scan(ctx, key.Dir, key.Ext, limit)
	if err != nil {
		return nil, err
	}
	if paths == nil {
		paths = []string{}
	}
	entry := Entry{
		Paths:     paths,
		Complete:  limit <= 0 || len(paths) < limit,
		ScannedAt: c.now().UTC(),
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	c.logger.Info("directory scanned",
		logging.EventType("filecache_refresh"),
		logging.CorrelationID(correlationID),
		logging.String("key", key.String()),
		logging.Int("files", len(paths)),
		logging.Bool("complete", entry.Complete),
		logging.Duration("elapsed", c.now().Sub(start)))

	if c.store != nil {
		if err := c.store.Save(ctx, key, entry); err != nil {
			logging.WarnWithContext(c.logger, "failed to persist listing", "filecache_persist_failed",
				logging.CorrelationID(correlationID),
				logging.String("key", key.String()),
				logging.String("location", c.store.Location(key.Ext)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions of the cache directory"),
				logging.String(logging.FieldImpact, "the next process will rescan this directory"))
		}
	}
	return entry.view(limit), nil
}

func (c *Cache) keyLock(key Key) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}

// Clear drops in-memory entries for ext, or every entry when ext is empty.
// The persisted tier is left untouched; see Purge.
func (c *Cache) Clear(ext string) {
	ext = scan.NormalizeExt(ext)
	c.mu.Lock()
	defer c.mu.Unlock()
	if ext == "" {
		c.entries = make(map[Key]Entry)
		return
	}
	for key := range c.entries {
		if key.Ext == ext {
			delete(c.entries, key)
		}
	}
}

// Purge clears both tiers for ext, or for every extension when ext is empty.
func (c *Cache) Purge(ctx context.Context, ext string) error {
	c.Clear(ext)
	if c.store == nil {
		return nil
	}
	if err := c.store.Remove(ctx, scan.NormalizeExt(ext)); err != nil {
		return fmt.Errorf("purge persisted cache: %w", err)
	}
	return nil
}

// Stats reports memory usage and the persisted listings.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	c.mu.RLock()
	stats.MemoryEntries = len(c.entries)
	for _, entry := range c.entries {
		stats.MemoryPaths += len(entry.Paths)
	}
	c.mu.RUnlock()

	if c.store == nil {
		return stats, nil
	}
	listings, err := c.store.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list persisted cache: %w", err)
	}
	if listings == nil {
		listings = []Listing{}
	}
	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].Key.Ext != listings[j].Key.Ext {
			return listings[i].Key.Ext < listings[j].Key.Ext
		}
		return listings[i].Key.Dir < listings[j].Key.Dir
	})
	stats.Persisted = listings
	return stats, nil
}

// Persistent reports whether a persisted tier is attached.
func (c *Cache) Persistent() bool { return c.store != nil }

// Close releases the persisted store.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// OpenStore builds the persisted tier selected by cfg. When the cache
// directory cannot be used it logs a warning and returns nil so the cache
// runs memory-only.
func OpenStore(cfg *config.Config, logger *slog.Logger) Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	dir := cfg.Paths.CacheDir
	var (
		store Store
		err   error
	)
	switch cfg.Cache.Backend {
	case config.BackendSQLite:
		var s *SQLiteStore
		if s, err = OpenSQLiteStore(filepath.Join(dir, "file_cache.db"), logger); err == nil {
			store = s
		}
	default:
		var s *FileStore
		if s, err = NewFileStore(dir, logger); err == nil {
			store = s
		}
	}
	if err != nil {
		logging.WarnWithContext(logging.NewComponentLogger(logger, "filecache"),
			"persisted cache unavailable", "filecache_store_unavailable",
			logging.String("cache_dir", dir),
			logging.String("backend", cfg.Cache.Backend),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "set paths.cache_dir to a writable directory"),
			logging.String(logging.FieldImpact, "listings are cached for this process only"))
		return nil
	}
	return store
}
