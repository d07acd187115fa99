package filecache

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// LoadStatus is the outcome of reading the persisted tier. Everything other
// than LoadHit collapses to a cache miss in Cache.Get.
type LoadStatus int

const (
	LoadHit LoadStatus = iota
	// LoadAbsent means nothing is stored for the key.
	LoadAbsent
	// LoadCorrupt means stored data exists but cannot be decoded or belongs to
	// an incompatible snapshot version.
	LoadCorrupt
	// LoadUnavailable means the storage itself could not be read.
	LoadUnavailable
)

func (s LoadStatus) String() string {
	switch s {
	case LoadHit:
		return "hit"
	case LoadAbsent:
		return "absent"
	case LoadCorrupt:
		return "corrupt"
	case LoadUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("LoadStatus(%d)", int(s))
	}
}

// Listing summarizes one persisted listing for inspection.
type Listing struct {
	Key       Key
	Count     int
	Complete  bool
	ScannedAt time.Time
	Location  string
	// Corrupt marks data that could not be decoded. A FileStore snapshot
	// that is unreadable as a whole is reported with an empty Key.Dir.
	Corrupt bool
}

// Store is the persisted cache tier.
type Store interface {
	Load(ctx context.Context, key Key) (Entry, LoadStatus, error)
	// Save replaces the listing for key wholesale.
	Save(ctx context.Context, key Key, entry Entry) error
	// Remove deletes every listing for ext, or all listings when ext is empty.
	Remove(ctx context.Context, ext string) error
	List(ctx context.Context) ([]Listing, error)
	Location(ext string) string
	Close() error
}

func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("cache directory %s not writable: %w", dir, err)
	}
	return nil
}
