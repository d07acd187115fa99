package filecache

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"sessionlocator/internal/scan"
)

// Key identifies one cached listing.
type Key struct {
	Dir string
	Ext string
}

// NewKey normalizes dir to an absolute clean path and strips a leading dot
// from ext.
func NewKey(dir, ext string) (Key, error) {
	ext = scan.NormalizeExt(ext)
	if ext == "" {
		return Key{}, errors.New("filecache: extension must not be empty")
	}
	if strings.ContainsAny(ext, `/\`) || ext == "." || ext == ".." {
		return Key{}, fmt.Errorf("filecache: invalid extension %q", ext)
	}
	if strings.TrimSpace(dir) == "" {
		return Key{}, errors.New("filecache: directory must not be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Key{}, fmt.Errorf("filecache: resolve %q: %w", dir, err)
	}
	return Key{Dir: abs, Ext: ext}, nil
}

func (k Key) String() string {
	return k.Dir + " [." + k.Ext + "]"
}

// Entry is the result of one scan. Complete is false when the scan stopped at
// its limit, so the listing may be missing files.
type Entry struct {
	Paths     []string
	Complete  bool
	ScannedAt time.Time
}

// satisfies reports whether the entry can answer a request for limit paths
// (limit <= 0 means all of them).
func (e Entry) satisfies(limit int) bool {
	if e.Complete {
		return true
	}
	return limit > 0 && len(e.Paths) >= limit
}

// view returns a copy of at most limit paths so callers never alias the
// cached slice.
func (e Entry) view(limit int) []string {
	n := len(e.Paths)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]string, n)
	copy(out, e.Paths[:n])
	return out
}
