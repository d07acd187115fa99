// Package scan enumerates files below a root directory by extension.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sessionlocator/internal/logging"
)

// ErrDirectoryNotFound is matched by every DirectoryNotFoundError.
var ErrDirectoryNotFound = errors.New("directory not found")

// DirectoryNotFoundError reports a scan root that is missing or not a directory.
type DirectoryNotFoundError struct {
	Dir string
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("directory not found: %s", e.Dir)
}

func (e *DirectoryNotFoundError) Is(target error) bool {
	return target == ErrDirectoryNotFound
}

// Scanner walks directory trees. When Strict is false a missing root yields
// an empty result instead of a DirectoryNotFoundError.
type Scanner struct {
	Strict bool
	logger *slog.Logger
}

// New returns a Scanner logging through logger (nil discards).
func New(strict bool, logger *slog.Logger) *Scanner {
	return &Scanner{
		Strict: strict,
		logger: logging.NewComponentLogger(logger, "scan"),
	}
}

// NormalizeExt strips a single leading dot. Comparison stays case-sensitive.
func NormalizeExt(ext string) string {
	return strings.TrimPrefix(strings.TrimSpace(ext), ".")
}

// Scan returns absolute paths of files under root whose name ends with
// ".<ext>". A positive limit stops the walk once that many matches are
// collected; which matches those are is not part of the contract.
func (s *Scanner) Scan(ctx context.Context, root, ext string, limit int) ([]string, error) {
	ext = NormalizeExt(ext)
	if ext == "" {
		return nil, errors.New("scan: extension must not be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scan: resolve %q: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("scan: stat %s: %w", abs, err)
		}
		if s.Strict {
			return nil, &DirectoryNotFoundError{Dir: abs}
		}
		s.logger.Debug("scan root missing; returning empty listing",
			logging.String("root", abs),
			logging.EventType("scan_root_missing"))
		return []string{}, nil
	}

	// WalkDir does not follow a symlinked root, so walk its target and report
	// paths under the root as given.
	walkRoot, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("scan: resolve %s: %w", abs, err)
	}

	suffix := "." + ext
	start := time.Now()
	files := make([]string, 0, 64)
	skipped := 0
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if walkErr != nil {
			if path == walkRoot {
				return walkErr
			}
			// Unreadable subtrees are skipped, not fatal.
			skipped++
			s.logger.Debug("skipping unreadable path",
				logging.String("path", path),
				logging.Error(walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		if !isRegular(path, d) {
			return nil
		}
		files = append(files, underRoot(abs, walkRoot, path))
		if limit > 0 && len(files) >= limit {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", abs, err)
	}

	s.logger.Debug("scan complete",
		logging.String("root", abs),
		logging.String("extension", ext),
		logging.Int("limit", limit),
		logging.Int("match_count", len(files)),
		logging.Int("skipped_count", skipped),
		logging.Duration("elapsed", time.Since(start)))
	return files, nil
}

func underRoot(abs, walkRoot, path string) string {
	if walkRoot == abs {
		return path
	}
	rel, err := filepath.Rel(walkRoot, path)
	if err != nil {
		return path
	}
	return filepath.Join(abs, rel)
}

func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
