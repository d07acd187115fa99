package filecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"sessionlocator/internal/logging"
)

const (
	snapshotVersion = 1
	filePrefix      = "file_cache_"
	fileSuffix      = ".json"
)

type snapshot struct {
	Version   int                `json:"version"`
	Extension string             `json:"extension"`
	Listings  map[string]listing `json:"listings"`
}

type listing struct {
	Paths     []string  `json:"paths"`
	Complete  bool      `json:"complete"`
	ScannedAt time.Time `json:"scanned_at"`
}

// FileStore persists one JSON snapshot per extension under dir.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore prepares dir and verifies it is writable.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	dir = filepath.Clean(strings.TrimSpace(dir))
	if dir == "" || dir == "." {
		return nil, errors.New("filecache: cache directory must be set")
	}
	if err := ensureWritableDir(dir); err != nil {
		return nil, err
	}
	return &FileStore{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "filecache-store"),
	}, nil
}

// Location returns the snapshot path for ext.
func (s *FileStore) Location(ext string) string {
	return filepath.Join(s.dir, filePrefix+ext+fileSuffix)
}

func (s *FileStore) Load(_ context.Context, key Key) (Entry, LoadStatus, error) {
	snap, status, err := s.readSnapshot(key.Ext)
	if status != LoadHit {
		return Entry{}, status, err
	}
	l, ok := snap.Listings[key.Dir]
	if !ok {
		return Entry{}, LoadAbsent, nil
	}
	return Entry{Paths: l.Paths, Complete: l.Complete, ScannedAt: l.ScannedAt}, LoadHit, nil
}

func (s *FileStore) readSnapshot(ext string) (snapshot, LoadStatus, error) {
	path := s.Location(ext)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return snapshot{}, LoadAbsent, nil
		}
		return snapshot{}, LoadUnavailable, fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return snapshot{}, LoadCorrupt, errors.New("cache file is empty")
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return snapshot{}, LoadCorrupt, fmt.Errorf("parse cache file: %w", err)
	}
	if snap.Version != snapshotVersion {
		return snapshot{}, LoadCorrupt, fmt.Errorf("cache file version %d, want %d", snap.Version, snapshotVersion)
	}
	if snap.Extension != ext {
		return snapshot{}, LoadCorrupt, fmt.Errorf("cache file holds extension %q, want %q", snap.Extension, ext)
	}
	if snap.Listings == nil {
		snap.Listings = map[string]listing{}
	}
	return snap, LoadHit, nil
}

// Save merges the listing into the extension's snapshot under an exclusive
// file lock and replaces the file atomically. An unreadable snapshot is
// overwritten.
func (s *FileStore) Save(_ context.Context, key Key, entry Entry) error {
	path := s.Location(key.Ext)
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock cache file: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Debug("failed to release cache lock", logging.Error(err))
		}
	}()

	snap, status, err := s.readSnapshot(key.Ext)
	if status != LoadHit {
		if status == LoadCorrupt || status == LoadUnavailable {
			s.logger.Debug("replacing unreadable cache file",
				logging.String("path", path),
				logging.String("status", status.String()),
				logging.Error(err))
		}
		snap = snapshot{Listings: map[string]listing{}}
	}
	snap.Version = snapshotVersion
	snap.Extension = key.Ext
	paths := entry.Paths
	if paths == nil {
		paths = []string{}
	}
	snap.Listings[key.Dir] = listing{Paths: paths, Complete: entry.Complete, ScannedAt: entry.ScannedAt}

	return s.write(path, snap)
}

func (s *FileStore) write(path string, snap snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *FileStore) Remove(_ context.Context, ext string) error {
	targets, err := s.snapshotFiles(ext)
	if err != nil {
		return err
	}
	for _, path := range targets {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove cache file: %w", err)
		}
		_ = os.Remove(path + ".lock")
		s.logger.Debug("removed cache file", logging.String("path", path))
	}
	return nil
}

func (s *FileStore) snapshotFiles(ext string) ([]string, error) {
	if ext != "" {
		return []string{s.Location(ext)}, nil
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return nil, fmt.Errorf("list cache files: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

func (s *FileStore) List(_ context.Context) ([]Listing, error) {
	files, err := s.snapshotFiles("")
	if err != nil {
		return nil, err
	}
	var out []Listing
	for _, path := range files {
		ext := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), filePrefix), fileSuffix)
		snap, status, _ := s.readSnapshot(ext)
		if status != LoadHit {
			out = append(out, Listing{Key: Key{Ext: ext}, Location: path, Corrupt: true})
			continue
		}
		dirs := make([]string, 0, len(snap.Listings))
		for dir := range snap.Listings {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		for _, dir := range dirs {
			l := snap.Listings[dir]
			out = append(out, Listing{
				Key:       Key{Dir: dir, Ext: ext},
				Count:     len(l.Paths),
				Complete:  l.Complete,
				ScannedAt: l.ScannedAt,
				Location:  path,
			})
		}
	}
	return out, nil
}

func (s *FileStore) Close() error { return nil }
