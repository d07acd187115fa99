package filecache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"sessionlocator/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// sqliteSchemaVersion must be bumped whenever schema.sql changes.
const sqliteSchemaVersion = 1

// ErrSchemaMismatch indicates the cache database was written by an
// incompatible version.
var ErrSchemaMismatch = errors.New("cache schema version mismatch")

// SQLiteStore keeps every listing in a single SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLiteStore opens or creates the database at path. A database that is
// not SQLite, is damaged, or carries another schema version is deleted and
// recreated empty.
func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if err := ensureWritableDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	store, err := openSQLite(path, logger)
	if err == nil || !isUnusableDatabase(err) {
		return store, err
	}

	logging.WarnWithContext(logging.NewComponentLogger(logger, "filecache-sqlite"),
		"cache database unusable, recreating", "filecache_db_reset",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldImpact, "cached listings are rebuilt on next lookup"))
	if err := removeDatabaseFiles(path); err != nil {
		return nil, err
	}
	return openSQLite(path, logger)
}

// isUnusableDatabase reports errors that only a fresh database file fixes.
func isUnusableDatabase(err error) bool {
	if errors.Is(err, ErrSchemaMismatch) {
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
			return true
		}
	}
	return false
}

func removeDatabaseFiles(path string) error {
	for _, name := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove cache database: %w", err)
		}
	}
	return nil
}

func openSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{
		db:     db,
		path:   path,
		logger: logging.NewComponentLogger(logger, "filecache-sqlite"),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: schema_version is empty", ErrSchemaMismatch)
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != sqliteSchemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d",
			ErrSchemaMismatch, version, sqliteSchemaVersion)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", sqliteSchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Location returns the database path; every extension shares it.
func (s *SQLiteStore) Location(string) string { return s.path }

func (s *SQLiteStore) Load(ctx context.Context, key Key) (Entry, LoadStatus, error) {
	var (
		pathsJSON string
		complete  bool
		scannedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT paths_json, complete, scanned_at FROM listings WHERE extension = ? AND directory = ?`,
		key.Ext, key.Dir,
	).Scan(&pathsJSON, &complete, &scannedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, LoadAbsent, nil
	}
	if err != nil {
		return Entry{}, LoadUnavailable, fmt.Errorf("query listing: %w", err)
	}

	var paths []string
	if err := json.Unmarshal([]byte(pathsJSON), &paths); err != nil {
		return Entry{}, LoadCorrupt, fmt.Errorf("decode listing paths: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, scannedAt)
	if err != nil {
		return Entry{}, LoadCorrupt, fmt.Errorf("decode scan time: %w", err)
	}
	return Entry{Paths: paths, Complete: complete, ScannedAt: ts}, LoadHit, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key Key, entry Entry) error {
	paths := entry.Paths
	if paths == nil {
		paths = []string{}
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("encode listing paths: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO listings (extension, directory, paths_json, complete, scanned_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(extension, directory) DO UPDATE SET
            paths_json = excluded.paths_json,
            complete = excluded.complete,
            scanned_at = excluded.scanned_at`,
		key.Ext, key.Dir, string(data), entry.Complete, entry.ScannedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save listing: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, ext string) error {
	var err error
	if ext == "" {
		_, err = s.db.ExecContext(ctx, `DELETE FROM listings`)
	} else {
		_, err = s.db.ExecContext(ctx, `DELETE FROM listings WHERE extension = ?`, ext)
	}
	if err != nil {
		return fmt.Errorf("remove listings: %w", err)
	}
	s.logger.Debug("removed cached listings", logging.String("extension", ext))
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT extension, directory, paths_json, complete, scanned_at
         FROM listings ORDER BY extension, directory`)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		var (
			ext, dir, pathsJSON, scannedAt string
			complete                       bool
		)
		if err := rows.Scan(&ext, &dir, &pathsJSON, &complete, &scannedAt); err != nil {
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		item := Listing{Key: Key{Dir: dir, Ext: ext}, Complete: complete, Location: s.path}
		var paths []string
		if err := json.Unmarshal([]byte(pathsJSON), &paths); err != nil {
			item.Corrupt = true
		}
		item.Count = len(paths)
		if ts, err := time.Parse(time.RFC3339Nano, scannedAt); err == nil {
			item.ScannedAt = ts
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return out, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
