package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sessionlocator/internal/config"
	"sessionlocator/internal/testsupport"
)

func TestFilesCommandUsesConfiguredDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := testsupport.SubdirPath(env.cfg, "preprocessed")
	testsupport.WriteTree(t, dir, "beignet_20240101.hdf", "nested/beignet_20240102.hdf", "notes.txt")

	out, _, err := runCLI(t, []string{"files", "hdf"}, env.configPath)
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if lines := nonEmptyLines(out); len(lines) != 2 {
		t.Fatalf("expected 2 files, got %q", out)
	}

	testsupport.WriteTree(t, dir, "beignet_20240103.hdf")
	out, _, _ = runCLI(t, []string{"files", "hdf"}, env.configPath)
	if lines := nonEmptyLines(out); len(lines) != 2 {
		t.Fatalf("second process should reuse persisted listing, got %q", out)
	}
	out, _, _ = runCLI(t, []string{"files", ".hdf", "--refresh"}, env.configPath)
	if lines := nonEmptyLines(out); len(lines) != 3 {
		t.Fatalf("refresh should see new file, got %q", out)
	}
}

func TestFilesCommandExplicitDirAndLimit(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "elsewhere")
	testsupport.WriteTree(t, dir, "a.nwb", "b.nwb", "c.nwb")

	out, _, err := runCLI(t, []string{"files", "nwb", dir, "--limit", "2", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	var paths []string
	if err := json.Unmarshal([]byte(out), &paths); err != nil {
		t.Fatalf("decode json: %v (%q)", err, out)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %v", paths)
	}
}

func TestFilesCommandMissingDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"files", "hdf"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing data directory")
	}
	requireContains(t, err.Error(), "directory not found")

	lenient := setupCLITestEnv(t, testsupport.WithLenientScan())
	out, _, err := runCLI(t, []string{"files", "hdf"}, lenient.configPath)
	if err != nil {
		t.Fatalf("lenient files: %v", err)
	}
	if len(nonEmptyLines(out)) != 0 {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestFindCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithBackend(config.BackendSQLite))
	dir := testsupport.SubdirPath(env.cfg, "preprocessed")
	testsupport.WriteTree(t, dir, "beignet_20240115.hdf", "beignet_20241345.hdf", "beignet.hdf")

	out, _, err := runCLI(t, []string{"find", "hdf"}, env.configPath)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	lines := nonEmptyLines(out)
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", out)
	}
	requireContains(t, lines[0], "Date\tPath")
	requireContains(t, lines[1], "2024-01-15\t")

	_, _, err = runCLI(t, []string{"find", "hdf", "--format", "%B"}, env.configPath)
	if err == nil {
		t.Fatal("expected unsupported format error")
	}
	requireContains(t, err.Error(), "unsupported date format")
}

func TestSessionsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := testsupport.SubdirPath(env.cfg, "preprocessed")
	testsupport.WriteTree(t, dir,
		"beignet_20240310_a.hdf",
		"beignet_20240310_b.hdf",
		"beignet_20240101.hdf",
		"affi_20240101.hdf",
	)

	out, _, err := runCLI(t, []string{"sessions", "beig", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	var payload []sessionJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode json: %v (%q)", err, out)
	}
	if len(payload) != 2 || payload[0].Date != "2024-01-01" || len(payload[1].Files) != 2 {
		t.Fatalf("unexpected sessions %+v", payload)
	}

	out, _, err = runCLI(t, []string{"sessions", "beig"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	requireContains(t, out, "2024-03-10\t2")

	_, _, err = runCLI(t, []string{"sessions", "ghost"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown subject")
	}
	requireContains(t, err.Error(), "subjects.ghost")
}

func TestSubjectsCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSubject("affi", "affi"))
	out, _, err := runCLI(t, []string{"subjects"}, env.configPath)
	if err != nil {
		t.Fatalf("subjects: %v", err)
	}
	lines := nonEmptyLines(out)
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", out)
	}
	requireContains(t, lines[1], "affi\taffi\tAffi")
	requireContains(t, lines[2], "beig\tbeignet\tBeignet")
}

func TestCacheStatsAndPurge(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteTree(t, testsupport.SubdirPath(env.cfg, "preprocessed"), "beignet_20240101.hdf")
	testsupport.WriteTree(t, testsupport.SubdirPath(env.cfg, "raw"), "beignet_20240101.nwb")

	for _, ext := range []string{"hdf", "nwb"} {
		if _, _, err := runCLI(t, []string{"files", ext}, env.configPath); err != nil {
			t.Fatalf("files %s: %v", ext, err)
		}
	}

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Backend: file")
	requireContains(t, out, "hdf\t"+testsupport.SubdirPath(env.cfg, "preprocessed")+"\t1\tyes")
	requireContains(t, out, "nwb\t")

	out, _, err = runCLI(t, []string{"cache", "purge", ".hdf"}, env.configPath)
	if err != nil {
		t.Fatalf("cache purge: %v", err)
	}
	requireContains(t, out, "Purged cached listings for .hdf")
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.CacheDir, "file_cache_hdf.json")); !os.IsNotExist(err) {
		t.Fatalf("expected hdf snapshot removed, stat err=%v", err)
	}

	if _, _, err := runCLI(t, []string{"cache", "purge"}, env.configPath); err != nil {
		t.Fatalf("cache purge all: %v", err)
	}
	out, _, _ = runCLI(t, []string{"cache", "stats"}, env.configPath)
	requireContains(t, out, "Cached listings: none")
}

func TestCachePurgeFailsWithoutPersistedTier(t *testing.T) {
	env := setupCLITestEnv(t)
	blocker := filepath.Join(env.baseDir, "cache-blocker")
	testsupport.WriteFile(t, blocker, 1)
	env.cfg.Paths.CacheDir = blocker
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"cache", "purge"}, env.configPath)
	if err == nil {
		t.Fatalf("expected purge error without persisted tier, got output %q", out)
	}
	requireContains(t, err.Error(), "nothing purged")
	if strings.Contains(out, "Purged") {
		t.Fatalf("purge reported success: %q", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, ".hdf -> "+testsupport.SubdirPath(env.cfg, "preprocessed"))

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestMissingExplicitConfigFails(t *testing.T) {
	setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"subjects"}, filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	requireContains(t, err.Error(), "not found")
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteTree(t, testsupport.SubdirPath(env.cfg, "preprocessed"), "beignet_20240101.hdf")

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected failure while raw directory is missing")
	}
	requireContains(t, out, "Scan root (.nwb)\tFAIL")
	requireContains(t, out, "Scan root (.hdf)\tok")

	testsupport.WriteTree(t, testsupport.SubdirPath(env.cfg, "raw"), "beignet_20240101.nwb")
	if _, _, err := runCLI(t, []string{"check"}, env.configPath); err != nil {
		t.Fatalf("check: %v", err)
	}
}
