package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFiles(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, r)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func TestScanMatchesExtensionRecursively(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"a.hdf",
		"sub/b.hdf",
		"sub/deeper/c.hdf",
		"sub/d.nwb",
		"e.HDF",
		"f.hdf.bak",
	)
	if err := os.MkdirAll(filepath.Join(root, "dir.hdf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	for _, ext := range []string{"hdf", ".hdf"} {
		got, err := New(true, nil).Scan(context.Background(), root, ext, 0)
		if err != nil {
			t.Fatalf("Scan(%q): %v", ext, err)
		}
		sort.Strings(got)
		want := []string{
			filepath.Join(root, "a.hdf"),
			filepath.Join(root, "sub", "b.hdf"),
			filepath.Join(root, "sub", "deeper", "c.hdf"),
		}
		if len(got) != len(want) {
			t.Fatalf("Scan(%q) = %v, want %v", ext, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Scan(%q)[%d] = %q, want %q", ext, i, got[i], want[i])
			}
		}
	}
}

func TestScanReturnsAbsolutePaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "x.nwb")
	t.Chdir(root)

	got, err := New(true, nil).Scan(context.Background(), ".", "nwb", 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 1 || !filepath.IsAbs(got[0]) {
		t.Fatalf("expected one absolute path, got %v", got)
	}
}

func TestScanLimit(t *testing.T) {
	root := t.TempDir()
	for i := range 100 {
		writeFiles(t, root, filepath.Join("s", "f"+string(rune('a'+i%26))+string(rune('a'+i/26))+".hdf"))
	}

	got, err := New(true, nil).Scan(context.Background(), root, "hdf", 10)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 results, got %d", len(got))
	}

	all, err := New(true, nil).Scan(context.Background(), root, "hdf", 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(all) != 100 {
		t.Fatalf("expected 100 results, got %d", len(all))
	}
}

func TestScanMissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, err := New(true, nil).Scan(context.Background(), missing, "hdf", 0)
	if !errors.Is(err, ErrDirectoryNotFound) {
		t.Fatalf("expected ErrDirectoryNotFound, got %v", err)
	}
	var notFound *DirectoryNotFoundError
	if !errors.As(err, &notFound) || notFound.Dir != missing {
		t.Fatalf("expected error naming %q, got %v", missing, err)
	}

	got, err := New(false, nil).Scan(context.Background(), missing, "hdf", 0)
	if err != nil {
		t.Fatalf("lenient Scan: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestScanRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "plain.hdf")

	_, err := New(true, nil).Scan(context.Background(), filepath.Join(root, "plain.hdf"), "hdf", 0)
	if !errors.Is(err, ErrDirectoryNotFound) {
		t.Fatalf("expected ErrDirectoryNotFound for file root, got %v", err)
	}
}

func TestScanEmptyExtension(t *testing.T) {
	if _, err := New(true, nil).Scan(context.Background(), t.TempDir(), ".", 0); err == nil {
		t.Fatal("expected error for empty extension")
	}
}

func TestScanCanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.hdf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(true, nil).Scan(ctx, root, "hdf", 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScanFollowsFileSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "real/target.bin")
	if err := os.Symlink(filepath.Join(root, "real", "target.bin"), filepath.Join(root, "link.hdf")); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "dirlink.hdf")); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	got, err := New(true, nil).Scan(context.Background(), root, "hdf", 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "link.hdf" {
		t.Fatalf("expected only the file symlink, got %v", got)
	}
}

func TestScanFollowsSymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	writeFiles(t, target, "a.hdf", "sub/b.hdf")
	link := filepath.Join(t.TempDir(), "data")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := New(true, nil).Scan(context.Background(), link, "hdf", 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	sort.Strings(got)
	want := []string{
		filepath.Join(link, "a.hdf"),
		filepath.Join(link, "sub", "b.hdf"),
	}
	if len(got) != len(want) {
		t.Fatalf("Scan(symlinked root) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Scan(symlinked root)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
