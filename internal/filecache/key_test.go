package filecache

import (
	"path/filepath"
	"testing"
)

func TestNewKeyNormalizes(t *testing.T) {
	dir := t.TempDir()
	key, err := NewKey(dir+"/./", ".hdf")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	if key.Dir != filepath.Clean(dir) || key.Ext != "hdf" {
		t.Fatalf("unexpected key %+v", key)
	}

	other, _ := NewKey(dir, "hdf")
	if key != other {
		t.Fatalf("keys should be equal: %+v vs %+v", key, other)
	}
}

func TestNewKeyRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		dir  string
		ext  string
	}{
		{name: "empty ext", dir: "/data", ext: ""},
		{name: "dot only", dir: "/data", ext: "."},
		{name: "separator", dir: "/data", ext: "a/b"},
		{name: "empty dir", dir: "  ", ext: "hdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewKey(tc.dir, tc.ext); err == nil {
				t.Fatalf("expected error for dir=%q ext=%q", tc.dir, tc.ext)
			}
		})
	}
}

func TestEntrySatisfies(t *testing.T) {
	truncated := Entry{Paths: []string{"a", "b", "c"}}
	complete := Entry{Paths: []string{"a"}, Complete: true}

	if truncated.satisfies(0) {
		t.Error("truncated entry cannot answer an unlimited request")
	}
	if !truncated.satisfies(3) || !truncated.satisfies(2) {
		t.Error("truncated entry should answer limits it covers")
	}
	if truncated.satisfies(4) {
		t.Error("truncated entry cannot answer a larger limit")
	}
	if !complete.satisfies(0) || !complete.satisfies(50) {
		t.Error("complete entry answers every request")
	}
}

func TestEntryView(t *testing.T) {
	entry := Entry{Paths: []string{"a", "b", "c"}, Complete: true}
	if got := entry.view(2); len(got) != 2 || got[0] != "a" {
		t.Fatalf("view(2) = %v", got)
	}
	got := entry.view(0)
	got[0] = "z"
	if entry.Paths[0] != "a" {
		t.Fatal("view must copy")
	}
	if empty := (Entry{Complete: true}).view(0); empty == nil || len(empty) != 0 {
		t.Fatalf("empty view should be non-nil and empty, got %#v", empty)
	}
}
