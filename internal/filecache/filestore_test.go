package filecache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreSaveLoad(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	key := Key{Dir: "/data/preprocessed", Ext: "hdf"}
	scanned := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	if _, status, _ := store.Load(ctx, key); status != LoadAbsent {
		t.Fatalf("expected absent before save, got %s", status)
	}
	if err := store.Save(ctx, key, Entry{Paths: []string{"/data/preprocessed/a.hdf"}, Complete: true, ScannedAt: scanned}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entry, status, err := store.Load(ctx, key)
	if status != LoadHit || err != nil {
		t.Fatalf("Load status=%s err=%v", status, err)
	}
	if len(entry.Paths) != 1 || !entry.Complete || !entry.ScannedAt.Equal(scanned) {
		t.Fatalf("unexpected entry %+v", entry)
	}

	other := Key{Dir: "/data/raw", Ext: "hdf"}
	if _, status, _ := store.Load(ctx, other); status != LoadAbsent {
		t.Fatalf("listing for another directory must not be served, got %s", status)
	}
}

func TestFileStoreSnapshotLayout(t *testing.T) {
	store, _ := NewFileStore(t.TempDir(), nil)
	ctx := context.Background()
	_ = store.Save(ctx, Key{Dir: "/d1", Ext: "nwb"}, Entry{Paths: []string{"/d1/x.nwb"}, Complete: true})
	_ = store.Save(ctx, Key{Dir: "/d2", Ext: "nwb"}, Entry{})

	if got, want := filepath.Base(store.Location("nwb")), "file_cache_nwb.json"; got != want {
		t.Fatalf("location %s, want %s", got, want)
	}
	data, err := os.ReadFile(store.Location("nwb"))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var raw struct {
		Version   int                        `json:"version"`
		Extension string                     `json:"extension"`
		Listings  map[string]json.RawMessage `json:"listings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if raw.Version != 1 || raw.Extension != "nwb" || len(raw.Listings) != 2 {
		t.Fatalf("unexpected snapshot %s", data)
	}
}

func TestFileStoreCorruption(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "garbage", content: "not json at all"},
		{name: "wrong version", content: `{"version":7,"extension":"hdf","listings":{}}`},
		{name: "wrong extension", content: `{"version":1,"extension":"nwb","listings":{}}`},
		{name: "bare list", content: `["/a.hdf","/b.hdf"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, _ := NewFileStore(t.TempDir(), nil)
			if err := os.WriteFile(store.Location("hdf"), []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			key := Key{Dir: "/a", Ext: "hdf"}
			if _, status, _ := store.Load(context.Background(), key); status != LoadCorrupt {
				t.Fatalf("expected corrupt, got %s", status)
			}

			listings, err := store.List(context.Background())
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(listings) != 1 || !listings[0].Corrupt {
				t.Fatalf("expected one corrupt listing, got %+v", listings)
			}

			if err := store.Save(context.Background(), key, Entry{Paths: []string{"/a/x.hdf"}, Complete: true}); err != nil {
				t.Fatalf("Save over corrupt file: %v", err)
			}
			if _, status, _ := store.Load(context.Background(), key); status != LoadHit {
				t.Fatalf("expected hit after overwrite, got %s", status)
			}
		})
	}
}

func TestFileStoreUnreadableIsUnavailable(t *testing.T) {
	store, _ := NewFileStore(t.TempDir(), nil)
	if err := os.Mkdir(store.Location("hdf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, status, err := store.Load(context.Background(), Key{Dir: "/a", Ext: "hdf"})
	if status != LoadUnavailable || err == nil {
		t.Fatalf("expected unavailable with error, got %s %v", status, err)
	}
}

func TestFileStoreList(t *testing.T) {
	store, _ := NewFileStore(t.TempDir(), nil)
	ctx := context.Background()
	_ = store.Save(ctx, Key{Dir: "/b", Ext: "hdf"}, Entry{Paths: []string{"/b/1.hdf", "/b/2.hdf"}, Complete: true})
	_ = store.Save(ctx, Key{Dir: "/a", Ext: "hdf"}, Entry{Paths: []string{"/a/1.hdf"}})
	_ = store.Save(ctx, Key{Dir: "/a", Ext: "nwb"}, Entry{Paths: []string{"/a/1.nwb"}, Complete: true})

	listings, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listings) != 3 {
		t.Fatalf("expected 3 listings, got %+v", listings)
	}
	first := listings[0]
	if first.Key != (Key{Dir: "/a", Ext: "hdf"}) || first.Count != 1 || first.Complete {
		t.Fatalf("unexpected first listing %+v", first)
	}
	if listings[1].Count != 2 || listings[2].Key.Ext != "nwb" {
		t.Fatalf("unexpected order %+v", listings)
	}
}

func TestLoadStatusString(t *testing.T) {
	if LoadCorrupt.String() != "corrupt" || LoadStatus(42).String() != "LoadStatus(42)" {
		t.Fatal("unexpected LoadStatus strings")
	}
}
