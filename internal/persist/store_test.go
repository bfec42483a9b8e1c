package persist

import (
	"errors"
	"testing"

	"github.com/ebph-project/ebphd/internal/domain"
	"github.com/ebph-project/ebphd/internal/profile"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, 16, 9)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	p := profile.NewProfile(123, "/usr/bin/curl", 16, 9)
	p.TrainLPT.Record(1, 2, 0)
	p.TrainCount = 50

	if err := store.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(123)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ExePath != p.ExePath || got.TrainCount != p.TrainCount {
		t.Fatalf("loaded profile mismatch: %+v", got)
	}

	rows, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0].Key != p.Key {
		t.Fatalf("List() = %+v, want one row for key 123", rows)
	}
}

func TestStoreLoadMissingProfile(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, 8, 9)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	_, err = store.Load(999)
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("Load err = %v, want ErrProfileNotFound", err)
	}
}

func TestStoreForgetRemovesBlobAndIndex(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, 8, 9)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	p := profile.NewProfile(5, "/bin/a", 8, 9)
	if err := store.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Forget(5); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if _, err := store.Load(5); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("Load after Forget err = %v, want ErrProfileNotFound", err)
	}
	rows, _ := store.List()
	if len(rows) != 0 {
		t.Fatalf("List() after Forget = %+v, want empty", rows)
	}
}

func TestStoreSaveAllAndLoadAll(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, 8, 9)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	profiles := []*profile.Profile{
		profile.NewProfile(1, "/bin/a", 8, 9),
		profile.NewProfile(2, "/bin/b", 8, 9),
	}
	if err := store.SaveAll(profiles); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("LoadAll() returned %d profiles, want 2", len(loaded))
	}
}
