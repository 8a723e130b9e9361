package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	run := NewRun()
	run.NewickHash = "nh"
	run.MatrixHash = "mh"
	run.Flags = 1
	run.TerraceSize = "15"
	run.Duration = 42 * time.Millisecond

	if err := store.Save(ctx, run); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.TerraceSize != "15" || loaded.Flags != 1 || loaded.NewickHash != "nh" {
		t.Errorf("loaded run = %+v", loaded)
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := store.Get(context.Background(), "no-such-run"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFileStoreListNewestFirst(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	old := NewRun()
	old.CreatedAt = time.Now().UTC().Add(-time.Hour)
	old.TerraceSize = "1"
	recent := NewRun()
	recent.TerraceSize = "2"

	if err := store.Save(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, recent); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("listed %d runs, want 2", len(runs))
	}
	if runs[0].ID != recent.ID {
		t.Errorf("first listed run is %s, want the newest %s", runs[0].ID, recent.ID)
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limited list has %d runs, want 1", len(limited))
	}
}

func TestFileStoreDelete(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	run := NewRun()
	if err := store.Save(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, run.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, run.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("run survived delete: %v", err)
	}
	if err := store.Delete(ctx, run.ID); err != nil {
		t.Errorf("deleting a missing run = %v, want nil", err)
	}
}

func TestNewRunIDs(t *testing.T) {
	a, b := NewRun(), NewRun()
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("run ids not unique: %q, %q", a.ID, b.ID)
	}
	if a.CreatedAt.IsZero() {
		t.Error("run has no creation time")
	}
}
