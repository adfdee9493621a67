package lockout

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"socguard/pkg/models"
)

func TestFileStoreEngageFirstWriterWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.lock")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	engaged, err := store.Engage(ctx, models.LockState{Locked: true, Reason: "first", Timestamp: time.Now()})
	if err != nil {
		t.Fatalf("Engage: %v", err)
	}
	if !engaged {
		t.Fatalf("first Engage should create the lock")
	}

	engaged, err = store.Engage(ctx, models.LockState{Locked: true, Reason: "second", Timestamp: time.Now()})
	if err != nil {
		t.Fatalf("second Engage: %v", err)
	}
	if engaged {
		t.Fatalf("second Engage must not overwrite an existing lock")
	}

	state, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.Reason != "first" {
		t.Fatalf("Reason = %q, want first", state.Reason)
	}
}

func TestFileStoreGetAbsentFile(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "agent.lock"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	state, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.Locked {
		t.Fatalf("absent lock file should mean unlocked")
	}
}

func TestFileStoreUnparsableFileMeansLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.lock")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	state, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !state.Locked {
		t.Fatalf("unparsable lock file must be treated as locked")
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.lock")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Engage(ctx, models.LockState{Locked: true, Reason: "r", Timestamp: time.Now()}); err != nil {
		t.Fatalf("Engage: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	state, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.Locked {
		t.Fatalf("lock should be clear after Clear")
	}

	// Clearing again is not an error.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear on absent file: %v", err)
	}
}
