package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hay-kot/stride/internal/core/blob"
)

func TestStore_SetAndGet(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "stride.json"))
	ctx := context.Background()

	if err := store.Set(ctx, "workouts", "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "workouts")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "[]" {
		t.Errorf("Value = %q, want %q", got, "[]")
	}
}

func TestStore_GetNotFound(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "stride.json"))

	_, err := store.Get(context.Background(), "ids")
	if !errors.Is(err, blob.ErrKeyNotFound) {
		t.Errorf("Get error = %v, want ErrKeyNotFound", err)
	}
}

func TestStore_SetReplacesAndPreservesCreatedAt(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "stride.json"))
	ctx := context.Background()

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	_ = store.Set(ctx, "ids", "[1]")
	clock = clock.Add(time.Hour)
	_ = store.Set(ctx, "ids", "[1,2]")

	file, err := store.load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	entry := file.Entries["ids"]
	if entry.Value != "[1,2]" {
		t.Errorf("Value = %q, want %q", entry.Value, "[1,2]")
	}
	if !entry.UpdatedAt.After(entry.CreatedAt) {
		t.Errorf("UpdatedAt %v should be after CreatedAt %v", entry.UpdatedAt, entry.CreatedAt)
	}
}

func TestStore_Delete(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "stride.json"))
	ctx := context.Background()

	_ = store.Set(ctx, "ids", "[]")

	if err := store.Delete(ctx, "ids"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(ctx, "ids"); !errors.Is(err, blob.ErrKeyNotFound) {
		t.Errorf("Get after delete error = %v, want ErrKeyNotFound", err)
	}

	if err := store.Delete(ctx, "ids"); !errors.Is(err, blob.ErrKeyNotFound) {
		t.Errorf("second Delete error = %v, want ErrKeyNotFound", err)
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stride.json")
	ctx := context.Background()

	if err := New(path).Set(ctx, "workouts", `[{"id":1}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := New(path).Get(ctx, "workouts")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != `[{"id":1}]` {
		t.Errorf("Value = %q", got)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stride.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(path).Get(context.Background(), "workouts")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, blob.ErrKeyNotFound) {
		t.Errorf("corrupt file should not look like a missing key")
	}
}

func TestStore_ConcurrentSets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stride.json")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Separate instances exercise the file lock, not just the mutex.
			if err := New(path).Set(ctx, string(rune('a'+i)), "v"); err != nil {
				t.Errorf("Set failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	file, err := New(path).load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(file.Entries) != 10 {
		t.Errorf("got %d entries, want 10", len(file.Entries))
	}
}
