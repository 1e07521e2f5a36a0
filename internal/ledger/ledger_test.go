package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	errs "github.com/Temm4ancki/VK-to-TG-post/internal/core/errors"
)

func TestOpenMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "processed.json"))

	led, err := Open(context.Background(), store)
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}

	if led.Len() != 0 {
		t.Errorf("Len() = %d, want 0", led.Len())
	}
}

func TestOpenEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	led, err := Open(context.Background(), NewFileStore(path))
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}

	if led.Len() != 0 {
		t.Errorf("Len() = %d, want 0", led.Len())
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(context.Background(), NewFileStore(path))
	if !errors.Is(err, errs.ErrLedgerCorrupt) {
		t.Errorf("Open() error = %v, want ErrLedgerCorrupt", err)
	}
}

func TestMarkProcessedRoundtrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "processed.json")

	led, err := Open(ctx, NewFileStore(path))
	if err != nil {
		t.Fatal(err)
	}

	if led.IsProcessed("-1_10") {
		t.Error("IsProcessed() = true before marking")
	}

	for _, key := range []string{"-1_10", "-1_2", "-1_10"} {
		if err := led.MarkProcessed(ctx, key); err != nil {
			t.Fatalf("MarkProcessed(%q) error = %v", key, err)
		}
	}

	if !led.IsProcessed("-1_10") || !led.IsProcessed("-1_2") {
		t.Error("IsProcessed() = false after marking")
	}

	if led.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (duplicate mark must not grow the set)", led.Len())
	}

	// A fresh ledger over the same file must see the persisted set.
	reloaded, err := Open(ctx, NewFileStore(path))
	if err != nil {
		t.Fatalf("Open() after persist error = %v", err)
	}

	if !reloaded.IsProcessed("-1_10") || !reloaded.IsProcessed("-1_2") {
		t.Error("reloaded ledger lost keys")
	}

	if want := []string{"-1_10", "-1_2"}; !reflect.DeepEqual(reloaded.Keys(), want) {
		t.Errorf("Keys() = %v, want sorted %v", reloaded.Keys(), want)
	}
}

type failingStore struct {
	loadKeys []string
	persist  error
}

func (s *failingStore) Load(context.Context) ([]string, error) { return s.loadKeys, nil }

func (s *failingStore) Persist(context.Context, []string) error { return s.persist }

func TestMarkProcessedKeepsMarkOnPersistFailure(t *testing.T) {
	ctx := context.Background()

	led, err := Open(ctx, &failingStore{persist: errors.New("disk full")})
	if err != nil {
		t.Fatal(err)
	}

	if err := led.MarkProcessed(ctx, "-1_1"); err == nil {
		t.Error("MarkProcessed() error = nil, want persist error")
	}

	// The in-memory mark survives so the same run never redelivers.
	if !led.IsProcessed("-1_1") {
		t.Error("IsProcessed() = false after failed persist")
	}
}

func TestFileStorePersistReplacesContent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "processed.json")
	store := NewFileStore(path)

	if err := store.Persist(ctx, []string{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}

	if err := store.Persist(ctx, []string{"a"}); err != nil {
		t.Fatal(err)
	}

	keys, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if want := []string{"a"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("Load() = %v, want %v (persist must be a full rewrite)", keys, want)
	}
}
