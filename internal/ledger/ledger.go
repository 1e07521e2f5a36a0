// Package ledger tracks which wall posts have already been republished.
// The in-memory set is the source of truth during the process lifetime; a
// Store persists it so restarts do not redeliver.
package ledger

import (
	"context"
	"fmt"
	"sort"
)

// Store is a durable key-set backing the ledger.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Persist(ctx context.Context, keys []string) error
}

// Ledger is the in-memory processed-set. It is mutated only from the single
// pipeline worker, so no locking is required as long as poll cycles do not
// overlap.
type Ledger struct {
	store Store
	seen  map[string]struct{}
}

// Open loads the persisted set into memory. A missing backing store yields an
// empty ledger; an unparsable one fails, so the caller must treat the error
// as fatal at startup.
func Open(ctx context.Context, store Store) (*Ledger, error) {
	keys, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load processed set: %w", err)
	}

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		seen[k] = struct{}{}
	}

	return &Ledger{store: store, seen: seen}, nil
}

// IsProcessed reports ledger membership for a dedup key.
func (l *Ledger) IsProcessed(key string) bool {
	_, ok := l.seen[key]

	return ok
}

// MarkProcessed inserts the key and persists the full set. On a persist
// failure the in-memory set still reflects the mark for the remainder of the
// process lifetime; the caller logs the error and continues.
func (l *Ledger) MarkProcessed(ctx context.Context, key string) error {
	if _, ok := l.seen[key]; ok {
		return nil
	}

	l.seen[key] = struct{}{}

	if err := l.store.Persist(ctx, l.Keys()); err != nil {
		return fmt.Errorf("persist processed set: %w", err)
	}

	return nil
}

// Keys returns the current set as a sorted slice. Order is not semantically
// meaningful; sorting only keeps the persisted form deterministic.
func (l *Ledger) Keys() []string {
	keys := make([]string, 0, len(l.seen))
	for k := range l.seen {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Len returns the number of keys in the set.
func (l *Ledger) Len() int {
	return len(l.seen)
}
