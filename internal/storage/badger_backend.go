package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// prefixSource namespaces cached source files.
const prefixSource = "src:"

// BadgerBackend is a BadgerDB-backed implementation of Backend.
//
// It runs Badger in in-memory mode by default, so the cache lives exactly as
// long as the session that created it.
type BadgerBackend struct {
	db          *badger.DB
	initialized bool
	mu          sync.RWMutex
	count       int
}

// NewBadgerBackend creates a new, uninitialized BadgerDB backend.
func NewBadgerBackend() *BadgerBackend {
	return &BadgerBackend{}
}

// Initialize opens the database. An empty path opens an in-memory store.
func (b *BadgerBackend) Initialize(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := badger.DefaultOptions(path).
		WithNumCompactors(2).
		WithNumMemtables(2).
		WithMemTableSize(16 << 20).
		WithLoggingLevel(badger.ERROR) // Suppress INFO/WARNING logs

	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("opening badger DB: %w", err)
	}

	b.db = db
	b.count = 0
	b.initialized = true
	return nil
}

// Get implements Backend.
func (b *BadgerBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrNotFound
	}

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sourceKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

// Put implements Backend.
func (b *BadgerBackend) Put(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return fmt.Errorf("badger backend not initialized")
	}

	added := false
	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(sourceKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			added = true
		} else if err != nil {
			return err
		}
		return txn.Set(sourceKey(key), value)
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	if added {
		b.count++
	}
	return nil
}

// Len implements Backend.
func (b *BadgerBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Close implements Backend.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}

	err := b.db.Close()
	b.db = nil
	b.count = 0
	b.initialized = false
	return err
}

func sourceKey(key string) []byte {
	return []byte(prefixSource + key)
}
