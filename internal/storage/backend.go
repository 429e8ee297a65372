// Package storage provides the source-text cache for objex-go.
//
// Reading Go source files is the most expensive part of metadata extraction,
// and sibling functions usually live in the same few files, so file contents
// are kept in a Backend for the lifetime of an explorer session. Nothing is
// persisted: every backend is transient and discarded on Close.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has no cached value.
var ErrNotFound = errors.New("storage: key not found")

// Backend kinds accepted by New.
const (
	KindMemory = "memory"
	KindBadger = "badger"
)

// Backend defines the interface for source cache implementations.
//
// Implementations must be thread-safe: children of a node may be built in
// parallel and all of them read through the same backend.
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Len returns the number of cached keys.
	Len() int

	// Close releases all resources held by the backend.
	Close() error
}

// New creates and initializes the backend registered under kind.
// An empty kind selects the memory backend.
func New(kind string) (Backend, error) {
	switch kind {
	case "", KindMemory:
		return NewMemoryBackend(), nil
	case KindBadger:
		b := NewBadgerBackend()
		if err := b.Initialize(""); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (must be %s or %s)", kind, KindMemory, KindBadger)
	}
}

// ReadThrough returns the cached value for key, calling load and caching its
// result on a miss. Load errors are returned as-is and never cached.
func ReadThrough(ctx context.Context, b Backend, key string, load func(string) ([]byte, error)) ([]byte, error) {
	data, err := b.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	data, err = load(key)
	if err != nil {
		return nil, err
	}
	if err := b.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("writing cache: %w", err)
	}
	return data, nil
}
