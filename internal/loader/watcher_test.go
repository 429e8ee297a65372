package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchTimeout = 5 * time.Second

func startWatch(t *testing.T, path string) <-chan []string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan []string, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, changes, WatchOptions{Debounce: 50 * time.Millisecond}) }()

	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})

	// Give the watcher time to register before the test writes.
	time.Sleep(100 * time.Millisecond)
	return changes
}

func waitBatch(t *testing.T, changes <-chan []string) []string {
	t.Helper()
	select {
	case batch := <-changes:
		return batch
	case <-time.After(watchTimeout):
		t.Fatal("timed out waiting for changes")
		return nil
	}
}

func TestWatch_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "doc.yaml", "a: 1\n")
	changes := startWatch(t, path)

	writeFile(t, dir, "other.yaml", "ignored: true\n")
	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, waitBatch(t, changes))
}

func TestWatch_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "skip.json\n")
	changes := startWatch(t, dir)

	writeFile(t, dir, "skip.json", "{}")
	writeFile(t, dir, "notes.txt", "text")
	keep := writeFile(t, dir, "keep.json", "{}")

	assert.Equal(t, []string{keep}, waitBatch(t, changes))
}

func TestWatch_Missing(t *testing.T) {
	t.Parallel()

	err := Watch(context.Background(), filepath.Join(t.TempDir(), "gone.json"), make(chan []string), WatchOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
