package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/multiplot/internal/watch"
)

func TestRunCallsActionOnChange(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.csv")
	other := filepath.Join(dir, "other.csv")
	require.NoError(t, os.WriteFile(data, []byte("a,b\n1,2\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 8)
	done := make(chan error, 1)
	w := &watch.Watcher{Debounce: 20 * time.Millisecond}
	go func() {
		done <- w.Run(ctx, []string{data}, func(context.Context) error {
			calls <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register before touching files.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("x\n"), 0o644))
	require.NoError(t, os.WriteFile(data, []byte("a,b\n1,3\n"), 0o644))

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("action not called after write")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunRequiresPaths(t *testing.T) {
	t.Parallel()

	err := (&watch.Watcher{}).Run(context.Background(), nil, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, watch.ErrNoPaths)
}
