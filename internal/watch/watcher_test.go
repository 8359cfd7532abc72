package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.css")
	require.NoError(t, os.WriteFile(path, []byte("a {}"), 0644))

	w := New(path, 50*time.Millisecond, nil)
	var calls atomic.Int32
	require.NoError(t, w.Start(context.Background(), func() { calls.Add(1) }))
	defer w.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("b {}"), 0644))
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.css")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	w := New(path, 10*time.Millisecond, nil)
	var calls atomic.Int32
	require.NoError(t, w.Start(context.Background(), func() { calls.Add(1) }))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.css"), []byte("x"), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.css")
	w := New(path, 10*time.Millisecond, nil)

	require.NoError(t, w.Stop(), "stop before start")
	require.NoError(t, w.Start(context.Background(), func() {}))
	assert.True(t, w.IsRunning())
	require.NoError(t, w.Start(context.Background(), func() {}), "second start is a no-op")

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
	require.NoError(t, w.Stop())
}

func TestWatcher_StartFailsForMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing", "style.css"), time.Millisecond, nil)
	assert.Error(t, w.Start(context.Background(), func() {}))
	assert.False(t, w.IsRunning())
}
