package lock

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	l := For("/tmp/test/state.yaml")
	assert.Equal(t, "/tmp/test/state.yaml.lock", l.Path())
}

func TestLock_AcquireRelease(t *testing.T) {
	tmpDir := t.TempDir()
	lockPath := filepath.Join(tmpDir, "nested", "state.lock")
	l := New(lockPath)

	require.NoError(t, l.Acquire())

	_, err := os.Stat(lockPath)
	require.NoError(t, err)

	require.NoError(t, l.Release())

	// Lock file is kept for the next holder.
	_, err = os.Stat(lockPath)
	assert.NoError(t, err)
}

func TestLock_TryAcquireHeld(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "state.lock")
	lock1 := New(path)
	lock2 := New(path)

	require.NoError(t, lock1.Acquire())
	defer lock1.Release()

	err := lock2.TryAcquire()
	assert.ErrorIs(t, err, ErrLocked)
}

func TestLock_AcquireTwice(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "state.lock"))
	require.NoError(t, l.Acquire())
	defer l.Release()

	assert.Error(t, l.Acquire())
}

func TestLock_ReleaseWithoutAcquire(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "state.lock"))
	assert.NoError(t, l.Release())
}

func TestWithLock_Serialises(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.yaml")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(state, func() error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}
