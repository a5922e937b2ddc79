package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPool_AcquireRelease(t *testing.T) {
	p := NewPool(8)
	require.Equal(t, 8, p.Capacity())

	require.True(t, p.TryAcquire(4))
	require.Equal(t, 4, p.InUse())
	require.True(t, p.TryAcquire(4))
	require.Equal(t, 8, p.InUse())
	require.False(t, p.TryAcquire(1))

	p.Release(4)
	require.Equal(t, 4, p.InUse())
	require.True(t, p.TryAcquire(3))
}

func TestPool_HeavyTestBorrowsOnlyWhenIdle(t *testing.T) {
	p := NewPool(8)

	// Something running: the heavy test must wait.
	require.True(t, p.TryAcquire(2))
	require.False(t, p.TryAcquire(32))

	// Idle pool: the heavy test borrows the whole capacity.
	p.Release(2)
	require.True(t, p.TryAcquire(32))
	require.Equal(t, 1, p.Running())

	// While borrowed, nothing else is admitted.
	require.False(t, p.TryAcquire(1))

	p.Release(32)
	require.Equal(t, 0, p.InUse())
	require.True(t, p.TryAcquire(1))
}

func TestPool_MinimumCapacity(t *testing.T) {
	p := NewPool(0)
	require.Equal(t, 1, p.Capacity())
}
