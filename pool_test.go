package mongo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, n int) *pool {
	t.Helper()
	replicas := []Replica{{Host: "localhost", Port: 27017}}
	p, err := newPool(replicas, n, TLSConfig{}, nil)
	require.NoError(t, err)
	return p
}

func TestPoolAcquireReleaseRoundRobinFairness(t *testing.T) {
	p := newTestPool(t, 4)
	seen := map[int]bool{}
	for i := 0; i < 4; i++ {
		s, err := p.acquire(false, nil)
		require.NoError(t, err)
		seen[s.id] = true
		require.NoError(t, p.release(s))
	}
	require.Len(t, seen, 4)
}

func TestPoolDoubleReleaseFails(t *testing.T) {
	p := newTestPool(t, 2)
	s, err := p.acquire(false, nil)
	require.NoError(t, err)
	require.NoError(t, p.release(s))
	err = p.release(s)
	require.Error(t, err)
	require.True(t, isKind(err, ErrInvalidState))
}

func TestPoolAcquireBlocksUntilSlotFree(t *testing.T) {
	p := newTestPool(t, 1)
	s, err := p.acquire(false, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s2, err := p.acquire(false, nil)
		require.NoError(t, err)
		require.Equal(t, s.id, s2.id)
		require.NoError(t, p.release(s2))
		close(done)
	}()

	require.NoError(t, p.release(s))
	<-done
}
