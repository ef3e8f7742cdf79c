package workspace

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tzu-threatmodel/internal/dto"
	"tzu-threatmodel/internal/risk"
)

func loaderOf(calls *atomic.Int32, threats ...dto.Threat) Loader {
	return func(_ context.Context, _ string) ([]dto.Threat, error) {
		calls.Add(1)
		return threats, nil
	}
}

func TestGetOrLoad_LoadsOnce(t *testing.T) {
	c := NewCache(8, time.Minute)
	var calls atomic.Int32
	load := loaderOf(&calls, dto.Threat{ID: "t1", Risk: dto.Risk{Factors: risk.Uniform(7)}})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetOrLoad(context.Background(), "ws", "sys", load)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	agg, ok := c.Get("ws", "sys")
	require.True(t, ok)
	e, err := agg.Threat("t1")
	require.NoError(t, err)
	assert.Equal(t, 7.0, e.Risk().InherentRisk())
}

func TestGetOrLoad_SeparatesWorkspaces(t *testing.T) {
	c := NewCache(8, time.Minute)
	var calls atomic.Int32
	load := loaderOf(&calls, dto.Threat{ID: "t1"})

	a, err := c.GetOrLoad(context.Background(), "alice", "sys", load)
	require.NoError(t, err)
	b, err := c.GetOrLoad(context.Background(), "bob", "sys", load)
	require.NoError(t, err)

	require.NoError(t, a.MarkDeleted("t1"))
	assert.Len(t, b.Threats(), 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetOrLoad_ErrorNotCached(t *testing.T) {
	c := NewCache(8, time.Minute)
	boom := errors.New("db down")

	_, err := c.GetOrLoad(context.Background(), "ws", "sys", func(context.Context, string) ([]dto.Threat, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.Len())
}

func TestDiscardAndExpiry(t *testing.T) {
	c := NewCache(8, 50*time.Millisecond)
	var calls atomic.Int32

	_, err := c.GetOrLoad(context.Background(), "ws", "sys", loaderOf(&calls))
	require.NoError(t, err)
	assert.True(t, c.Discard("ws", "sys"))
	assert.False(t, c.Discard("ws", "sys"))

	_, err = c.GetOrLoad(context.Background(), "ws", "sys", loaderOf(&calls))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestGetOrLoad_ActiveWorkspaceOutlivesTTL(t *testing.T) {
	c := NewCache(8, 100*time.Millisecond)
	var calls atomic.Int32
	load := loaderOf(&calls, dto.Threat{ID: "a"}, dto.Threat{ID: "b"})

	first, err := c.GetOrLoad(context.Background(), "ws", "sys", load)
	require.NoError(t, err)
	require.NoError(t, first.MarkDeleted("b"))

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		time.Sleep(30 * time.Millisecond)
		agg, err := c.GetOrLoad(context.Background(), "ws", "sys", load)
		require.NoError(t, err)
		require.Same(t, first, agg)
		assert.Equal(t, []string{"b"}, agg.PendingDeletions())
	}

	got, ok := c.Get("ws", "sys")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}
