package flight

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCachesResult(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(func(k string) (string, error) {
		calls.Add(1)
		return "value-" + k, nil
	})

	v, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "value-a", v)

	v, err = c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "value-a", v)
	assert.Equal(t, int32(1), calls.Load())

	_, err = c.Get("b")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestErrorsAreNotCached(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	c := NewCache(func(k string) (string, error) {
		if calls.Add(1) == 1 {
			return "", boom
		}
		return "ok", nil
	})

	_, err := c.Get("a")
	assert.ErrorIs(t, err, boom)

	v, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestConcurrentGetsShareOneComputation(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})
	c := NewCache(func(k string) (int, error) {
		calls.Add(1)
		<-gate
		return 42, nil
	})

	var wg sync.WaitGroup
	results := make([]int, 10)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get("k")
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestForceRecomputes(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(func(k string) (int32, error) {
		return calls.Add(1), nil
	})

	v, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	v, err = c.Force("a")
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)

	// The forced result replaces the cached one.
	v, err = c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)
}
