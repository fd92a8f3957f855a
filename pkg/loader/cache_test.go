package loader

import (
	"context"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicware/treasury/pkg/asynchandle"
	"github.com/relicware/treasury/pkg/source"
)

type upperFormat struct{}

func (upperFormat) DecodeSimple(_ string, bytes []byte) (string, error) {
	return string(bytes), nil
}

func newTestCache(t *testing.T, reads *int32) *Cache[string] {
	t.Helper()
	src := source.Func[string](func(_ context.Context, key string) ([]byte, error) {
		atomic.AddInt32(reads, 1)
		return []byte("data:" + key), nil
	})
	return NewCache[string](source.NewRegistry[string](src), ParallelExecutor{})
}

func TestLoadCoalescesConcurrentRequests(t *testing.T) {
	var reads int32
	c := newTestCache(t, &reads)
	format := AsFormat[string, string](upperFormat{})

	var handles []interface{ Wait(context.Context) (string, error) }
	for i := 0; i < 5; i++ {
		h := Load[string](c, "asset.txt", format, func(repr string) (string, error) { return repr, nil })
		handles = append(handles, h)
	}

	for _, h := range handles {
		v, err := h.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "data:asset.txt", v)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&reads))
}

func TestLoadDistinguishesAssetTypes(t *testing.T) {
	var reads int32
	c := newTestCache(t, &reads)
	format := AsFormat[string, string](upperFormat{})

	type Kind1 string
	type Kind2 string

	h1 := Load[Kind1](c, "same-key", format, func(repr string) (Kind1, error) { return Kind1(repr), nil })
	h2 := Load[Kind2](c, "same-key", format, func(repr string) (Kind2, error) { return Kind2(repr), nil })

	v1, err := h1.Wait(context.Background())
	require.NoError(t, err)
	v2, err := h2.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Kind1("data:same-key"), v1)
	assert.Equal(t, Kind2("data:same-key"), v2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&reads))
}

func TestRemoveForcesRebuild(t *testing.T) {
	var reads int32
	c := newTestCache(t, &reads)
	format := AsFormat[string, string](upperFormat{})

	h1 := Load[string](c, "k", format, func(repr string) (string, error) { return repr, nil })
	_, err := h1.Wait(context.Background())
	require.NoError(t, err)

	assert.True(t, Remove[string](c, "k"))
	assert.False(t, Remove[string](c, "k"), "second Remove has nothing left to evict")

	h2 := Load[string](c, "k", format, func(repr string) (string, error) { return repr, nil })
	_, err = h2.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&reads))
}

type frameContext struct {
	frame int
}

func TestLoadWithFormatStagesOnContext(t *testing.T) {
	var reads int32
	c := newTestCache(t, &reads)
	format := AsFormat[string, string](upperFormat{})

	h := LoadWithFormat[string, string, frameContext](c, "k", format, func(_ context.Context, repr string, ctx *frameContext) (string, error) {
		return repr + "@frame" + string(rune('0'+ctx.frame)), nil
	})

	_, _, ok := h.TryResult()
	assert.False(t, ok, "build must not run until Process is called")

	ctxType := reflect.TypeOf(frameContext{})
	require.Eventually(t, func() bool {
		return c.processor.Pending(ctxType) > 0
	}, time.Second, time.Millisecond, "build never reached Enqueue")

	Process(c, &frameContext{frame: 1})

	v, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "data:k@frame1", v)
}

func TestLoadPropagatesNotFoundToEveryHandleClone(t *testing.T) {
	src := source.Func[string](func(_ context.Context, _ string) ([]byte, error) {
		return nil, source.ErrNotFound
	})
	c := NewCache[string](source.NewRegistry[string](src), ParallelExecutor{})
	format := AsFormat[string, string](upperFormat{})

	h := Load[string](c, "anything", format, func(repr string) (string, error) { return repr, nil })
	h2 := h.Clone()

	_, err1 := h.Wait(context.Background())
	_, err2 := h2.Wait(context.Background())
	assert.ErrorIs(t, err1, source.ErrNotFound)
	assert.ErrorIs(t, err2, source.ErrNotFound)
}

func TestLoadOnSerialExecutorUsesSerialHandle(t *testing.T) {
	src := source.Func[string](func(_ context.Context, key string) ([]byte, error) {
		return []byte("data:" + key), nil
	})
	executor := NewSerialExecutor()
	c := NewCache[string](source.NewRegistry[string](src), executor)
	format := AsFormat[string, string](upperFormat{})

	h := Load[string](c, "k", format, func(repr string) (string, error) { return repr, nil })

	_, ok := h.(*asynchandle.SerialHandle[string])
	assert.True(t, ok, "a Cache built on a SerialExecutor must hand back a SerialHandle")

	_, _, ready := h.TryResult()
	assert.False(t, ready, "SerialExecutor must not run anything before Drain")

	executor.Drain()

	v, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "data:k", v)
}

func TestLoadWithFormatNoContextRunsImmediately(t *testing.T) {
	var reads int32
	c := newTestCache(t, &reads)
	format := AsFormat[string, string](upperFormat{})

	h := LoadWithFormat[string, string, NoContext](c, "k", format, func(_ context.Context, repr string, _ *NoContext) (string, error) {
		return repr, nil
	})

	require.Eventually(t, func() bool {
		_, _, ok := h.TryResult()
		return ok
	}, time.Second, time.Millisecond)
}
