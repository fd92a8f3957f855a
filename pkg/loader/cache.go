/*
Package loader is the asset-loading engine: Cache coalesces concurrent
requests for the same (asset type, key) pair into a single build, Format
decodes raw source bytes into an intermediate representation, and a
context-staged build (see NoContext and Process) lets some assets finish
only once the host hands back a resource it controls (a GPU device, a
window). Handles are the asynchandle package's coalescing futures; queueing
across context types is the process package's Processor.

Go has no associated types, so where the original design let an asset type
declare its own Repr and Context via a trait, this package takes them as
explicit type parameters on LoadWithFormat instead: Format[R, K] decodes to
R, and the caller's build function receives R and a *C. Nothing is lost
going this route other than the ability to infer R and C from A alone; the
call site simply says what it means.
*/
package loader

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/relicware/treasury/pkg/asynchandle"
	"github.com/relicware/treasury/pkg/metrics"
	"github.com/relicware/treasury/pkg/process"
	"github.com/relicware/treasury/pkg/source"
)

// NoContext is the sentinel context type for assets that build without any
// host-supplied resource. LoadWithFormat recognizes it and runs the build
// inline on the executor's own goroutine instead of queueing it on a
// Processor nobody will ever call Process for.
type NoContext struct{}

type cacheKey[K comparable] struct {
	typ reflect.Type
	key K
}

// Cache maps (asset type, key) pairs to a coalesced Handle. One Cache
// instance owns one Source Registry, one Processor and one Executor; a host
// embedding multiple independent asset worlds should use one Cache per
// world.
type Cache[K comparable] struct {
	mu        sync.Mutex
	entries   map[any]any
	sources   *source.Registry[K]
	processor *process.Processor
	executor  Executor
}

// NewCache returns an empty Cache reading from sources and running builds on
// executor.
func NewCache[K comparable](sources *source.Registry[K], executor Executor) *Cache[K] {
	return &Cache[K]{
		entries:   make(map[any]any),
		sources:   sources,
		processor: process.New(),
		executor:  executor,
	}
}

type buildResult[A any] struct {
	value A
	err   error
}

// runnableHandle is the subset of asynchandle.Handle and asynchandle.SerialHandle
// that LoadWithFormat needs to drive a build: the common AssetHandle contract
// plus Run, which AssetHandle itself deliberately omits so callers outside
// this package can never drive a handle they didn't create.
type runnableHandle[A any] interface {
	asynchandle.AssetHandle[A]
	Run(build func() (A, error))
}

// newHandleFor returns a Handle for c's executor model: a SerialExecutor
// drains its queue from one goroutine at a time, so it gets the
// mutex-free SerialHandle; every other Executor gets the goroutine-safe
// Handle, since ParallelExecutor (and any other concurrent executor) may
// run the build on a goroutine a waiter races to read from.
func newHandleFor[A any, K comparable](c *Cache[K]) runnableHandle[A] {
	if _, ok := c.executor.(*SerialExecutor); ok {
		return asynchandle.NewSerialHandle[A]()
	}
	return asynchandle.NewHandle[A]()
}

// LoadWithFormat returns the coalesced Handle for (A, key), spawning a build
// on the Cache's Executor the first time this (type, key) pair is
// requested. Later calls for the same pair, of the same asset type A,
// return the same Handle without re-reading the source or re-decoding.
//
// format decodes the source bytes into R; build turns R into the finished
// asset A, given a pointer to the context value of type C that a later call
// to Process(cache, ctx) will supply. If C is loader.NoContext, build runs
// immediately after decode with no Processor round trip.
func LoadWithFormat[A any, R any, C any, K comparable](c *Cache[K], key K, format Format[R, K], build func(context.Context, R, *C) (A, error)) asynchandle.AssetHandle[A] {
	typ := reflect.TypeOf((*A)(nil)).Elem()
	ck := cacheKey[K]{typ: typ, key: key}
	typeName := typ.String()

	c.mu.Lock()
	if existing, ok := c.entries[ck]; ok {
		c.mu.Unlock()
		metrics.CacheLoadsTotal.WithLabelValues("coalesced").Inc()
		return existing.(asynchandle.AssetHandle[A])
	}
	h := newHandleFor[A](c)
	c.entries[ck] = h
	c.mu.Unlock()

	metrics.CacheLoadsTotal.WithLabelValues("spawned").Inc()
	metrics.CacheHandlesTotal.WithLabelValues(typeName).Inc()

	c.executor.Spawn(func() {
		timer := metrics.NewTimer()
		h.Run(func() (A, error) {
			return runBuild[A, R, C](c, key, format, build)
		})
		timer.ObserveDurationVec(metrics.BuildDuration, typeName)

		if _, err, _ := h.TryResult(); err != nil {
			var poisoned *asynchandle.PoisonError
			if errors.As(err, &poisoned) {
				metrics.BuildsPoisonedTotal.WithLabelValues(typeName).Inc()
			}
		}
	})

	return h
}

func runBuild[A any, R any, C any, K comparable](c *Cache[K], key K, format Format[R, K], build func(context.Context, R, *C) (A, error)) (A, error) {
	var zero A
	ctx := context.Background()

	bytes, err := c.sources.Read(ctx, key)
	if err != nil {
		return zero, err
	}

	repr, err := format.Decode(ctx, key, bytes, c)
	if err != nil {
		return zero, err
	}

	ctxType := reflect.TypeOf((*C)(nil)).Elem()
	if ctxType == reflect.TypeOf(NoContext{}) {
		var noCtx C
		return build(ctx, repr, &noCtx)
	}

	resultCh := make(chan buildResult[A], 1)
	c.processor.Enqueue(ctxType, func(ctxAny any) {
		hostCtx := ctxAny.(*C)
		value, err := build(ctx, repr, hostCtx)
		resultCh <- buildResult[A]{value: value, err: err}
	})

	res := <-resultCh
	return res.value, res.err
}

// Load is the context-free convenience over LoadWithFormat, for the common
// case of a build that needs nothing but the decoded representation.
func Load[A any, R any, K comparable](c *Cache[K], key K, format Format[R, K], build func(R) (A, error)) asynchandle.AssetHandle[A] {
	return LoadWithFormat[A, R, NoContext](c, key, format, func(_ context.Context, repr R, _ *NoContext) (A, error) {
		return build(repr)
	})
}

// Remove drops the cached Handle for (A, key), if any, so the next Load or
// LoadWithFormat call for that pair starts a fresh build. It does not cancel
// a build already in flight; any existing Handle keeps running to
// completion for whoever already holds it. Remove reports whether an entry
// was actually evicted.
func Remove[A any, K comparable](c *Cache[K], key K) bool {
	typ := reflect.TypeOf((*A)(nil)).Elem()
	ck := cacheKey[K]{typ: typ, key: key}
	c.mu.Lock()
	_, existed := c.entries[ck]
	delete(c.entries, ck)
	c.mu.Unlock()
	if existed {
		metrics.CacheHandlesTotal.WithLabelValues(typ.String()).Dec()
	}
	return existed
}

// Process drains every build queued against context type C, running each
// with ctx on the calling goroutine. The host calls this once per frame (or
// equivalent) for every context type its formats and builders stage work
// against.
func Process[C any, K comparable](c *Cache[K], ctx *C) {
	c.processor.Process(reflect.TypeOf((*C)(nil)).Elem(), ctx)
}
