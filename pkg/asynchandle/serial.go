package asynchandle

import (
	"context"
)

// SerialHandle is the single-threaded counterpart to Handle: it assumes its
// Run and every TryResult/Wait happen on, or are synchronized onto, the one
// goroutine a SerialExecutor drains on, so it skips the mutex Handle needs
// to protect against concurrent drivers and readers. The done channel is
// still safe to select on from other goroutines, since a closed channel
// read is never a data race; only concurrent writes to value/err would be.
type SerialHandle[A any] struct {
	state state
	done  chan struct{}
	value A
	err   error
}

// NewSerialHandle returns a pending SerialHandle.
func NewSerialHandle[A any]() *SerialHandle[A] {
	return &SerialHandle[A]{done: make(chan struct{})}
}

// Run executes build on the calling goroutine and resolves the handle.
// Callers must ensure Run happens-before any Wait/TryResult that observes
// the result, which holds automatically when both run on the same
// SerialExecutor drain loop.
func (h *SerialHandle[A]) Run(build func() (A, error)) {
	defer func() {
		if r := recover(); r != nil {
			h.state = statePoisoned
			h.err = &PoisonError{Recovered: r}
			close(h.done)
		}
	}()
	value, err := build()
	h.value = value
	h.err = err
	h.state = stateComplete
	close(h.done)
}

func (h *SerialHandle[A]) Wait(ctx context.Context) (A, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var zero A
		return zero, ctx.Err()
	}
}

func (h *SerialHandle[A]) TryResult() (value A, err error, ok bool) {
	select {
	case <-h.done:
		return h.value, h.err, true
	default:
		var zero A
		return zero, nil, false
	}
}

func (h *SerialHandle[A]) Clone() AssetHandle[A] {
	return h
}
