/*
Package process implements context-staged build draining. Some assets can
only be built with access to a live resource the host controls directly
(a GPU device, a window surface); rather than let every loader goroutine
race to touch that resource, those builds enqueue a job against the
resource's type and wait. The host calls Process with the resource whenever
it is safe to do so, and every job queued for that resource's type runs, in
FIFO order, on the calling goroutine.

A job queued against one context type never observes, or is observed by,
jobs queued against a different context type: queues are partitioned by
reflect.Type and drained independently.
*/
package process

import (
	"reflect"
	"sync"

	"github.com/relicware/treasury/pkg/metrics"
)

// Processor holds FIFO queues of pending jobs, one per context type.
type Processor struct {
	mu     sync.Mutex
	queues map[reflect.Type][]func(ctx any)
}

// New returns an empty Processor.
func New() *Processor {
	return &Processor{queues: make(map[reflect.Type][]func(ctx any))}
}

// Enqueue appends run to the queue for ctxType. run is invoked with the
// concrete context value the next matching call to Process supplies.
func (p *Processor) Enqueue(ctxType reflect.Type, run func(ctx any)) {
	p.mu.Lock()
	p.queues[ctxType] = append(p.queues[ctxType], run)
	depth := len(p.queues[ctxType])
	p.mu.Unlock()
	metrics.ProcessorQueueDepth.WithLabelValues(ctxType.String()).Set(float64(depth))
}

// Pending reports how many jobs are queued for ctxType, for tests and
// metrics.
func (p *Processor) Pending(ctxType reflect.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queues[ctxType])
}

// Process drains every job queued for ctxType, in the order they were
// enqueued, running each with ctx on the calling goroutine. Jobs enqueued
// by an earlier job in the same drain (a sub-asset build that itself needs
// the same context type) are picked up by this same call rather than left
// for the next one.
func (p *Processor) Process(ctxType reflect.Type, ctx any) {
	for {
		p.mu.Lock()
		jobs := p.queues[ctxType]
		if len(jobs) == 0 {
			p.mu.Unlock()
			return
		}
		delete(p.queues, ctxType)
		p.mu.Unlock()
		metrics.ProcessorQueueDepth.WithLabelValues(ctxType.String()).Set(0)

		for _, job := range jobs {
			job(ctx)
		}
	}
}
