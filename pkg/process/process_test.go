package process

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type worldContext struct{ frame int }

func TestProcessDrainsInFIFOOrder(t *testing.T) {
	p := New()
	ctxType := reflect.TypeOf(worldContext{})

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		p.Enqueue(ctxType, func(ctx any) {
			order = append(order, i)
		})
	}

	require.Equal(t, 5, p.Pending(ctxType))
	p.Process(ctxType, worldContext{frame: 1})

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.Equal(t, 0, p.Pending(ctxType))
}

func TestProcessIsolatesDifferentContextTypes(t *testing.T) {
	p := New()
	type otherContext struct{}

	var sawWorld, sawOther bool
	p.Enqueue(reflect.TypeOf(worldContext{}), func(ctx any) { sawWorld = true })
	p.Enqueue(reflect.TypeOf(otherContext{}), func(ctx any) { sawOther = true })

	p.Process(reflect.TypeOf(worldContext{}), worldContext{})

	assert.True(t, sawWorld)
	assert.False(t, sawOther)
}

func TestProcessPicksUpJobsEnqueuedDuringDrain(t *testing.T) {
	p := New()
	ctxType := reflect.TypeOf(worldContext{})

	ran := 0
	var enqueueChild func(ctx any)
	enqueueChild = func(ctx any) {
		ran++
		if ran < 3 {
			p.Enqueue(ctxType, enqueueChild)
		}
	}
	p.Enqueue(ctxType, enqueueChild)

	p.Process(ctxType, worldContext{})
	assert.Equal(t, 3, ran)
}
