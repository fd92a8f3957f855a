package loader

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicware/treasury/pkg/source"
)

// World stands in for a host-owned resource that some assets can only be
// finished against — a render device, a physics world, anything the cache
// itself must not touch directly. A mesh asset decodes independently of
// World, but registering it (spawning an entity, allocating a GPU buffer)
// needs the caller to hand the World back in on its own terms.
type World struct {
	entities []string
}

func (w *World) Spawn(name string) int {
	w.entities = append(w.entities, name)
	return len(w.entities) - 1
}

// Mesh is the asset a game loop loads: a name decoded from bytes, and the
// entity slot it was spawned into once the World was available.
type Mesh struct {
	Name   string
	Entity int
}

type meshFormat struct{}

func (meshFormat) DecodeSimple(_ string, bytes []byte) (string, error) {
	return string(bytes), nil
}

// TestContextBoundWorldAsset demonstrates the full context-staged build: the
// mesh name decodes as soon as the source is read, but Entity is only
// assigned once the host calls Process with its World for this frame.
func TestContextBoundWorldAsset(t *testing.T) {
	src := source.Func[string](func(_ context.Context, key string) ([]byte, error) {
		return []byte(key), nil
	})
	c := NewCache[string](source.NewRegistry[string](src), ParallelExecutor{})
	format := AsFormat[string, string](meshFormat{})

	h := LoadWithFormat[Mesh, string, World](c, "barrel.mesh", format, func(_ context.Context, name string, world *World) (Mesh, error) {
		return Mesh{Name: name, Entity: world.Spawn(name)}, nil
	})

	_, _, ok := h.TryResult()
	assert.False(t, ok, "mesh build must wait for a World before running")

	ctxType := reflect.TypeOf(World{})
	require.Eventually(t, func() bool {
		return c.processor.Pending(ctxType) > 0
	}, time.Second, time.Millisecond, "build never reached Enqueue")

	world := &World{}
	Process(c, world)

	mesh, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "barrel.mesh", mesh.Name)
	assert.Equal(t, 0, mesh.Entity)
	assert.Equal(t, []string{"barrel.mesh"}, world.entities)
}
