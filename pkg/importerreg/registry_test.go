package importerreg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relicware/treasury/pkg/treasuryimport/dummy"
)

func TestRegisterFirstWriteWins(t *testing.T) {
	r := New()

	first := dummy.New("text", "txt", "txt")
	second := dummy.New("text", "txt", "txt")

	assert.True(t, r.Register(first))
	assert.False(t, r.Register(second))

	got, ok := r.ByName("text")
	assert.True(t, ok)
	assert.Same(t, first, got)
}

func TestBySourceOrdering(t *testing.T) {
	r := New()
	a := dummy.New("text.a", "txt", "txt")
	b := dummy.New("text.b", "txt", "txt")
	r.Register(a)
	r.Register(b)

	got := r.BySource("txt")
	assert.Len(t, got, 2)
	assert.Same(t, a, got[0])
	assert.Same(t, b, got[1])
}

func TestByNameUnknown(t *testing.T) {
	r := New()
	_, ok := r.ByName("nope")
	assert.False(t, ok)
}

func TestScanDirMissingDirectory(t *testing.T) {
	r := New()
	_, err := r.ScanDir("/nonexistent/path/for/treasury/importers")
	assert.Error(t, err)
}
