package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicware/treasury/pkg/source"
)

func TestReadReturnsFileContents(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.json"), []byte(`{"n":7}`), 0o644))

	s := New(dir)
	data, err := s.Read(context.Background(), "x.json")
	require.NoError(t, err)
	assert.Equal(t, `{"n":7}`, string(data))
}

func TestReadMissingFileIsNotFound(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Read(context.Background(), "missing.json")
	assert.ErrorIs(t, err, source.ErrNotFound)
}
