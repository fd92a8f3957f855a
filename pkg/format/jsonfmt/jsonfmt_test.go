package jsonfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manifest struct {
	Name string `json:"name"`
}

func TestDecodeSimple(t *testing.T) {
	f := New[manifest, string]()
	v, err := f.DecodeSimple("key", []byte(`{"name":"crate"}`))
	require.NoError(t, err)
	assert.Equal(t, "crate", v.Name)
}

func TestDecodeSimpleMalformed(t *testing.T) {
	f := New[manifest, string]()
	_, err := f.DecodeSimple("key", []byte(`not json`))
	assert.Error(t, err)
}
