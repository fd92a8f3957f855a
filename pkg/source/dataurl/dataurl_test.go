package dataurl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicware/treasury/pkg/source"
)

func TestReadDecodesBase64Payload(t *testing.T) {
	s := New()
	data, err := s.Read(context.Background(), "data:application/json;base64,eyJmb28iOiJxIiwiYmFyIjo0Mn0=")
	require.NoError(t, err)
	assert.JSONEq(t, `{"foo":"q","bar":42}`, string(data))
}

func TestReadPassesThroughUnencodedPayload(t *testing.T) {
	s := New()
	data, err := s.Read(context.Background(), "data:text/plain,hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestReadRejectsNonDataURLAsNotFound(t *testing.T) {
	s := New()
	_, err := s.Read(context.Background(), "assets/texture.png")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestReadRejectsMalformedDataURL(t *testing.T) {
	s := New()
	_, err := s.Read(context.Background(), "data:application/json;base64")
	assert.Error(t, err)
}

func TestReadToleratesUnpaddedBase64(t *testing.T) {
	s := New()
	data, err := s.Read(context.Background(), "data:text/plain;base64,aGVsbG8")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestReadDecodesURLSafeAlphabet(t *testing.T) {
	s := New()
	// 0xff 0xff 0xbe encodes to "__--": '_' and '-' only appear in the
	// URL-safe alphabet, never the standard one.
	data, err := s.Read(context.Background(), "data:application/octet-stream;base64,__--")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 0xbe}, data)
}
