package id

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetIDRoundTripJSON(t *testing.T) {
	want := New()

	data, err := json.Marshal(want)
	require.NoError(t, err)

	var got AssetID
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}

func TestAssetIDRoundTripBinary(t *testing.T) {
	want := New()

	data, err := want.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 16)

	var got AssetID
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, want, got)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not-a-uuid")
	assert.Error(t, err)
}

func TestNilIsZeroValue(t *testing.T) {
	var zero AssetID
	assert.True(t, zero.IsNil())
	assert.False(t, New().IsNil())
}

func TestRecordStaleAgainst(t *testing.T) {
	builtAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &Record{SourceModified: builtAt}

	assert.False(t, r.StaleAgainst(builtAt))
	assert.False(t, r.StaleAgainst(builtAt.Add(-time.Hour)))
	assert.True(t, r.StaleAgainst(builtAt.Add(time.Hour)))
}

func TestSubAssetNeverStale(t *testing.T) {
	parent := New()
	r := &Record{Parent: &parent, SourceModified: time.Unix(0, 0)}

	assert.True(t, r.IsSubAsset())
	assert.False(t, r.StaleAgainst(time.Now()))
}
