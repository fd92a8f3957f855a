// Package jsonfmt decodes JSON source bytes into any Go type, for use as a
// loader.SimpleFormat via loader.AsFormat.
package jsonfmt

import (
	gojson "github.com/goccy/go-json"
)

// Format decodes JSON bytes into R, regardless of key.
type Format[R any, K comparable] struct{}

// New returns a Format decoding into R.
func New[R any, K comparable]() Format[R, K] {
	return Format[R, K]{}
}

// DecodeSimple implements loader.SimpleFormat[R, K].
func (Format[R, K]) DecodeSimple(_ K, bytes []byte) (R, error) {
	var value R
	if err := gojson.Unmarshal(bytes, &value); err != nil {
		return value, err
	}
	return value, nil
}
