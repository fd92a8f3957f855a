// Package yamlfmt decodes YAML source bytes into any Go type, for use as a
// loader.SimpleFormat via loader.AsFormat.
package yamlfmt

import (
	"gopkg.in/yaml.v3"
)

// Format decodes YAML bytes into R, regardless of key.
type Format[R any, K comparable] struct{}

// New returns a Format decoding into R.
func New[R any, K comparable]() Format[R, K] {
	return Format[R, K]{}
}

// DecodeSimple implements loader.SimpleFormat[R, K].
func (Format[R, K]) DecodeSimple(_ K, bytes []byte) (R, error) {
	var value R
	if err := yaml.Unmarshal(bytes, &value); err != nil {
		return value, err
	}
	return value, nil
}
