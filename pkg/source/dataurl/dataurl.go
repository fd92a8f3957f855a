// Package dataurl implements source.Source[string] over keys that are
// themselves inline "data:" URLs, for small assets embedded directly in a
// manifest rather than stored as a separate file.
package dataurl

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/relicware/treasury/pkg/source"
)

// Source decodes "data:...;base64,..." keys into their raw bytes. Keys that
// are not data URLs yield ErrNotFound so a Registry falls through to the
// next source.
type Source struct{}

// New returns a ready-to-use data URL source.
func New() *Source {
	return &Source{}
}

func (s *Source) Read(_ context.Context, key string) ([]byte, error) {
	if !strings.HasPrefix(key, "data:") {
		return nil, source.ErrNotFound
	}

	comma := strings.IndexByte(key, ',')
	if comma < 0 {
		return nil, fmt.Errorf("dataurl: malformed data URL %q", key)
	}

	meta, payload := key[5:comma], key[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return []byte(payload), nil
	}

	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(payload, "="))
	if err != nil {
		return nil, fmt.Errorf("dataurl: decode %q: %w", key, err)
	}
	return decoded, nil
}
