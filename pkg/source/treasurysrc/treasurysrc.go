// Package treasurysrc adapts a *treasury.Treasury into a
// source.Source[id.AssetID], so the loader can read an asset's native bytes
// straight out of a treasury the same way it would read any other source.
package treasurysrc

import (
	"context"
	"errors"

	"github.com/relicware/treasury/pkg/id"
	"github.com/relicware/treasury/pkg/source"
	"github.com/relicware/treasury/pkg/treasury"
)

// Source wraps a Treasury. Fetch is not safe to call from multiple
// goroutines against the same Treasury without synchronization at the
// Treasury's own internal lock, which Treasury already provides; this
// wrapper adds nothing beyond translating ErrNotFound into source's own
// sentinel.
type Source struct {
	Treasury *treasury.Treasury
}

// New wraps t as a source.
func New(t *treasury.Treasury) *Source {
	return &Source{Treasury: t}
}

func (s *Source) Read(ctx context.Context, key id.AssetID) ([]byte, error) {
	data, err := s.Treasury.Fetch(ctx, key)
	if errors.Is(err, treasury.ErrNotFound) {
		return nil, source.ErrNotFound
	}
	return data, err
}
