// Package fs implements source.Source[string] over a plain directory tree.
package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/relicware/treasury/pkg/source"
)

// Source reads keys as paths relative to Root.
type Source struct {
	Root string
}

// New returns a Source rooted at root.
func New(root string) *Source {
	return &Source{Root: root}
}

// Read resolves key under s.Root and returns its contents.
func (s *Source) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Root, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, source.ErrNotFound
	}
	return data, err
}
