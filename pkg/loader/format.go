package loader

import "context"

// Format decodes raw source bytes for key into an intermediate
// representation R. Formats that need to load sub-assets as part of
// decoding (a scene format referencing textures by key) can do so through
// cache, recursively.
type Format[R any, K comparable] interface {
	Decode(ctx context.Context, key K, bytes []byte, cache *Cache[K]) (R, error)
}

// SimpleFormat is a Format that never needs the cache or a cancellation
// context, which covers the overwhelming majority of codecs (JSON, YAML,
// plain images). Use AsFormat to lift one into a Format.
type SimpleFormat[R any, K comparable] interface {
	DecodeSimple(key K, bytes []byte) (R, error)
}

type simpleFormatAdapter[R any, K comparable] struct {
	inner SimpleFormat[R, K]
}

func (a simpleFormatAdapter[R, K]) Decode(_ context.Context, key K, bytes []byte, _ *Cache[K]) (R, error) {
	return a.inner.DecodeSimple(key, bytes)
}

// AsFormat lifts a SimpleFormat into a Format.
func AsFormat[R any, K comparable](f SimpleFormat[R, K]) Format[R, K] {
	return simpleFormatAdapter[R, K]{inner: f}
}
