/*
Package id defines the identifiers and metadata records that anchor every
asset inside the treasury.

An AssetID is a 128-bit UUID that names an asset independently of where its
source or native artifact currently live. A Record binds that identifier to
the source path that produced the asset, the importer that processed it, and
the native artifact the importer wrote, plus enough bookkeeping to decide
whether the native artifact is stale relative to its source.
*/
package id

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssetID uniquely identifies an asset within a treasury. It is stable across
// re-imports: the same source path stored twice with the same importer
// yields the same AssetID, and tags passed on the later call are ignored.
type AssetID uuid.UUID

// Nil is the zero AssetID, never assigned to a real asset.
var Nil = AssetID(uuid.Nil)

// New generates a fresh random AssetID.
func New() AssetID {
	return AssetID(uuid.New())
}

// Parse decodes the canonical hyphenated representation of an AssetID.
func Parse(s string) (AssetID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return AssetID(u), nil
}

// String renders the canonical hyphenated representation, also used as the
// on-disk filename for the asset's native artifact.
func (id AssetID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the zero value.
func (id AssetID) IsNil() bool {
	return id == Nil
}

// MarshalJSON implements json.Marshaler.
func (id AssetID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *AssetID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler, used by the treasury
// index to store AssetID as a fixed-width bbolt key.
func (id AssetID) MarshalBinary() ([]byte, error) {
	u := uuid.UUID(id)
	return u[:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (id *AssetID) UnmarshalBinary(data []byte) error {
	u, err := uuid.FromBytes(data)
	if err != nil {
		return err
	}
	*id = AssetID(u)
	return nil
}

// Record is the persisted metadata the treasury keeps for one asset: where
// its source lives, which importer produced the native artifact, when that
// artifact was last built, and the tags attached at import time.
type Record struct {
	ID AssetID `json:"id"`

	// SourcePath is the path, relative to the treasury root, of the input the
	// asset was built from. Empty for assets with no backing source.
	SourcePath string `json:"source_path,omitempty"`

	// SourceFormat and NativeFormat record the source/native extensions the
	// importer that produced this asset claims, matching Importer.Source()
	// and Importer.Native(). Neither is guaranteed to equal Importer.Name(),
	// so re-import must look the importer up by Importer below, not by
	// NativeFormat.
	SourceFormat string `json:"source_format"`
	NativeFormat string `json:"native_format"`

	// Importer is the name of the importer that produced this asset,
	// matching Importer.Name(). Used to resolve the importer to re-run on
	// staleness.
	Importer string `json:"importer"`

	// Tags are opaque labels attached at import time.
	Tags []string `json:"tags,omitempty"`

	// SourceModified is the source file's modification time recorded at the
	// last successful import, used to detect staleness.
	SourceModified time.Time `json:"source_modified,omitempty"`

	// BuiltAt is when the native artifact currently on disk was produced.
	BuiltAt time.Time `json:"built_at"`

	// Parent, when non-nil, names the asset that registered this one as a
	// sub-asset during import. Sub-assets are never independently stale.
	Parent *AssetID `json:"parent,omitempty"`
}

// IsSubAsset reports whether this record was registered by another asset's
// importer rather than discovered directly from a source path.
func (r *Record) IsSubAsset() bool {
	return r.Parent != nil
}

// StaleAgainst reports whether the given source modification time is later
// than the SourceModified recorded at the last successful import, meaning the
// asset should be re-imported. The native artifact's own modification time
// is not consulted.
func (r *Record) StaleAgainst(sourceModified time.Time) bool {
	if r.IsSubAsset() {
		return false
	}
	return sourceModified.After(r.SourceModified)
}
