/*
Package treasuryimport defines the stable contract between the treasury and
the importers that turn source files into native artifacts.

Importers run either in process (registered directly, or loaded from a Go
plugin with the standard library's plugin package) or out of process as
subprocesses speaking the line-delimited JSON protocol implemented by
SubprocessImporter. Both shapes satisfy the same
Importer interface, so the treasury core never has to know which one it is
talking to.
*/
package treasuryimport

// Magic is the value every Go-plugin importer must export as
// TreasuryImporterMagic. The registry refuses to load a plugin whose magic
// does not match, which catches accidental loading of unrelated .so files
// before any exported symbol gets called.
const Magic uint32 = 0xe11c9a87

// ABIVersion is the value every Go-plugin importer must export as
// TreasuryImporterVersion. It is bumped whenever the Importer or Registry
// interfaces change in a way that breaks binary-incompatible plugins built
// against an older version of this package.
const ABIVersion = "treasury-import-1"

// EnumerateSymbol is the name of the exported plugin function the registry
// looks up after validating Magic and ABIVersion. Its signature must be
// func() []treasuryimport.Importer.
const EnumerateSymbol = "TreasuryImporterEnumerate"

// MagicSymbol and VersionSymbol name the two guard symbols plugins export
// alongside EnumerateSymbol.
const (
	MagicSymbol   = "TreasuryImporterMagic"
	VersionSymbol = "TreasuryImporterVersion"
)

// Importer turns one source file into one native artifact, optionally
// registering further sub-assets discovered along the way through the
// Registry it is given.
type Importer interface {
	// Name identifies the importer uniquely among every importer known to a
	// treasury. Stored as a Record's importer field and used to resolve the
	// importer that must re-run on staleness.
	Name() string

	// Source returns the source format extension this importer claims
	// (without the leading dot), e.g. "png" or "gltf".
	Source() string

	// Native returns the native artifact's file extension, e.g. "qoi".
	Native() string

	// Import reads sourcePath and writes the native artifact to nativePath.
	// nativePath's parent directory is guaranteed to exist; the importer
	// must write it atomically (tmp file + rename) if it wants crash safety,
	// matching how the treasury itself persists artifacts.
	Import(sourcePath, nativePath string, reg Registry) error
}

// Registry is the callback surface an Importer receives during Import,
// letting it register further input files as sub-assets of the asset
// currently being built, and fetch the native path of a previously stored
// asset by id (used when one asset references another, e.g. a material
// referencing a texture).
type Registry interface {
	// Store registers sourcePath as a sub-asset using the importer named by
	// nativeFormat, returning its AssetID. If an asset with this exact
	// source path and importer already exists it is returned unchanged.
	Store(sourcePath, sourceFormat, nativeFormat string, tags []string) (RegistryAssetID, error)

	// Fetch returns the absolute native artifact path for a previously
	// stored or registered asset.
	Fetch(asset RegistryAssetID) (string, error)
}

// RegistryAssetID is treasuryimport's own copy of id.AssetID's wire shape.
// Importers are a separate compilation unit loaded via plugin.Open, so this
// package cannot import pkg/id directly without forcing every plugin to
// vendor an identical pkg/id at an identical version; a 16-byte array avoids
// that coupling while staying binary compatible with uuid.UUID.
type RegistryAssetID [16]byte
