/*
Package dummy is a trivial importer used by tests and as the worked example
for building an out-of-tree importer plugin: copy this package, change the
three strings TreasuryImporterEnumerate passes to New, implement Import, and
build it with

	go build -buildmode=plugin -o copy.so

The resulting .so exports the three symbols importerreg's Registry.ScanDir
looks for.
*/
package dummy

import (
	"io"
	"os"

	"github.com/relicware/treasury/pkg/treasuryimport"
)

// Importer copies its source byte for byte into the native artifact. It
// exists so tests can exercise the full import pipeline without shipping a
// real codec, and so the plugin ABI has a minimal worked example.
type Importer struct {
	name, source, native string
}

// New returns a copy importer claiming the given source and native
// extensions under the given name.
func New(name, source, native string) *Importer {
	return &Importer{name: name, source: source, native: native}
}

func (i *Importer) Name() string   { return i.name }
func (i *Importer) Source() string { return i.source }
func (i *Importer) Native() string { return i.native }

// Import copies sourcePath to nativePath unchanged.
func (i *Importer) Import(sourcePath, nativePath string, _ treasuryimport.Registry) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	tmp := nativePath + ".tmp"
	dst, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmp)
		return err
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, nativePath)
}

// TreasuryImporterMagic, TreasuryImporterVersion and TreasuryImporterEnumerate
// are the three symbols a Go-plugin importer must export. Building this
// package with -buildmode=plugin yields a loadable "dummy.text" importer.
var TreasuryImporterMagic = treasuryimport.Magic

var TreasuryImporterVersion = treasuryimport.ABIVersion

func TreasuryImporterEnumerate() []treasuryimport.Importer {
	return []treasuryimport.Importer{New("dummy.text", "txt", "txt")}
}
