package main

import (
	"github.com/relicware/treasury/pkg/treasury"
	"github.com/relicware/treasury/pkg/treasuryimport/dummy"
)

// registerBuiltinImporters registers the importers shipped in this binary,
// in addition to whatever a plugin directory scan turns up. The dummy
// importer is the only one built in; everything else comes from
// --importers-dir.
func registerBuiltinImporters(t *treasury.Treasury) {
	for _, imp := range dummy.TreasuryImporterEnumerate() {
		t.Importers().Register(imp)
	}
}
