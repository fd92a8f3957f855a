/*
Package importerreg discovers importer plugins on disk and indexes them by
name and by source extension so the treasury can look one up
when it needs to import or re-import an asset.

Plugins are ordinary Go plugins built with -buildmode=plugin. A plugin is
accepted only if it exports TreasuryImporterMagic matching
treasuryimport.Magic and TreasuryImporterVersion matching
treasuryimport.ABIVersion; anything else is skipped with a logged warning
rather than failing the whole scan, since one bad .so next to a directory of
good ones shouldn't take the rest down.
*/
package importerreg

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/relicware/treasury/pkg/log"
	"github.com/relicware/treasury/pkg/treasuryimport"
)

// Registry indexes the importers known to a treasury, whether loaded from
// plugins on disk or registered in process (as dummy.Importer is in tests).
type Registry struct {
	mu        sync.RWMutex
	byName    map[string]treasuryimport.Importer
	bySource  map[string][]treasuryimport.Importer
	loadedSos map[string]bool
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		byName:    make(map[string]treasuryimport.Importer),
		bySource:  make(map[string][]treasuryimport.Importer),
		loadedSos: make(map[string]bool),
	}
}

// Register adds importer directly, without going through a plugin file. If
// an importer with the same name is already registered, Register keeps the
// existing one and returns false: first registration wins, matching how
// ScanDir resolves conflicts across directories.
func (r *Registry) Register(imp treasuryimport.Importer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(imp)
}

func (r *Registry) registerLocked(imp treasuryimport.Importer) bool {
	if _, exists := r.byName[imp.Name()]; exists {
		return false
	}
	r.byName[imp.Name()] = imp
	r.bySource[imp.Source()] = append(r.bySource[imp.Source()], imp)
	return true
}

// ByName returns the importer registered under name, if any.
func (r *Registry) ByName(name string) (treasuryimport.Importer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	imp, ok := r.byName[name]
	return imp, ok
}

// BySource returns every importer that claims the given source extension,
// in registration order. Callers pick the first one whose Import succeeds,
// matching the source-abstraction's own first-match-wins convention.
func (r *Registry) BySource(sourceExt string) []treasuryimport.Importer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]treasuryimport.Importer, len(r.bySource[sourceExt]))
	copy(out, r.bySource[sourceExt])
	return out
}

// pluginLoad is one *.so's load outcome, collected before any registration
// happens so concurrent dlopen calls never race against the registry's own
// lock.
type pluginLoad struct {
	path string
	imps []treasuryimport.Importer
}

// ScanDir opens every candidate plugin concurrently (plugin.Open is a
// blocking syscall-heavy dlopen, so a directory of importer plugins loads
// noticeably faster in parallel than one at a time) and then registers the
// results sequentially, in directory order, so first-write-wins stays
// deterministic regardless of which goroutine finished loading first.
//
// ScanDir loads every *.so file directly inside dir (non-recursive) and
// registers the importers each one enumerates. It returns the number of
// importers newly registered; plugins that fail the magic/version check, or
// whose Open/Lookup fails, are skipped and logged rather than returned as an
// error, since a directory of importer plugins is expected to be scanned
// opportunistically at startup.
func (r *Registry) ScanDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("importerreg: read %s: %w", dir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".so" {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		r.mu.Lock()
		already := r.loadedSos[full]
		r.mu.Unlock()
		if !already {
			candidates = append(candidates, full)
		}
	}

	loads := make([]pluginLoad, len(candidates))
	var g errgroup.Group
	for i, full := range candidates {
		i, full := i, full
		g.Go(func() error {
			imps, err := loadPlugin(full)
			if err != nil {
				log.Logger.Warn().Err(err).Str("plugin", full).Msg("skipping importer plugin")
				return nil
			}
			loads[i] = pluginLoad{path: full, imps: imps}
			return nil
		})
	}
	_ = g.Wait() // loadPlugin never returns a non-nil error to the group

	count := 0
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, load := range loads {
		if load.path == "" {
			continue
		}
		r.loadedSos[load.path] = true
		for _, imp := range load.imps {
			if r.registerLocked(imp) {
				count++
			} else {
				log.Logger.Warn().Str("importer", imp.Name()).Str("plugin", load.path).Msg("duplicate importer name, keeping first registration")
			}
		}
	}
	return count, nil
}

func loadPlugin(path string) ([]treasuryimport.Importer, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	magicSym, err := p.Lookup(treasuryimport.MagicSymbol)
	if err != nil {
		return nil, fmt.Errorf("missing %s: %w", treasuryimport.MagicSymbol, err)
	}
	magic, ok := magicSym.(*uint32)
	if !ok || *magic != treasuryimport.Magic {
		return nil, fmt.Errorf("magic mismatch or wrong type for %s", treasuryimport.MagicSymbol)
	}

	versionSym, err := p.Lookup(treasuryimport.VersionSymbol)
	if err != nil {
		return nil, fmt.Errorf("missing %s: %w", treasuryimport.VersionSymbol, err)
	}
	version, ok := versionSym.(*string)
	if !ok || *version != treasuryimport.ABIVersion {
		return nil, fmt.Errorf("ABI version mismatch for %s", treasuryimport.VersionSymbol)
	}

	enumSym, err := p.Lookup(treasuryimport.EnumerateSymbol)
	if err != nil {
		return nil, fmt.Errorf("missing %s: %w", treasuryimport.EnumerateSymbol, err)
	}
	enumerate, ok := enumSym.(func() []treasuryimport.Importer)
	if !ok {
		return nil, fmt.Errorf("%s has unexpected signature", treasuryimport.EnumerateSymbol)
	}

	return enumerate(), nil
}
