/*
Package treasury implements the persistent, content-addressed asset store:
a 128-bit id maps to an input source file and the native artifact an
importer produced from it, with staleness detection that transparently
re-imports a source whose modification time has moved past the one recorded
at its last import (the native artifact's own modification time is not
compared).

The on-disk layout under root is:

	root/.treasury/index.db     bbolt database: records, source index, meta
	root/.treasury/<uuid>       one file per native artifact, no extension

bbolt replaces the tmp-file-then-rename index persistence of a hand-rolled
binary format: both give the same guarantee (a reader never observes a
torn write), and bbolt is already the teacher's index-persistence engine,
just applied here to resource records rather than cluster state.
*/
package treasury

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/relicware/treasury/pkg/id"
	"github.com/relicware/treasury/pkg/importerreg"
	"github.com/relicware/treasury/pkg/log"
	"github.com/relicware/treasury/pkg/metrics"
	"github.com/relicware/treasury/pkg/treasuryimport"
)

var (
	bucketRecords  = []byte("records")
	bucketBySource = []byte("bysource")
	bucketMeta     = []byte("meta")
)

const metaKeyImporterDirs = "importer_dirs"

// Treasury is a single-writer, content-addressed asset store rooted at one
// directory on disk. A Treasury is safe for concurrent use: Store, Fetch and
// FetchUpdated all take an internal lock, matching the single-writer model
// the CLI and any embedding host are expected to respect across processes.
type Treasury struct {
	root      string
	dotDir    string
	db        *bolt.DB
	importers *importerreg.Registry

	mu sync.Mutex
}

// New creates a fresh treasury rooted at root, creating the directory if it
// does not exist. If overwrite is false and a treasury already exists at
// root, New returns ErrAlreadyExists.
func New(root string, overwrite bool) (*Treasury, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("treasury: resolve root %q: %w", root, err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("treasury: create root %q: %w", root, err)
	}

	dotDir := filepath.Join(root, ".treasury")
	dbPath := filepath.Join(dotDir, "index.db")

	if !overwrite {
		if _, err := os.Stat(dbPath); err == nil {
			return nil, ErrAlreadyExists
		}
	}

	if err := os.MkdirAll(dotDir, 0o755); err != nil {
		return nil, fmt.Errorf("treasury: create %q: %w", dotDir, err)
	}

	t, err := openAt(root, dotDir, dbPath)
	if err != nil {
		return nil, err
	}
	log.Logger.Info().Str("root", root).Msg("treasury initialized")
	return t, nil
}

// Open opens an existing treasury rooted at root and rescans every importer
// directory previously registered with LoadImporters.
func Open(root string) (*Treasury, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("treasury: resolve root %q: %w", root, err)
	}

	dotDir := filepath.Join(root, ".treasury")
	dbPath := filepath.Join(dotDir, "index.db")

	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("treasury: open %q: %w", dbPath, err)
	}

	t, err := openAt(root, dotDir, dbPath)
	if err != nil {
		return nil, err
	}

	dirs, err := t.importerDirs()
	if err != nil {
		t.Close()
		return nil, err
	}
	for _, dir := range dirs {
		if _, err := t.importers.ScanDir(filepath.Join(root, dir)); err != nil {
			log.Logger.Warn().Err(err).Str("dir", dir).Msg("failed to rescan importer directory")
		}
	}
	return t, nil
}

func openAt(root, dotDir, dbPath string) (*Treasury, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("treasury: open index %q: %w", dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketRecords, bucketBySource, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Treasury{
		root:      root,
		dotDir:    dotDir,
		db:        db,
		importers: importerreg.New(),
	}, nil
}

// Close releases the underlying index database.
func (t *Treasury) Close() error {
	return t.db.Close()
}

// Root returns the absolute path the treasury is rooted at.
func (t *Treasury) Root() string {
	return t.root
}

// LoadImporters scans dir for importer plugins and remembers dir so future
// calls to Open rescan it automatically.
func (t *Treasury) LoadImporters(dir string) (int, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("treasury: resolve importer dir %q: %w", dir, err)
	}

	n, err := t.importers.ScanDir(abs)
	if err != nil {
		return 0, err
	}
	metrics.ImportersLoaded.Add(float64(n))

	rel, err := filepath.Rel(t.root, abs)
	if err != nil {
		rel = abs
	}

	err = t.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		dirs, err := t.importerDirsFromBucket(b)
		if err != nil {
			return err
		}
		for _, d := range dirs {
			if d == rel {
				return nil
			}
		}
		dirs = append(dirs, rel)
		return b.Put([]byte(metaKeyImporterDirs), []byte(joinNUL(dirs)))
	})
	return n, err
}

// Importers exposes the underlying registry so callers (and the CLI) can
// register in-process importers in addition to plugin-loaded ones.
func (t *Treasury) Importers() *importerreg.Registry {
	return t.importers
}

// Stats reports point-in-time counts read straight from the index, for the
// metrics collector to poll: Store and Fetch only ever adjust gauges
// incrementally, so a treasury opened against an existing root needs this to
// get its counters off zero.
type Stats struct {
	Records int
	Sources int
}

func (t *Treasury) Stats() (Stats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var s Stats
	err := t.db.View(func(tx *bolt.Tx) error {
		s.Records = tx.Bucket(bucketRecords).Stats().KeyN
		s.Sources = tx.Bucket(bucketBySource).Stats().KeyN
		return nil
	})
	return s, err
}

func (t *Treasury) importerDirs() ([]string, error) {
	var dirs []string
	err := t.db.View(func(tx *bolt.Tx) error {
		var err error
		dirs, err = t.importerDirsFromBucket(tx.Bucket(bucketMeta))
		return err
	})
	return dirs, err
}

func (t *Treasury) importerDirsFromBucket(b *bolt.Bucket) ([]string, error) {
	raw := b.Get([]byte(metaKeyImporterDirs))
	if raw == nil {
		return nil, nil
	}
	return splitNUL(string(raw)), nil
}

// Store imports sourcePath with the named importer and returns its asset id.
// If the exact (sourcePath, importer) pair was already stored, Store returns
// the existing id without re-importing.
func (t *Treasury) Store(sourcePath, importerName string, tags []string) (id.AssetID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sourceAbs, err := filepath.Abs(sourcePath)
	if err != nil {
		return id.Nil, fmt.Errorf("treasury: resolve source %q: %w", sourcePath, err)
	}
	return t.storeLocked(sourceAbs, importerName, tags, nil)
}

func (t *Treasury) storeLocked(sourceAbs, importerName string, tags []string, parent *id.AssetID) (id.AssetID, error) {
	sourceRel, err := filepath.Rel(t.root, sourceAbs)
	if err != nil {
		sourceRel = sourceAbs
	}

	sourceKey := []byte(sourceRel + "\x00" + importerName)

	var existing id.AssetID
	found := false
	err = t.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketBySource).Get(sourceKey)
		if raw == nil {
			return nil
		}
		found = true
		return existing.UnmarshalBinary(raw)
	})
	if err != nil {
		return id.Nil, err
	}
	if found {
		return existing, nil
	}

	imp, ok := t.importers.ByName(importerName)
	if !ok {
		return id.Nil, fmt.Errorf("%w: %q", ErrImporterNotFound, importerName)
	}

	assetID := id.New()
	nativeAbs := filepath.Join(t.dotDir, assetID.String())
	nativeTmp := nativeAbs + ".tmp"

	timer := metrics.NewTimer()
	err = imp.Import(sourceAbs, nativeTmp, &registryAdapter{t: t, self: assetID})
	timer.ObserveDurationVec(metrics.ImportDuration, importerName)
	if err != nil {
		os.Remove(nativeTmp)
		return id.Nil, fmt.Errorf("treasury: import %q with %q: %w", sourceRel, importerName, err)
	}
	if err := os.Rename(nativeTmp, nativeAbs); err != nil {
		return id.Nil, fmt.Errorf("treasury: finalize native artifact %q: %w", nativeAbs, err)
	}

	sourceModified := time.Time{}
	if info, err := os.Stat(sourceAbs); err == nil {
		sourceModified = info.ModTime()
	}

	rec := &id.Record{
		ID:             assetID,
		SourcePath:     sourceRel,
		SourceFormat:   imp.Source(),
		NativeFormat:   imp.Native(),
		Importer:       importerName,
		Tags:           tags,
		SourceModified: sourceModified,
		BuiltAt:        time.Now(),
		Parent:         parent,
	}

	idBytes, err := assetID.MarshalBinary()
	if err != nil {
		return id.Nil, err
	}
	recJSON, err := marshalRecord(rec)
	if err != nil {
		return id.Nil, err
	}

	err = t.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketRecords).Put(idBytes, recJSON); err != nil {
			return err
		}
		return tx.Bucket(bucketBySource).Put(sourceKey, idBytes)
	})
	if err != nil {
		return id.Nil, err
	}

	log.Logger.Info().Str("asset", assetID.String()).Str("source", sourceRel).Str("importer", importerName).Msg("asset stored")
	metrics.AssetsStoredTotal.WithLabelValues(importerName).Inc()
	metrics.AssetsTotal.Inc()
	return assetID, nil
}

// Fetch returns the current native artifact bytes for asset, re-importing
// first if the source has changed since the artifact was last built.
func (t *Treasury) Fetch(ctx context.Context, asset id.AssetID) ([]byte, error) {
	data, _, err := t.fetch(ctx, asset, 0)
	return data, err
}

// FetchUpdated returns the native artifact bytes for asset only if its
// build version is newer than sinceVersion, re-importing first if the
// source has changed. ok is false when the artifact at sinceVersion is
// still current and no bytes are returned.
func (t *Treasury) FetchUpdated(ctx context.Context, asset id.AssetID, sinceVersion uint64) (data []byte, version uint64, ok bool, err error) {
	data, version, err = t.fetch(ctx, asset, sinceVersion+1)
	if err != nil {
		return nil, 0, false, err
	}
	return data, version, data != nil, nil
}

func (t *Treasury) fetch(ctx context.Context, asset id.AssetID, minVersion uint64) ([]byte, uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.FetchDuration)

	if err := ctx.Err(); err != nil {
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, 0, err
	}

	rec, err := t.lookupRecord(asset)
	if err != nil {
		metrics.FetchesTotal.WithLabelValues("not_found").Inc()
		return nil, 0, err
	}

	nativeAbs := filepath.Join(t.dotDir, asset.String())
	sourceAbs := filepath.Join(t.root, rec.SourcePath)

	if !rec.IsSubAsset() && rec.SourcePath != "" {
		if info, statErr := os.Stat(sourceAbs); statErr == nil && rec.StaleAgainst(info.ModTime()) {
			t.reimport(asset, rec, sourceAbs, nativeAbs)
			rec, err = t.lookupRecord(asset)
			if err != nil {
				return nil, 0, err
			}
		}
	}

	info, err := os.Stat(nativeAbs)
	if err != nil {
		metrics.FetchesTotal.WithLabelValues("not_found").Inc()
		return nil, 0, fmt.Errorf("%w: native artifact for %s: %v", ErrNotFound, asset, err)
	}
	version := uint64(info.ModTime().UnixMilli())
	if minVersion > version {
		metrics.FetchesTotal.WithLabelValues("not_modified").Inc()
		return nil, version, nil
	}

	f, err := os.Open(nativeAbs)
	if err != nil {
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, 0, fmt.Errorf("treasury: open native artifact %q: %w", nativeAbs, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, 0, fmt.Errorf("treasury: read native artifact %q: %w", nativeAbs, err)
	}
	metrics.FetchesTotal.WithLabelValues("ok").Inc()
	return data, version, nil
}

// reimport re-runs the importer for a stale record, falling back silently to
// the existing native artifact if the importer is missing or fails: a
// failed refresh should never make a previously working asset unfetchable.
func (t *Treasury) reimport(asset id.AssetID, rec *id.Record, sourceAbs, nativeAbs string) {
	imp, ok := t.importers.ByName(rec.Importer)
	if !ok {
		log.Logger.Warn().Str("asset", asset.String()).Str("importer", rec.Importer).Msg("importer not found, cannot refresh stale asset")
		metrics.ReimportsTotal.WithLabelValues(rec.Importer, "importer_missing").Inc()
		return
	}

	nativeTmp := nativeAbs + ".tmp"
	timer := metrics.NewTimer()
	importErr := imp.Import(sourceAbs, nativeTmp, &registryAdapter{t: t, self: asset})
	timer.ObserveDurationVec(metrics.ImportDuration, rec.Importer)
	if importErr != nil {
		log.Logger.Warn().Err(importErr).Str("asset", asset.String()).Msg("reimport failed, keeping previous native artifact")
		os.Remove(nativeTmp)
		metrics.ReimportsTotal.WithLabelValues(rec.Importer, "failed").Inc()
		return
	}
	if err := os.Rename(nativeTmp, nativeAbs); err != nil {
		log.Logger.Warn().Err(err).Str("asset", asset.String()).Msg("failed to finalize refreshed native artifact")
		metrics.ReimportsTotal.WithLabelValues(rec.Importer, "failed").Inc()
		return
	}
	metrics.ReimportsTotal.WithLabelValues(rec.Importer, "ok").Inc()

	if info, err := os.Stat(sourceAbs); err == nil {
		rec.SourceModified = info.ModTime()
	}
	rec.BuiltAt = time.Now()

	idBytes, err := asset.MarshalBinary()
	if err != nil {
		return
	}
	recJSON, err := marshalRecord(rec)
	if err != nil {
		return
	}
	_ = t.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRecords).Put(idBytes, recJSON)
	})
}

func (t *Treasury) lookupRecord(asset id.AssetID) (*id.Record, error) {
	idBytes, err := asset.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var rec *id.Record
	err = t.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketRecords).Get(idBytes)
		if raw == nil {
			return ErrNotFound
		}
		rec, err = unmarshalRecord(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// registryAdapter presents a Treasury to an in-flight importer as a
// treasuryimport.Registry, scoping sub-asset registration to the asset
// currently being imported.
type registryAdapter struct {
	t    *Treasury
	self id.AssetID
}

func (r *registryAdapter) Store(sourcePath, sourceFormat, nativeFormat string, tags []string) (treasuryimport.RegistryAssetID, error) {
	sourceAbs := sourcePath
	if !filepath.IsAbs(sourceAbs) {
		sourceAbs = filepath.Join(r.t.root, sourcePath)
	}
	self := r.self
	assetID, err := r.t.storeLocked(sourceAbs, nativeFormat, tags, &self)
	if err != nil {
		return treasuryimport.RegistryAssetID{}, err
	}
	bin, err := assetID.MarshalBinary()
	if err != nil {
		return treasuryimport.RegistryAssetID{}, err
	}
	var out treasuryimport.RegistryAssetID
	copy(out[:], bin)
	return out, nil
}

func (r *registryAdapter) Fetch(asset treasuryimport.RegistryAssetID) (string, error) {
	var assetID id.AssetID
	if err := assetID.UnmarshalBinary(asset[:]); err != nil {
		return "", err
	}
	return filepath.Join(r.t.dotDir, assetID.String()), nil
}

func joinNUL(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\x00"
		}
		out += p
	}
	return out
}

func splitNUL(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
