package treasury

import "errors"

// ErrNotFound is returned by Fetch and FetchUpdated when no record exists
// for the given asset id.
var ErrNotFound = errors.New("treasury: asset not found")

// ErrImporterNotFound is returned by Store when no importer is registered
// under the requested name.
var ErrImporterNotFound = errors.New("treasury: importer not found")

// ErrAlreadyExists is returned by New when called without overwrite against
// a root that already holds a treasury.
var ErrAlreadyExists = errors.New("treasury: root already initialized")
