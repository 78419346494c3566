// storage package keeps the artifacts of the note selector that outlive a
// request in a prefixed key-value store. The following prefixes are used:
//   - 'd/' for anonymity set distributions, by chain and pool scope
//   - 's/' for selection reports, by selection ID
//
// Artifacts are CBOR encoded with the core deterministic options.
package storage

import (
	"errors"
	"sync"

	"go.vocdoni.io/dvote/db"
)

var (
	// Prefixes for the keys in the database.
	distributionPrefix = []byte("d/")
	selectionPrefix    = []byte("s/")
)

// ErrNotFound is returned when the requested artifact is not stored.
var ErrNotFound = errors.New("not found")

// Storage wraps the database with the methods to store and retrieve the
// note selector artifacts.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
}

// New creates a new Storage instance.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// Close closes the storage.
func (s *Storage) Close() {
	s.db.Close()
}
