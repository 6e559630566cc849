// Package blobstore is the content-addressed store for the payloads a
// storage transaction commits off-chain. Each blob is named by the hex
// of its SHA-256 hash, so storing the same payload twice is a cheap
// no-op and retrieval needs no separate index.
package blobstore

import (
	"os"
	"path/filepath"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/chainerr"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
)

// Store persists payloads to a directory on disk, one file per hash.
type Store struct {
	dir string
}

// Open prepares a blob store rooted at dir, creating it if missing.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, chainerr.New(chainerr.ErrStoreIO, err.Error())
	}

	return &Store{dir: dir}, nil
}

// Put writes payload and returns its hash. Writing the same payload twice
// is a no-op the second time: the destination file already carries the
// same content by construction.
func (s *Store) Put(payload []byte) (database.Hash, error) {
	hash := database.HashBytes(payload)
	dest := s.path(hash)

	if _, err := os.Stat(dest); err == nil {
		return hash, nil
	}

	tmp, err := os.CreateTemp(s.dir, "blob-*.tmp")
	if err != nil {
		return database.Hash{}, chainerr.New(chainerr.ErrStoreIO, err.Error())
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return database.Hash{}, chainerr.New(chainerr.ErrStoreIO, err.Error())
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return database.Hash{}, chainerr.New(chainerr.ErrStoreIO, err.Error())
	}

	// Renaming into place makes the write atomic: a reader never observes
	// a partially written blob at the content-addressed path.
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return database.Hash{}, chainerr.New(chainerr.ErrStoreIO, err.Error())
	}

	return hash, nil
}

// Get returns the payload stored under hash.
func (s *Store) Get(hash database.Hash) ([]byte, error) {
	data, err := os.ReadFile(s.path(hash))
	if os.IsNotExist(err) {
		return nil, chainerr.New(chainerr.ErrNotFound, hash.String())
	}
	if err != nil {
		return nil, chainerr.New(chainerr.ErrStoreIO, err.Error())
	}

	return data, nil
}

// Has reports whether a payload is already stored under hash.
func (s *Store) Has(hash database.Hash) bool {
	_, err := os.Stat(s.path(hash))
	return err == nil
}

func (s *Store) path(hash database.Hash) string {
	return filepath.Join(s.dir, hash.String())
}
