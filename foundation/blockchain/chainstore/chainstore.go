// Package chainstore is the chain's persistent store: an embedded ordered
// key-value engine holding every block ever accepted, indexed by both
// hash and height, plus the current tip and chain height. It is backed
// by Badger, an embedded ordered KV engine, so a save is one atomic
// transaction regardless of how many index entries it touches.
package chainstore

import (
	"encoding/binary"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/chainerr"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
)

// Key prefixes for the single ordered keyspace Badger exposes:
// h=height->hash, b=hash->block, l=tip hash, H=chain height.
const (
	prefixHeightToHash byte = 'h'
	prefixHashToBlock  byte = 'b'
	keyTipHash              = "l"
	keyChainHeight          = "H"
)

// Store is the chain's persistent block store.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a chain store rooted at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, chainerr.New(chainerr.ErrStoreIO, fmt.Sprintf("open %s: %s", dir, err))
	}

	return &Store{db: db}, nil
}

// Close releases the store's underlying files.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return chainerr.New(chainerr.ErrStoreIO, err.Error())
	}
	return nil
}

// SaveBlock persists block, and atomically advances the height index, the
// tip hash, and the chain height record along with it.
func (s *Store) SaveBlock(block database.Block) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		hash := block.Hash()

		if err := txn.Set(blockKey(hash), block.Encode()); err != nil {
			return err
		}
		if err := txn.Set(heightKey(block.Header.Height), hash[:]); err != nil {
			return err
		}
		if err := txn.Set([]byte(keyTipHash), hash[:]); err != nil {
			return err
		}
		return txn.Set([]byte(keyChainHeight), encodeHeight(block.Header.Height))
	})
	if err != nil {
		return chainerr.New(chainerr.ErrStoreIO, err.Error())
	}

	return nil
}

// GetBlockByHash returns the block with the given hash.
func (s *Store) GetBlockByHash(hash database.Hash) (database.Block, error) {
	var block database.Block

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(hash))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			decoded, decErr := database.DecodeBlock(val)
			if decErr != nil {
				return decErr
			}
			block = decoded
			return nil
		})
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return database.Block{}, chainerr.New(chainerr.ErrNotFound, hash.String())
	case err != nil:
		return database.Block{}, chainerr.New(chainerr.ErrStoreIO, err.Error())
	}

	return block, nil
}

// GetBlockByHeight returns the block mined at height.
func (s *Store) GetBlockByHeight(height uint64) (database.Block, error) {
	hash, err := s.getHashByHeight(height)
	if err != nil {
		return database.Block{}, err
	}

	return s.GetBlockByHash(hash)
}

func (s *Store) getHashByHeight(height uint64) (database.Hash, error) {
	var hash database.Hash

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(heightKey(height))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			copy(hash[:], val)
			return nil
		})
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return database.Hash{}, chainerr.New(chainerr.ErrNotFound, fmt.Sprintf("height %d", height))
	case err != nil:
		return database.Hash{}, chainerr.New(chainerr.ErrStoreIO, err.Error())
	}

	return hash, nil
}

// TipHash returns the hash of the current chain tip, and false if the
// store holds no blocks yet.
func (s *Store) TipHash() (database.Hash, bool, error) {
	var hash database.Hash
	var found bool

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyTipHash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			copy(hash[:], val)
			return nil
		})
	})
	if err != nil {
		return database.Hash{}, false, chainerr.New(chainerr.ErrStoreIO, err.Error())
	}

	return hash, found, nil
}

// Height returns the current chain height, and false if the store holds
// no blocks yet.
func (s *Store) Height() (uint64, bool, error) {
	var height uint64
	var found bool

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyChainHeight))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			height = binary.BigEndian.Uint64(val)
			return nil
		})
	})
	if err != nil {
		return 0, false, chainerr.New(chainerr.ErrStoreIO, err.Error())
	}

	return height, found, nil
}

// HeaderAt is a consensus.HeaderLookup over this store, used to drive
// difficulty retargeting without the consensus package depending on
// Badger directly.
func (s *Store) HeaderAt(height uint64) (timestamp uint64, difficulty uint32, ok bool, err error) {
	block, err := s.GetBlockByHeight(height)
	if err != nil {
		if kind, is := chainerr.KindOf(err); is && kind == chainerr.KindNotFound {
			return 0, 0, false, nil
		}
		return 0, 0, false, err
	}

	return block.Header.Timestamp, block.Header.Difficulty, true, nil
}

func blockKey(hash database.Hash) []byte {
	key := make([]byte, 1+database.HashSize)
	key[0] = prefixHashToBlock
	copy(key[1:], hash[:])
	return key
}

func heightKey(height uint64) []byte {
	key := make([]byte, 1+8)
	key[0] = prefixHeightToHash
	binary.BigEndian.PutUint64(key[1:], height)
	return key
}

func encodeHeight(height uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], height)
	return b[:]
}
