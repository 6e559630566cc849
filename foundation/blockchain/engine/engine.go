// Package engine is the chain engine: the single owner of the chain
// store, blob store, mempool and account projection, and the only piece
// of this node allowed to mutate the chain. Every state-changing
// operation — submitting a transaction, accepting a gossiped block,
// mining a new one — serializes through one mutex; pure reads may
// bypass it once a snapshot of the tip is taken.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/accounts"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/blobstore"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/chainerr"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/chainstore"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/consensus"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/mempool"
)

// Broadcaster is how the engine announces newly accepted work to the
// rest of the network, implemented by the gossip package.
type Broadcaster interface {
	BroadcastTransaction(tx database.Transaction)
	BroadcastBlock(block database.Block)
}

// Config carries everything Engine needs to start.
type Config struct {
	Genesis     genesis.Genesis
	ChainDir    string
	BlobDir     string
	Broadcaster Broadcaster
	Log         *zap.SugaredLogger

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Engine is the chain engine.
type Engine struct {
	log         *zap.SugaredLogger
	genesis     genesis.Genesis
	broadcaster Broadcaster
	now         func() time.Time

	chain    *chainstore.Store
	blobs    *blobstore.Store
	mempool  *mempool.Mempool
	accounts *accounts.Ledger

	mu  sync.Mutex
	tip database.Block

	miningCancel context.CancelFunc
	miningWG     sync.WaitGroup
}

// New opens an engine rooted at cfg.ChainDir/cfg.BlobDir, bootstrapping
// the genesis block on an empty store and replaying every existing block
// into the account projection.
func New(cfg Config) (*Engine, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	chain, err := chainstore.Open(cfg.ChainDir)
	if err != nil {
		return nil, err
	}

	blobs, err := blobstore.Open(cfg.BlobDir)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		log:         cfg.Log,
		genesis:     cfg.Genesis,
		broadcaster: cfg.Broadcaster,
		now:         cfg.Now,
		chain:       chain,
		blobs:       blobs,
		mempool:     mempool.New(cfg.Genesis.MempoolCapacity),
		accounts:    accounts.New(),
	}

	if err := e.bootstrap(); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Engine) bootstrap() error {
	height, found, err := e.chain.Height()
	if err != nil {
		return err
	}

	if !found {
		genesisBlock := database.NewGenesisBlock(uint64(e.now().Unix()), e.genesis.InitialDifficulty)
		if err := e.chain.SaveBlock(genesisBlock); err != nil {
			return err
		}
		e.tip = genesisBlock
		return nil
	}

	tip, err := e.chain.GetBlockByHeight(height)
	if err != nil {
		return err
	}
	e.tip = tip

	for h := uint64(1); h <= height; h++ {
		block, err := e.chain.GetBlockByHeight(h)
		if err != nil {
			return err
		}
		e.accounts.ApplyBlock(block)
	}

	return nil
}

// Close releases the engine's stores. It does not stop an in-flight
// mining operation; call CancelMining first if one may be running.
func (e *Engine) Close() error {
	return e.chain.Close()
}

// SetBroadcaster wires the engine's outbound broadcaster after
// construction, for callers that need the engine to exist first in
// order to build the broadcaster itself (the gossip transport's
// Handler closes over the engine).
func (e *Engine) SetBroadcaster(broadcaster Broadcaster) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.broadcaster = broadcaster
}

// Tip returns a copy of the current chain tip.
func (e *Engine) Tip() database.Block {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tip
}

// Height returns the current chain height.
func (e *Engine) Height() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tip.Header.Height
}

// Accounts exposes the read-only balance/token projection for the RPC
// facade.
func (e *Engine) Accounts() *accounts.Ledger {
	return e.accounts
}

// GetBlockByHash returns the block with the given hash.
func (e *Engine) GetBlockByHash(hash database.Hash) (database.Block, error) {
	return e.chain.GetBlockByHash(hash)
}

// GetBlockByHeight returns the block mined at height.
func (e *Engine) GetBlockByHeight(height uint64) (database.Block, error) {
	return e.chain.GetBlockByHeight(height)
}

// GetOffchainData returns the payload committed to by a Storage
// transaction's PayloadHash.
func (e *Engine) GetOffchainData(hash database.Hash) ([]byte, error) {
	return e.blobs.Get(hash)
}

// StoreOffchainData persists payload and returns its content hash, for
// use building a Storage transaction.
func (e *Engine) StoreOffchainData(payload []byte) (database.Hash, error) {
	return e.blobs.Put(payload)
}

// nextDifficulty computes the difficulty the block after the current tip
// must meet.
func (e *Engine) nextDifficulty() (uint32, error) {
	return consensus.NextDifficulty(e.genesis, e.tip.Header.Height, e.chain.HeaderAt)
}

// validateTimestamp checks a candidate block's timestamp against its
// parent's and against the local clock: it must fall strictly after the
// parent's timestamp, and no more than MaxClockSkewSecs ahead of now.
func (e *Engine) validateTimestamp(block database.Block, parent database.Block) error {
	if block.Header.Height > 0 && block.Header.Timestamp <= parent.Header.Timestamp {
		return chainerr.New(chainerr.ErrBadTimestamp, fmt.Sprintf("timestamp %d not after parent %d", block.Header.Timestamp, parent.Header.Timestamp))
	}

	now := uint64(e.now().Unix())
	if block.Header.Timestamp > now+e.genesis.MaxClockSkewSecs {
		return chainerr.New(chainerr.ErrBadTimestamp, fmt.Sprintf("timestamp %d too far in the future (now %d)", block.Header.Timestamp, now))
	}

	return nil
}
