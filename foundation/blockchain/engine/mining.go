package engine

import (
	"context"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/chainerr"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/consensus"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
)

// MineBlock assembles the pending transactions into a new block and
// searches for a valid proof-of-work nonce, blocking until one is found
// or ctx is cancelled. A block found by a peer while this is running
// cancels the search through CancelMining, in which case MineBlock
// returns an error wrapping chainerr.ErrCancelledByShutdown whose detail
// text is ctx.Err()'s message.
func (e *Engine) MineBlock(ctx context.Context) (database.Block, error) {
	e.mu.Lock()
	tip := e.tip
	txs := e.mempool.Take(e.genesis.MaxTransactionsPerBlock)
	difficulty, err := e.nextDifficulty()
	e.mu.Unlock()

	if err != nil {
		return database.Block{}, err
	}

	root, err := database.MerkleRoot(txs)
	if err != nil {
		return database.Block{}, chainerr.New(chainerr.ErrSerializationError, err.Error())
	}

	// A block must be timestamped strictly after its parent; when the clock
	// has not yet moved past the tip's second, use the next second.
	timestamp := uint64(e.now().Unix())
	if timestamp <= tip.Header.Timestamp {
		timestamp = tip.Header.Timestamp + 1
	}

	header := database.BlockHeader{
		PreviousHash: tip.Hash(),
		MerkleRoot:   root,
		Timestamp:    timestamp,
		Height:       tip.Header.Height + 1,
		Difficulty:   difficulty,
	}

	miningCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.miningCancel = cancel
	e.miningWG.Add(1)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.miningCancel = nil
		e.mu.Unlock()
		e.miningWG.Done()
	}()

	if _, err := consensus.Mine(miningCtx, &header); err != nil {
		if miningCtx.Err() != nil {
			return database.Block{}, chainerr.New(chainerr.ErrCancelledByShutdown, err.Error())
		}
		return database.Block{}, err
	}

	block := database.Block{Header: header, Transactions: txs}

	e.mu.Lock()
	defer e.mu.Unlock()

	// The tip may have moved while we were mining; re-validate against
	// whatever is current rather than trusting the snapshot we started
	// with.
	if err := e.validateAndCommit(block); err != nil {
		return database.Block{}, err
	}

	if e.broadcaster != nil {
		e.broadcaster.BroadcastBlock(block)
	}

	return block, nil
}

// CancelMining stops an in-flight MineBlock call, if one is running, and
// waits for it to return before returning itself. Calling it when no
// mining operation is running is a no-op.
func (e *Engine) CancelMining() {
	e.mu.Lock()
	cancel := e.miningCancel
	e.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	e.miningWG.Wait()
}
