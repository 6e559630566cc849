package engine

import (
	"fmt"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/chainerr"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/consensus"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
)

// AddBlock validates block against the current tip and, if it passes,
// commits it to the chain store, folds its transactions into the account
// projection, drops them from the mempool, and broadcasts the block. Any
// in-flight mining operation is cancelled first, since its work would be
// invalidated by the new tip.
func (e *Engine) AddBlock(block database.Block) error {
	e.CancelMining()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.validateAndCommit(block); err != nil {
		return err
	}

	if e.broadcaster != nil {
		e.broadcaster.BroadcastBlock(block)
	}

	return nil
}

// validateAndCommit performs the consensus checks and storage writes
// common to AddBlock and MineBlock, in the order the protocol requires:
// parent linkage, height succession, and Merkle commitment (all three
// via block.ValidateBlock), then proof-of-work, then difficulty, then
// timestamp. Callers must hold e.mu.
func (e *Engine) validateAndCommit(block database.Block) error {
	if err := block.ValidateBlock(e.tip); err != nil {
		return err
	}

	if !consensus.VerifyPOW(block.Hash(), block.Header.Difficulty) {
		return chainerr.New(chainerr.ErrBadPOW, block.Hash().String())
	}

	wantDifficulty, err := e.nextDifficulty()
	if err != nil {
		return err
	}
	if block.Header.Difficulty != wantDifficulty {
		return chainerr.New(chainerr.ErrWrongDifficulty, fmt.Sprintf("got %d, want %d", block.Header.Difficulty, wantDifficulty))
	}

	if err := e.validateTimestamp(block, e.tip); err != nil {
		return err
	}

	if err := e.chain.SaveBlock(block); err != nil {
		return err
	}
	e.tip = block

	e.accounts.ApplyBlock(block)

	hashes := make([]database.Hash, len(block.Transactions))
	for i, tx := range block.Transactions {
		hashes[i] = tx.Hash()
	}
	e.mempool.Remove(hashes...)

	return nil
}
