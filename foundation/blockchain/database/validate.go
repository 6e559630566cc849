package database

import (
	"fmt"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/chainerr"
)

// ValidateBlock checks block against the chain's structural consensus
// invariants given the chain's current tip: parent linkage, height
// succession, and the Merkle commitment over its transactions, in that
// order — the sequence the engine's full validation pass relies on to
// report the first rule a block actually violates. Proof-of-work,
// difficulty, and timestamp are checked afterward by the caller, since
// the first needs the consensus package (which already depends on
// database) and the latter two only make sense once PoW has confirmed
// the block was honestly mined.
func (b Block) ValidateBlock(tip Block) error {
	if b.Header.PreviousHash != tip.Hash() {
		return chainerr.New(chainerr.ErrWrongParent, fmt.Sprintf("got %s, want %s", b.Header.PreviousHash, tip.Hash()))
	}

	wantHeight := tip.Header.Height + 1
	if b.Header.Height != wantHeight {
		return chainerr.New(chainerr.ErrWrongHeight, fmt.Sprintf("got %d, want %d", b.Header.Height, wantHeight))
	}

	root, err := MerkleRoot(b.Transactions)
	if err != nil {
		return chainerr.New(chainerr.ErrSerializationError, err.Error())
	}
	if root != b.Header.MerkleRoot {
		return chainerr.New(chainerr.ErrBadMerkle, fmt.Sprintf("got %s, want %s", b.Header.MerkleRoot, root))
	}

	return nil
}
