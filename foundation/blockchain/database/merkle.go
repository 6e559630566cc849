package database

import "github.com/ardanlabs/vaultchain/foundation/blockchain/merkle"

// txLeaf adapts Transaction to merkle.Hashable, whose Hash method returns a
// raw byte slice so the merkle package never has to import this one.
type txLeaf struct {
	tx Transaction
}

func (l txLeaf) Hash() []byte {
	h := l.tx.Hash()
	return h[:]
}

func (l txLeaf) Equals(other txLeaf) bool {
	return l.tx.Equals(other.tx)
}

// MerkleRoot computes the merkle root over an ordered transaction list.
// The root of an empty list is the all-zero hash.
func MerkleRoot(txs []Transaction) (Hash, error) {
	leafs := make([]txLeaf, len(txs))
	for i, tx := range txs {
		leafs[i] = txLeaf{tx: tx}
	}

	tree, err := merkle.NewTree(leafs)
	if err != nil {
		return Hash{}, err
	}

	return tree.Root(), nil
}
