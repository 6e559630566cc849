// Package mempool holds transactions that have been submitted but not yet
// mined into a block. It rejects new submissions once full rather than
// evicting the oldest pending transaction — a deliberate choice to
// never silently drop a transaction a caller believed was accepted.
package mempool

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/chainerr"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
)

// Mempool is a bounded, deduplicated, FIFO-ordered buffer of pending
// transactions.
type Mempool struct {
	mu       sync.RWMutex
	capacity int
	order    *list.List
	index    map[database.Hash]*list.Element
}

// New constructs an empty mempool that holds at most capacity
// transactions.
func New(capacity int) *Mempool {
	return &Mempool{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[database.Hash]*list.Element),
	}
}

// Add inserts tx into the pool. It returns chainerr.ErrDuplicateTx when tx
// is already pending, and chainerr.ErrMempoolFull when the pool is at
// capacity and tx is new.
func (mp *Mempool) Add(tx database.Transaction) (bool, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	hash := tx.Hash()
	if _, exists := mp.index[hash]; exists {
		return false, chainerr.New(chainerr.ErrDuplicateTx, hash.String())
	}

	if mp.order.Len() >= mp.capacity {
		return false, chainerr.New(chainerr.ErrMempoolFull, fmt.Sprintf("capacity %d", mp.capacity))
	}

	elem := mp.order.PushBack(tx)
	mp.index[hash] = elem

	return true, nil
}

// Remove drops the transactions identified by hashes from the pool, used
// once they have been committed in a mined block.
func (mp *Mempool) Remove(hashes ...database.Hash) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for _, h := range hashes {
		if elem, ok := mp.index[h]; ok {
			mp.order.Remove(elem)
			delete(mp.index, h)
		}
	}
}

// Count reports how many transactions are currently pending.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.order.Len()
}

// Contains reports whether hash is currently pending.
func (mp *Mempool) Contains(hash database.Hash) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, ok := mp.index[hash]
	return ok
}

// Take returns up to max of the oldest pending transactions, in arrival
// order, without removing them from the pool.
func (mp *Mempool) Take(max int) []database.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if max < 0 || max > mp.order.Len() {
		max = mp.order.Len()
	}

	txs := make([]database.Transaction, 0, max)
	for elem := mp.order.Front(); elem != nil && len(txs) < max; elem = elem.Next() {
		txs = append(txs, elem.Value.(database.Transaction))
	}

	return txs
}
