package engine

import "github.com/ardanlabs/vaultchain/foundation/blockchain/database"

// SubmitTransaction validates tx for mempool admission and, if accepted,
// broadcasts it to the network. Resubmitting a transaction already
// pending fails with chainerr.ErrDuplicateTx.
func (e *Engine) SubmitTransaction(tx database.Transaction) error {
	e.mu.Lock()
	_, err := e.mempool.Add(tx)
	e.mu.Unlock()

	if err != nil {
		return err
	}

	if e.broadcaster != nil {
		e.broadcaster.BroadcastTransaction(tx)
	}

	return nil
}

// AcceptGossipedTransaction is the gossip handler's entry point for a
// transaction received from a peer: identical to SubmitTransaction except
// it never re-broadcasts, since the peer that sent it will also be
// telling everyone else.
func (e *Engine) AcceptGossipedTransaction(tx database.Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.mempool.Add(tx)
	return err
}
