// Package accounts maintains a read-only projection of account and token
// balances derived from mined blocks. Per-transaction balance validation
// is explicitly out of scope for this node, so this projection never
// rejects a transaction for insufficient balance — it only tallies
// effects so RPC queries (list_tokens, get_balance, get_token_balance)
// have something to read.
package accounts

import (
	"sync"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
)

// Token is the read-side view of a created token.
type Token struct {
	ID          database.Hash
	Name        string
	Symbol      string
	TotalSupply uint64
	Creator     database.Address
}

// Ledger is an in-memory tally of balances and tokens, rebuilt by
// replaying the chain store at startup and kept current as blocks are
// accepted thereafter.
type Ledger struct {
	mu       sync.RWMutex
	balances map[string]uint64
	tokens   map[database.Hash]Token
	// tokenBalances is keyed by tokenID, then holder address.
	tokenBalances map[database.Hash]map[string]uint64
}

// New constructs an empty ledger.
func New() *Ledger {
	return &Ledger{
		balances:      make(map[string]uint64),
		tokens:        make(map[database.Hash]Token),
		tokenBalances: make(map[database.Hash]map[string]uint64),
	}
}

// ApplyBlock folds every transaction in block into the ledger, in order.
func (l *Ledger) ApplyBlock(block database.Block) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, tx := range block.Transactions {
		l.apply(tx)
	}
}

func (l *Ledger) apply(tx database.Transaction) {
	switch tx.Kind {
	case database.KindTransfer:
		l.balances[tx.Sender.String()] -= tx.Amount
		l.balances[tx.Recipient.String()] += tx.Amount

	case database.KindTokenCreate:
		id := tx.Hash()
		l.tokens[id] = Token{
			ID:          id,
			Name:        tx.TokenName,
			Symbol:      tx.TokenSymbol,
			TotalSupply: tx.TotalSupply,
			Creator:     tx.Sender,
		}
		l.creditToken(id, tx.Sender, tx.TotalSupply)

	case database.KindTokenTransfer:
		l.debitToken(tx.TokenID, tx.Sender, tx.Amount)
		l.creditToken(tx.TokenID, tx.Recipient, tx.Amount)

	case database.KindStorage:
		// Storage transactions move no balance.
	}
}

func (l *Ledger) creditToken(id database.Hash, addr database.Address, amount uint64) {
	bal, ok := l.tokenBalances[id]
	if !ok {
		bal = make(map[string]uint64)
		l.tokenBalances[id] = bal
	}
	bal[addr.String()] += amount
}

func (l *Ledger) debitToken(id database.Hash, addr database.Address, amount uint64) {
	if bal, ok := l.tokenBalances[id]; ok {
		bal[addr.String()] -= amount
	}
}

// Balance returns addr's tallied native balance.
func (l *Ledger) Balance(addr database.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.balances[addr.String()]
}

// TokenBalance returns addr's tallied balance of token id.
func (l *Ledger) TokenBalance(id database.Hash, addr database.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.tokenBalances[id][addr.String()]
}

// Tokens returns every token created so far, order unspecified.
func (l *Ledger) Tokens() []Token {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tokens := make([]Token, 0, len(l.tokens))
	for _, t := range l.tokens {
		tokens = append(tokens, t)
	}
	return tokens
}

// Token looks up a single token by id.
func (l *Ledger) Token(id database.Hash) (Token, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, ok := l.tokens[id]
	return t, ok
}
