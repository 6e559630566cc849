package database

import "fmt"

// Kind tags which variant a Transaction carries. Go has no sum types, so
// the variant fields all live in one flat struct and validation
// dispatches on Kind rather than through reflection.
type Kind byte

// The four transaction variants this chain supports.
const (
	KindTransfer Kind = iota + 1
	KindStorage
	KindTokenCreate
	KindTokenTransfer
)

// String renders the kind for logs.
func (k Kind) String() string {
	switch k {
	case KindTransfer:
		return "transfer"
	case KindStorage:
		return "storage"
	case KindTokenCreate:
		return "token_create"
	case KindTokenTransfer:
		return "token_transfer"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Transaction is a tagged-variant tuple: a sender, one payload variant
// selected by Kind, a timestamp, and a reserved, unvalidated signature
// slot.
//
// Every field is always present in the canonical encoding regardless of
// Kind — inapplicable fields carry their zero value — so hashing stays
// deterministic across peers without a variable layout per Kind.
type Transaction struct {
	Sender Address
	Kind   Kind

	// Transfer, TokenTransfer
	Recipient Address
	Amount    uint64

	// Storage
	PayloadHash Hash

	// TokenCreate
	TokenName   string
	TokenSymbol string
	TotalSupply uint64

	// TokenTransfer
	TokenID Hash

	Timestamp uint64

	// Signature is reserved for a future signing scheme. It is carried
	// but never populated or validated by this node.
	Signature []byte
}

// NewTransfer constructs a Transfer transaction.
func NewTransfer(sender, recipient Address, amount, timestamp uint64) Transaction {
	return Transaction{
		Sender:    sender,
		Kind:      KindTransfer,
		Recipient: recipient,
		Amount:    amount,
		Timestamp: timestamp,
	}
}

// NewStorage constructs a Storage transaction committing to payloadHash.
func NewStorage(sender Address, payloadHash Hash, timestamp uint64) Transaction {
	return Transaction{
		Sender:      sender,
		Kind:        KindStorage,
		PayloadHash: payloadHash,
		Timestamp:   timestamp,
	}
}

// NewTokenCreate constructs a TokenCreate transaction.
func NewTokenCreate(sender Address, name, symbol string, totalSupply, timestamp uint64) Transaction {
	return Transaction{
		Sender:      sender,
		Kind:        KindTokenCreate,
		TokenName:   name,
		TokenSymbol: symbol,
		TotalSupply: totalSupply,
		Timestamp:   timestamp,
	}
}

// NewTokenTransfer constructs a TokenTransfer transaction.
func NewTokenTransfer(sender, recipient Address, tokenID Hash, amount, timestamp uint64) Transaction {
	return Transaction{
		Sender:    sender,
		Kind:      KindTokenTransfer,
		Recipient: recipient,
		TokenID:   tokenID,
		Amount:    amount,
		Timestamp: timestamp,
	}
}

// Encode writes the transaction's canonical binary form.
func (tx Transaction) Encode() []byte {
	e := newEncoder()
	e.putBytes(tx.Sender)
	e.putByte(byte(tx.Kind))
	e.putBytes(tx.Recipient)
	e.putU64(tx.Amount)
	e.putFixed(tx.PayloadHash[:])
	e.putString(tx.TokenName)
	e.putString(tx.TokenSymbol)
	e.putU64(tx.TotalSupply)
	e.putFixed(tx.TokenID[:])
	e.putU64(tx.Timestamp)
	e.putBytes(tx.Signature)
	return e.bytes()
}

// DecodeTransaction parses the canonical binary form of a Transaction.
func DecodeTransaction(data []byte) (Transaction, error) {
	d := newDecoder(data)

	var tx Transaction
	var err error

	if tx.Sender, err = d.getBytes(); err != nil {
		return Transaction{}, err
	}
	kind, err := d.getByte()
	if err != nil {
		return Transaction{}, err
	}
	tx.Kind = Kind(kind)
	if tx.Recipient, err = d.getBytes(); err != nil {
		return Transaction{}, err
	}
	if tx.Amount, err = d.getU64(); err != nil {
		return Transaction{}, err
	}
	if tx.PayloadHash, err = d.getHash(); err != nil {
		return Transaction{}, err
	}
	if tx.TokenName, err = d.getString(); err != nil {
		return Transaction{}, err
	}
	if tx.TokenSymbol, err = d.getString(); err != nil {
		return Transaction{}, err
	}
	if tx.TotalSupply, err = d.getU64(); err != nil {
		return Transaction{}, err
	}
	if tx.TokenID, err = d.getHash(); err != nil {
		return Transaction{}, err
	}
	if tx.Timestamp, err = d.getU64(); err != nil {
		return Transaction{}, err
	}
	if tx.Signature, err = d.getBytes(); err != nil {
		return Transaction{}, err
	}

	return tx, nil
}

// Hash returns the transaction's identity hash: SHA-256 of its canonical
// binary form.
func (tx Transaction) Hash() Hash {
	return HashBytes(tx.Encode())
}

// Equals reports whether two transactions are identical, the behavior the
// merkle tree's Hashable constraint requires.
func (tx Transaction) Equals(other Transaction) bool {
	return tx.Hash() == other.Hash()
}
