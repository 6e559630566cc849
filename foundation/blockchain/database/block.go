package database

// BlockHeader carries everything needed to validate and chain a block.
// The block hash is the SHA-256 of this header's canonical encoding
// alone.
//
// CORE NOTE: hashing only the header, not the whole block, keeps
// header-only verification possible for a future pruned node that drops
// old transaction bodies but keeps the header chain.
type BlockHeader struct {
	PreviousHash Hash
	MerkleRoot   Hash
	Timestamp    uint64
	Height       uint64
	Difficulty   uint32
	Nonce        uint64
}

// headerEncodedLen is the header's fixed encoded size: two 32-byte
// hashes, two u64s, one u32 and one u64.
const headerEncodedLen = HashSize + HashSize + 8 + 8 + 4 + 8

// Encode writes the header's canonical binary form.
func (h BlockHeader) Encode() []byte {
	e := newEncoder()
	e.putFixed(h.PreviousHash[:])
	e.putFixed(h.MerkleRoot[:])
	e.putU64(h.Timestamp)
	e.putU64(h.Height)
	e.putU32(h.Difficulty)
	e.putU64(h.Nonce)
	return e.bytes()
}

// DecodeBlockHeader parses the canonical binary form of a BlockHeader.
func DecodeBlockHeader(data []byte) (BlockHeader, error) {
	d := newDecoder(data)

	var h BlockHeader
	var err error

	if h.PreviousHash, err = d.getHash(); err != nil {
		return BlockHeader{}, err
	}
	if h.MerkleRoot, err = d.getHash(); err != nil {
		return BlockHeader{}, err
	}
	if h.Timestamp, err = d.getU64(); err != nil {
		return BlockHeader{}, err
	}
	if h.Height, err = d.getU64(); err != nil {
		return BlockHeader{}, err
	}
	if h.Difficulty, err = d.getU32(); err != nil {
		return BlockHeader{}, err
	}
	if h.Nonce, err = d.getU64(); err != nil {
		return BlockHeader{}, err
	}

	return h, nil
}

// Hash returns the block hash: SHA-256 over the header's canonical
// encoding.
func (h BlockHeader) Hash() Hash {
	return HashBytes(h.Encode())
}

// Block is a header plus the ordered transactions it commits to.
type Block struct {
	Header       BlockHeader
	Transactions []Transaction
}

// Hash returns the block's hash (the header hash).
func (b Block) Hash() Hash {
	return b.Header.Hash()
}

// Encode writes the block's canonical binary form: the header, followed
// by a u64 transaction count and each transaction's canonical form.
func (b Block) Encode() []byte {
	e := newEncoder()
	e.putFixed(b.Header.Encode())
	e.putU64(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		e.putBytes(tx.Encode())
	}
	return e.bytes()
}

// DecodeBlock parses the canonical binary form of a Block.
func DecodeBlock(data []byte) (Block, error) {
	d := newDecoder(data)

	headerBytes, err := d.getFixed(headerEncodedLen)
	if err != nil {
		return Block{}, err
	}
	header, err := DecodeBlockHeader(headerBytes)
	if err != nil {
		return Block{}, err
	}

	count, err := d.getU64()
	if err != nil {
		return Block{}, err
	}

	txs := make([]Transaction, 0, count)
	for i := uint64(0); i < count; i++ {
		txBytes, err := d.getBytes()
		if err != nil {
			return Block{}, err
		}
		tx, err := DecodeTransaction(txBytes)
		if err != nil {
			return Block{}, err
		}
		txs = append(txs, tx)
	}

	return Block{Header: header, Transactions: txs}, nil
}

// NewGenesisBlock constructs the height-0 block: empty transactions,
// all-zero previous hash and merkle root.
func NewGenesisBlock(timestamp uint64, difficulty uint32) Block {
	return Block{
		Header: BlockHeader{
			PreviousHash: ZeroHash,
			MerkleRoot:   ZeroHash,
			Timestamp:    timestamp,
			Height:       0,
			Difficulty:   difficulty,
			Nonce:        0,
		},
	}
}
