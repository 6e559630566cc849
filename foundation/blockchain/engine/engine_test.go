package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/chainerr"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/consensus"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/engine"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/genesis"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()

	g := genesis.Default()
	g.InitialDifficulty = 1
	g.MinDifficulty = 1

	eng, err := engine.New(engine.Config{
		Genesis:  g,
		ChainDir: t.TempDir(),
		BlobDir:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	t.Cleanup(func() { eng.Close() })

	return eng
}

func Test_New_BootstrapsGenesis(t *testing.T) {
	eng := newTestEngine(t)

	if eng.Height() != 0 {
		t.Fatalf("Height: got %d, want 0 after bootstrap", eng.Height())
	}
	if eng.Tip().Header.Height != 0 {
		t.Fatal("Tip: expected the genesis block at height 0")
	}
}

func Test_MineBlock_MinesOneBlock(t *testing.T) {
	eng := newTestEngine(t)

	sender, _ := database.AddressFromHex("aa")
	recipient, _ := database.AddressFromHex("bb")
	tx := database.NewTransfer(sender, recipient, 10, uint64(time.Now().Unix()))

	if err := eng.SubmitTransaction(tx); err != nil {
		t.Fatalf("SubmitTransaction: unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	block, err := eng.MineBlock(ctx)
	if err != nil {
		t.Fatalf("MineBlock: unexpected error: %v", err)
	}

	if block.Header.Height != 1 {
		t.Fatalf("MineBlock: got height %d, want 1", block.Header.Height)
	}
	if len(block.Transactions) != 1 {
		t.Fatalf("MineBlock: got %d transactions, want 1", len(block.Transactions))
	}
	if eng.Height() != 1 {
		t.Fatalf("Height after mining: got %d, want 1", eng.Height())
	}
	if eng.Tip().Hash() != block.Hash() {
		t.Fatal("Tip after mining: does not match the mined block")
	}

	got, err := eng.GetBlockByHeight(1)
	if err != nil {
		t.Fatalf("GetBlockByHeight: unexpected error: %v", err)
	}
	if got.Hash() != block.Hash() {
		t.Fatal("GetBlockByHeight: returned a different block than was mined")
	}
}

func Test_MineBlock_WithNoTransactionsStillMines(t *testing.T) {
	eng := newTestEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	block, err := eng.MineBlock(ctx)
	if err != nil {
		t.Fatalf("MineBlock: unexpected error: %v", err)
	}
	if len(block.Transactions) != 0 {
		t.Fatalf("MineBlock: got %d transactions, want 0", len(block.Transactions))
	}
	if eng.Height() != 1 {
		t.Fatalf("Height: got %d, want 1", eng.Height())
	}
}

func Test_AddBlock_RejectsWrongParent(t *testing.T) {
	eng := newTestEngine(t)

	bogus := database.NewGenesisBlock(uint64(time.Now().Unix()), 1)
	bogus.Header.Height = 1
	bogus.Header.PreviousHash = database.HashBytes([]byte("not the real tip"))

	err := eng.AddBlock(bogus)
	if err == nil {
		t.Fatal("AddBlock: expected an error for a block that does not extend the tip")
	}
	if kind, ok := chainerr.KindOf(err); !ok || kind != chainerr.KindWrongParent {
		t.Fatalf("AddBlock: got kind %v (ok=%v), want KindWrongParent", kind, ok)
	}
}

func Test_AddBlock_RejectsBadPOW(t *testing.T) {
	// A high initial difficulty so an unmined nonce has a negligible
	// chance of accidentally satisfying it, keeping this test deterministic.
	g := genesis.Default()
	g.InitialDifficulty = 20
	g.MinDifficulty = 1

	eng, err := engine.New(engine.Config{
		Genesis:  g,
		ChainDir: t.TempDir(),
		BlobDir:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	defer eng.Close()

	tip := eng.Tip()

	block := database.Block{
		Header: database.BlockHeader{
			PreviousHash: tip.Hash(),
			MerkleRoot:   database.ZeroHash,
			Timestamp:    uint64(time.Now().Unix()),
			Height:       tip.Header.Height + 1,
			Difficulty:   20, // the genesis difficulty the next block must meet
			Nonce:        0,  // all but certain not to satisfy 20 leading zero bits
		},
	}

	err = eng.AddBlock(block)
	if err == nil {
		t.Fatal("AddBlock: expected an error for a block that fails its proof-of-work")
	}
	if !errors.Is(err, chainerr.ErrBadPOW) {
		t.Fatalf("AddBlock: got error %v, want chainerr.ErrBadPOW", err)
	}
}

func Test_AddBlock_RejectsBadTimestampAtHeightOne(t *testing.T) {
	eng := newTestEngine(t)
	tip := eng.Tip()

	root, err := database.MerkleRoot(nil)
	if err != nil {
		t.Fatalf("MerkleRoot: unexpected error: %v", err)
	}

	header := database.BlockHeader{
		PreviousHash: tip.Hash(),
		MerkleRoot:   root,
		Timestamp:    tip.Header.Timestamp, // not strictly after the parent
		Height:       tip.Header.Height + 1,
		Difficulty:   1,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := consensus.Mine(ctx, &header); err != nil {
		t.Fatalf("Mine: unexpected error: %v", err)
	}

	err = eng.AddBlock(database.Block{Header: header})
	if err == nil {
		t.Fatal("AddBlock: expected an error for a height-1 block not timestamped after genesis")
	}
	if kind, ok := chainerr.KindOf(err); !ok || kind != chainerr.KindBadTimestamp {
		t.Fatalf("AddBlock: got kind %v (ok=%v), want KindBadTimestamp", kind, ok)
	}
}

func Test_AddBlock_ReportsFirstViolationWhenMultipleFail(t *testing.T) {
	eng := newTestEngine(t)

	// Wrong parent and a timestamp far in the future: the protocol checks
	// parent linkage first, so WrongParent must win over BadTimestamp.
	bogus := database.Block{
		Header: database.BlockHeader{
			PreviousHash: database.HashBytes([]byte("not the real tip")),
			MerkleRoot:   database.ZeroHash,
			Timestamp:    uint64(time.Now().Unix()) + 1_000_000,
			Height:       1,
			Difficulty:   1,
		},
	}

	err := eng.AddBlock(bogus)
	if err == nil {
		t.Fatal("AddBlock: expected an error")
	}
	if kind, ok := chainerr.KindOf(err); !ok || kind != chainerr.KindWrongParent {
		t.Fatalf("AddBlock: got kind %v (ok=%v), want KindWrongParent (checked before timestamp)", kind, ok)
	}
}

func Test_StoreAndRetrieveOffchainData(t *testing.T) {
	eng := newTestEngine(t)

	payload := []byte("this data lives outside any block")

	hash, err := eng.StoreOffchainData(payload)
	if err != nil {
		t.Fatalf("StoreOffchainData: unexpected error: %v", err)
	}

	got, err := eng.GetOffchainData(hash)
	if err != nil {
		t.Fatalf("GetOffchainData: unexpected error: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("GetOffchainData: got %q, want %q", got, payload)
	}
}

func Test_SubmitTransaction_RejectsDuplicate(t *testing.T) {
	eng := newTestEngine(t)

	sender, _ := database.AddressFromHex("aa")
	recipient, _ := database.AddressFromHex("bb")
	tx := database.NewTransfer(sender, recipient, 1, uint64(time.Now().Unix()))

	if err := eng.SubmitTransaction(tx); err != nil {
		t.Fatalf("SubmitTransaction: unexpected error: %v", err)
	}
	if err := eng.SubmitTransaction(tx); !errors.Is(err, chainerr.ErrDuplicateTx) {
		t.Fatalf("SubmitTransaction: got error %v on resubmission, want chainerr.ErrDuplicateTx", err)
	}
}
