package consensus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/consensus"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/genesis"
)

func Test_VerifyPOW(t *testing.T) {
	tt := []struct {
		name       string
		hash       database.Hash
		difficulty uint32
		want       bool
	}{
		{name: "meets target", hash: database.Hash{0x00, 0xff}, difficulty: 8, want: true},
		{name: "exceeds target", hash: database.Hash{0x00, 0x00, 0xff}, difficulty: 8, want: true},
		{name: "misses target", hash: database.Hash{0x80}, difficulty: 8, want: false},
		{name: "zero difficulty always passes", hash: database.Hash{0xff}, difficulty: 0, want: true},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			if got := consensus.VerifyPOW(tst.hash, tst.difficulty); got != tst.want {
				t.Fatalf("VerifyPOW: got %v, want %v", got, tst.want)
			}
		})
	}
}

func Test_Mine_ProducesValidPOW(t *testing.T) {
	header := &database.BlockHeader{
		PreviousHash: database.ZeroHash,
		MerkleRoot:   database.ZeroHash,
		Timestamp:    1000,
		Height:       1,
		Difficulty:   8,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hash, err := consensus.Mine(ctx, header)
	if err != nil {
		t.Fatalf("Mine: unexpected error: %v", err)
	}

	if !consensus.VerifyPOW(hash, header.Difficulty) {
		t.Fatal("Mine: returned hash does not meet the header's difficulty")
	}
	if header.Hash() != hash {
		t.Fatal("Mine: returned hash does not match the mutated header's hash")
	}
}

func Test_Mine_RespectsCancellation(t *testing.T) {
	header := &database.BlockHeader{
		PreviousHash: database.ZeroHash,
		MerkleRoot:   database.ZeroHash,
		Timestamp:    1000,
		Height:       1,
		Difficulty:   255, // unreachable in any reasonable time
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := consensus.Mine(ctx, header); err == nil {
		t.Fatal("Mine: expected an error from an already-cancelled context")
	}
}

func Test_NextDifficulty_NoHistoryUsesInitial(t *testing.T) {
	g := genesis.Default()

	lookup := func(height uint64) (uint64, uint32, bool, error) {
		return 0, 0, false, nil
	}

	got, err := consensus.NextDifficulty(g, 0, lookup)
	if err != nil {
		t.Fatalf("NextDifficulty: unexpected error: %v", err)
	}
	if got != g.InitialDifficulty {
		t.Fatalf("got %d, want %d", got, g.InitialDifficulty)
	}
}

func Test_NextDifficulty_OffWindowCarriesForward(t *testing.T) {
	g := genesis.Default()
	g.AdjustmentIntervalBlocks = 10

	lookup := func(height uint64) (uint64, uint32, bool, error) {
		return 1000, 12, true, nil
	}

	// currentHeight+1 == 5, not a multiple of the 10-block window.
	got, err := consensus.NextDifficulty(g, 4, lookup)
	if err != nil {
		t.Fatalf("NextDifficulty: unexpected error: %v", err)
	}
	if got != 12 {
		t.Fatalf("got %d, want unchanged difficulty 12", got)
	}
}

func Test_NextDifficulty_FasterThanTargetIncreases(t *testing.T) {
	g := genesis.Default()
	g.AdjustmentIntervalBlocks = 10
	g.TargetBlockTimeSecs = 60
	g.MaxDifficultyChangeFactor = 4.0
	g.MinDifficulty = 1
	g.MaxDifficulty = 1000

	// Window of 10 blocks took 300s against a 600s target: blocks came in
	// twice as fast as intended, so difficulty should roughly double.
	lookup := func(height uint64) (uint64, uint32, bool, error) {
		switch height {
		case 19:
			return 300, 10, true, nil
		case 10:
			return 0, 10, true, nil
		default:
			return 0, 0, false, nil
		}
	}

	got, err := consensus.NextDifficulty(g, 19, lookup)
	if err != nil {
		t.Fatalf("NextDifficulty: unexpected error: %v", err)
	}
	if got <= 10 {
		t.Fatalf("got %d, want an increase over the prior difficulty 10", got)
	}
}

func Test_NextDifficulty_SlowerThanTargetDecreases(t *testing.T) {
	g := genesis.Default()
	g.AdjustmentIntervalBlocks = 10
	g.TargetBlockTimeSecs = 60
	g.MaxDifficultyChangeFactor = 4.0
	g.MinDifficulty = 1
	g.MaxDifficulty = 1000

	// Window took 2400s against a 600s target: four times too slow.
	lookup := func(height uint64) (uint64, uint32, bool, error) {
		switch height {
		case 19:
			return 2400, 20, true, nil
		case 10:
			return 0, 20, true, nil
		default:
			return 0, 0, false, nil
		}
	}

	got, err := consensus.NextDifficulty(g, 19, lookup)
	if err != nil {
		t.Fatalf("NextDifficulty: unexpected error: %v", err)
	}
	if got >= 20 {
		t.Fatalf("got %d, want a decrease from the prior difficulty 20", got)
	}
}

func Test_NextDifficulty_WindowReachingGenesisIsRetargeted(t *testing.T) {
	g := genesis.Default()
	g.AdjustmentIntervalBlocks = 4
	g.TargetBlockTimeSecs = 6
	g.MaxDifficultyChangeFactor = 4.0
	g.MinDifficulty = 1
	g.MaxDifficulty = 1000

	// Genesis at height 0 timestamped 10, blocks 1-3 timestamped 11,12,13:
	// a 4-block window completed in 3s against a 24s target, an 8x speedup
	// clamped to the max 4x factor.
	lookup := func(height uint64) (uint64, uint32, bool, error) {
		switch height {
		case 3:
			return 13, 10, true, nil
		case 0:
			return 10, 10, true, nil
		default:
			return 0, 0, false, nil
		}
	}

	got, err := consensus.NextDifficulty(g, 3, lookup)
	if err != nil {
		t.Fatalf("NextDifficulty: unexpected error: %v", err)
	}
	if want := uint32(40); got != want {
		t.Fatalf("got %d, want %d (difficulty 10 scaled by the clamped 4x factor)", got, want)
	}
}

func Test_NextDifficulty_ClampedToBounds(t *testing.T) {
	g := genesis.Default()
	g.AdjustmentIntervalBlocks = 10
	g.TargetBlockTimeSecs = 600
	g.MaxDifficultyChangeFactor = 4.0
	g.MinDifficulty = 4
	g.MaxDifficulty = 20

	// Absurdly fast window would compute a difficulty far past MaxDifficulty.
	lookup := func(height uint64) (uint64, uint32, bool, error) {
		switch height {
		case 19:
			return 1, 18, true, nil
		case 10:
			return 0, 18, true, nil
		default:
			return 0, 0, false, nil
		}
	}

	got, err := consensus.NextDifficulty(g, 19, lookup)
	if err != nil {
		t.Fatalf("NextDifficulty: unexpected error: %v", err)
	}
	if got > g.MaxDifficulty {
		t.Fatalf("got %d, want no more than MaxDifficulty %d", got, g.MaxDifficulty)
	}
}
