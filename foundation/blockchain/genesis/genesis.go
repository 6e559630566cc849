// Package genesis maintains access to the chain's genesis configuration:
// the fixed parameters every node on the same chain must agree on before
// a single block is mined.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
)

// Genesis carries the chain-wide constants a node is configured with.
// Every field here is agreed-upon at chain creation and never changes.
type Genesis struct {
	ChainID uint16 `json:"chain_id"` // Unique id for this running chain.

	// InitialDifficulty is the leading-zero-bit target height-1 blocks
	// must meet before any retarget has taken place.
	InitialDifficulty uint32 `json:"initial_difficulty"`

	// MinDifficulty and MaxDifficulty bound every retarget result.
	MinDifficulty uint32 `json:"min_difficulty"`
	MaxDifficulty uint32 `json:"max_difficulty"`

	// TargetBlockTimeSecs is the desired average seconds between blocks.
	TargetBlockTimeSecs uint64 `json:"target_block_time_secs"`

	// AdjustmentIntervalBlocks is how many blocks make up one retarget
	// window; the difficulty is recalculated once per window.
	AdjustmentIntervalBlocks uint64 `json:"adjustment_interval_blocks"`

	// MaxDifficultyChangeFactor bounds how far a single retarget may move
	// the difficulty, in either direction.
	MaxDifficultyChangeFactor float64 `json:"max_difficulty_change_factor"`

	// MaxClockSkewSecs is how far into the future a block's timestamp may
	// sit relative to the local clock before it is rejected.
	MaxClockSkewSecs uint64 `json:"max_clock_skew_secs"`

	// MempoolCapacity is how many pending transactions the mempool holds
	// before it starts rejecting new submissions.
	MempoolCapacity int `json:"mempool_capacity"`

	// MaxTransactionsPerBlock bounds how many transactions a single mined
	// block may include.
	MaxTransactionsPerBlock int `json:"max_transactions_per_block"`
}

// Default returns the parameter set a fresh dev chain is bootstrapped
// with.
func Default() Genesis {
	return Genesis{
		ChainID:                   1,
		InitialDifficulty:         4,
		MinDifficulty:             4,
		MaxDifficulty:             60,
		TargetBlockTimeSecs:       600,
		AdjustmentIntervalBlocks:  20,
		MaxDifficultyChangeFactor: 4.0,
		MaxClockSkewSecs:          120,
		MempoolCapacity:           5000,
		MaxTransactionsPerBlock:   2000,
	}
}

// Load reads a genesis configuration from path, falling back to Default
// when path is empty.
func Load(path string) (Genesis, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("genesis: read %s: %w", path, err)
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("genesis: parse %s: %w", path, err)
	}

	return genesis, nil
}
