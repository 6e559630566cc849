package consensus

import (
	"math"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/genesis"
)

// HeaderLookup fetches the header mined at height, so NextDifficulty can
// compare the start and end of a retarget window without depending on the
// chain store package directly.
type HeaderLookup func(height uint64) (timestamp uint64, difficulty uint32, ok bool, err error)

// NextDifficulty computes the difficulty the block at currentHeight+1 must
// meet, given the header just mined at currentHeight.
//
// Every AdjustmentIntervalBlocks blocks, the actual time the last window
// took is compared against the target, and the difficulty is scaled by
// that ratio, clamped to [1/MaxDifficultyChangeFactor,
// MaxDifficultyChangeFactor] and then to [MinDifficulty, MaxDifficulty].
// On every other height the difficulty simply carries forward unchanged.
func NextDifficulty(g genesis.Genesis, currentHeight uint64, lookup HeaderLookup) (uint32, error) {
	currentTimestamp, currentDifficulty, ok, err := lookup(currentHeight)
	if err != nil {
		return 0, err
	}
	if !ok {
		return g.InitialDifficulty, nil
	}

	if (currentHeight+1)%g.AdjustmentIntervalBlocks != 0 {
		return currentDifficulty, nil
	}

	var intervalStart uint64
	if currentHeight+1 >= g.AdjustmentIntervalBlocks {
		intervalStart = currentHeight + 1 - g.AdjustmentIntervalBlocks
	}

	startTimestamp, _, ok, err := lookup(intervalStart)
	if err != nil {
		return 0, err
	}
	if !ok {
		return currentDifficulty, nil
	}

	actualSecs := currentTimestamp - startTimestamp
	if currentTimestamp < startTimestamp {
		actualSecs = 0
	}

	if actualSecs == 0 {
		return clamp(currentDifficulty+1, g), nil
	}

	targetSecs := g.TargetBlockTimeSecs * g.AdjustmentIntervalBlocks

	factor := float64(targetSecs) / float64(actualSecs)
	factor = clampFactor(factor, g.MaxDifficultyChangeFactor)

	next := roundToNearest(float64(currentDifficulty) * factor)
	return clamp(next, g), nil
}

func clampFactor(factor, maxChange float64) float64 {
	switch {
	case factor > maxChange:
		return maxChange
	case factor < 1/maxChange:
		return 1 / maxChange
	default:
		return factor
	}
}

// roundToNearest rounds ties to even (banker's rounding), so independently
// implemented peers converge on the same difficulty regardless of CPU.
func roundToNearest(v float64) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(math.RoundToEven(v))
}

func clamp(d uint32, g genesis.Genesis) uint32 {
	switch {
	case d < g.MinDifficulty:
		return g.MinDifficulty
	case d > g.MaxDifficulty:
		return g.MaxDifficulty
	default:
		return d
	}
}
