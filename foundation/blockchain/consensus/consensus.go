// Package consensus implements the chain's proof-of-work rule: verifying a
// block header meets its difficulty target, mining a header until it does,
// and retargeting the difficulty as blocks are produced. Difficulty is
// expressed throughout as a count of required leading zero bits in the
// block hash, not leading hex characters or a compact target encoding.
package consensus

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
)

// checkCancelEvery bounds how many nonce attempts pass between context
// cancellation checks, so mining doesn't pay a syscall-ish check cost on
// every single hash attempt.
const checkCancelEvery = 1 << 16

// VerifyPOW reports whether hash meets difficulty, i.e. carries at least
// that many leading zero bits.
func VerifyPOW(hash database.Hash, difficulty uint32) bool {
	return hash.LeadingZeroBits() >= uint(difficulty)
}

// Mine searches for a nonce that makes header's hash satisfy header's
// Difficulty, mutating header.Nonce in place. It returns the solving hash,
// or ctx.Err() if ctx is cancelled first. The starting nonce is randomized
// so two nodes racing to mine the same header don't retrace each other's
// steps.
func Mine(ctx context.Context, header *database.BlockHeader) (database.Hash, error) {
	start, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return database.Hash{}, err
	}
	header.Nonce = start.Uint64()

	var attempts uint64
	for {
		attempts++
		if attempts%checkCancelEvery == 0 {
			if err := ctx.Err(); err != nil {
				return database.Hash{}, err
			}
		}

		hash := header.Hash()
		if VerifyPOW(hash, header.Difficulty) {
			return hash, nil
		}

		header.Nonce++
	}
}
