/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package pow

import (
	"math/big"

	"gitlab.com/jaxnet/chainsim/types/chainhash"
)

// MaxDifficulty is the number of hex characters in a digest. No hash can have
// more leading zero characters than that.
const MaxDifficulty = chainhash.MaxHashStringSize

// HasLeadingZeros reports whether the hex rendering of hash starts with
// difficulty '0' characters. A difficulty of zero (or below) accepts every hash.
func HasLeadingZeros(hash *chainhash.Hash, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if difficulty > MaxDifficulty {
		return false
	}

	// Every byte renders as two hex characters, high nibble first.
	full := difficulty / 2
	for i := 0; i < full; i++ {
		if hash[i] != 0 {
			return false
		}
	}
	if difficulty%2 == 1 && hash[full]>>4 != 0 {
		return false
	}
	return true
}

// ExpectedAttempts is the mean number of digests a miner has to compute to
// satisfy difficulty, 16^difficulty.
func ExpectedAttempts(difficulty int) *big.Int {
	if difficulty <= 0 {
		return big.NewInt(1)
	}
	return new(big.Int).Lsh(big.NewInt(1), uint(4*difficulty))
}
