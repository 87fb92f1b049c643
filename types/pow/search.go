/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package pow

import (
	"context"

	"github.com/pkg/errors"
	"gitlab.com/jaxnet/chainsim/types/chainhash"
)

// checkInterval is how many digests are computed between two looks at the
// context. Polling on every attempt would dominate the cost of a cheap hash.
const checkInterval = 1 << 12

// ErrSearchExhausted is returned when a bounded search ran out of attempts
// before it found a digest with the required prefix.
var ErrSearchExhausted = errors.New("proof-of-work search exhausted its attempt budget")

// HashFunc computes the digest a candidate nonce produces.
type HashFunc func(nonce uint64) chainhash.Hash

// Solution is the outcome of a successful search.
type Solution struct {
	Nonce    uint64
	Hash     chainhash.Hash
	Attempts uint64
}

// Search tries nonces start, start+1, ... until hashFn yields a digest with
// difficulty leading zero hex characters.
//
// maxAttempts of zero means the search is unbounded. The context is polled
// every few thousand attempts; pass context.Background() for the plain
// non-cancellable behaviour. When the search stops early the returned Solution
// carries the next untried nonce and the number of attempts made, so a caller
// can resume from there.
func Search(ctx context.Context, start uint64, difficulty int, maxAttempts uint64, hashFn HashFunc) (Solution, error) {
	if difficulty > MaxDifficulty {
		return Solution{Nonce: start}, errors.Errorf("difficulty %d exceeds the digest width of %d", difficulty, MaxDifficulty)
	}

	sol := Solution{Nonce: start}
	for {
		if maxAttempts != 0 && sol.Attempts >= maxAttempts {
			return sol, ErrSearchExhausted
		}

		if sol.Attempts%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return sol, ctx.Err()
			default:
				// Non-blocking select to fall through
			}
		}

		sol.Hash = hashFn(sol.Nonce)
		sol.Attempts++

		if HasLeadingZeros(&sol.Hash, difficulty) {
			return sol, nil
		}
		sol.Nonce++
	}
}
