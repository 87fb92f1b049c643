// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gitlab.com/jaxnet/chainsim/types/chainhash"
	"gitlab.com/jaxnet/chainsim/types/pow"
)

// Block is one entry of a chain. Mining fills Nonce and Hash before the block
// is handed out; after that the only mutation is Tamper.
type Block struct {
	Index      int
	Timestamp  time.Time
	Data       string
	PrevHash   chainhash.Hash
	Nonce      uint64
	Hash       chainhash.Hash
	Difficulty int
}

// NewBlock builds and mines a block. The search is unbounded; a difficulty the
// digest can never satisfy is a programming error and panics.
func NewBlock(index int, data string, prevHash chainhash.Hash, difficulty int) *Block {
	block, err := MineBlock(context.Background(), index, data, prevHash, difficulty, 0)
	if err != nil {
		panic(err)
	}
	return block
}

// MineBlock builds and mines a block, giving up when ctx is done or after
// maxAttempts digests (zero means no cap). No block is returned on failure.
func MineBlock(ctx context.Context, index int, data string, prevHash chainhash.Hash,
	difficulty int, maxAttempts uint64) (*Block, error) {
	block := &Block{
		Index:      index,
		Timestamp:  time.Now(),
		Data:       data,
		PrevHash:   prevHash,
		Difficulty: difficulty,
	}

	sol, err := block.Mine(ctx, maxAttempts)
	if err != nil {
		return nil, errors.Wrapf(err, "mine block #%d", index)
	}

	log.Debug().
		Int("index", index).
		Int("difficulty", difficulty).
		Uint64("nonce", sol.Nonce).
		Uint64("attempts", sol.Attempts).
		Str("hash", sol.Hash.String()).
		Msg("block mined")
	return block, nil
}

// headerPrefix renders every hashed field that stays fixed during mining:
// index, timestamp in Unix nanoseconds, payload and previous hash, with no
// separators.
func (b *Block) headerPrefix() []byte {
	buf := make([]byte, 0, 64+len(b.Data)+chainhash.MaxHashStringSize)
	buf = strconv.AppendInt(buf, int64(b.Index), 10)
	buf = strconv.AppendInt(buf, b.Timestamp.UnixNano(), 10)
	buf = append(buf, b.Data...)
	buf = append(buf, b.PrevHash.String()...)
	return buf
}

// RecomputeHash returns the digest of the block contents for its current
// nonce. It never looks at the stored Hash.
func (b *Block) RecomputeHash() chainhash.Hash {
	buf := strconv.AppendUint(b.headerPrefix(), b.Nonce, 10)
	return chainhash.HashH(buf)
}

// Mine searches nonces from the current one until the digest meets the block
// difficulty, then stores the nonce and hash. On failure the block keeps the
// next untried nonce and its Hash is left untouched.
func (b *Block) Mine(ctx context.Context, maxAttempts uint64) (pow.Solution, error) {
	prefix := b.headerPrefix()
	buf := make([]byte, len(prefix), len(prefix)+20)
	copy(buf, prefix)

	hashFn := func(nonce uint64) chainhash.Hash {
		buf = strconv.AppendUint(buf[:len(prefix)], nonce, 10)
		return chainhash.HashH(buf)
	}

	sol, err := pow.Search(ctx, b.Nonce, b.Difficulty, maxAttempts, hashFn)
	b.Nonce = sol.Nonce
	if err != nil {
		return sol, err
	}

	b.Hash = sol.Hash
	return sol, nil
}

// MeetsDifficulty reports whether the stored hash has the leading zeros the
// given difficulty asks for.
func (b *Block) MeetsDifficulty(difficulty int) bool {
	return pow.HasLeadingZeros(&b.Hash, difficulty)
}

// Tamper overwrites the payload and stores the plain digest of the new
// contents. Nothing is mined, so the hash will almost never meet the
// difficulty again.
func (b *Block) Tamper(data string) {
	b.Data = data
	b.Hash = b.RecomputeHash()
}

// Copy returns an independent copy of the block.
func (b *Block) Copy() *Block {
	c := *b
	return &c
}
