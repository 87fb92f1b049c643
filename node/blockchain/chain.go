// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"gitlab.com/jaxnet/chainsim/types/chainhash"
	"gitlab.com/jaxnet/chainsim/types/wire"
)

// GenesisData is the payload of every genesis block.
const GenesisData = "Genesis Block"

// ErrEmptyChain is returned when a chain is assembled from no blocks at all.
var ErrEmptyChain = errors.New("chain must hold at least the genesis block")

// Option tweaks a Chain at construction.
type Option func(c *Chain)

// WithStrictGenesis makes validation check the genesis block's own hash and
// difficulty prefix too. By default the per-block checks start at index 1 and
// a corrupted genesis is only noticed through its successor's link or the
// Merkle root.
func WithStrictGenesis() Option {
	return func(c *Chain) { c.strictGenesis = true }
}

// WithMaxAttempts caps how many digests a single block search may compute in
// the context-aware constructors. Zero keeps the search unbounded.
func WithMaxAttempts(n uint64) Option {
	return func(c *Chain) { c.maxAttempts = n }
}

// Chain is an ordered list of mined blocks plus a cached Merkle root over
// their hashes. The cache is only refreshed by ComputeMerkleRoot; appends and
// tampering leave it stale on purpose so validation can report it.
type Chain struct {
	// The following fields are set when the instance is created and can't
	// be changed afterwards, so there is no need to protect them with a
	// separate mutex.
	difficulty    int
	strictGenesis bool
	maxAttempts   uint64

	// chainLock protects the fields below. Validation takes the read lock;
	// appending, tampering and root recomputation take the write lock.
	chainLock  sync.RWMutex
	blocks     []*wire.Block
	merkleRoot *chainhash.Hash
}

func newChain(difficulty int, opts []Option) *Chain {
	c := &Chain{difficulty: difficulty}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New creates a chain holding only a freshly mined genesis block and computes
// its Merkle root, so the result validates. Mining is unbounded.
func New(difficulty int, opts ...Option) *Chain {
	c := newChain(difficulty, opts)
	c.blocks = []*wire.Block{wire.NewBlock(0, GenesisData, chainhash.ZeroHash, difficulty)}
	c.merkleRoot = chainhash.MerkleTreeRoot(c.hashes())
	return c
}

// NewContext is New with cancellation and the WithMaxAttempts cap applied to
// the genesis search.
func NewContext(ctx context.Context, difficulty int, opts ...Option) (*Chain, error) {
	c := newChain(difficulty, opts)
	genesis, err := wire.MineBlock(ctx, 0, GenesisData, chainhash.ZeroHash, difficulty, c.maxAttempts)
	if err != nil {
		return nil, errors.Wrap(err, "create genesis")
	}

	c.blocks = []*wire.Block{genesis}
	c.merkleRoot = chainhash.MerkleTreeRoot(c.hashes())
	return c, nil
}

// FromBlocks assembles a chain from already mined blocks and a cached root,
// as restored from a snapshot. Nothing is validated here; the blocks are
// copied so the caller keeps ownership of its slice.
func FromBlocks(difficulty int, blocks []*wire.Block, merkleRoot *chainhash.Hash, opts ...Option) (*Chain, error) {
	if len(blocks) == 0 {
		return nil, ErrEmptyChain
	}

	c := newChain(difficulty, opts)
	c.blocks = make([]*wire.Block, len(blocks))
	for i, b := range blocks {
		if b == nil {
			return nil, errors.Errorf("block #%d is missing", i)
		}
		c.blocks[i] = b.Copy()
	}
	if merkleRoot != nil {
		root := *merkleRoot
		c.merkleRoot = &root
	}
	return c, nil
}

// Difficulty returns the number of leading zero hex characters every block
// hash must carry.
func (c *Chain) Difficulty() int {
	return c.difficulty
}

// StrictGenesis reports whether the genesis block is validated like the others.
func (c *Chain) StrictGenesis() bool {
	return c.strictGenesis
}

// Len returns the number of blocks including genesis.
func (c *Chain) Len() int {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()
	return len(c.blocks)
}

// Block returns a copy of the block at index i.
func (c *Chain) Block(i int) (*wire.Block, bool) {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	if i < 0 || i >= len(c.blocks) {
		return nil, false
	}
	return c.blocks[i].Copy(), true
}

// Tip returns a copy of the last block.
func (c *Chain) Tip() *wire.Block {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()
	return c.blocks[len(c.blocks)-1].Copy()
}

// Blocks returns copies of all blocks in order.
func (c *Chain) Blocks() []*wire.Block {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	out := make([]*wire.Block, len(c.blocks))
	for i, b := range c.blocks {
		out[i] = b.Copy()
	}
	return out
}

// Hashes returns the stored hash of every block in order.
func (c *Chain) Hashes() []chainhash.Hash {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()
	return c.hashes()
}

func (c *Chain) hashes() []chainhash.Hash {
	out := make([]chainhash.Hash, len(c.blocks))
	for i, b := range c.blocks {
		out[i] = b.Hash
	}
	return out
}

// MerkleRoot returns the cached root, nil when it was never computed.
func (c *Chain) MerkleRoot() *chainhash.Hash {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	if c.merkleRoot == nil {
		return nil
	}
	root := *c.merkleRoot
	return &root
}

// AddBlock mines a block on top of the tip and appends it. The search is
// unbounded and the Merkle root cache is not refreshed.
func (c *Chain) AddBlock(data string) *wire.Block {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()

	tip := c.blocks[len(c.blocks)-1]
	block := wire.NewBlock(len(c.blocks), data, tip.Hash, c.difficulty)
	c.blocks = append(c.blocks, block)

	log.Debug().Int("index", block.Index).Str("hash", block.Hash.String()).Msg("block appended")
	return block.Copy()
}

// AddBlockContext is AddBlock with cancellation and the WithMaxAttempts cap.
// The chain is left unchanged when mining fails.
func (c *Chain) AddBlockContext(ctx context.Context, data string) (*wire.Block, error) {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()

	tip := c.blocks[len(c.blocks)-1]
	block, err := wire.MineBlock(ctx, len(c.blocks), data, tip.Hash, c.difficulty, c.maxAttempts)
	if err != nil {
		return nil, err
	}
	c.blocks = append(c.blocks, block)

	log.Debug().Int("index", block.Index).Str("hash", block.Hash.String()).Msg("block appended")
	return block.Copy(), nil
}

// ComputeMerkleRoot recomputes the root over the current block hashes and
// caches it.
func (c *Chain) ComputeMerkleRoot() *chainhash.Hash {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()

	c.merkleRoot = chainhash.MerkleTreeRoot(c.hashes())
	root := *c.merkleRoot
	return &root
}

// TamperBlock overwrites the payload of block i and stores its plain digest
// without mining. It returns false, changing nothing, when i is out of range.
// The Merkle root cache is left as it was.
func (c *Chain) TamperBlock(i int, data string) bool {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()

	if i < 0 || i >= len(c.blocks) {
		return false
	}
	c.blocks[i].Tamper(data)
	return true
}

// Corrupt tampers with every in-range block of blocks, as TamperBlock does,
// and then refreshes the Merkle root cache, all under a single write lock. No
// reader observes the tampered blocks next to the previous root. It returns
// the indices that were out of range and skipped.
func (c *Chain) Corrupt(blocks []int, data string) []int {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()

	var skipped []int
	for _, i := range blocks {
		if i < 0 || i >= len(c.blocks) {
			skipped = append(skipped, i)
			continue
		}
		c.blocks[i].Tamper(data)
	}
	c.merkleRoot = chainhash.MerkleTreeRoot(c.hashes())
	return skipped
}

// Copy returns a deep copy of the chain, cache included.
func (c *Chain) Copy() *Chain {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	cp := &Chain{
		difficulty:    c.difficulty,
		strictGenesis: c.strictGenesis,
		maxAttempts:   c.maxAttempts,
		blocks:        make([]*wire.Block, len(c.blocks)),
	}
	for i, b := range c.blocks {
		cp.blocks[i] = b.Copy()
	}
	if c.merkleRoot != nil {
		root := *c.merkleRoot
		cp.merkleRoot = &root
	}
	return cp
}
