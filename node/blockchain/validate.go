// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"strings"

	"gitlab.com/jaxnet/chainsim/node/chaindata"
	"gitlab.com/jaxnet/chainsim/types/chainhash"
)

// Report is the outcome of validating a chain. Integrity failures are data:
// nothing in here is ever returned as an error unless the caller asks for Err.
type Report struct {
	// Length is the number of blocks that were checked.
	Length int

	// Findings lists every per-block problem in block order, and within a
	// block in check order: hash, link, difficulty.
	Findings []chaindata.Finding

	// CachedRoot is the root the chain had cached, ComputedRoot the one
	// derived from its current hashes.
	CachedRoot   *chainhash.Hash
	ComputedRoot *chainhash.Hash
}

// MerkleRootValid reports whether the cached root matches the current hashes.
// A root that was never computed does not match.
func (r *Report) MerkleRootValid() bool {
	return r.CachedRoot != nil && r.CachedRoot.IsEqual(r.ComputedRoot)
}

// Valid reports whether there are no per-block findings and the root matches.
func (r *Report) Valid() bool {
	return len(r.Findings) == 0 && r.MerkleRootValid()
}

// FindingsAt returns the problem kinds recorded for one block.
func (r *Report) FindingsAt(index int) []chaindata.ErrorCode {
	var kinds []chaindata.ErrorCode
	for _, f := range r.Findings {
		if f.BlockIndex == index {
			kinds = append(kinds, f.Kind)
		}
	}
	return kinds
}

// Err converts a failed report into a chaindata.RuleError. The error code is
// the first per-block finding, or ErrBadMerkleRoot when only the root is off.
func (r *Report) Err() error {
	if r.Valid() {
		return nil
	}

	parts := make([]string, 0, len(r.Findings)+1)
	for _, f := range r.Findings {
		parts = append(parts, f.String())
	}
	if !r.MerkleRootValid() {
		parts = append(parts, fmt.Sprintf("merkle root: cached %v, computed %v",
			rootString(r.CachedRoot), rootString(r.ComputedRoot)))
	}

	code := chaindata.ErrBadMerkleRoot
	if len(r.Findings) > 0 {
		code = r.Findings[0].Kind
	}
	return chaindata.NewRuleError(code, fmt.Sprintf("%d problem(s) detected: %s",
		len(parts), strings.Join(parts, "; ")))
}

func rootString(h *chainhash.Hash) string {
	if h == nil {
		return "<none>"
	}
	return h.String()
}

// Validate checks every block from index 1 on, recording all findings rather
// than stopping at the first: (a) the stored hash equals the recomputed digest,
// (b) the previous hash links to the prior block, (c) the hash has the
// difficulty prefix. With WithStrictGenesis, checks (a) and (c) also run on
// the genesis block. The cached Merkle root is compared against a fresh root
// of the current hashes; that result is kept apart from the per-block findings.
//
// Validation never mutates the chain.
func (c *Chain) Validate() *Report {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	report := &Report{Length: len(c.blocks)}

	if c.strictGenesis && len(c.blocks) > 0 {
		genesis := c.blocks[0]
		if hash := genesis.RecomputeHash(); !hash.IsEqual(&genesis.Hash) {
			report.Findings = append(report.Findings, chaindata.Finding{BlockIndex: 0, Kind: chaindata.ErrHashMismatch})
		}
		if !genesis.MeetsDifficulty(c.difficulty) {
			report.Findings = append(report.Findings, chaindata.Finding{BlockIndex: 0, Kind: chaindata.ErrDifficultyUnmet})
		}
	}

	for i := 1; i < len(c.blocks); i++ {
		current, previous := c.blocks[i], c.blocks[i-1]

		if hash := current.RecomputeHash(); !hash.IsEqual(&current.Hash) {
			report.Findings = append(report.Findings, chaindata.Finding{BlockIndex: i, Kind: chaindata.ErrHashMismatch})
		}
		if !current.PrevHash.IsEqual(&previous.Hash) {
			report.Findings = append(report.Findings, chaindata.Finding{BlockIndex: i, Kind: chaindata.ErrPrevHashMismatch})
		}
		if !current.MeetsDifficulty(c.difficulty) {
			report.Findings = append(report.Findings, chaindata.Finding{BlockIndex: i, Kind: chaindata.ErrDifficultyUnmet})
		}
	}

	report.ComputedRoot = chainhash.MerkleTreeRoot(c.hashes())
	if c.merkleRoot != nil {
		root := *c.merkleRoot
		report.CachedRoot = &root
	}

	if !report.Valid() {
		log.Debug().
			Int("length", report.Length).
			Int("findings", len(report.Findings)).
			Bool("merkleRootValid", report.MerkleRootValid()).
			Msg("chain failed validation")
	}
	return report
}

// IsValid is Validate().Valid().
func (c *Chain) IsValid() bool {
	return c.Validate().Valid()
}
