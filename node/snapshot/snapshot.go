// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package snapshot saves chain replicas outside of the process and restores
// them. A restored replica is assembled as stored, without re-validation, so
// anything that went wrong on disk shows up when it is validated.
package snapshot

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gitlab.com/jaxnet/chainsim/node/blockchain"
	"gitlab.com/jaxnet/chainsim/types/chainhash"
	"gitlab.com/jaxnet/chainsim/types/wire"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BlockRecord is the stored form of a block. Timestamps are kept in Unix
// nanoseconds, the precision that goes into the block hash.
type BlockRecord struct {
	Index      int            `json:"index"`
	Timestamp  int64          `json:"timestamp"`
	Data       string         `json:"data"`
	PrevHash   chainhash.Hash `json:"prev_hash"`
	Nonce      uint64         `json:"nonce"`
	Hash       chainhash.Hash `json:"hash"`
	Difficulty int            `json:"difficulty"`
}

// ChainSnapshot is the stored form of one replica.
type ChainSnapshot struct {
	Replica       int             `json:"replica"`
	Difficulty    int             `json:"difficulty"`
	StrictGenesis bool            `json:"strict_genesis"`
	MerkleRoot    *chainhash.Hash `json:"merkle_root,omitempty"`
	Blocks        []BlockRecord   `json:"blocks"`
	SavedAt       int64           `json:"saved_at"`
}

// FromChain captures the current state of a replica, cached root included.
func FromChain(replica int, c *blockchain.Chain) *ChainSnapshot {
	blocks := c.Blocks()
	s := &ChainSnapshot{
		Replica:       replica,
		Difficulty:    c.Difficulty(),
		StrictGenesis: c.StrictGenesis(),
		MerkleRoot:    c.MerkleRoot(),
		Blocks:        make([]BlockRecord, len(blocks)),
		SavedAt:       time.Now().Unix(),
	}
	for i, b := range blocks {
		s.Blocks[i] = BlockRecord{
			Index:      b.Index,
			Timestamp:  b.Timestamp.UnixNano(),
			Data:       b.Data,
			PrevHash:   b.PrevHash,
			Nonce:      b.Nonce,
			Hash:       b.Hash,
			Difficulty: b.Difficulty,
		}
	}
	return s
}

// Block converts the i-th record back into a block.
func (s *ChainSnapshot) Block(i int) (*wire.Block, bool) {
	if i < 0 || i >= len(s.Blocks) {
		return nil, false
	}
	r := s.Blocks[i]
	return &wire.Block{
		Index:      r.Index,
		Timestamp:  time.Unix(0, r.Timestamp),
		Data:       r.Data,
		PrevHash:   r.PrevHash,
		Nonce:      r.Nonce,
		Hash:       r.Hash,
		Difficulty: r.Difficulty,
	}, true
}

// Restore rebuilds the replica the snapshot was taken from.
func (s *ChainSnapshot) Restore() (*blockchain.Chain, error) {
	blocks := make([]*wire.Block, len(s.Blocks))
	for i := range s.Blocks {
		blocks[i], _ = s.Block(i)
	}

	var opts []blockchain.Option
	if s.StrictGenesis {
		opts = append(opts, blockchain.WithStrictGenesis())
	}

	c, err := blockchain.FromBlocks(s.Difficulty, blocks, s.MerkleRoot, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "restore replica %d", s.Replica)
	}
	return c, nil
}

// Encode serializes a snapshot.
func Encode(s *ChainSnapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return data, nil
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) (*ChainSnapshot, error) {
	s := new(ChainSnapshot)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return s, nil
}
