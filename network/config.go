// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"fmt"

	"gitlab.com/jaxnet/chainsim/node/blockchain"
)

const (
	// DefaultNodeCount is the number of replicas of the reference scenario.
	DefaultNodeCount = 5

	// DefaultDifficulty is the leading zero count of the reference scenario.
	DefaultDifficulty = 4

	// DefaultBlockCount is how many payload blocks every replica carries on
	// top of genesis.
	DefaultBlockCount = 8
)

// Config describes the replicas a Network is built with.
type Config struct {
	// NodeCount must be odd and positive so a majority vote cannot tie.
	NodeCount int

	// Difficulty is the number of leading zero hex characters every block
	// hash must carry. Expected mining work grows as 16^Difficulty per
	// block; large values are a liveness risk, never a correctness one.
	Difficulty int

	// Payloads are appended, in order, to every replica after genesis.
	Payloads []string

	// StrictGenesis makes replica validation check the genesis block too.
	StrictGenesis bool

	// MaxAttempts caps every block search; zero means unbounded.
	MaxAttempts uint64

	// Workers bounds how many replicas are mined or validated at once.
	// Zero runs one goroutine per replica.
	Workers int
}

// DefaultPayloads returns "Data #1" ... "Data #n".
func DefaultPayloads(n int) []string {
	payloads := make([]string, n)
	for i := range payloads {
		payloads[i] = fmt.Sprintf("Data #%d", i+1)
	}
	return payloads
}

// DefaultConfig returns the reference scenario: five replicas of eight
// payload blocks at difficulty four.
func DefaultConfig() Config {
	return Config{
		NodeCount:  DefaultNodeCount,
		Difficulty: DefaultDifficulty,
		Payloads:   DefaultPayloads(DefaultBlockCount),
	}
}

func (cfg Config) chainOptions() []blockchain.Option {
	var opts []blockchain.Option
	if cfg.StrictGenesis {
		opts = append(opts, blockchain.WithStrictGenesis())
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, blockchain.WithMaxAttempts(cfg.MaxAttempts))
	}
	return opts
}
