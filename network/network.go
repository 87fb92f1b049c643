// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"gitlab.com/jaxnet/chainsim/node/blockchain"
	"golang.org/x/sync/errgroup"
)

// TamperData replaces the payload of every corrupted block.
const TamperData = "FALSIFIED DATA"

var (
	// ErrEvenNodeCount is returned for a replica count a majority vote
	// could tie on.
	ErrEvenNodeCount = errors.New("node count must be odd")

	// ErrInvalidNodeCount is returned for a replica count below one.
	ErrInvalidNodeCount = errors.New("node count must be positive")

	// ErrReplicaOutOfRange is returned when a replica index does not exist.
	ErrReplicaOutOfRange = errors.New("replica index out of range")
)

// Network is a fixed, odd-sized set of chain replicas held in memory. Replicas
// never share blocks, so mining and validation run per replica in parallel.
type Network struct {
	cfg Config

	// lock guards the replica slice itself. Each replica guards its own
	// blocks.
	lock     sync.RWMutex
	replicas []*blockchain.Chain
}

// New validates cfg and mines cfg.NodeCount identical-content replicas. On
// any error no network is returned.
func New(ctx context.Context, cfg Config) (*Network, error) {
	if cfg.NodeCount <= 0 {
		return nil, errors.Wrapf(ErrInvalidNodeCount, "got %d", cfg.NodeCount)
	}
	if cfg.NodeCount%2 == 0 {
		return nil, errors.Wrapf(ErrEvenNodeCount, "got %d", cfg.NodeCount)
	}
	if cfg.Difficulty < 0 {
		return nil, errors.Errorf("difficulty must not be negative, got %d", cfg.Difficulty)
	}

	payloads := make([]string, len(cfg.Payloads))
	copy(payloads, cfg.Payloads)
	cfg.Payloads = payloads

	n := &Network{
		cfg:      cfg,
		replicas: make([]*blockchain.Chain, cfg.NodeCount),
	}

	err := n.parallel(ctx, indexRange(0, cfg.NodeCount), func(ctx context.Context, i int) error {
		replica, err := n.BuildReplica(ctx)
		if err != nil {
			return errors.Wrapf(err, "build replica %d", i)
		}
		n.replicas[i] = replica
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("replicas", cfg.NodeCount).
		Int("difficulty", cfg.Difficulty).
		Int("blocks", len(cfg.Payloads)+1).
		Msg("network created")
	return n, nil
}

// BuildReplica mines a clean replica from the network template: genesis, the
// configured payloads, and a computed Merkle root.
func (n *Network) BuildReplica(ctx context.Context) (*blockchain.Chain, error) {
	c, err := blockchain.NewContext(ctx, n.cfg.Difficulty, n.cfg.chainOptions()...)
	if err != nil {
		return nil, err
	}
	for _, payload := range n.cfg.Payloads {
		if _, err := c.AddBlockContext(ctx, payload); err != nil {
			return nil, err
		}
	}
	c.ComputeMerkleRoot()
	return c, nil
}

// parallel runs fn for every index, at most cfg.Workers at a time, and
// returns the first error.
func (n *Network) parallel(ctx context.Context, indices []int, fn func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)

	var sem chan struct{}
	if n.cfg.Workers > 0 {
		sem = make(chan struct{}, n.cfg.Workers)
	}

	for _, i := range indices {
		i := i
		g.Go(func() error {
			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return fn(ctx, i)
		})
	}
	return g.Wait()
}

func indexRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

// Config returns the configuration the network was built with.
func (n *Network) Config() Config {
	cfg := n.cfg
	cfg.Payloads = append([]string(nil), n.cfg.Payloads...)
	return cfg
}

// Size returns the number of replicas.
func (n *Network) Size() int {
	return n.cfg.NodeCount
}

// Difficulty returns the difficulty shared by all replicas.
func (n *Network) Difficulty() int {
	return n.cfg.Difficulty
}

// Replica returns the live replica at index i.
func (n *Network) Replica(i int) (*blockchain.Chain, bool) {
	n.lock.RLock()
	defer n.lock.RUnlock()

	if i < 0 || i >= len(n.replicas) {
		return nil, false
	}
	return n.replicas[i], true
}

// Replicas returns the live replicas in order.
func (n *Network) Replicas() []*blockchain.Chain {
	n.lock.RLock()
	defer n.lock.RUnlock()
	return append([]*blockchain.Chain(nil), n.replicas...)
}

// Reports validates every replica, in parallel, and returns the reports in
// replica order.
func (n *Network) Reports() []*blockchain.Report {
	replicas := n.Replicas()
	reports := make([]*blockchain.Report, len(replicas))

	// Validation cannot fail, so the group never returns an error.
	_ = n.parallel(context.Background(), indexRange(0, len(replicas)), func(_ context.Context, i int) error {
		reports[i] = replicas[i].Validate()
		return nil
	})
	return reports
}

// ValidateAll reports, per replica, whether it passes validation.
func (n *Network) ValidateAll() []bool {
	reports := n.Reports()
	results := make([]bool, len(reports))
	for i, r := range reports {
		results[i] = r.Valid()
	}
	return results
}

// ValidCount returns how many replicas pass validation.
func (n *Network) ValidCount() int {
	count := 0
	for _, ok := range n.ValidateAll() {
		if ok {
			count++
		}
	}
	return count
}

// MajorityVote reports whether strictly more than half of the replicas are
// valid. It trusts every replica's own validation; it is a tally, not a
// byzantine agreement protocol.
func (n *Network) MajorityVote() bool {
	valid := n.ValidCount()
	majority := valid > n.Size()/2

	log.Debug().
		Int("valid", valid).
		Int("replicas", n.Size()).
		Bool("majority", majority).
		Msg("majority vote")
	return majority
}

// Corrupt tampers with the given blocks of the given replicas: the payload is
// replaced with TamperData and the hash recomputed without mining, then the
// replica's Merkle root is recomputed over the now inconsistent hashes. Each
// replica is held exclusively for its whole corruption. Replica or block
// indices out of range are skipped.
func (n *Network) Corrupt(replicas []int, blocks []int) {
	for _, i := range replicas {
		replica, ok := n.Replica(i)
		if !ok {
			log.Debug().Int("replica", i).Msg("corruption target out of range, skipped")
			continue
		}
		corruptReplica(replica, blocks)
	}
}

func corruptReplica(replica *blockchain.Chain, blocks []int) {
	if skipped := replica.Corrupt(blocks, TamperData); len(skipped) > 0 {
		log.Debug().Ints("blocks", skipped).Msg("corruption targets out of range, skipped")
	}
}

// SimulateMajorityAttack corrupts the smallest majority of replicas,
// 0 through Size()/2, across every non-genesis block, and returns the
// corrupted replica indices.
func (n *Network) SimulateMajorityAttack() []int {
	targets := indexRange(0, n.Size()/2+1)
	for _, i := range targets {
		replica, _ := n.Replica(i)
		corruptReplica(replica, indexRange(1, replica.Len()))
	}

	log.Info().Ints("replicas", targets).Msg("majority attack simulated")
	return targets
}

// Rebuild replaces the given replicas, or all of them when none are given,
// with freshly mined clean ones. Nothing is replaced if any index is out of
// range or any mining fails.
func (n *Network) Rebuild(ctx context.Context, indices ...int) error {
	if len(indices) == 0 {
		indices = indexRange(0, n.Size())
	}
	for _, i := range indices {
		if i < 0 || i >= n.Size() {
			return errors.Wrapf(ErrReplicaOutOfRange, "replica %d", i)
		}
	}

	fresh := make([]*blockchain.Chain, len(indices))
	err := n.parallel(ctx, indexRange(0, len(indices)), func(ctx context.Context, k int) error {
		replica, err := n.BuildReplica(ctx)
		if err != nil {
			return errors.Wrapf(err, "rebuild replica %d", indices[k])
		}
		fresh[k] = replica
		return nil
	})
	if err != nil {
		return err
	}

	n.lock.Lock()
	for k, i := range indices {
		n.replicas[i] = fresh[k]
	}
	n.lock.Unlock()

	log.Info().Ints("replicas", indices).Msg("replicas rebuilt")
	return nil
}

// ReplaceReplica installs a copy of c as replica i.
func (n *Network) ReplaceReplica(i int, c *blockchain.Chain) error {
	if c == nil {
		return errors.New("replacement replica is nil")
	}
	if i < 0 || i >= n.Size() {
		return errors.Wrapf(ErrReplicaOutOfRange, "replica %d", i)
	}

	cp := c.Copy()
	n.lock.Lock()
	n.replicas[i] = cp
	n.lock.Unlock()
	return nil
}

// Status is a point-in-time summary of the network.
type Status struct {
	Size     int
	Valid    int
	Majority bool
	Reports  []*blockchain.Report

	// Replicas holds the replica index of each report. When it is shorter
	// than Reports, the missing indices are the report positions.
	Replicas []int
}

// ReplicaID returns the replica index of the i-th report.
func (st Status) ReplicaID(i int) int {
	if i < len(st.Replicas) {
		return st.Replicas[i]
	}
	return i
}

// Status validates every replica once and summarises the result.
func (n *Network) Status() Status {
	reports := n.Reports()
	st := Status{Size: len(reports), Reports: reports, Replicas: indexRange(0, len(reports))}
	for _, r := range reports {
		if r.Valid() {
			st.Valid++
		}
	}
	st.Majority = st.Valid > st.Size/2
	return st
}
