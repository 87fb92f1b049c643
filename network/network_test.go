// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/jaxnet/chainsim/node/chaindata"
)

func testConfig(nodes int) Config {
	return Config{
		NodeCount:  nodes,
		Difficulty: 2,
		Payloads:   DefaultPayloads(4),
	}
}

func newTestNetwork(t *testing.T, nodes int) *Network {
	t.Helper()

	n, err := New(context.Background(), testConfig(nodes))
	require.NoError(t, err)
	return n
}

func allTrue(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

func TestNewRejectsBadNodeCount(t *testing.T) {
	tests := []struct {
		nodes int
		want  error
	}{
		{nodes: 0, want: ErrInvalidNodeCount},
		{nodes: -3, want: ErrInvalidNodeCount},
		{nodes: 2, want: ErrEvenNodeCount},
		{nodes: 4, want: ErrEvenNodeCount},
	}

	for _, tt := range tests {
		n, err := New(context.Background(), testConfig(tt.nodes))
		assert.Nil(t, n)
		assert.Equal(t, tt.want, errors.Cause(err), "nodes=%d", tt.nodes)
	}

	cfg := testConfig(3)
	cfg.Difficulty = -1
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewBuildsIdenticalContentReplicas(t *testing.T) {
	n := newTestNetwork(t, 3)

	assert.Equal(t, 3, n.Size())
	assert.Equal(t, 2, n.Difficulty())
	assert.Equal(t, allTrue(3), n.ValidateAll())
	assert.True(t, n.MajorityVote())

	for _, replica := range n.Replicas() {
		blocks := replica.Blocks()
		require.Len(t, blocks, 5)
		assert.Equal(t, "Genesis Block", blocks[0].Data)
		for i, payload := range DefaultPayloads(4) {
			assert.Equal(t, payload, blocks[i+1].Data)
		}
		assert.NotNil(t, replica.MerkleRoot())
	}
}

func TestMajorityThreshold(t *testing.T) {
	n := newTestNetwork(t, 5)
	require.True(t, n.MajorityVote())

	for corrupted := 1; corrupted <= 5; corrupted++ {
		n.Corrupt([]int{corrupted - 1}, []int{2})

		results := n.ValidateAll()
		for i, ok := range results {
			assert.Equal(t, i >= corrupted, ok, "replica %d after %d corruptions", i, corrupted)
		}
		assert.Equal(t, corrupted <= 2, n.MajorityVote(), "%d corrupted replicas", corrupted)
	}
}

func TestCorruptionFindings(t *testing.T) {
	n := newTestNetwork(t, 3)
	n.Corrupt([]int{0}, []int{3})

	reports := n.Reports()
	assert.False(t, reports[0].Valid())
	assert.True(t, reports[0].MerkleRootValid())
	assert.Equal(t, []chaindata.ErrorCode{chaindata.ErrPrevHashMismatch}, reports[0].FindingsAt(4))

	replica, ok := n.Replica(0)
	require.True(t, ok)
	b, _ := replica.Block(3)
	assert.Equal(t, TamperData, b.Data)

	assert.True(t, reports[1].Valid())
	assert.True(t, reports[2].Valid())
}

func TestCorruptSkipsOutOfRangeTargets(t *testing.T) {
	n := newTestNetwork(t, 3)
	before, _ := n.Replica(0)
	hashes := before.Hashes()

	n.Corrupt([]int{-1, 3, 17}, []int{1})
	n.Corrupt([]int{0}, []int{-1, 5, 99})

	assert.Equal(t, hashes, before.Hashes())
	assert.Equal(t, allTrue(3), n.ValidateAll())
}

func TestCorruptHoldsReplicaExclusively(t *testing.T) {
	n, err := New(context.Background(), Config{
		NodeCount:  1,
		Difficulty: 0,
		Payloads:   DefaultPayloads(200),
	})
	require.NoError(t, err)
	replica, _ := n.Replica(0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for k := 0; k < 20; k++ {
			n.Corrupt([]int{0}, indexRange(1, 201))
		}
	}()

	stale := 0
	for k := 0; k < 2000; k++ {
		if !replica.Validate().MerkleRootValid() {
			stale++
		}
	}
	<-done

	assert.Zero(t, stale, "validation saw tampered blocks with the previous root")
	assert.True(t, replica.Validate().MerkleRootValid())
	assert.False(t, replica.IsValid())
}

func TestSimulateMajorityAttack(t *testing.T) {
	n := newTestNetwork(t, 5)

	corrupted := n.SimulateMajorityAttack()
	assert.Equal(t, []int{0, 1, 2}, corrupted)
	assert.Equal(t, []bool{false, false, false, true, true}, n.ValidateAll())
	assert.False(t, n.MajorityVote())

	replica, _ := n.Replica(0)
	genesis, _ := replica.Block(0)
	assert.Equal(t, "Genesis Block", genesis.Data)
	for _, b := range replica.Blocks()[1:] {
		assert.Equal(t, TamperData, b.Data)
	}
}

func TestRebuildRecovers(t *testing.T) {
	n := newTestNetwork(t, 5)
	n.SimulateMajorityAttack()
	require.False(t, n.MajorityVote())

	require.NoError(t, n.Rebuild(context.Background(), 0, 1))
	assert.True(t, n.MajorityVote())
	assert.Equal(t, []bool{true, true, false, true, true}, n.ValidateAll())

	require.NoError(t, n.Rebuild(context.Background()))
	assert.Equal(t, allTrue(5), n.ValidateAll())
	assert.True(t, n.MajorityVote())
}

func TestRebuildRejectsBadIndex(t *testing.T) {
	n := newTestNetwork(t, 3)
	n.Corrupt([]int{0}, []int{1})

	err := n.Rebuild(context.Background(), 0, 3)
	assert.Equal(t, ErrReplicaOutOfRange, errors.Cause(err))
	// Nothing was replaced.
	assert.Equal(t, []bool{false, true, true}, n.ValidateAll())
}

func TestRebuildCancelled(t *testing.T) {
	n := newTestNetwork(t, 3)
	n.Corrupt([]int{0}, []int{1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, n.Rebuild(ctx, 0))
	assert.Equal(t, []bool{false, true, true}, n.ValidateAll())
}

func TestReplaceReplica(t *testing.T) {
	n := newTestNetwork(t, 3)
	n.Corrupt([]int{2}, []int{1, 2})

	clean, _ := n.Replica(0)
	require.NoError(t, n.ReplaceReplica(2, clean))
	assert.Equal(t, allTrue(3), n.ValidateAll())

	// The installed replica is a copy.
	n.Corrupt([]int{2}, []int{1})
	assert.True(t, clean.IsValid())

	assert.Equal(t, ErrReplicaOutOfRange, errors.Cause(n.ReplaceReplica(3, clean)))
	assert.Error(t, n.ReplaceReplica(0, nil))
}

func TestReplicasAreIndependent(t *testing.T) {
	n := newTestNetwork(t, 3)
	other, _ := n.Replica(1)
	hashes := other.Hashes()
	root := other.MerkleRoot()

	n.Corrupt([]int{0}, []int{1, 2, 3, 4})

	assert.Equal(t, hashes, other.Hashes())
	assert.Equal(t, root, other.MerkleRoot())
}

func TestBoundedWorkers(t *testing.T) {
	cfg := testConfig(5)
	cfg.Workers = 2

	n, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, allTrue(5), n.ValidateAll())
}

func TestNewCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := New(ctx, testConfig(3))
	assert.Nil(t, n)
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	n := newTestNetwork(t, 3)
	n.Corrupt([]int{1}, []int{1})

	st := n.Status()
	assert.Equal(t, 3, st.Size)
	assert.Equal(t, 2, st.Valid)
	assert.True(t, st.Majority)
	require.Len(t, st.Reports, 3)
	assert.False(t, st.Reports[1].Valid())
	assert.Equal(t, []int{0, 1, 2}, st.Replicas)

	sparse := Status{Reports: st.Reports, Replicas: []int{5}}
	assert.Equal(t, 5, sparse.ReplicaID(0))
	assert.Equal(t, 2, sparse.ReplicaID(2))
}

func TestStrictGenesisConfig(t *testing.T) {
	cfg := testConfig(3)
	cfg.StrictGenesis = true

	n, err := New(context.Background(), cfg)
	require.NoError(t, err)

	n.Corrupt([]int{0}, []int{0})
	replica, _ := n.Replica(0)
	assert.True(t, replica.StrictGenesis())
	assert.False(t, n.ValidateAll()[0])
}
