// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package snapshot

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/jaxnet/chainsim/node/blockchain"
	"gitlab.com/jaxnet/chainsim/node/chaindata"
)

func testChain(t *testing.T, blocks int) *blockchain.Chain {
	t.Helper()

	c := blockchain.New(1)
	for i := 1; i <= blocks; i++ {
		c.AddBlock(fmt.Sprintf("Data #%d", i))
	}
	c.ComputeMerkleRoot()
	return c
}

func stores(t *testing.T) map[string]IStore {
	t.Helper()

	bdb, err := BadgerStore(filepath.Join(t.TempDir(), "snapshots"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })

	return map[string]IStore{
		"memory": MemoryStore(),
		"badger": bdb,
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := testChain(t, 3)

	data, err := Encode(FromChain(4, src))
	require.NoError(t, err)

	s, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Replica)
	require.Len(t, s.Blocks, 4)

	restored, err := s.Restore()
	require.NoError(t, err)
	assert.True(t, restored.IsValid())
	assert.Equal(t, src.Hashes(), restored.Hashes())
	assert.Equal(t, src.MerkleRoot(), restored.MerkleRoot())

	for i, b := range src.Blocks() {
		got, ok := s.Block(i)
		require.True(t, ok)
		assert.Equal(t, b.RecomputeHash(), got.RecomputeHash())
	}
	_, ok := s.Block(4)
	assert.False(t, ok)
}

func TestStores(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			clean := testChain(t, 2)
			tampered := clean.Copy()
			tampered.TamperBlock(1, "FALSIFIED DATA")
			tampered.ComputeMerkleRoot()

			require.NoError(t, SaveAll(store, []*blockchain.Chain{clean, tampered, clean}))

			ids, err := store.Replicas()
			require.NoError(t, err)
			assert.Equal(t, []int{0, 1, 2}, ids)

			_, ok, err := store.Get(9)
			require.NoError(t, err)
			assert.False(t, ok)

			s, ok, err := store.Get(1)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "FALSIFIED DATA", s.Blocks[1].Data)

			restoredIDs, chains, err := RestoreAll(store)
			require.NoError(t, err)
			assert.Equal(t, []int{0, 1, 2}, restoredIDs)
			require.Len(t, chains, 3)
			assert.True(t, chains[0].IsValid())
			assert.False(t, chains[1].IsValid())
			assert.Contains(t, chains[1].Validate().FindingsAt(2), chaindata.ErrPrevHashMismatch)
			assert.True(t, chains[2].IsValid())

			// Overwrite keeps one record per replica.
			require.NoError(t, store.Put(FromChain(1, clean)))
			ids, err = store.Replicas()
			require.NoError(t, err)
			assert.Equal(t, []int{0, 1, 2}, ids)
		})
	}
}

func TestRestoreAllSparse(t *testing.T) {
	store := MemoryStore()
	require.NoError(t, store.Put(FromChain(7, testChain(t, 1))))
	require.NoError(t, store.Put(FromChain(2, testChain(t, 2))))

	ids, chains, err := RestoreAll(store)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 7}, ids)
	require.Len(t, chains, 2)
	assert.Equal(t, 3, chains[0].Len())
	assert.Equal(t, 2, chains[1].Len())
}

func TestRestoreEmptySnapshot(t *testing.T) {
	_, err := (&ChainSnapshot{Difficulty: 1}).Restore()
	assert.Error(t, err)
}

func TestStoredEditIsDetected(t *testing.T) {
	store := MemoryStore()
	require.NoError(t, store.Put(FromChain(0, testChain(t, 2))))

	s, _, err := store.Get(0)
	require.NoError(t, err)
	s.Blocks[2].Data = "edited at rest"
	require.NoError(t, store.Put(s))

	s, _, err = store.Get(0)
	require.NoError(t, err)
	c, err := s.Restore()
	require.NoError(t, err)
	assert.Equal(t, []chaindata.ErrorCode{chaindata.ErrHashMismatch}, c.Validate().FindingsAt(2))
}
