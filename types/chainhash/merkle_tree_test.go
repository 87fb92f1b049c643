/*
 * Copyright (c) 2021 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package chainhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMerkleTreeProof(t *testing.T) {
	blockHash := func(data string) Hash {
		return HashH([]byte(data))
	}
	pairHash := func(left, right string) Hash {
		l, r := blockHash(left), blockHash(right)
		return *HashMerkleBranches(&l, &r)
	}

	tests := []struct {
		name   string
		blocks []Hash
		proof  []Hash
	}{
		{
			name:   "genesis only",
			blocks: []Hash{blockHash("Genesis Block")},
			proof:  []Hash{},
		},
		{
			name:   "genesis and one block",
			blocks: []Hash{blockHash("Genesis Block"), blockHash("Data #1")},
			proof:  []Hash{blockHash("Data #1")},
		},
		{
			name:   "odd tip is paired with itself",
			blocks: []Hash{blockHash("Genesis Block"), blockHash("Data #1"), blockHash("Data #2")},
			proof:  []Hash{blockHash("Data #1"), pairHash("Data #2", "Data #2")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.proof, BuildMerkleTreeProof(tt.blocks))

			root := MerkleTreeRoot(tt.blocks)
			assert.True(t, ValidateMerkleTreeProof(tt.blocks[0], tt.proof, root))
		})
	}
}

func TestMerkleTreeRoot(t *testing.T) {
	a := HashH([]byte("a"))
	b := HashH([]byte("b"))
	c := HashH([]byte("c"))

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, MerkleTreeRoot(nil))
		assert.Nil(t, MerkleTreeRoot([]Hash{}))
	})

	t.Run("single", func(t *testing.T) {
		root := MerkleTreeRoot([]Hash{a})
		require.NotNil(t, root)
		assert.Equal(t, a, *root)
	})

	t.Run("pair hashes hex concatenation", func(t *testing.T) {
		root := MerkleTreeRoot([]Hash{a, b})
		require.NotNil(t, root)
		assert.Equal(t, HashH([]byte(a.String()+b.String())), *root)
	})

	t.Run("odd level duplicates last", func(t *testing.T) {
		assert.Equal(t, MerkleTreeRoot([]Hash{a, b, c, c}), MerkleTreeRoot([]Hash{a, b, c}))
	})

	t.Run("order sensitive", func(t *testing.T) {
		assert.NotEqual(t, MerkleTreeRoot([]Hash{a, b}), MerkleTreeRoot([]Hash{b, a}))
		assert.NotEqual(t, MerkleTreeRoot([]Hash{a, b, c}), MerkleTreeRoot([]Hash{c, b, a}))
	})

	t.Run("deterministic and input untouched", func(t *testing.T) {
		in := make([]Hash, 3, 8)
		copy(in, []Hash{a, b, c})

		first := MerkleTreeRoot(in)
		second := MerkleTreeRoot(in)
		assert.Equal(t, first, second)
		assert.Equal(t, []Hash{a, b, c}, in)
		assert.Equal(t, ZeroHash, in[:4][3])
	})
}

func TestValidateMerkleTreeProofRejects(t *testing.T) {
	hashes := []Hash{HashH([]byte("x")), HashH([]byte("y")), HashH([]byte("z"))}
	root := MerkleTreeRoot(hashes)
	proof := BuildMerkleTreeProof(hashes)

	assert.True(t, ValidateMerkleTreeProof(hashes[0], proof, root))
	assert.False(t, ValidateMerkleTreeProof(hashes[1], proof, root))
	assert.False(t, ValidateMerkleTreeProof(hashes[0], proof, nil))
}

func TestHashString(t *testing.T) {
	h := HashH([]byte("abc"))
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	assert.Equal(t, want, h.String())

	parsed, err := NewHashFromStr(want)
	require.NoError(t, err)
	assert.True(t, parsed.IsEqual(&h))

	_, err = NewHashFromStr("abc")
	assert.Equal(t, ErrHashStrSize, err)

	assert.Equal(t, "0000000000000000000000000000000000000000000000000000000000000000", ZeroHash.String())
}
