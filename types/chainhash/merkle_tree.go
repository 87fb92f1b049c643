// Copyright (c) 2021 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

// HashMerkleBranches combines two branches into their parent. The parent is
// the hash of the two hex renderings concatenated left to right.
func HashMerkleBranches(left, right *Hash) *Hash {
	var buf [MaxHashStringSize * 2]byte
	copy(buf[:MaxHashStringSize], left.String())
	copy(buf[MaxHashStringSize:], right.String())

	newHash := HashH(buf[:])
	return &newHash
}

// nextLevel pads an odd level by repeating its last element and hashes every
// adjacent pair.
func nextLevel(level []Hash) []Hash {
	if len(level)%2 != 0 {
		level = append(level, level[len(level)-1])
	}

	parents := make([]Hash, 0, len(level)/2)
	for i := 0; i < len(level); i += 2 {
		parents = append(parents, *HashMerkleBranches(&level[i], &level[i+1]))
	}
	return parents
}

// MerkleTreeRoot reduces an ordered list of hashes to a single root.
// It returns nil for an empty list; a single hash is its own root.
// The input slice is never modified.
func MerkleTreeRoot(hashes []Hash) *Hash {
	if len(hashes) == 0 {
		return nil
	}

	level := make([]Hash, len(hashes), len(hashes)+1)
	copy(level, hashes)

	for len(level) > 1 {
		level = nextLevel(level)
	}

	root := level[0]
	return &root
}

// BuildMerkleTreeProof returns the siblings needed to fold the first hash of
// the list back up to the root, bottom level first.
func BuildMerkleTreeProof(hashes []Hash) []Hash {
	proof := make([]Hash, 0)
	if len(hashes) == 0 {
		return proof
	}

	level := make([]Hash, len(hashes), len(hashes)+1)
	copy(level, hashes)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		proof = append(proof, level[1])
		level = nextLevel(level)
	}

	return proof
}

// ValidateMerkleTreeProof checks that leaf, folded with proof, yields root.
func ValidateMerkleTreeProof(leaf Hash, proof []Hash, root *Hash) bool {
	if root == nil {
		return false
	}

	acc := &leaf
	for i := range proof {
		acc = HashMerkleBranches(acc, &proof[i])
	}

	return acc.IsEqual(root)
}
