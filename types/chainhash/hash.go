// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the digest type used by blocks and Merkle roots.
//
// Digests are SHA-256 sums rendered as 64 lowercase hex characters. Unlike the
// bitcoin convention the bytes are not reversed for display: the hex form is
// exactly the order the hash function produced, because that text is itself
// fed back into the hash function when Merkle branches are combined.
package chainhash

import (
	"encoding/hex"

	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
)

// HashSize of array used to store hashes.  See Hash.
const HashSize = sha256.Size

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified a hash
// string that has the wrong number of characters.
var ErrHashStrSize = errors.Errorf("hash string must be %v characters", MaxHashStringSize)

// ZeroHash is the previous hash of every genesis block.
var ZeroHash Hash

// Hash is used in several of the chain messages and common structures.  It
// typically represents the double sha256 of data.
type Hash [HashSize]byte

// String returns the Hash as the lowercase hexadecimal string.
func (hash Hash) String() string {
	return hex.EncodeToString(hash[:])
}

// CloneBytes returns a copy of the bytes which represent the hash as a byte
// slice.
func (hash *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, hash[:])

	return newHash
}

// IsEqual returns true if target is the same as hash.
func (hash *Hash) IsEqual(target *Hash) bool {
	if hash == nil && target == nil {
		return true
	}
	if hash == nil || target == nil {
		return false
	}
	return *hash == *target
}

// MarshalText implements encoding.TextMarshaler.
func (hash Hash) MarshalText() ([]byte, error) {
	return []byte(hash.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (hash *Hash) UnmarshalText(text []byte) error {
	return Decode(hash, string(text))
}

// NewHashFromStr creates a Hash from a hash string.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the hexadecimal string encoding of a Hash to a destination.
func Decode(dst *Hash, src string) error {
	if len(src) != MaxHashStringSize {
		return ErrHashStrSize
	}

	var decoded Hash
	if _, err := hex.Decode(decoded[:], []byte(src)); err != nil {
		return errors.Wrap(err, "decode hash string")
	}

	*dst = decoded
	return nil
}

// HashB calculates hash(b) and returns the resulting bytes.
func HashB(b []byte) []byte {
	hash := sha256.Sum256(b)
	return hash[:]
}

// HashH calculates hash(b) and returns the resulting bytes as a Hash.
func HashH(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}
