// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaindata

import (
	"fmt"
)

// ErrorCode identifies a kind of integrity problem found while validating a
// chain.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrHashMismatch indicates the stored hash of a block does not match
	// the digest recomputed from its contents.
	ErrHashMismatch ErrorCode = iota

	// ErrPrevHashMismatch indicates the previous hash stored in a block does
	// not match the hash of the block before it.
	ErrPrevHashMismatch

	// ErrDifficultyUnmet indicates the stored hash of a block does not have
	// the number of leading zero hex characters the chain requires.
	ErrDifficultyUnmet

	// ErrBadMerkleRoot indicates the cached Merkle root of a chain does not
	// match the root of its current block hashes.
	ErrBadMerkleRoot

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrHashMismatch:     "ErrHashMismatch",
	ErrPrevHashMismatch: "ErrPrevHashMismatch",
	ErrDifficultyUnmet:  "ErrDifficultyUnmet",
	ErrBadMerkleRoot:    "ErrBadMerkleRoot",
}

// Short human readable descriptions, used by reports.
var errorCodeDescriptions = map[ErrorCode]string{
	ErrHashMismatch:     "hash does not match block contents",
	ErrPrevHashMismatch: "previous hash does not link to prior block",
	ErrDifficultyUnmet:  "hash does not meet difficulty",
	ErrBadMerkleRoot:    "merkle root does not match block hashes",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Description returns a short sentence explaining the problem.
func (e ErrorCode) Description() string {
	if s := errorCodeDescriptions[e]; s != "" {
		return s
	}
	return e.String()
}

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a chain failed due to one of the many validation rules.  The
// caller can use type assertions to determine if a failure was specifically due
// to a rule violation and access the ErrorCode field to ascertain the specific
// reason for the rule violation.
type RuleError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// NewRuleError creates an RuleError given a set of arguments.
func NewRuleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// Finding is one problem found at one block position.
type Finding struct {
	BlockIndex int
	Kind       ErrorCode
}

func (f Finding) String() string {
	return fmt.Sprintf("block #%d: %s", f.BlockIndex, f.Kind.Description())
}
