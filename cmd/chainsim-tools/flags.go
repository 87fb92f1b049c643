// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.
package main

import (
	"github.com/urfave/cli/v2"
	"gitlab.com/jaxnet/chainsim/config"
)

const (
	flagBlock      = "block"
	flagDebugLevel = "debuglevel"
	flagDifficulty = "difficulty"
	flagOut        = "out"
	flagProof      = "proof"
	flagReplica    = "replica"
	flagShowBlocks = "blocks"
	flagStore      = "store"
)

var standardFlags = map[string]cli.Flag{
	flagStore: &cli.StringFlag{
		Name:    flagStore,
		Aliases: []string{"s"},
		Value:   config.DefaultSnapshotDir(),
		EnvVars: []string{"CHAINSIM_STORE"},
		Usage:   "path to the badger snapshot store written by chainsim --snapshotdir",
	},
	flagDebugLevel: &cli.StringFlag{
		Name:    flagDebugLevel,
		Aliases: []string{"d"},
		Value:   "warn",
		Usage:   "logging level or <subsystem>=<level> pairs",
	},
	flagReplica: &cli.IntFlag{
		Name:     flagReplica,
		Aliases:  []string{"r"},
		Usage:    "index of the replica",
		Required: true,
	},
	flagBlock: &cli.IntFlag{
		Name:     flagBlock,
		Aliases:  []string{"b"},
		Usage:    "index of the block",
		Required: true,
	},
	flagShowBlocks: &cli.BoolFlag{
		Name:  flagShowBlocks,
		Usage: "print the blocks of every replica",
	},
	flagOut: &cli.StringFlag{
		Name:     flagOut,
		Aliases:  []string{"o"},
		Usage:    "path of the CSV file to write",
		Required: true,
	},
	flagProof: &cli.BoolFlag{
		Name:  flagProof,
		Usage: "also print the inclusion proof of the first hash",
	},
	flagDifficulty: &cli.IntFlag{
		Name:  flagDifficulty,
		Value: 2,
		Usage: "leading zero hex characters of the surveyed chains",
	},
}
