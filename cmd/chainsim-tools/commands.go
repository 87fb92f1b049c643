// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.
package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gitlab.com/jaxnet/chainsim/network"
	"gitlab.com/jaxnet/chainsim/node/blockchain"
	"gitlab.com/jaxnet/chainsim/node/snapshot"
	"gitlab.com/jaxnet/chainsim/report"
	"gitlab.com/jaxnet/chainsim/types/chainhash"
)

// surveyPatterns are the blocks falsified in each surveyed chain. The first
// two chains stay intact; the last one includes genesis.
var surveyPatterns = [][]int{
	nil,
	nil,
	{3},
	{2, 4, 6},
	{1, 2, 3, 4},
	{5, 6, 7, 8},
	{1, 2, 3, 4, 5, 6, 7, 8},
	{1, 3, 5, 7},
	{0, 1, 2, 3, 4, 5, 6, 7, 8},
}

func loadReplicas(path string) ([]int, []*blockchain.Chain, error) {
	store, err := snapshot.BadgerStore(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to open snapshot store")
	}
	defer store.Close()

	ids, chains, err := snapshot.RestoreAll(store)
	if err != nil {
		return nil, nil, err
	}
	if len(chains) == 0 {
		return nil, nil, errors.Errorf("no replicas stored at %s", path)
	}
	return ids, chains, nil
}

func statusOf(ids []int, chains []*blockchain.Chain) network.Status {
	st := network.Status{Size: len(chains), Replicas: ids}
	for _, c := range chains {
		r := c.Validate()
		if r.Valid() {
			st.Valid++
		}
		st.Reports = append(st.Reports, r)
	}
	st.Majority = st.Valid > st.Size/2
	return st
}

func (app *App) InspectCmd(c *cli.Context) error {
	ids, chains, err := loadReplicas(c.String(flagStore))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if c.Bool(flagShowBlocks) {
		for i, chain := range chains {
			fmt.Fprintf(app.out, "\n=== Replica %d ===\n", ids[i])
			report.ChainTable(app.out, chain)
		}
	}

	report.StatusTable(app.out, statusOf(ids, chains))
	return nil
}

func (app *App) DumpCmd(c *cli.Context) error {
	store, err := snapshot.BadgerStore(c.String(flagStore))
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "unable to open snapshot store"), 1)
	}
	defer store.Close()

	replica := c.Int(flagReplica)
	s, ok, err := store.Get(replica)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if !ok {
		return cli.NewExitError(errors.Errorf("replica %d is not stored", replica), 1)
	}

	block, ok := s.Block(c.Int(flagBlock))
	if !ok {
		return cli.NewExitError(errors.Errorf("replica %d has no block %d", replica, c.Int(flagBlock)), 1)
	}

	spew.Fdump(app.out, block)
	fmt.Fprintf(app.out, "recomputed hash: %s\n", block.RecomputeHash())
	return nil
}

func (app *App) ExportFindingsCmd(c *cli.Context) error {
	ids, chains, err := loadReplicas(c.String(flagStore))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	rows := report.FindingRows(statusOf(ids, chains))
	if err := report.WriteFindingsCSV(c.String(flagOut), rows); err != nil {
		return cli.NewExitError(errors.Wrap(err, "unable to write findings"), 1)
	}

	fmt.Fprintf(app.out, "%d findings written to %s\n", len(rows), c.String(flagOut))
	return nil
}

func (app *App) MerkleRootCmd(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.NewExitError("at least one hash is required", 1)
	}

	hashes := make([]chainhash.Hash, 0, c.NArg())
	for _, arg := range c.Args().Slice() {
		h, err := chainhash.NewHashFromStr(arg)
		if err != nil {
			return cli.NewExitError(errors.Wrapf(err, "invalid hash %q", arg), 1)
		}
		hashes = append(hashes, *h)
	}

	fmt.Fprintln(app.out, chainhash.MerkleTreeRoot(hashes))

	if c.Bool(flagProof) {
		for i, h := range chainhash.BuildMerkleTreeProof(hashes) {
			fmt.Fprintf(app.out, "proof[%d]: %s\n", i, h)
		}
	}
	return nil
}

func (app *App) SurveyCmd(c *cli.Context) error {
	cfg := network.Config{
		NodeCount:  len(surveyPatterns),
		Difficulty: c.Int(flagDifficulty),
		Payloads:   network.DefaultPayloads(len(surveyPatterns) - 1),
	}

	net, err := network.New(c.Context, cfg)
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "unable to mine the surveyed chains"), 1)
	}

	// Falsified chains keep the root computed when they were mined.
	for i, blocks := range surveyPatterns {
		if len(blocks) == 0 {
			continue
		}
		fmt.Fprintf(app.out, "chain %d: falsifying blocks %v\n", i, blocks)

		replica, _ := net.Replica(i)
		for _, b := range blocks {
			replica.TamperBlock(b, network.TamperData)
		}
	}

	report.StatusTable(app.out, net.Status())
	return nil
}
