// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gitlab.com/jaxnet/chainsim/config"
	"gitlab.com/jaxnet/chainsim/network"
	"gitlab.com/jaxnet/chainsim/node/snapshot"
	"gitlab.com/jaxnet/chainsim/report"
)

// minorCorruptionBlock is the block of replica 0 falsified by the minor
// corruption step.
const minorCorruptionBlock = 3

// ErrUnexpectedOutcome is returned when a scenario step does not end with
// the vote it is expected to produce.
var ErrUnexpectedOutcome = errors.New("unexpected scenario outcome")

// simulator drives the replica network through the reference scenario and
// prints every step to out.
type simulator struct {
	cfg *config.Config
	out io.Writer
	log zerolog.Logger
	net *network.Network
}

func newSimulator(cfg *config.Config, out io.Writer, log zerolog.Logger) *simulator {
	return &simulator{cfg: cfg, out: out, log: log}
}

func (s *simulator) section(format string, args ...interface{}) {
	fmt.Fprintf(s.out, "\n--- "+format+" ---\n", args...)
}

func (s *simulator) displayAll() {
	for i, replica := range s.net.Replicas() {
		fmt.Fprintf(s.out, "\n=== Replica %d (root %s) ===\n", i, report.ShortHash(*replica.MerkleRoot()))
		report.ChainTable(s.out, replica)
	}
}

// vote prints the status of every replica and returns the validity of
// each one along with the majority outcome.
func (s *simulator) vote() ([]bool, bool) {
	st := s.net.Status()
	report.StatusTable(s.out, st)

	valid := make([]bool, len(st.Reports))
	for i, r := range st.Reports {
		valid[i] = r.Valid()
	}
	return valid, st.Majority
}

// build mines the replicas of the network.
func (s *simulator) build(ctx context.Context) error {
	// The corrupted block needs a successor for the broken link to show.
	if s.cfg.Blocks <= minorCorruptionBlock {
		return errors.Errorf("the scenario needs more than %d blocks -- configured [%d]",
			minorCorruptionBlock, s.cfg.Blocks)
	}

	s.section("Building %d replicas of %d blocks at difficulty %d",
		s.cfg.Nodes, s.cfg.Blocks+1, s.cfg.Difficulty)

	net, err := network.New(ctx, s.cfg.NetworkConfig())
	if err != nil {
		return errors.Wrap(err, "unable to build the network")
	}
	s.net = net
	s.displayAll()
	return nil
}

// run plays the scenario on a built network: validate, minor corruption,
// majority attack and rebuild, checking the vote after every step.
func (s *simulator) run(ctx context.Context) error {
	s.section("Initial validation")
	if valid, majority := s.vote(); !all(valid) || !majority {
		return errors.Wrap(ErrUnexpectedOutcome, "freshly built replicas must all be valid")
	}

	s.section("Minor corruption of replica 0, block %d", minorCorruptionBlock)
	s.net.Corrupt([]int{0}, []int{minorCorruptionBlock})
	s.displayAll()
	valid, majority := s.vote()
	if valid[0] || !all(valid[1:]) || !majority {
		return errors.Wrap(ErrUnexpectedOutcome, "only replica 0 may be invalid and the majority must hold")
	}
	s.log.Info().Bool("majority", majority).Msg("minor corruption survived")

	corrupted := s.net.SimulateMajorityAttack()
	s.section("Majority attack on replicas %v", corrupted)
	s.displayAll()
	if _, majority := s.vote(); majority {
		return errors.Wrap(ErrUnexpectedOutcome, "the majority must be lost after the attack")
	}
	s.log.Warn().Ints("replicas", corrupted).Msg("majority lost")

	s.section("Rebuilding every replica")
	if err := s.net.Rebuild(ctx); err != nil {
		return errors.Wrap(err, "unable to rebuild the network")
	}
	s.displayAll()
	if valid, majority := s.vote(); !all(valid) || !majority {
		return errors.Wrap(ErrUnexpectedOutcome, "rebuilt replicas must all be valid")
	}

	fmt.Fprintln(s.out, "\nAll replicas are valid again.")
	return nil
}

// saveSnapshots stores the current replicas in a badger database at dir.
func (s *simulator) saveSnapshots(dir string) error {
	store, err := snapshot.BadgerStore(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := snapshot.SaveAll(store, s.net.Replicas()); err != nil {
		return err
	}

	s.log.Info().Str("path", dir).Int("replicas", s.net.Size()).Msg("snapshots saved")
	return nil
}

func all(values []bool) bool {
	for _, v := range values {
		if !v {
			return false
		}
	}
	return true
}
