// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package snapshot

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"gitlab.com/jaxnet/chainsim/node/blockchain"
)

// IStore keeps one snapshot per replica index.
type IStore interface {
	Put(s *ChainSnapshot) error
	Get(replica int) (res *ChainSnapshot, ok bool, err error)
	Replicas() ([]int, error)
	Close() error
}

// SaveAll snapshots every replica, in order, into store.
func SaveAll(store IStore, replicas []*blockchain.Chain) error {
	for i, c := range replicas {
		if err := store.Put(FromChain(i, c)); err != nil {
			return errors.Wrapf(err, "save replica %d", i)
		}
	}

	log.Debug().Int("replicas", len(replicas)).Msg("replicas saved")
	return nil
}

// RestoreAll restores every stored replica, in index order. The returned
// replicas[i] is the stored index of chains[i]; a store may be sparse.
func RestoreAll(store IStore) (replicas []int, chains []*blockchain.Chain, err error) {
	ids, err := store.Replicas()
	if err != nil {
		return nil, nil, err
	}

	replicas = make([]int, 0, len(ids))
	chains = make([]*blockchain.Chain, 0, len(ids))
	for _, id := range ids {
		s, ok, err := store.Get(id)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		c, err := s.Restore()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "restore replica %d", id)
		}
		replicas = append(replicas, id)
		chains = append(chains, c)
	}
	return replicas, chains, nil
}

type memoryStore struct {
	sync.RWMutex
	records map[int][]byte
}

// MemoryStore keeps encoded snapshots in a map. Every Get decodes a fresh
// copy, so callers never share state with the store.
func MemoryStore() IStore {
	return &memoryStore{records: make(map[int][]byte)}
}

func (m *memoryStore) Put(s *ChainSnapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}

	m.Lock()
	m.records[s.Replica] = data
	m.Unlock()
	return nil
}

func (m *memoryStore) Get(replica int) (*ChainSnapshot, bool, error) {
	m.RLock()
	data, ok := m.records[replica]
	m.RUnlock()
	if !ok {
		return nil, false, nil
	}

	s, err := Decode(data)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

func (m *memoryStore) Replicas() ([]int, error) {
	m.RLock()
	defer m.RUnlock()

	ids := make([]int, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (m *memoryStore) Close() error {
	return nil
}
