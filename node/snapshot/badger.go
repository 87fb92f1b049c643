// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package snapshot

import (
	"encoding/binary"

	badger "github.com/dgraph-io/badger"
	"github.com/pkg/errors"
)

const replicaKeyPrefix = 0x01

type badgerStore struct {
	db *badger.DB
}

// BadgerStore opens, or creates, a badger database at path.
func BadgerStore(path string) (IStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path))
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot db at %s", path)
	}

	log.Debug().Str("path", path).Msg("snapshot db opened")
	return &badgerStore{db: db}, nil
}

func (b *badgerStore) Close() error {
	return b.db.Close()
}

func replicaKey(replica int) []byte {
	key := make([]byte, 9)
	key[0] = replicaKeyPrefix
	binary.BigEndian.PutUint64(key[1:9], uint64(replica))
	return key
}

func (b *badgerStore) Put(s *ChainSnapshot) error {
	if s.Replica < 0 {
		return errors.Errorf("negative replica index %d", s.Replica)
	}

	data, err := Encode(s)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(replicaKey(s.Replica), data)
	})
}

func (b *badgerStore) Get(replica int) (*ChainSnapshot, bool, error) {
	if replica < 0 {
		return nil, false, nil
	}

	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(replicaKey(replica))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read replica %d", replica)
	}

	s, err := Decode(data)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Replicas lists stored replica indices. Keys are big-endian, so badger's
// key order is already index order.
func (b *badgerStore) Replicas() ([]int, error) {
	var ids []int
	prefix := []byte{replicaKeyPrefix}

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().Key()
			ids = append(ids, int(binary.BigEndian.Uint64(k[1:9])))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list replicas")
	}
	return ids, nil
}
