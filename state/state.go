// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides checkpoint-revert storage for the protocol components.
//
// Every external operation runs against a checkpoint: on failure the caller
// reverts, so no partial application is ever observable. Values are rlp raw
// bytes keyed by (component address, storage position), optionally backed by a
// kv store for persistence across restarts.
package state

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/vechain/restake/kv"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/stackedmap"
)

const readCacheSize = 2048

type storageKey struct {
	addr restake.Address
	key  restake.Bytes32
}

// State manages storage of the protocol components.
type State struct {
	store kv.GetPutter // nil for a pure in-memory state
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
	cache *lru.Cache // read-through cache of raw values from store
}

// New creates a state instance on top of the given store.
// store may be nil, in which case the state lives purely in memory.
func New(store kv.GetPutter) *State {
	cache, _ := lru.New(readCacheSize)
	s := &State{store: store, cache: cache}
	s.sm = stackedmap.New(s.readStore)
	// base layer, never popped
	s.sm.Push()
	return s
}

func (s *State) readStore(k storageKey) (rlp.RawValue, bool, error) {
	if s.store == nil {
		return nil, false, nil
	}
	if v, ok := s.cache.Get(k); ok {
		return v.(rlp.RawValue), true, nil
	}
	raw, err := s.store.Get(persistentKey(k))
	if err != nil {
		if s.store.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "read store")
	}
	s.cache.Add(k, rlp.RawValue(raw))
	return raw, true, nil
}

func persistentKey(k storageKey) []byte {
	return append(append(make([]byte, 0, 52), k.addr[:]...), k.key[:]...)
}

// GetStorage returns storage value for the given address and position.
func (s *State) GetStorage(addr restake.Address, key restake.Bytes32) (restake.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return restake.Bytes32{}, err
	}
	if len(raw) == 0 {
		return restake.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return restake.Bytes32{}, errors.Wrap(err, "decode storage")
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return restake.Blake2b(raw), nil
	}
	return restake.BytesToBytes32(content), nil
}

// SetStorage sets storage value for the given address and position.
func (s *State) SetStorage(addr restake.Address, key, value restake.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for the given address and position.
func (s *State) GetRawStorage(addr restake.Address, key restake.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SetRawStorage sets storage value in rlp raw.
func (s *State) SetRawStorage(addr restake.Address, key restake.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage sets storage value encoded by the given enc method.
func (s *State) EncodeStorage(addr restake.Address, key restake.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return err
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage gets and decodes storage value.
func (s *State) DecodeStorage(addr restake.Address, key restake.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns the checkpoint to be passed to RevertTo.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts state to the given checkpoint.
func (s *State) RevertTo(checkpoint int) {
	s.sm.PopTo(checkpoint)
}

// Commit flushes all storage writes into the backing store.
// It is a no-op for a pure in-memory state.
func (s *State) Commit() error {
	if s.store == nil {
		return nil
	}
	batch := s.store.NewBatch()
	var jerr error
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		s.cache.Remove(k)
		if len(v) == 0 {
			jerr = batch.Delete(persistentKey(k))
		} else {
			jerr = batch.Put(persistentKey(k), v)
		}
		return jerr == nil
	})
	if jerr != nil {
		return errors.Wrap(jerr, "commit state")
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "commit state")
	}
	return nil
}
