// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/restake/restake"
)

// Key is anything that can be used as a mapping key.
type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction similar to the mapping in Solidity.
// Value positions are derived by hashing the key with the mapping's base position,
// values are stored as rlp-encoded bodies.
type Mapping[K Key, V any] struct {
	context *Context
	basePos restake.Bytes32
}

// NewMapping creates a mapping rooted at pos.
func NewMapping[K Key, V any](context *Context, pos restake.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) restake.Bytes32 {
	return restake.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get retrieves the value for the key.
// An absent entry decodes to the value type's zero; pointer-typed values come
// back non-nil so callers can always mutate the body in place.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if reflect.ValueOf(&value).Elem().Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Has returns whether the key holds a non-empty entry.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	var found bool
	err := m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		found = len(raw) > 0
		return nil
	})
	return found, err
}

// Set stores the value for the key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete clears the entry for the key.
func (m *Mapping[K, V]) Delete(key K) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return nil, nil
	})
}
