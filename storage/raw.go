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

// Raw is a single storage slot holding an rlp-encoded value.
type Raw[V any] struct {
	context *Context
	pos     restake.Bytes32
}

// NewRaw creates a raw slot at pos.
func NewRaw[V any](context *Context, pos restake.Bytes32) *Raw[V] {
	return &Raw[V]{context: context, pos: pos}
}

// Get retrieves the stored value, or the type's zero value when the slot is empty.
// Pointer-typed values stay nil for an empty slot so callers can tell "unset" apart.
func (r *Raw[V]) Get() (value V, err error) {
	err = r.context.state.DecodeStorage(r.context.address, r.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		if reflect.ValueOf(&value).Elem().Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Put stores the value.
func (r *Raw[V]) Put(value V) error {
	return r.context.state.EncodeStorage(r.context.address, r.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}
