// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/restake/restake"
)

// Uint256 is a wrapper for storage and retrieval of a 256-bit word, similar to
// storing an uint256 in a smart contract. Arithmetic is overflow-checked.
type Uint256 struct {
	context *Context
	pos     restake.Bytes32
}

// NewUint256 creates a 256-bit word slot at pos.
func NewUint256(context *Context, pos restake.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

// Get retrieves the word as a big.Int, zero when the slot is empty.
func (u *Uint256) Get() (*big.Int, error) {
	stored, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	word := new(uint256.Int).SetBytes(stored.Bytes())
	return word.ToBig(), nil
}

// Set stores the value. Values wider than 256 bits are rejected.
func (u *Uint256) Set(value *big.Int) error {
	word, overflow := uint256.FromBig(value)
	if overflow {
		return errors.New("value exceeds 256 bits")
	}
	u.context.state.SetStorage(u.context.address, u.pos, restake.BytesToBytes32(word.Bytes()))
	return nil
}

// Add increases the stored word by value.
func (u *Uint256) Add(value *big.Int) error {
	stored, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return err
	}
	delta, overflow := uint256.FromBig(value)
	if overflow {
		return errors.New("value exceeds 256 bits")
	}
	word := new(uint256.Int).SetBytes(stored.Bytes())
	if _, overflow = word.AddOverflow(word, delta); overflow {
		return errors.New("uint256 overflow")
	}
	u.context.state.SetStorage(u.context.address, u.pos, restake.BytesToBytes32(word.Bytes()))
	return nil
}

// Sub decreases the stored word by value.
func (u *Uint256) Sub(value *big.Int) error {
	stored, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return err
	}
	delta, overflow := uint256.FromBig(value)
	if overflow {
		return errors.New("value exceeds 256 bits")
	}
	word := new(uint256.Int).SetBytes(stored.Bytes())
	if _, underflow := word.SubOverflow(word, delta); underflow {
		return errors.New("uint256 underflow")
	}
	u.context.state.SetStorage(u.context.address, u.pos, restake.BytesToBytes32(word.Bytes()))
	return nil
}
