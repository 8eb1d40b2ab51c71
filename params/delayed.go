// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params implements the delayed parameter pattern shared by network
// limits, operator limits and the vault's slasher pointer: a decrease must
// not take effect until a future epoch boundary, so stake a network has
// already been promised is never retroactively under-collateralized, while
// an increase only grows available capacity and applies instantly.
package params

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/storage"
)

type body struct {
	Current   *big.Int
	Pending   *big.Int `rlp:"nil"`
	PendingAt uint64
}

// Delayed is a two-slot parameter: the current value plus at most one
// scheduled change.
type Delayed struct {
	slot *storage.Raw[*body]
}

// NewDelayed creates a delayed parameter at pos.
func NewDelayed(ctx *storage.Context, pos restake.Bytes32) *Delayed {
	return &Delayed{slot: storage.NewRaw[*body](ctx, pos)}
}

func (d *Delayed) load() (*body, error) {
	b, err := d.slot.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get delayed parameter")
	}
	if b == nil {
		return &body{Current: new(big.Int)}, nil
	}
	return b, nil
}

// Set applies or schedules newValue.
// A stale pending slot (effective time passed) is committed first. Then a
// decrease is scheduled to take effect at epochStart + delayEpochs*epochDuration,
// while an increase (or no-op) applies immediately and clears any pending slot.
func (d *Delayed) Set(newValue *big.Int, delayEpochs, epochStart, epochDuration, now uint64) error {
	if newValue == nil || newValue.Sign() < 0 {
		return errors.New("invalid parameter value")
	}
	b, err := d.load()
	if err != nil {
		return err
	}
	if b.Pending != nil && b.PendingAt <= now {
		b.Current = b.Pending
		b.Pending = nil
		b.PendingAt = 0
	}

	if newValue.Cmp(b.Current) < 0 {
		b.Pending = newValue
		b.PendingAt = epochStart + delayEpochs*epochDuration
	} else {
		b.Current = newValue
		b.Pending = nil
		b.PendingAt = 0
	}
	return d.slot.Put(b)
}

// Schedule applies or schedules newValue regardless of direction: the first
// write applies immediately, every later change takes effect at effectiveAt.
// Used where "smaller" carries no meaning, such as the vault's slasher pointer.
func (d *Delayed) Schedule(newValue *big.Int, effectiveAt, now uint64) error {
	if newValue == nil || newValue.Sign() < 0 {
		return errors.New("invalid parameter value")
	}
	b, err := d.load()
	if err != nil {
		return err
	}
	if b.Pending != nil && b.PendingAt <= now {
		b.Current = b.Pending
		b.Pending = nil
		b.PendingAt = 0
	}

	if b.Current.Sign() == 0 {
		b.Current = newValue
		b.Pending = nil
		b.PendingAt = 0
	} else {
		b.Pending = newValue
		b.PendingAt = effectiveAt
	}
	return d.slot.Put(b)
}

// At returns the parameter value effective at the given time.
func (d *Delayed) At(time uint64) (*big.Int, error) {
	b, err := d.load()
	if err != nil {
		return nil, err
	}
	if b.Pending != nil && b.PendingAt <= time {
		return b.Pending, nil
	}
	return b.Current, nil
}

// Pending returns the scheduled value and its effective time,
// or nil if no change is outstanding.
func (d *Delayed) Pending() (*big.Int, uint64, error) {
	b, err := d.load()
	if err != nil {
		return nil, 0, err
	}
	return b.Pending, b.PendingAt, nil
}
