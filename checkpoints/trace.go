// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package checkpoints implements an append-only, timestamp-ordered log of
// (time, value) pairs with "latest" and "value as of time T" lookups.
// Everything time-aware in the protocol core is built on it.
package checkpoints

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/storage"
)

// Checkpoint is a single (time, value) entry.
type Checkpoint struct {
	Timestamp uint64
	Value     *big.Int
}

// Trace is a series of checkpoints with strictly increasing timestamps,
// except repeated pushes at the exact same instant, which coalesce.
//
// Entries may carry timestamps in the future: a future-dated tail is how
// delayed parameter changes (e.g. resolver shares) are scheduled. Lookups
// stay correct because they always compare against the queried time.
type Trace struct {
	length  *storage.Raw[uint64]
	entries *storage.Mapping[storage.UintKey, *Checkpoint]
}

// NewTrace creates a trace rooted at pos.
func NewTrace(ctx *storage.Context, pos restake.Bytes32) *Trace {
	return &Trace{
		length:  storage.NewRaw[uint64](ctx, pos),
		entries: storage.NewMapping[storage.UintKey, *Checkpoint](ctx, restake.Blake2b(pos.Bytes(), []byte("entries"))),
	}
}

// Len returns the number of checkpoints.
func (t *Trace) Len() (uint64, error) {
	return t.length.Get()
}

// Push appends a checkpoint.
// Pushing below the latest recorded time fails; pushing at the exact latest
// time overwrites that entry instead of appending.
func (t *Trace) Push(time uint64, value *big.Int) error {
	if value == nil {
		return errors.New("nil checkpoint value")
	}
	size, err := t.length.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get trace length")
	}
	if size > 0 {
		last, err := t.entries.Get(storage.UintKey(size - 1))
		if err != nil {
			return errors.Wrap(err, "failed to get latest checkpoint")
		}
		if time < last.Timestamp {
			return errors.New("checkpoint time below latest")
		}
		if time == last.Timestamp {
			return t.entries.Set(storage.UintKey(size-1), &Checkpoint{time, value})
		}
	}
	if err := t.entries.Set(storage.UintKey(size), &Checkpoint{time, value}); err != nil {
		return errors.Wrap(err, "failed to set checkpoint")
	}
	return t.length.Put(size + 1)
}

// Latest returns the most recent value, or 0 if the trace is empty.
func (t *Trace) Latest() (*big.Int, error) {
	ckp, err := t.LatestCheckpoint()
	if err != nil {
		return nil, err
	}
	if ckp == nil {
		return new(big.Int), nil
	}
	return ckp.Value, nil
}

// LatestCheckpoint returns the most recent checkpoint, or nil if the trace is empty.
func (t *Trace) LatestCheckpoint() (*Checkpoint, error) {
	size, err := t.length.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get trace length")
	}
	if size == 0 {
		return nil, nil
	}
	return t.entries.Get(storage.UintKey(size - 1))
}

// UpperLookupRecent returns the value of the latest checkpoint with timestamp
// <= time, or 0 if none exists. Most lookups target "now" or a small future
// offset, so the tail is checked before falling back to binary search.
func (t *Trace) UpperLookupRecent(time uint64) (*big.Int, error) {
	size, err := t.length.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get trace length")
	}
	if size == 0 {
		return new(big.Int), nil
	}

	last, err := t.entries.Get(storage.UintKey(size - 1))
	if err != nil {
		return nil, err
	}
	if last.Timestamp <= time {
		return last.Value, nil
	}

	// binary search for the rightmost entry at or before time
	lo, hi := uint64(0), size-1
	var result *big.Int
	for lo < hi {
		mid := (lo + hi) / 2
		ckp, err := t.entries.Get(storage.UintKey(mid))
		if err != nil {
			return nil, err
		}
		if ckp.Timestamp <= time {
			result = ckp.Value
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if result == nil {
		// time precedes the first entry
		return new(big.Int), nil
	}
	return result, nil
}
