// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault implements the pooled fund ledger: epoch-bucketed
// share/underlying accounting with one active pool plus one pool per
// pending-withdrawal epoch. Time is supplied by the caller on every
// operation and only ever compared, never polled.
package vault

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/restake/checkpoints"
	"github.com/vechain/restake/log"
	"github.com/vechain/restake/params"
	"github.com/vechain/restake/registry"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/reverts"
	"github.com/vechain/restake/storage"
)

var logger = log.WithContext("pkg", "vault")

var (
	slotActiveShares   = restake.BytesToBytes32([]byte("active-shares"))
	slotActiveSupply   = restake.BytesToBytes32([]byte("active-supply"))
	slotSharesOf       = restake.BytesToBytes32([]byte("active-shares-of"))
	slotWithdrawals    = restake.BytesToBytes32([]byte("withdrawals"))
	slotWithdrawalsOf  = restake.BytesToBytes32([]byte("withdrawal-shares-of"))
	slotClaimed        = restake.BytesToBytes32([]byte("withdrawals-claimed"))
	slotSlasherPointer = restake.BytesToBytes32([]byte("slasher-pointer"))
)

// Options configures a vault. The epoch schedule is immutable post-construction.
type Options struct {
	EpochInit     uint64 // timestamp at which epoch 0 begins
	EpochDuration uint64
	Burner        restake.Address // sink that seized collateral is routed to
}

// Vault is the pooled fund ledger.
type Vault struct {
	ctx        *storage.Context
	collateral registry.Collateral
	registry   registry.Registry

	epochInit     uint64
	epochDuration uint64
	burner        restake.Address

	activeShares  *checkpoints.Trace
	activeSupply  *checkpoints.Trace
	withdrawals   *storage.Mapping[storage.UintKey, *bucket]
	sharesOfBase  restake.Bytes32
	withdrawalsOf *storage.Mapping[epochAccountKey, *big.Int]
	claimed       *storage.Mapping[epochAccountKey, bool]
	slasher       *params.Delayed
}

// New creates a vault instance.
func New(ctx *storage.Context, collateral registry.Collateral, reg registry.Registry, opts Options) (*Vault, error) {
	if opts.EpochDuration == 0 {
		return nil, errors.New("epoch duration must be nonzero")
	}
	if collateral == nil {
		return nil, errors.New("collateral is required")
	}
	return &Vault{
		ctx:           ctx,
		collateral:    collateral,
		registry:      reg,
		epochInit:     opts.EpochInit,
		epochDuration: opts.EpochDuration,
		burner:        opts.Burner,
		activeShares:  checkpoints.NewTrace(ctx, slotActiveShares),
		activeSupply:  checkpoints.NewTrace(ctx, slotActiveSupply),
		withdrawals:   storage.NewMapping[storage.UintKey, *bucket](ctx, slotWithdrawals),
		sharesOfBase:  slotSharesOf,
		withdrawalsOf: storage.NewMapping[epochAccountKey, *big.Int](ctx, slotWithdrawalsOf),
		claimed:       storage.NewMapping[epochAccountKey, bool](ctx, slotClaimed),
		slasher:       params.NewDelayed(ctx, slotSlasherPointer),
	}, nil
}

// Address returns the vault's component address (its collateral custody account).
func (v *Vault) Address() restake.Address {
	return v.ctx.Address()
}

// Burner returns the burn sink address.
func (v *Vault) Burner() restake.Address {
	return v.burner
}

// EpochDuration returns the fixed epoch length.
func (v *Vault) EpochDuration() uint64 {
	return v.epochDuration
}

// EpochAt returns the epoch index containing the given timestamp.
func (v *Vault) EpochAt(timestamp uint64) (uint64, error) {
	if timestamp < v.epochInit {
		return 0, reverts.Temporal("timestamp precedes the epoch schedule")
	}
	return (timestamp - v.epochInit) / v.epochDuration, nil
}

// CurrentEpoch returns the epoch index at now.
// now must not precede the epoch schedule start.
func (v *Vault) CurrentEpoch(now uint64) (uint64, error) {
	return v.EpochAt(now)
}

// EpochStart returns the timestamp at which the given epoch begins.
func (v *Vault) EpochStart(epoch uint64) uint64 {
	return v.epochInit + epoch*v.epochDuration
}

func (v *Vault) sharesOf(account restake.Address) *checkpoints.Trace {
	return checkpoints.NewTrace(v.ctx, restake.Blake2b(v.sharesOfBase.Bytes(), account.Bytes()))
}

// ActiveShares returns the latest total active shares.
func (v *Vault) ActiveShares() (*big.Int, error) {
	return v.activeShares.Latest()
}

// ActiveSharesAt returns the total active shares as of the given timestamp.
func (v *Vault) ActiveSharesAt(timestamp uint64) (*big.Int, error) {
	return v.activeShares.UpperLookupRecent(timestamp)
}

// ActiveSupply returns the latest active pool underlying.
func (v *Vault) ActiveSupply() (*big.Int, error) {
	return v.activeSupply.Latest()
}

// ActiveSupplyAt returns the active pool underlying as of the given timestamp.
func (v *Vault) ActiveSupplyAt(timestamp uint64) (*big.Int, error) {
	return v.activeSupply.UpperLookupRecent(timestamp)
}

// ActiveSharesOf returns the latest active-share balance of an account.
func (v *Vault) ActiveSharesOf(account restake.Address) (*big.Int, error) {
	return v.sharesOf(account).Latest()
}

// ActiveSharesOfAt returns the active-share balance of an account as of the given timestamp.
func (v *Vault) ActiveSharesOfAt(account restake.Address, timestamp uint64) (*big.Int, error) {
	return v.sharesOf(account).UpperLookupRecent(timestamp)
}

// ActiveBalanceOf returns the underlying value of an account's active shares.
func (v *Vault) ActiveBalanceOf(account restake.Address) (*big.Int, error) {
	shares, err := v.ActiveSharesOf(account)
	if err != nil {
		return nil, err
	}
	totalShares, err := v.ActiveShares()
	if err != nil {
		return nil, err
	}
	if totalShares.Sign() == 0 {
		return new(big.Int), nil
	}
	supply, err := v.ActiveSupply()
	if err != nil {
		return nil, err
	}
	return restake.MulDiv(shares, supply, totalShares), nil
}

// Withdrawals returns the underlying queued in the given epoch's withdrawal bucket.
func (v *Vault) Withdrawals(epoch uint64) (*big.Int, error) {
	b, err := v.withdrawals.Get(storage.UintKey(epoch))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get withdrawal bucket")
	}
	b.normalize()
	return b.Underlying, nil
}

// WithdrawalSharesOf returns an account's claim shares against an epoch's bucket.
func (v *Vault) WithdrawalSharesOf(epoch uint64, account restake.Address) (*big.Int, error) {
	s, err := v.withdrawalsOf.Get(epochAccountKey{epoch, account})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get withdrawal shares")
	}
	if s == nil {
		return new(big.Int), nil
	}
	return s, nil
}

// IsClaimed returns whether the account already claimed the epoch's bucket.
func (v *Vault) IsClaimed(epoch uint64, account restake.Address) (bool, error) {
	return v.claimed.Get(epochAccountKey{epoch, account})
}

// SlashableSupply returns the total supply liable to slashing at now:
// the active pool plus the at-most-two withdrawal buckets not yet fully matured.
func (v *Vault) SlashableSupply(now uint64) (*big.Int, error) {
	current, err := v.CurrentEpoch(now)
	if err != nil {
		return nil, err
	}
	active, err := v.ActiveSupply()
	if err != nil {
		return nil, err
	}
	currentW, err := v.Withdrawals(current)
	if err != nil {
		return nil, err
	}
	nextW, err := v.Withdrawals(current + 1)
	if err != nil {
		return nil, err
	}
	total := new(big.Int).Add(active, currentW)
	return total.Add(total, nextW), nil
}

// SetSlasher points the vault at a slasher component. The first assignment
// applies immediately; any replacement takes effect only at the next epoch
// boundary, so an in-flight slash lifecycle cannot be cut short.
func (v *Vault) SetSlasher(slasher restake.Address, now uint64) (err error) {
	defer v.ctx.RevertOnError(v.ctx.NewCheckpoint(), &err)

	if slasher.IsZero() {
		return reverts.Validation("zero slasher address")
	}
	if v.registry != nil && !v.registry.IsEntity(slasher) {
		return reverts.Validation("slasher is not a registered entity")
	}
	current, err := v.CurrentEpoch(now)
	if err != nil {
		return err
	}
	effectiveAt := v.EpochStart(current + 1)
	if err := v.slasher.Schedule(new(big.Int).SetBytes(slasher.Bytes()), effectiveAt, now); err != nil {
		return errors.Wrap(err, "failed to set slasher")
	}
	logger.Info("slasher scheduled", "slasher", slasher, "effectiveAt", effectiveAt)
	return nil
}

// Slasher returns the slasher address effective at now.
func (v *Vault) Slasher(now uint64) (restake.Address, error) {
	raw, err := v.slasher.At(now)
	if err != nil {
		return restake.Address{}, err
	}
	return restake.BytesToAddress(raw.Bytes()), nil
}
