// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package delegator implements the stake limit layer: given the vault's
// active supply and per-network delayed limits, it computes how much of a
// network's allocation is slashable for an operator, either proportionally
// to checkpointed shares or via absolute per-operator limits.
package delegator

import (
	"context"
	"math/big"
	"time"

	"github.com/vechain/restake/log"
	"github.com/vechain/restake/params"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/reverts"
	"github.com/vechain/restake/storage"
)

var logger = log.WithContext("pkg", "delegator")

const defaultHookTimeout = time.Second

var (
	slotMaxNetworkLimit = restake.BytesToBytes32([]byte("max-network-limit"))
	slotNetworkLimit    = restake.BytesToBytes32([]byte("network-limit"))
)

// Pool is the delegator's view of the vault.
type Pool interface {
	ActiveSupplyAt(timestamp uint64) (*big.Int, error)
	EpochDuration() uint64
	EpochStart(epoch uint64) uint64
	CurrentEpoch(now uint64) (uint64, error)
}

// Hook is the optional post-slash callback, letting a network re-parameterize
// its own limits right after a slash lands. It is strictly best-effort: the
// delegator bounds it with a deadline and discards any error.
type Hook func(ctx context.Context, network, operator restake.Address, slashed *big.Int, captureTimestamp uint64) error

// Options configures a delegator.
type Options struct {
	// LimitDelayEpochs is how many epochs a limit decrease waits before
	// taking effect. Zero means decreases apply at the next epoch boundary.
	LimitDelayEpochs uint64
	Hook             Hook
	HookTimeout      time.Duration
}

// base carries the state shared by both delegator variants.
type base struct {
	ctx  *storage.Context
	pool Pool

	limitDelayEpochs uint64
	hook             Hook
	hookTimeout      time.Duration
}

func newBase(ctx *storage.Context, pool Pool, opts Options) base {
	timeout := opts.HookTimeout
	if timeout <= 0 {
		timeout = defaultHookTimeout
	}
	delay := opts.LimitDelayEpochs
	if delay == 0 {
		delay = 1
	}
	return base{
		ctx:              ctx,
		pool:             pool,
		limitDelayEpochs: delay,
		hook:             opts.Hook,
		hookTimeout:      timeout,
	}
}

func (b *base) maxLimitOf(network restake.Address) *storage.Uint256 {
	return storage.NewUint256(b.ctx, restake.Blake2b(slotMaxNetworkLimit.Bytes(), network.Bytes()))
}

func (b *base) networkLimitOf(network restake.Address) *params.Delayed {
	return params.NewDelayed(b.ctx, restake.Blake2b(slotNetworkLimit.Bytes(), network.Bytes()))
}

// SetMaxNetworkLimit sets the ceiling a network grants over its own
// allocation. The first write may pick any positive value; afterwards the
// ceiling only ever shrinks.
func (b *base) SetMaxNetworkLimit(network restake.Address, amount *big.Int) (err error) {
	defer b.ctx.RevertOnError(b.ctx.NewCheckpoint(), &err)

	if network.IsZero() {
		return reverts.Validation("zero network address")
	}
	if amount == nil || amount.Sign() <= 0 {
		return reverts.Validation("max network limit must be positive")
	}
	slot := b.maxLimitOf(network)
	current, err := slot.Get()
	if err != nil {
		return err
	}
	if current.Sign() != 0 && amount.Cmp(current) >= 0 {
		return reverts.Validation("max network limit can only shrink")
	}
	return slot.Set(amount)
}

// MaxNetworkLimit returns the network's ceiling, zero if never set.
func (b *base) MaxNetworkLimit(network restake.Address) (*big.Int, error) {
	return b.maxLimitOf(network).Get()
}

// SetNetworkLimit assigns the portion of the pool delegated to a network.
// Decreases wait for the configured epoch delay so stake already promised is
// never retroactively under-collateralized; increases apply at once.
func (b *base) SetNetworkLimit(network restake.Address, amount *big.Int, now uint64) (err error) {
	defer b.ctx.RevertOnError(b.ctx.NewCheckpoint(), &err)

	if network.IsZero() {
		return reverts.Validation("zero network address")
	}
	if amount == nil || amount.Sign() < 0 {
		return reverts.Validation("invalid network limit")
	}
	maxLimit, err := b.maxLimitOf(network).Get()
	if err != nil {
		return err
	}
	if maxLimit.Sign() == 0 {
		return reverts.State("max network limit not set")
	}
	if amount.Cmp(maxLimit) > 0 {
		return reverts.Validation("network limit exceeds ceiling")
	}
	current, err := b.pool.CurrentEpoch(now)
	if err != nil {
		return err
	}
	return b.networkLimitOf(network).Set(amount, b.limitDelayEpochs, b.pool.EpochStart(current), b.pool.EpochDuration(), now)
}

// NetworkLimitAt returns the network limit effective at the given time,
// capped by the network's ceiling.
func (b *base) NetworkLimitAt(network restake.Address, timestamp uint64) (*big.Int, error) {
	limit, err := b.networkLimitOf(network).At(timestamp)
	if err != nil {
		return nil, err
	}
	maxLimit, err := b.maxLimitOf(network).Get()
	if err != nil {
		return nil, err
	}
	return restake.BigMin(limit, maxLimit), nil
}

// NetworkStakeAt is the network-wide slashable base: the smaller of the
// vault's active supply and the network limit, both read as of timestamp.
func (b *base) NetworkStakeAt(network restake.Address, timestamp uint64) (*big.Int, error) {
	limit, err := b.NetworkLimitAt(network, timestamp)
	if err != nil {
		return nil, err
	}
	supply, err := b.pool.ActiveSupplyAt(timestamp)
	if err != nil {
		return nil, err
	}
	return restake.BigMin(supply, limit), nil
}

// OnSlash notifies the network's hook that a slash has landed. The hook runs
// under a deadline and its failure never propagates, the slash is already
// committed by the time this is called.
func (b *base) OnSlash(network, operator restake.Address, slashed *big.Int, captureTimestamp uint64) {
	if b.hook == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.hookTimeout)
	defer cancel()
	if err := b.hook(ctx, network, operator, slashed, captureTimestamp); err != nil {
		logger.Warn("post-slash hook failed", "network", network, "operator", operator, "err", err)
	}
}

// pairKey keys per-(network, operator) entries.
type pairKey struct {
	network  restake.Address
	operator restake.Address
}

func (k pairKey) Bytes() []byte {
	b := make([]byte, 2*restake.AddressLength)
	copy(b, k.network.Bytes())
	copy(b[restake.AddressLength:], k.operator.Bytes())
	return b
}
