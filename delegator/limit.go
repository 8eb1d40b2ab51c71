// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegator

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/restake/params"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/reverts"
	"github.com/vechain/restake/storage"
)

var slotOperatorLimit = restake.BytesToBytes32([]byte("operator-network-limit"))

// LimitDelegator allocates a network's stake via absolute per-operator
// limits: an operator's slashable stake is
// min(operatorLimit, networkLimit, activeSupply), independent of any
// proportional split.
type LimitDelegator struct {
	base
}

// NewLimit creates a full-restake delegator.
func NewLimit(ctx *storage.Context, pool Pool, opts Options) (*LimitDelegator, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &LimitDelegator{base: newBase(ctx, pool, opts)}, nil
}

func (d *LimitDelegator) operatorLimitOf(network, operator restake.Address) *params.Delayed {
	return params.NewDelayed(d.ctx, restake.Blake2b(slotOperatorLimit.Bytes(), pairKey{network, operator}.Bytes()))
}

// SetOperatorNetworkLimit assigns an operator's absolute limit. Gated by the
// network's ceiling like the network limit itself, and decreases wait for the
// same epoch delay.
func (d *LimitDelegator) SetOperatorNetworkLimit(network, operator restake.Address, amount *big.Int, now uint64) (err error) {
	defer d.ctx.RevertOnError(d.ctx.NewCheckpoint(), &err)

	if network.IsZero() || operator.IsZero() {
		return reverts.Validation("zero address")
	}
	if amount == nil || amount.Sign() < 0 {
		return reverts.Validation("invalid operator limit")
	}
	maxLimit, err := d.maxLimitOf(network).Get()
	if err != nil {
		return err
	}
	if maxLimit.Sign() == 0 {
		return reverts.State("max network limit not set")
	}
	if amount.Cmp(maxLimit) > 0 {
		return reverts.Validation("operator limit exceeds ceiling")
	}
	current, err := d.pool.CurrentEpoch(now)
	if err != nil {
		return err
	}
	return d.operatorLimitOf(network, operator).Set(amount, d.limitDelayEpochs, d.pool.EpochStart(current), d.pool.EpochDuration(), now)
}

// OperatorNetworkLimitAt returns the operator's limit effective at timestamp.
func (d *LimitDelegator) OperatorNetworkLimitAt(network, operator restake.Address, timestamp uint64) (*big.Int, error) {
	return d.operatorLimitOf(network, operator).At(timestamp)
}

// OperatorNetworkStakeAt returns the operator's slashable stake as of timestamp.
func (d *LimitDelegator) OperatorNetworkStakeAt(network, operator restake.Address, timestamp uint64) (*big.Int, error) {
	opLimit, err := d.OperatorNetworkLimitAt(network, operator, timestamp)
	if err != nil {
		return nil, err
	}
	if opLimit.Sign() == 0 {
		return new(big.Int), nil
	}
	stake, err := d.NetworkStakeAt(network, timestamp)
	if err != nil {
		return nil, err
	}
	return restake.BigMin(opLimit, stake), nil
}

// OperatorNetworkStake returns the operator's slashable stake at now.
func (d *LimitDelegator) OperatorNetworkStake(network, operator restake.Address, now uint64) (*big.Int, error) {
	return d.OperatorNetworkStakeAt(network, operator, now)
}

// OperatorNetworkStakeIn returns the operator's slashable stake at now+duration.
func (d *LimitDelegator) OperatorNetworkStakeIn(network, operator restake.Address, now, duration uint64) (*big.Int, error) {
	return d.OperatorNetworkStakeAt(network, operator, now+duration)
}
