// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegator

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/restake/checkpoints"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/reverts"
	"github.com/vechain/restake/storage"
)

var (
	slotTotalShares    = restake.BytesToBytes32([]byte("total-operator-shares"))
	slotOperatorShares = restake.BytesToBytes32([]byte("operator-shares"))
)

// SharesDelegator allocates a network's stake to operators proportionally:
// an operator's slashable stake is its share of the network-wide base
// min(activeSupply, networkLimit).
type SharesDelegator struct {
	base
}

// NewShares creates a share-proportional delegator.
func NewShares(ctx *storage.Context, pool Pool, opts Options) (*SharesDelegator, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &SharesDelegator{base: newBase(ctx, pool, opts)}, nil
}

func (d *SharesDelegator) totalSharesOf(network restake.Address) *checkpoints.Trace {
	return checkpoints.NewTrace(d.ctx, restake.Blake2b(slotTotalShares.Bytes(), network.Bytes()))
}

func (d *SharesDelegator) operatorSharesOf(network, operator restake.Address) *checkpoints.Trace {
	return checkpoints.NewTrace(d.ctx, restake.Blake2b(slotOperatorShares.Bytes(), pairKey{network, operator}.Bytes()))
}

// SetOperatorNetworkShares reassigns an operator's share of the network's
// allocation, adjusting the network total by the difference.
func (d *SharesDelegator) SetOperatorNetworkShares(network, operator restake.Address, shares *big.Int, now uint64) (err error) {
	defer d.ctx.RevertOnError(d.ctx.NewCheckpoint(), &err)

	if network.IsZero() || operator.IsZero() {
		return reverts.Validation("zero address")
	}
	if shares == nil || shares.Sign() < 0 {
		return reverts.Validation("invalid share amount")
	}

	opTrace := d.operatorSharesOf(network, operator)
	old, err := opTrace.Latest()
	if err != nil {
		return err
	}
	totalTrace := d.totalSharesOf(network)
	total, err := totalTrace.Latest()
	if err != nil {
		return err
	}

	newTotal := new(big.Int).Sub(total, old)
	newTotal.Add(newTotal, shares)
	if err := totalTrace.Push(now, newTotal); err != nil {
		return err
	}
	if err := opTrace.Push(now, shares); err != nil {
		return err
	}
	logger.Debug("operator shares set", "network", network, "operator", operator, "shares", shares)
	return nil
}

// TotalOperatorSharesAt returns the network-wide share total as of timestamp.
func (d *SharesDelegator) TotalOperatorSharesAt(network restake.Address, timestamp uint64) (*big.Int, error) {
	return d.totalSharesOf(network).UpperLookupRecent(timestamp)
}

// OperatorSharesAt returns an operator's shares as of timestamp.
func (d *SharesDelegator) OperatorSharesAt(network, operator restake.Address, timestamp uint64) (*big.Int, error) {
	return d.operatorSharesOf(network, operator).UpperLookupRecent(timestamp)
}

// OperatorNetworkStakeAt returns the operator's slashable stake as of
// timestamp: opShares/totalShares of min(activeSupply, networkLimit).
func (d *SharesDelegator) OperatorNetworkStakeAt(network, operator restake.Address, timestamp uint64) (*big.Int, error) {
	opShares, err := d.OperatorSharesAt(network, operator, timestamp)
	if err != nil {
		return nil, err
	}
	if opShares.Sign() == 0 {
		return new(big.Int), nil
	}
	total, err := d.TotalOperatorSharesAt(network, timestamp)
	if err != nil {
		return nil, err
	}
	if total.Sign() == 0 {
		return new(big.Int), nil
	}
	stake, err := d.NetworkStakeAt(network, timestamp)
	if err != nil {
		return nil, err
	}
	return restake.MulDiv(opShares, stake, total), nil
}

// OperatorNetworkStake returns the operator's slashable stake at now.
func (d *SharesDelegator) OperatorNetworkStake(network, operator restake.Address, now uint64) (*big.Int, error) {
	return d.OperatorNetworkStakeAt(network, operator, now)
}

// OperatorNetworkStakeIn returns the operator's slashable stake at
// now+duration, reading every underlying series at the future instant.
func (d *SharesDelegator) OperatorNetworkStakeIn(network, operator restake.Address, now, duration uint64) (*big.Int, error) {
	return d.OperatorNetworkStakeAt(network, operator, now+duration)
}
