// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/restake/metrics"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/reverts"
	"github.com/vechain/restake/storage"
)

var metricSlashed = metrics.LazyLoadCounter("vault_slash_count")

// OnSlash seizes up to amount of collateral against an offense observed at
// captureTimestamp and routes it to the burn sink. Only the vault's effective
// slasher may call it.
//
// The seizure is spread pro rata over the pools that were slashable at the
// capture instant and still exist: the active pool plus the not-yet-matured
// withdrawal buckets. Funds withdrawn before capture and already matured are
// out of reach, so a capture epoch older than the previous one is rejected.
// Share totals stay untouched; only underlying shrinks, which is what dilutes
// every holder of the affected pools equally.
//
// Returns the amount actually seized, which is amount clamped to what the
// reachable pools hold.
func (v *Vault) OnSlash(caller restake.Address, amount *big.Int, captureTimestamp, now uint64) (seized *big.Int, err error) {
	defer v.ctx.RevertOnError(v.ctx.NewCheckpoint(), &err)

	if amount == nil || amount.Sign() <= 0 {
		return nil, reverts.Validation("slash amount must be positive")
	}
	slasher, err := v.Slasher(now)
	if err != nil {
		return nil, err
	}
	if slasher.IsZero() || caller != slasher {
		return nil, reverts.Authorization("caller is not the vault slasher")
	}
	if captureTimestamp > now {
		return nil, reverts.Temporal("capture timestamp in the future")
	}

	current, err := v.CurrentEpoch(now)
	if err != nil {
		return nil, err
	}
	capture, err := v.EpochAt(captureTimestamp)
	if err != nil {
		return nil, err
	}
	if capture != current && capture+1 != current {
		return nil, reverts.Temporal("capture epoch out of the slashable window")
	}

	active, err := v.ActiveSupply()
	if err != nil {
		return nil, err
	}
	curW, err := v.Withdrawals(current)
	if err != nil {
		return nil, err
	}
	nextW, err := v.Withdrawals(current + 1)
	if err != nil {
		return nil, err
	}

	var activeCut, curWCut, nextWCut *big.Int
	if capture == current {
		// w[current] matured relative to the capture epoch, only the
		// active pool and the next bucket are reachable.
		total := new(big.Int).Add(active, nextW)
		seize := restake.BigMin(amount, total)
		if seize.Sign() == 0 {
			return new(big.Int), nil
		}
		activeCut = restake.MulDiv(seize, active, total)
		nextWCut = new(big.Int).Sub(seize, activeCut)
		if nextWCut.Cmp(nextW) > 0 {
			excess := new(big.Int).Sub(nextWCut, nextW)
			nextWCut = nextW
			activeCut = activeCut.Add(activeCut, excess)
		}
		curWCut = new(big.Int)
	} else {
		total := new(big.Int).Add(active, curW)
		total.Add(total, nextW)
		seize := restake.BigMin(amount, total)
		if seize.Sign() == 0 {
			return new(big.Int), nil
		}
		activeCut = restake.MulDiv(seize, active, total)
		nextWCut = restake.MulDiv(seize, nextW, total)
		curWCut = new(big.Int).Sub(seize, activeCut)
		curWCut.Sub(curWCut, nextWCut)
		// rounding remainders land on w[current]; shift any overflow to
		// the later bucket first, then to the active pool
		if curWCut.Cmp(curW) > 0 {
			excess := new(big.Int).Sub(curWCut, curW)
			curWCut = curW
			nextWCut = nextWCut.Add(nextWCut, excess)
		}
		if nextWCut.Cmp(nextW) > 0 {
			excess := new(big.Int).Sub(nextWCut, nextW)
			nextWCut = nextW
			activeCut = activeCut.Add(activeCut, excess)
		}
	}

	if activeCut.Sign() > 0 {
		if err := v.activeSupply.Push(now, new(big.Int).Sub(active, activeCut)); err != nil {
			return nil, err
		}
	}
	if curWCut.Sign() > 0 {
		if err := v.cutBucket(current, curWCut); err != nil {
			return nil, err
		}
	}
	if nextWCut.Sign() > 0 {
		if err := v.cutBucket(current+1, nextWCut); err != nil {
			return nil, err
		}
	}

	seized = new(big.Int).Add(activeCut, curWCut)
	seized.Add(seized, nextWCut)
	if err := v.collateral.IssueDebt(v.Address(), v.burner, seized); err != nil {
		return nil, errors.Wrap(err, "failed to issue debt")
	}

	metricSlashed().Add(1)
	logger.Info("slashed", "caller", caller, "requested", amount, "seized", seized, "captureEpoch", capture)
	return seized, nil
}

func (v *Vault) cutBucket(epoch uint64, cut *big.Int) error {
	b, err := v.withdrawals.Get(storage.UintKey(epoch))
	if err != nil {
		return errors.Wrap(err, "failed to get withdrawal bucket")
	}
	b.normalize()
	if b.Underlying.Cmp(cut) < 0 {
		return reverts.State("slash cut exceeds bucket holdings")
	}
	b.Underlying = new(big.Int).Sub(b.Underlying, cut)
	return v.withdrawals.Set(storage.UintKey(epoch), b)
}
