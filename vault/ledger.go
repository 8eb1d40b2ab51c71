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

var (
	metricDeposits    = metrics.LazyLoadCounter("vault_deposit_count")
	metricWithdrawals = metrics.LazyLoadCounter("vault_withdrawal_count")
	metricClaims      = metrics.LazyLoadCounter("vault_claim_count")
)

// Deposit moves amount of collateral from the depositor into the active pool
// and mints active shares at the prevailing share price. Returns the minted shares.
func (v *Vault) Deposit(depositor restake.Address, amount *big.Int, now uint64) (shares *big.Int, err error) {
	defer v.ctx.RevertOnError(v.ctx.NewCheckpoint(), &err)

	if amount == nil || amount.Sign() <= 0 {
		return nil, reverts.Validation("deposit amount must be positive")
	}

	supply, err := v.ActiveSupply()
	if err != nil {
		return nil, err
	}
	totalShares, err := v.ActiveShares()
	if err != nil {
		return nil, err
	}

	// first deposit, or a pool whose supply was fully slashed away, mints 1:1
	if supply.Sign() == 0 {
		shares = new(big.Int).Set(amount)
	} else {
		shares = restake.MulDiv(amount, totalShares, supply)
	}
	if shares.Sign() == 0 {
		return nil, reverts.Validation("deposit too small to mint shares")
	}

	if err := v.activeSupply.Push(now, new(big.Int).Add(supply, amount)); err != nil {
		return nil, err
	}
	if err := v.activeShares.Push(now, new(big.Int).Add(totalShares, shares)); err != nil {
		return nil, err
	}
	trace := v.sharesOf(depositor)
	balance, err := trace.Latest()
	if err != nil {
		return nil, err
	}
	if err := trace.Push(now, new(big.Int).Add(balance, shares)); err != nil {
		return nil, err
	}

	// external call last, so a failed transfer rolls the ledger back whole
	if err := v.collateral.Transfer(depositor, v.Address(), amount); err != nil {
		return nil, errors.Wrap(err, "failed to transfer collateral")
	}

	metricDeposits().Add(1)
	logger.Debug("deposit", "depositor", depositor, "amount", amount, "shares", shares)
	return shares, nil
}

// Withdraw moves amount of underlying out of the active pool into the
// withdrawal bucket of epoch current+1, where it stays slashable until that
// epoch ends. Burned active shares round up so the pool never underpays the
// remaining holders. Returns the burned active shares and the minted claim shares.
func (v *Vault) Withdraw(account restake.Address, amount *big.Int, now uint64) (burned, minted *big.Int, err error) {
	defer v.ctx.RevertOnError(v.ctx.NewCheckpoint(), &err)

	if amount == nil || amount.Sign() <= 0 {
		return nil, nil, reverts.Validation("withdrawal amount must be positive")
	}
	current, err := v.CurrentEpoch(now)
	if err != nil {
		return nil, nil, err
	}
	epoch := current + 1

	supply, err := v.ActiveSupply()
	if err != nil {
		return nil, nil, err
	}
	if supply.Cmp(amount) < 0 {
		return nil, nil, reverts.State("withdrawal exceeds active supply")
	}
	totalShares, err := v.ActiveShares()
	if err != nil {
		return nil, nil, err
	}

	burned = restake.MulDivUp(amount, totalShares, supply)
	trace := v.sharesOf(account)
	balance, err := trace.Latest()
	if err != nil {
		return nil, nil, err
	}
	if balance.Cmp(burned) < 0 {
		return nil, nil, reverts.State("withdrawal exceeds active balance")
	}

	if err := v.activeSupply.Push(now, new(big.Int).Sub(supply, amount)); err != nil {
		return nil, nil, err
	}
	if err := v.activeShares.Push(now, new(big.Int).Sub(totalShares, burned)); err != nil {
		return nil, nil, err
	}
	if err := trace.Push(now, new(big.Int).Sub(balance, burned)); err != nil {
		return nil, nil, err
	}

	b, err := v.withdrawals.Get(storage.UintKey(epoch))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get withdrawal bucket")
	}
	b.normalize()

	if b.Underlying.Sign() == 0 {
		minted = new(big.Int).Set(amount)
	} else {
		minted = restake.MulDiv(amount, b.Shares, b.Underlying)
	}
	b.Underlying = new(big.Int).Add(b.Underlying, amount)
	b.Shares = new(big.Int).Add(b.Shares, minted)
	if err := v.withdrawals.Set(storage.UintKey(epoch), b); err != nil {
		return nil, nil, errors.Wrap(err, "failed to set withdrawal bucket")
	}

	key := epochAccountKey{epoch, account}
	claimShares, err := v.withdrawalsOf.Get(key)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get withdrawal shares")
	}
	if err := v.withdrawalsOf.Set(key, new(big.Int).Add(claimShares, minted)); err != nil {
		return nil, nil, errors.Wrap(err, "failed to set withdrawal shares")
	}

	metricWithdrawals().Add(1)
	logger.Debug("withdraw", "account", account, "amount", amount, "epoch", epoch, "burned", burned)
	return burned, minted, nil
}

// Claim pays out an account's pro-rata portion of a matured withdrawal
// bucket. A bucket matures once its epoch has fully elapsed; whatever
// slashing hit it before then is reflected in the payout.
func (v *Vault) Claim(account restake.Address, epoch uint64, now uint64) (amount *big.Int, err error) {
	defer v.ctx.RevertOnError(v.ctx.NewCheckpoint(), &err)

	current, err := v.CurrentEpoch(now)
	if err != nil {
		return nil, err
	}
	if epoch >= current {
		return nil, reverts.Temporal("withdrawal epoch has not elapsed")
	}

	key := epochAccountKey{epoch, account}
	done, err := v.claimed.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get claimed flag")
	}
	if done {
		return nil, reverts.State("withdrawal already claimed")
	}

	claimShares, err := v.withdrawalsOf.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get withdrawal shares")
	}
	if claimShares.Sign() == 0 {
		return nil, reverts.State("no withdrawal to claim")
	}

	b, err := v.withdrawals.Get(storage.UintKey(epoch))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get withdrawal bucket")
	}
	b.normalize()

	amount = restake.MulDiv(claimShares, b.Underlying, b.Shares)
	if err := v.claimed.Set(key, true); err != nil {
		return nil, errors.Wrap(err, "failed to set claimed flag")
	}
	if amount.Sign() > 0 {
		if err := v.collateral.Transfer(v.Address(), account, amount); err != nil {
			return nil, errors.Wrap(err, "failed to transfer collateral")
		}
	}

	metricClaims().Add(1)
	logger.Debug("claim", "account", account, "epoch", epoch, "amount", amount)
	return amount, nil
}
