// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegator

import (
	"context"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/restake/registry"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/reverts"
	"github.com/vechain/restake/state"
	"github.com/vechain/restake/storage"
	"github.com/vechain/restake/vault"
)

var (
	network   = restake.BytesToAddress([]byte("network"))
	operator1 = restake.BytesToAddress([]byte("operator-1"))
	operator2 = restake.BytesToAddress([]byte("operator-2"))
	depositor = restake.BytesToAddress([]byte("depositor"))
)

func newTestPool(t *testing.T, st *state.State, deposit int64) *vault.Vault {
	collateral := registry.NewMemCollateral()
	collateral.Mint(depositor, big.NewInt(1_000_000))

	v, err := vault.New(
		storage.NewContext(restake.BytesToAddress([]byte("vault")), st),
		collateral, nil,
		vault.Options{EpochDuration: 100, Burner: restake.BytesToAddress([]byte("burner"))},
	)
	require.NoError(t, err)
	if deposit > 0 {
		_, err = v.Deposit(depositor, big.NewInt(deposit), 1)
		require.NoError(t, err)
	}
	return v
}

func newSharesDelegator(t *testing.T, deposit int64, opts Options) *SharesDelegator {
	st := state.New(nil)
	pool := newTestPool(t, st, deposit)
	d, err := NewShares(storage.NewContext(restake.BytesToAddress([]byte("delegator")), st), pool, opts)
	require.NoError(t, err)
	return d
}

func newLimitDelegator(t *testing.T, deposit int64, opts Options) *LimitDelegator {
	st := state.New(nil)
	pool := newTestPool(t, st, deposit)
	d, err := NewLimit(storage.NewContext(restake.BytesToAddress([]byte("delegator")), st), pool, opts)
	require.NoError(t, err)
	return d
}

func TestMaxNetworkLimitRatchet(t *testing.T) {
	d := newSharesDelegator(t, 0, Options{})

	err := d.SetMaxNetworkLimit(network, big.NewInt(0))
	assert.True(t, reverts.IsValidation(err))

	require.NoError(t, d.SetMaxNetworkLimit(network, big.NewInt(1000)))

	got, err := d.MaxNetworkLimit(network)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), got)

	// the ceiling never grows
	err = d.SetMaxNetworkLimit(network, big.NewInt(2000))
	assert.True(t, reverts.IsValidation(err))
	err = d.SetMaxNetworkLimit(network, big.NewInt(1000))
	assert.True(t, reverts.IsValidation(err))

	require.NoError(t, d.SetMaxNetworkLimit(network, big.NewInt(800)))
}

func TestNetworkLimit(t *testing.T) {
	d := newSharesDelegator(t, 0, Options{})

	// ceiling must exist first
	err := d.SetNetworkLimit(network, big.NewInt(500), 10)
	assert.True(t, reverts.IsState(err))

	require.NoError(t, d.SetMaxNetworkLimit(network, big.NewInt(1000)))

	err = d.SetNetworkLimit(network, big.NewInt(1500), 10)
	assert.True(t, reverts.IsValidation(err))

	// increase applies at once
	require.NoError(t, d.SetNetworkLimit(network, big.NewInt(500), 10))
	got, err := d.NetworkLimitAt(network, 10)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), got)

	// decrease waits one epoch
	require.NoError(t, d.SetNetworkLimit(network, big.NewInt(200), 20))
	got, err = d.NetworkLimitAt(network, 50)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), got)
	got, err = d.NetworkLimitAt(network, 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), got)
}

func TestNetworkLimitCappedByCeiling(t *testing.T) {
	d := newSharesDelegator(t, 0, Options{})

	require.NoError(t, d.SetMaxNetworkLimit(network, big.NewInt(1000)))
	require.NoError(t, d.SetNetworkLimit(network, big.NewInt(1000), 10))

	// shrinking the ceiling caps the effective limit immediately
	require.NoError(t, d.SetMaxNetworkLimit(network, big.NewInt(600)))
	got, err := d.NetworkLimitAt(network, 20)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(600), got)
}

func TestSharesStake(t *testing.T) {
	d := newSharesDelegator(t, 1000, Options{})

	require.NoError(t, d.SetMaxNetworkLimit(network, big.NewInt(1000)))
	require.NoError(t, d.SetNetworkLimit(network, big.NewInt(500), 10))
	require.NoError(t, d.SetOperatorNetworkShares(network, operator1, big.NewInt(2), 10))
	require.NoError(t, d.SetOperatorNetworkShares(network, operator2, big.NewInt(1), 10))

	// base = min(supply 1000, limit 500) = 500, split 2:1
	s1, err := d.OperatorNetworkStake(network, operator1, 20)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(333), s1)

	s2, err := d.OperatorNetworkStake(network, operator2, 20)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(166), s2)

	// an operator with no shares has no stake
	s3, err := d.OperatorNetworkStake(network, restake.BytesToAddress([]byte("other")), 20)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), s3)
}

func TestSharesStakeReassignment(t *testing.T) {
	d := newSharesDelegator(t, 1000, Options{})

	require.NoError(t, d.SetMaxNetworkLimit(network, big.NewInt(1000)))
	require.NoError(t, d.SetNetworkLimit(network, big.NewInt(1000), 10))
	require.NoError(t, d.SetOperatorNetworkShares(network, operator1, big.NewInt(3), 10))

	total, err := d.TotalOperatorSharesAt(network, 10)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), total)

	// reassignment adjusts the total by the difference
	require.NoError(t, d.SetOperatorNetworkShares(network, operator1, big.NewInt(1), 20))
	total, err = d.TotalOperatorSharesAt(network, 20)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), total)

	s1, err := d.OperatorNetworkStake(network, operator1, 30)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), s1)

	// history is preserved
	total, err = d.TotalOperatorSharesAt(network, 15)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), total)
}

func TestSharesStakeIn(t *testing.T) {
	d := newSharesDelegator(t, 1000, Options{})

	require.NoError(t, d.SetMaxNetworkLimit(network, big.NewInt(1000)))
	require.NoError(t, d.SetNetworkLimit(network, big.NewInt(1000), 10))
	require.NoError(t, d.SetOperatorNetworkShares(network, operator1, big.NewInt(1), 10))

	// schedule a decrease effective at t=100
	require.NoError(t, d.SetNetworkLimit(network, big.NewInt(400), 20))

	now, err := d.OperatorNetworkStake(network, operator1, 30)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), now)

	future, err := d.OperatorNetworkStakeIn(network, operator1, 30, 80)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(400), future)
}

func TestLimitStake(t *testing.T) {
	d := newLimitDelegator(t, 1000, Options{})

	require.NoError(t, d.SetMaxNetworkLimit(network, big.NewInt(1000)))
	require.NoError(t, d.SetNetworkLimit(network, big.NewInt(500), 10))

	// no operator limit, no stake
	s, err := d.OperatorNetworkStake(network, operator1, 20)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), s)

	require.NoError(t, d.SetOperatorNetworkLimit(network, operator1, big.NewInt(300), 20))
	s, err = d.OperatorNetworkStake(network, operator1, 20)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), s)

	// network limit binds when tighter than the operator's
	require.NoError(t, d.SetOperatorNetworkLimit(network, operator1, big.NewInt(900), 30))
	s, err = d.OperatorNetworkStake(network, operator1, 30)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), s)

	err = d.SetOperatorNetworkLimit(network, operator1, big.NewInt(1500), 30)
	assert.True(t, reverts.IsValidation(err))
}

func TestPostSlashHook(t *testing.T) {
	var gotNetwork, gotOperator restake.Address
	var gotAmount *big.Int
	hook := func(_ context.Context, n, o restake.Address, slashed *big.Int, _ uint64) error {
		gotNetwork, gotOperator, gotAmount = n, o, slashed
		return nil
	}
	d := newSharesDelegator(t, 0, Options{Hook: hook})

	d.OnSlash(network, operator1, big.NewInt(300), 40)
	assert.Equal(t, network, gotNetwork)
	assert.Equal(t, operator1, gotOperator)
	assert.Equal(t, big.NewInt(300), gotAmount)
}

func TestPostSlashHookFailureIgnored(t *testing.T) {
	called := false
	hook := func(_ context.Context, _, _ restake.Address, _ *big.Int, _ uint64) error {
		called = true
		return errors.New("hook exploded")
	}
	d := newSharesDelegator(t, 0, Options{Hook: hook})

	// must not panic or propagate
	d.OnSlash(network, operator1, big.NewInt(1), 40)
	assert.True(t, called)

	// nil hook is a no-op
	d2 := newSharesDelegator(t, 0, Options{})
	d2.OnSlash(network, operator1, big.NewInt(1), 40)
}
