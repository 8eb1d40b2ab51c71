// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slasher

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/restake/delegator"
	"github.com/vechain/restake/registry"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/reverts"
	"github.com/vechain/restake/state"
	"github.com/vechain/restake/storage"
	"github.com/vechain/restake/vault"
)

var (
	network    = restake.BytesToAddress([]byte("network"))
	agent      = restake.BytesToAddress([]byte("middleware"))
	operator   = restake.BytesToAddress([]byte("operator"))
	resolverA  = restake.BytesToAddress([]byte("resolver-a"))
	resolverB  = restake.BytesToAddress([]byte("resolver-b"))
	depositor  = restake.BytesToAddress([]byte("depositor"))
	burnerAddr = restake.BytesToAddress([]byte("burner"))
)

type fixture struct {
	vault     *vault.Vault
	delegator *delegator.LimitDelegator
	slasher   *Slasher
}

// newFixture wires a full stack: epochDuration=100, vetoDuration=10,
// executeDuration=5, deposit=1000, networkLimit=1000, operatorLimit=1000.
func newFixture(t *testing.T) *fixture {
	st := state.New(nil)

	collateral := registry.NewMemCollateral()
	collateral.Mint(depositor, big.NewInt(1_000_000))

	v, err := vault.New(
		storage.NewContext(restake.BytesToAddress([]byte("vault")), st),
		collateral, nil,
		vault.Options{EpochDuration: 100, Burner: burnerAddr},
	)
	require.NoError(t, err)

	d, err := delegator.NewLimit(
		storage.NewContext(restake.BytesToAddress([]byte("delegator")), st),
		v, delegator.Options{},
	)
	require.NoError(t, err)

	middleware := registry.NewMemMiddleware()
	middleware.SetMiddleware(network, agent)
	optIn := registry.NewMemOptIn()
	optIn.OptIn(operator, network)

	s, err := New(
		storage.NewContext(restake.BytesToAddress([]byte("slasher")), st),
		v, d, middleware, optIn,
		Options{VetoDuration: 10, ExecuteDuration: 5, ResolverSetEpochsDelay: 3},
	)
	require.NoError(t, err)

	require.NoError(t, v.SetSlasher(s.Address(), 0))
	_, err = v.Deposit(depositor, big.NewInt(1000), 0)
	require.NoError(t, err)
	require.NoError(t, d.SetMaxNetworkLimit(network, big.NewInt(2000)))
	require.NoError(t, d.SetNetworkLimit(network, big.NewInt(1000), 0))
	require.NoError(t, d.SetOperatorNetworkLimit(network, operator, big.NewInt(1000), 0))

	return &fixture{vault: v, delegator: d, slasher: s}
}

func TestNewValidation(t *testing.T) {
	st := state.New(nil)
	v, err := vault.New(
		storage.NewContext(restake.BytesToAddress([]byte("vault")), st),
		registry.NewMemCollateral(), nil,
		vault.Options{EpochDuration: 100, Burner: burnerAddr},
	)
	require.NoError(t, err)
	d, err := delegator.NewLimit(storage.NewContext(restake.BytesToAddress([]byte("delegator")), st), v, delegator.Options{})
	require.NoError(t, err)
	ctx := storage.NewContext(restake.BytesToAddress([]byte("slasher")), st)
	middleware := registry.NewMemMiddleware()

	_, err = New(ctx, v, d, middleware, nil, Options{VetoDuration: 10, ExecuteDuration: 0, ResolverSetEpochsDelay: 3})
	assert.Error(t, err)

	// lifecycle must fit within one epoch
	_, err = New(ctx, v, d, middleware, nil, Options{VetoDuration: 96, ExecuteDuration: 5, ResolverSetEpochsDelay: 3})
	assert.Error(t, err)

	_, err = New(ctx, v, d, middleware, nil, Options{VetoDuration: 10, ExecuteDuration: 5, ResolverSetEpochsDelay: 2})
	assert.Error(t, err)

	_, err = New(ctx, v, d, middleware, nil, Options{VetoDuration: 10, ExecuteDuration: 5, ResolverSetEpochsDelay: 3})
	assert.NoError(t, err)
}

func TestRequestSlash(t *testing.T) {
	f := newFixture(t)

	// only the registered middleware may request
	_, err := f.slasher.RequestSlash(network, network, operator, big.NewInt(300), 0)
	assert.True(t, reverts.IsAuthorization(err))

	_, err = f.slasher.RequestSlash(agent, network, operator, big.NewInt(0), 0)
	assert.True(t, reverts.IsValidation(err))

	// operator not opted in
	stranger := restake.BytesToAddress([]byte("stranger"))
	_, err = f.slasher.RequestSlash(agent, network, stranger, big.NewInt(300), 0)
	assert.True(t, reverts.IsValidation(err))

	index, err := f.slasher.RequestSlash(agent, network, operator, big.NewInt(300), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), index)

	r, err := f.slasher.GetRequest(index)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), r.Amount)
	assert.Equal(t, uint64(10), r.VetoDeadline)
	assert.Equal(t, uint64(15), r.ExecuteDeadline)
	assert.Equal(t, uint64(0), r.CaptureTimestamp)
	assert.False(t, r.Completed)

	count, err := f.slasher.RequestCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestRequestSlashClampsToStake(t *testing.T) {
	f := newFixture(t)

	index, err := f.slasher.RequestSlash(agent, network, operator, big.NewInt(5000), 0)
	require.NoError(t, err)

	r, err := f.slasher.GetRequest(index)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), r.Amount)
}

func TestRequestSlashNoStake(t *testing.T) {
	f := newFixture(t)

	other := restake.BytesToAddress([]byte("operator-2"))
	optIn := registry.NewMemOptIn()
	optIn.OptIn(other, network)
	f.slasher.optIn = optIn

	// opted in but with no operator limit
	_, err := f.slasher.RequestSlash(agent, network, other, big.NewInt(300), 0)
	assert.True(t, reverts.IsValidation(err))
}

func TestExecuteSlashLifecycle(t *testing.T) {
	f := newFixture(t)

	index, err := f.slasher.RequestSlash(agent, network, operator, big.NewInt(300), 0)
	require.NoError(t, err)

	// veto window still open
	_, err = f.slasher.ExecuteSlash(index, 9)
	assert.True(t, reverts.IsState(err))

	seized, err := f.slasher.ExecuteSlash(index, 10)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), seized)

	supply, err := f.vault.ActiveSupply()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(700), supply)

	// a completed request cannot run twice
	_, err = f.slasher.ExecuteSlash(index, 11)
	assert.True(t, reverts.IsState(err))

	_, err = f.slasher.ExecuteSlash(99, 11)
	assert.True(t, reverts.IsState(err))
}

func TestExecuteSlashExpiry(t *testing.T) {
	f := newFixture(t)

	index, err := f.slasher.RequestSlash(agent, network, operator, big.NewInt(300), 0)
	require.NoError(t, err)

	// past the execute deadline the request is permanently dead
	_, err = f.slasher.ExecuteSlash(index, 16)
	assert.True(t, reverts.IsState(err))

	r, err := f.slasher.GetRequest(index)
	require.NoError(t, err)
	assert.False(t, r.Completed)
}

func TestResolverSharesDelay(t *testing.T) {
	f := newFixture(t)

	err := f.slasher.SetResolverShares(network, resolverA, new(big.Int).Add(SharesBase, big.NewInt(1)), 0)
	assert.True(t, reverts.IsValidation(err))

	require.NoError(t, f.slasher.SetResolverShares(network, resolverA, big.NewInt(600_000_000_000_000_000), 0))

	// weight set in epoch 0 only lands at epoch 3
	w, err := f.slasher.ResolverSharesAt(network, resolverA, 299)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), w)

	w, err = f.slasher.ResolverSharesAt(network, resolverA, 300)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(600_000_000_000_000_000), w)

	// before the weight lands a veto is rejected
	index, err := f.slasher.RequestSlash(agent, network, operator, big.NewInt(300), 0)
	require.NoError(t, err)
	err = f.slasher.VetoSlash(resolverA, index, 5)
	assert.True(t, reverts.IsAuthorization(err))
}

func TestVetoAccumulationSaturates(t *testing.T) {
	f := newFixture(t)

	// A holds 60%, B holds 50% of the base
	require.NoError(t, f.slasher.SetResolverShares(network, resolverA, big.NewInt(600_000_000_000_000_000), 0))
	require.NoError(t, f.slasher.SetResolverShares(network, resolverB, big.NewInt(500_000_000_000_000_000), 0))

	index, err := f.slasher.RequestSlash(agent, network, operator, big.NewInt(300), 350)
	require.NoError(t, err)

	require.NoError(t, f.slasher.VetoSlash(resolverA, index, 351))
	r, err := f.slasher.GetRequest(index)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(600_000_000_000_000_000), r.VetoedShares)
	assert.False(t, r.Completed)

	// double veto by the same resolver
	err = f.slasher.VetoSlash(resolverA, index, 352)
	assert.True(t, reverts.IsState(err))

	// B pushes the accumulation past the base, saturating it
	require.NoError(t, f.slasher.VetoSlash(resolverB, index, 353))
	r, err = f.slasher.GetRequest(index)
	require.NoError(t, err)
	assert.Equal(t, SharesBase, r.VetoedShares)
	assert.True(t, r.Completed)

	_, err = f.slasher.ExecuteSlash(index, 360)
	assert.True(t, reverts.IsState(err))
	err = f.slasher.VetoSlash(resolverB, index, 354)
	assert.True(t, reverts.IsState(err))
}

func TestPartialVetoReducesExecution(t *testing.T) {
	f := newFixture(t)

	// 40% veto weight on a 300-unit request executes 180
	require.NoError(t, f.slasher.SetResolverShares(network, resolverA, big.NewInt(400_000_000_000_000_000), 0))

	index, err := f.slasher.RequestSlash(agent, network, operator, big.NewInt(300), 350)
	require.NoError(t, err)
	require.NoError(t, f.slasher.VetoSlash(resolverA, index, 355))

	// veto past the deadline fails
	err = f.slasher.VetoSlash(resolverA, index, 360)
	assert.True(t, reverts.IsState(err))

	seized, err := f.slasher.ExecuteSlash(index, 360)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(180), seized)

	supply, err := f.vault.ActiveSupply()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(820), supply)
}
