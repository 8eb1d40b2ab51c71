// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/restake/delegator"
	"github.com/vechain/restake/metrics"
	"github.com/vechain/restake/registry"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/slasher"
	"github.com/vechain/restake/state"
	"github.com/vechain/restake/storage"
	"github.com/vechain/restake/vault"
)

var (
	network   = restake.BytesToAddress([]byte("network"))
	agent     = restake.BytesToAddress([]byte("middleware"))
	operator  = restake.BytesToAddress([]byte("operator"))
	depositor = restake.BytesToAddress([]byte("depositor"))
)

func newTestServer(t *testing.T) *httptest.Server {
	metrics.InitializePrometheusMetrics()
	st := state.New(nil)

	collateral := registry.NewMemCollateral()
	collateral.Mint(depositor, big.NewInt(1_000_000))

	v, err := vault.New(
		storage.NewContext(restake.BytesToAddress([]byte("vault")), st),
		collateral, nil,
		vault.Options{EpochDuration: 100, Burner: restake.BytesToAddress([]byte("burner"))},
	)
	require.NoError(t, err)

	d, err := delegator.NewShares(
		storage.NewContext(restake.BytesToAddress([]byte("delegator")), st),
		v, delegator.Options{},
	)
	require.NoError(t, err)

	middleware := registry.NewMemMiddleware()
	middleware.SetMiddleware(network, agent)

	s, err := slasher.New(
		storage.NewContext(restake.BytesToAddress([]byte("slasher")), st),
		v, d, middleware, nil,
		slasher.Options{VetoDuration: 10, ExecuteDuration: 5, ResolverSetEpochsDelay: 3},
	)
	require.NoError(t, err)

	_, err = v.Deposit(depositor, big.NewInt(1000), 0)
	require.NoError(t, err)
	require.NoError(t, d.SetMaxNetworkLimit(network, big.NewInt(2000)))
	require.NoError(t, d.SetNetworkLimit(network, big.NewInt(500), 0))
	require.NoError(t, d.SetOperatorNetworkShares(network, operator, big.NewInt(1), 0))

	srv := httptest.NewServer(New(v, d, s, Options{EnableMetrics: true}))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestVaultEndpoints(t *testing.T) {
	srv := newTestServer(t)

	var active struct {
		ActiveSupply *big.Int `json:"activeSupply"`
		ActiveShares *big.Int `json:"activeShares"`
	}
	status := getJSON(t, srv.URL+"/vault/active?at=10", &active)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, big.NewInt(1000), active.ActiveSupply)
	assert.Equal(t, big.NewInt(1000), active.ActiveShares)

	// missing "at" is a client error
	status = getJSON(t, srv.URL+"/vault/active", &active)
	assert.Equal(t, http.StatusBadRequest, status)

	var balance struct {
		Balance *big.Int `json:"balance"`
	}
	status = getJSON(t, srv.URL+"/vault/accounts/"+depositor.String(), &balance)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, big.NewInt(1000), balance.Balance)

	status = getJSON(t, srv.URL+"/vault/accounts/not-an-address", &balance)
	assert.Equal(t, http.StatusBadRequest, status)

	var slashable struct {
		SlashableSupply *big.Int `json:"slashableSupply"`
	}
	status = getJSON(t, srv.URL+"/vault/slashable?at=10", &slashable)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, big.NewInt(1000), slashable.SlashableSupply)
}

func TestDelegatorEndpoints(t *testing.T) {
	srv := newTestServer(t)

	var net struct {
		MaxLimit     *big.Int `json:"maxLimit"`
		Limit        *big.Int `json:"limit"`
		NetworkStake *big.Int `json:"networkStake"`
	}
	status := getJSON(t, srv.URL+"/delegator/networks/"+network.String()+"?at=10", &net)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, big.NewInt(2000), net.MaxLimit)
	assert.Equal(t, big.NewInt(500), net.Limit)
	assert.Equal(t, big.NewInt(500), net.NetworkStake)

	var stake struct {
		Stake *big.Int `json:"stake"`
	}
	url := srv.URL + "/delegator/networks/" + network.String() + "/operators/" + operator.String() + "?at=10"
	status = getJSON(t, url, &stake)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, big.NewInt(500), stake.Stake)
}

func TestSlasherEndpoints(t *testing.T) {
	srv := newTestServer(t)

	var count struct {
		Count uint64 `json:"count"`
	}
	status := getJSON(t, srv.URL+"/slasher/requests", &count)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint64(0), count.Count)

	// unknown request index maps to 404
	var req slasher.Request
	status = getJSON(t, srv.URL+"/slasher/requests/0", &req)
	assert.Equal(t, http.StatusNotFound, status)

	var shares struct {
		Shares *big.Int `json:"shares"`
	}
	url := srv.URL + "/slasher/networks/" + network.String() + "/resolvers/" + operator.String() + "?at=10"
	status = getJSON(t, url, &shares)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, big.NewInt(0), shares.Shares)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
