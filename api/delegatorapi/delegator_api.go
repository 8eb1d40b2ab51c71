// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package delegatorapi exposes the stake limit layer's read accessors over HTTP.
package delegatorapi

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/restake/api/restutil"
	"github.com/vechain/restake/restake"
)

// Delegator is the subset of the stake limit layer the API serves.
// Both delegator variants satisfy it.
type Delegator interface {
	MaxNetworkLimit(network restake.Address) (*big.Int, error)
	NetworkLimitAt(network restake.Address, timestamp uint64) (*big.Int, error)
	NetworkStakeAt(network restake.Address, timestamp uint64) (*big.Int, error)
	OperatorNetworkStakeAt(network, operator restake.Address, timestamp uint64) (*big.Int, error)
}

type API struct {
	delegator Delegator
}

func NewAPI(d Delegator) *API {
	return &API{delegator: d}
}

type networkResponse struct {
	Network      restake.Address `json:"network"`
	MaxLimit     *big.Int        `json:"maxLimit"`
	Limit        *big.Int        `json:"limit"`
	NetworkStake *big.Int        `json:"networkStake"`
}

func (a *API) handleGetNetwork(w http.ResponseWriter, r *http.Request) error {
	network, err := restutil.AddressVar(r, "network")
	if err != nil {
		return err
	}
	at, err := restutil.AtQuery(r)
	if err != nil {
		return err
	}
	maxLimit, err := a.delegator.MaxNetworkLimit(network)
	if err != nil {
		return err
	}
	limit, err := a.delegator.NetworkLimitAt(network, at)
	if err != nil {
		return err
	}
	stake, err := a.delegator.NetworkStakeAt(network, at)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &networkResponse{
		Network:      network,
		MaxLimit:     maxLimit,
		Limit:        limit,
		NetworkStake: stake,
	})
}

type operatorStakeResponse struct {
	Network  restake.Address `json:"network"`
	Operator restake.Address `json:"operator"`
	Stake    *big.Int        `json:"stake"`
}

func (a *API) handleGetOperatorStake(w http.ResponseWriter, r *http.Request) error {
	network, err := restutil.AddressVar(r, "network")
	if err != nil {
		return err
	}
	operator, err := restutil.AddressVar(r, "operator")
	if err != nil {
		return err
	}
	at, err := restutil.AtQuery(r)
	if err != nil {
		return err
	}
	stake, err := a.delegator.OperatorNetworkStakeAt(network, operator, at)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &operatorStakeResponse{
		Network:  network,
		Operator: operator,
		Stake:    stake,
	})
}

func (a *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/networks/{network}").
		Methods(http.MethodGet).
		Name("delegator_get_network").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetNetwork))
	sub.Path("/networks/{network}/operators/{operator}").
		Methods(http.MethodGet).
		Name("delegator_get_operator_stake").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetOperatorStake))
}
