// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slasherapi exposes the slash request lifecycle over HTTP.
package slasherapi

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/restake/api/restutil"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/slasher"
)

type API struct {
	slasher *slasher.Slasher
}

func NewAPI(s *slasher.Slasher) *API {
	return &API{slasher: s}
}

type countResponse struct {
	Count uint64 `json:"count"`
}

func (a *API) handleGetRequestCount(w http.ResponseWriter, r *http.Request) error {
	count, err := a.slasher.RequestCount()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &countResponse{Count: count})
}

func (a *API) handleGetRequest(w http.ResponseWriter, r *http.Request) error {
	index, err := restutil.UintVar(r, "index")
	if err != nil {
		return err
	}
	req, err := a.slasher.GetRequest(index)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, req)
}

type resolverSharesResponse struct {
	Network  restake.Address `json:"network"`
	Resolver restake.Address `json:"resolver"`
	Shares   *big.Int        `json:"shares"`
}

func (a *API) handleGetResolverShares(w http.ResponseWriter, r *http.Request) error {
	network, err := restutil.AddressVar(r, "network")
	if err != nil {
		return err
	}
	resolver, err := restutil.AddressVar(r, "resolver")
	if err != nil {
		return err
	}
	at, err := restutil.AtQuery(r)
	if err != nil {
		return err
	}
	shares, err := a.slasher.ResolverSharesAt(network, resolver, at)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &resolverSharesResponse{
		Network:  network,
		Resolver: resolver,
		Shares:   shares,
	})
}

func (a *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/requests").
		Methods(http.MethodGet).
		Name("slasher_get_request_count").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetRequestCount))
	sub.Path("/requests/{index}").
		Methods(http.MethodGet).
		Name("slasher_get_request").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetRequest))
	sub.Path("/networks/{network}/resolvers/{resolver}").
		Methods(http.MethodGet).
		Name("slasher_get_resolver_shares").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetResolverShares))
}
