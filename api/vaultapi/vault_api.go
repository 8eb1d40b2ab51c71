// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vaultapi exposes the vault's read accessors over HTTP, for
// off-chain simulation and monitoring.
package vaultapi

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/restake/api/restutil"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/vault"
)

type API struct {
	vault *vault.Vault
}

func NewAPI(v *vault.Vault) *API {
	return &API{vault: v}
}

type supplyResponse struct {
	ActiveSupply *big.Int `json:"activeSupply"`
	ActiveShares *big.Int `json:"activeShares"`
}

func (a *API) handleGetActive(w http.ResponseWriter, r *http.Request) error {
	at, err := restutil.AtQuery(r)
	if err != nil {
		return err
	}
	supply, err := a.vault.ActiveSupplyAt(at)
	if err != nil {
		return err
	}
	shares, err := a.vault.ActiveSharesAt(at)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &supplyResponse{ActiveSupply: supply, ActiveShares: shares})
}

type balanceResponse struct {
	Account restake.Address `json:"account"`
	Shares  *big.Int        `json:"shares"`
	Balance *big.Int        `json:"balance"`
}

func (a *API) handleGetBalance(w http.ResponseWriter, r *http.Request) error {
	account, err := restutil.AddressVar(r, "account")
	if err != nil {
		return err
	}
	shares, err := a.vault.ActiveSharesOf(account)
	if err != nil {
		return err
	}
	balance, err := a.vault.ActiveBalanceOf(account)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &balanceResponse{Account: account, Shares: shares, Balance: balance})
}

type withdrawalsResponse struct {
	Epoch      uint64   `json:"epoch"`
	Underlying *big.Int `json:"underlying"`
}

func (a *API) handleGetWithdrawals(w http.ResponseWriter, r *http.Request) error {
	epoch, err := restutil.UintVar(r, "epoch")
	if err != nil {
		return err
	}
	underlying, err := a.vault.Withdrawals(epoch)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &withdrawalsResponse{Epoch: epoch, Underlying: underlying})
}

type slashableResponse struct {
	SlashableSupply *big.Int `json:"slashableSupply"`
}

func (a *API) handleGetSlashable(w http.ResponseWriter, r *http.Request) error {
	at, err := restutil.AtQuery(r)
	if err != nil {
		return err
	}
	supply, err := a.vault.SlashableSupply(at)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &slashableResponse{SlashableSupply: supply})
}

type slasherResponse struct {
	Slasher restake.Address `json:"slasher"`
}

func (a *API) handleGetSlasher(w http.ResponseWriter, r *http.Request) error {
	at, err := restutil.AtQuery(r)
	if err != nil {
		return err
	}
	slasher, err := a.vault.Slasher(at)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &slasherResponse{Slasher: slasher})
}

func (a *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/active").
		Methods(http.MethodGet).
		Name("vault_get_active").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetActive))
	sub.Path("/accounts/{account}").
		Methods(http.MethodGet).
		Name("vault_get_balance").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetBalance))
	sub.Path("/withdrawals/{epoch}").
		Methods(http.MethodGet).
		Name("vault_get_withdrawals").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetWithdrawals))
	sub.Path("/slashable").
		Methods(http.MethodGet).
		Name("vault_get_slashable").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetSlashable))
	sub.Path("/slasher").
		Methods(http.MethodGet).
		Name("vault_get_slasher").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetSlasher))
}
