// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/restake/restake"
)

// AddressVar parses a path variable as an address.
func AddressVar(r *http.Request, name string) (restake.Address, error) {
	addr, err := restake.ParseAddress(mux.Vars(r)[name])
	if err != nil {
		return restake.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

// UintVar parses a path variable as a uint64.
func UintVar(r *http.Request, name string) (uint64, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return v, nil
}

// AtQuery parses the required "at" query parameter, the timestamp every
// time-aware accessor is evaluated against.
func AtQuery(r *http.Request) (uint64, error) {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		return 0, BadRequest(errors.New("at: query parameter required"))
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, "at"))
	}
	return v, nil
}
