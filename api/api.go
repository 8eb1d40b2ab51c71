// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the read-only accessor endpoints into a single
// http.Handler. Every write path of the protocol stays behind the component
// entry points; the API only mirrors the Series and parameter accessors.
package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/restake/api/delegatorapi"
	"github.com/vechain/restake/api/slasherapi"
	"github.com/vechain/restake/api/vaultapi"
	"github.com/vechain/restake/log"
	"github.com/vechain/restake/metrics"
	"github.com/vechain/restake/slasher"
	"github.com/vechain/restake/vault"
)

var logger = log.WithContext("pkg", "api")

// Options configures the assembled handler.
type Options struct {
	EnableMetrics bool
	// AllowedOrigins configures CORS; empty disables cross-origin access.
	AllowedOrigins []string
}

// New assembles the accessor API.
func New(v *vault.Vault, d delegatorapi.Delegator, s *slasher.Slasher, opts Options) http.Handler {
	router := mux.NewRouter()

	vaultapi.NewAPI(v).Mount(router, "/vault")
	delegatorapi.NewAPI(d).Mount(router, "/delegator")
	slasherapi.NewAPI(s).Mount(router, "/slasher")

	if h := metrics.HTTPHandler(); opts.EnableMetrics && h != nil {
		router.PathPrefix("/metrics").Handler(h)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	handler := handlers.CompressHandler(router)
	if len(opts.AllowedOrigins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(opts.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet}),
		)(handler)
	}
	return requestLogger(handler)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}
