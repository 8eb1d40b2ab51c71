// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry defines the external collaborators the protocol core
// depends on: whitelisting registries, the network middleware / opt-in
// membership services and the collateral token. The core treats them as
// pure predicates and transfer hooks evaluated at call time.
package registry

import (
	"math/big"

	"github.com/vechain/restake/restake"
)

// Registry reports whether an address is a legitimate, whitelisted instance.
type Registry interface {
	IsEntity(addr restake.Address) bool
}

// MiddlewareService resolves the address authorized to act as a network's
// slash-requesting agent.
type MiddlewareService interface {
	Middleware(network restake.Address) restake.Address
}

// OptInService reports whether two parties are mutually opted in.
type OptInService interface {
	IsOptedIn(who, where restake.Address) bool
}

// Collateral is the token the vault pools. Transfers name the source
// explicitly since the core has no ambient caller.
type Collateral interface {
	Transfer(from, to restake.Address, amount *big.Int) error
	// IssueDebt burns the holder's collateral against the burn sink,
	// invoked after a confirmed slash.
	IssueDebt(from, burnSink restake.Address, amount *big.Int) error
}
