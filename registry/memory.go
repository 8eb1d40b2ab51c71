// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/restake/restake"
)

// MemRegistry is an in-memory Registry.
type MemRegistry struct {
	entities map[restake.Address]bool
}

// NewMemRegistry creates an empty in-memory registry.
func NewMemRegistry() *MemRegistry {
	return &MemRegistry{entities: make(map[restake.Address]bool)}
}

// Register whitelists an address.
func (r *MemRegistry) Register(addr restake.Address) {
	r.entities[addr] = true
}

// IsEntity implements Registry.
func (r *MemRegistry) IsEntity(addr restake.Address) bool {
	return r.entities[addr]
}

// MemMiddleware is an in-memory MiddlewareService.
type MemMiddleware struct {
	middleware map[restake.Address]restake.Address
}

// NewMemMiddleware creates an empty in-memory middleware service.
func NewMemMiddleware() *MemMiddleware {
	return &MemMiddleware{middleware: make(map[restake.Address]restake.Address)}
}

// SetMiddleware registers the slash-requesting agent for a network.
func (m *MemMiddleware) SetMiddleware(network, agent restake.Address) {
	m.middleware[network] = agent
}

// Middleware implements MiddlewareService.
func (m *MemMiddleware) Middleware(network restake.Address) restake.Address {
	return m.middleware[network]
}

// MemOptIn is an in-memory OptInService.
type MemOptIn struct {
	optIns map[[2]restake.Address]bool
}

// NewMemOptIn creates an empty in-memory opt-in service.
func NewMemOptIn() *MemOptIn {
	return &MemOptIn{optIns: make(map[[2]restake.Address]bool)}
}

// OptIn records a mutual opt-in.
func (o *MemOptIn) OptIn(who, where restake.Address) {
	o.optIns[[2]restake.Address{who, where}] = true
}

// IsOptedIn implements OptInService.
func (o *MemOptIn) IsOptedIn(who, where restake.Address) bool {
	return o.optIns[[2]restake.Address{who, where}]
}

// MemCollateral is an in-memory Collateral token.
type MemCollateral struct {
	balances map[restake.Address]*big.Int
	debts    map[restake.Address]*big.Int
}

// NewMemCollateral creates an empty in-memory collateral token.
func NewMemCollateral() *MemCollateral {
	return &MemCollateral{
		balances: make(map[restake.Address]*big.Int),
		debts:    make(map[restake.Address]*big.Int),
	}
}

// Mint credits an account, for tests and simulations.
func (c *MemCollateral) Mint(to restake.Address, amount *big.Int) {
	c.balances[to] = new(big.Int).Add(c.balanceOf(to), amount)
}

func (c *MemCollateral) balanceOf(addr restake.Address) *big.Int {
	if b, ok := c.balances[addr]; ok {
		return b
	}
	return new(big.Int)
}

// BalanceOf returns the balance of an account.
func (c *MemCollateral) BalanceOf(addr restake.Address) *big.Int {
	return new(big.Int).Set(c.balanceOf(addr))
}

// DebtOf returns the debt issued against a burn sink.
func (c *MemCollateral) DebtOf(sink restake.Address) *big.Int {
	if d, ok := c.debts[sink]; ok {
		return new(big.Int).Set(d)
	}
	return new(big.Int)
}

// Transfer implements Collateral.
func (c *MemCollateral) Transfer(from, to restake.Address, amount *big.Int) error {
	bal := c.balanceOf(from)
	if bal.Cmp(amount) < 0 {
		return errors.New("insufficient balance")
	}
	c.balances[from] = new(big.Int).Sub(bal, amount)
	c.balances[to] = new(big.Int).Add(c.balanceOf(to), amount)
	return nil
}

// IssueDebt implements Collateral.
func (c *MemCollateral) IssueDebt(from, burnSink restake.Address, amount *big.Int) error {
	bal := c.balanceOf(from)
	if bal.Cmp(amount) < 0 {
		return errors.New("insufficient balance")
	}
	c.balances[from] = new(big.Int).Sub(bal, amount)
	if d, ok := c.debts[burnSink]; ok {
		c.debts[burnSink] = new(big.Int).Add(d, amount)
	} else {
		c.debts[burnSink] = new(big.Int).Set(amount)
	}
	return nil
}
