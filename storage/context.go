// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides solidity-style slot primitives (mappings, single
// values, 256-bit words) on top of the state layer. Each protocol component
// owns a distinct address so storage spaces never overlap.
package storage

import (
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/state"
)

// Context binds a component address to a state instance.
type Context struct {
	address restake.Address
	state   *state.State
}

// NewContext creates a storage context for the component at addr.
func NewContext(address restake.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

// Address returns the owning component address.
func (c *Context) Address() restake.Address {
	return c.address
}

// State returns the underlying state.
func (c *Context) State() *state.State {
	return c.state
}

// NewCheckpoint snapshots the underlying state.
func (c *Context) NewCheckpoint() int {
	return c.state.NewCheckpoint()
}

// RevertTo rolls the underlying state back to a checkpoint taken earlier.
func (c *Context) RevertTo(checkpoint int) {
	c.state.RevertTo(checkpoint)
}

// RevertOnError rolls the state back to cp when *errp is non-nil. Mutating
// entry points defer it at the top so a rejected call leaves no partial
// writes behind:
//
//	defer ctx.RevertOnError(ctx.NewCheckpoint(), &err)
func (c *Context) RevertOnError(cp int, errp *error) {
	if *errp != nil {
		c.state.RevertTo(cp)
	}
}
