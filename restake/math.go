// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restake

import "math/big"

// MulDiv returns a*b/c with floor division. c must be nonzero.
func MulDiv(a, b, c *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Div(r, c)
}

// MulDivUp returns a*b/c rounded up. c must be nonzero.
func MulDivUp(a, b, c *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	q, m := r.DivMod(r, c, new(big.Int))
	if m.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// BigMin returns the smaller of a and b.
func BigMin(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
