// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"encoding/binary"
	"math/big"

	"github.com/vechain/restake/restake"
)

// bucket is the per-epoch holding area for funds mid-withdrawal,
// still slashable until fully matured.
type bucket struct {
	Underlying *big.Int
	Shares     *big.Int
}

// IsEmpty returns whether the entry can be treated as empty.
func (b *bucket) IsEmpty() bool {
	return (b.Underlying == nil || b.Underlying.Sign() == 0) && (b.Shares == nil || b.Shares.Sign() == 0)
}

func (b *bucket) normalize() {
	if b.Underlying == nil {
		b.Underlying = new(big.Int)
	}
	if b.Shares == nil {
		b.Shares = new(big.Int)
	}
}

// epochAccountKey keys per-epoch, per-account entries.
type epochAccountKey struct {
	epoch   uint64
	account restake.Address
}

func (k epochAccountKey) Bytes() []byte {
	b := make([]byte, 8+restake.AddressLength)
	binary.BigEndian.PutUint64(b[:8], k.epoch)
	copy(b[8:], k.account.Bytes())
	return b
}
