// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen provides random value helpers for tests.
package datagen

import (
	"crypto/rand"

	"github.com/vechain/restake/restake"
)

func RandBytes32() (b restake.Bytes32) {
	rand.Read(b[:])
	return
}

func RandAddress() (addr restake.Address) {
	rand.Read(addr[:])
	return
}
