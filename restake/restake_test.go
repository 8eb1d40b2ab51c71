// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restake

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress(t *testing.T) {
	addr := BytesToAddress([]byte("addr"))
	assert.False(t, addr.IsZero())
	assert.True(t, Address{}.IsZero())

	parsed, err := ParseAddress(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)

	_, err = ParseAddress("0x123")
	assert.Error(t, err)
	_, err = ParseAddress("zz34567890123456789012345678901234567890")
	assert.Error(t, err)

	data, err := json.Marshal(addr)
	require.NoError(t, err)
	var back Address
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, addr, back)
}

func TestComponentAddress(t *testing.T) {
	addr := ComponentAddress("restake-vault")
	assert.False(t, addr.IsZero())
	assert.Equal(t, addr, ComponentAddress("restake-vault"))
	assert.NotEqual(t, addr, ComponentAddress("restake-slasher"))

	// hashed derivation keeps names with a shared suffix apart, raw
	// left-cropping would not
	long := "a23456789012345678901234567890"
	assert.NotEqual(t, ComponentAddress(long), ComponentAddress(long[1:]))
	assert.Equal(t,
		BytesToAddress([]byte(long)),
		BytesToAddress([]byte(long[1:])))
}

func TestBytes32(t *testing.T) {
	b := BytesToBytes32([]byte("value"))
	assert.False(t, b.IsZero())
	assert.True(t, Bytes32{}.IsZero())

	parsed, err := ParseBytes32(b.String())
	require.NoError(t, err)
	assert.Equal(t, b, parsed)

	// cropped from the left when oversized
	long := make([]byte, 40)
	long[39] = 0xff
	assert.Equal(t, uint8(0xff), BytesToBytes32(long)[31])
}

func TestBlake2b(t *testing.T) {
	h1 := Blake2b([]byte("hello"))
	h2 := Blake2b([]byte("hello"))
	assert.Equal(t, h1, h2)

	// concatenation of slices, not hash of hashes
	assert.Equal(t, Blake2b([]byte("ab"), []byte("c")), Blake2b([]byte("a"), []byte("bc")))
	assert.NotEqual(t, Blake2b([]byte("ab")), Blake2b([]byte("ba")))
}

func TestKeccak256(t *testing.T) {
	// the well-known empty-input digest
	assert.Equal(t,
		"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		Keccak256().String())
	assert.Equal(t, Keccak256([]byte("ab"), []byte("c")), Keccak256([]byte("abc")))
}

func TestMulDiv(t *testing.T) {
	assert.Equal(t, big.NewInt(333), MulDiv(big.NewInt(2), big.NewInt(500), big.NewInt(3)))
	assert.Equal(t, big.NewInt(334), MulDivUp(big.NewInt(2), big.NewInt(500), big.NewInt(3)))
	assert.Equal(t, big.NewInt(100), MulDiv(big.NewInt(10), big.NewInt(10), big.NewInt(1)))
	assert.Equal(t, big.NewInt(100), MulDivUp(big.NewInt(10), big.NewInt(10), big.NewInt(1)))
	assert.Equal(t, big.NewInt(0), MulDiv(big.NewInt(0), big.NewInt(500), big.NewInt(3)))
}

func TestBigMin(t *testing.T) {
	a, b := big.NewInt(1), big.NewInt(2)
	assert.Equal(t, a, BigMin(a, b))
	assert.Equal(t, a, BigMin(b, a))
	assert.Equal(t, a, BigMin(a, a))
}
