// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/state"
	"github.com/vechain/restake/storage"
)

const (
	epochDuration = uint64(100)
	delayEpochs   = uint64(3)
)

func newTestDelayed(t *testing.T) *Delayed {
	t.Helper()
	ctx := storage.NewContext(restake.BytesToAddress([]byte("test")), state.New(nil))
	return NewDelayed(ctx, restake.BytesToBytes32([]byte("limit")))
}

func TestIncreaseAppliesImmediately(t *testing.T) {
	d := newTestDelayed(t)

	require.NoError(t, d.Set(big.NewInt(1000), delayEpochs, 0, epochDuration, 0))

	v, err := d.At(0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), v)

	pending, _, err := d.Pending()
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestDecreaseIsDelayed(t *testing.T) {
	d := newTestDelayed(t)

	require.NoError(t, d.Set(big.NewInt(1000), delayEpochs, 0, epochDuration, 0))
	// decrease at t=50, current epoch starts at 0: effective at 0 + 3*100
	require.NoError(t, d.Set(big.NewInt(400), delayEpochs, 0, epochDuration, 50))

	v, err := d.At(50)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), v)

	v, err = d.At(299)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), v)

	v, err = d.At(300)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(400), v)

	pending, at, err := d.Pending()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(400), pending)
	assert.Equal(t, uint64(300), at)
}

func TestIncreaseClearsPending(t *testing.T) {
	d := newTestDelayed(t)

	require.NoError(t, d.Set(big.NewInt(1000), delayEpochs, 0, epochDuration, 0))
	require.NoError(t, d.Set(big.NewInt(400), delayEpochs, 0, epochDuration, 50))
	// the increase cancels the scheduled decrease
	require.NoError(t, d.Set(big.NewInt(2000), delayEpochs, 0, epochDuration, 60))

	v, err := d.At(60)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2000), v)

	v, err = d.At(1000)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2000), v)
}

func TestStalePendingIsCommittedBeforeWrite(t *testing.T) {
	d := newTestDelayed(t)

	require.NoError(t, d.Set(big.NewInt(1000), delayEpochs, 0, epochDuration, 0))
	require.NoError(t, d.Set(big.NewInt(400), delayEpochs, 0, epochDuration, 50))

	// at t=350 the pending 400 has become authoritative; a new decrease from
	// epoch start 300 schedules against the committed 400
	require.NoError(t, d.Set(big.NewInt(100), delayEpochs, 300, epochDuration, 350))

	v, err := d.At(350)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(400), v)

	v, err = d.At(600)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), v)
}

func TestAtMostOnePending(t *testing.T) {
	d := newTestDelayed(t)

	require.NoError(t, d.Set(big.NewInt(1000), delayEpochs, 0, epochDuration, 0))
	require.NoError(t, d.Set(big.NewInt(500), delayEpochs, 0, epochDuration, 10))
	// second decrease within the same epoch replaces the pending slot
	require.NoError(t, d.Set(big.NewInt(300), delayEpochs, 0, epochDuration, 20))

	pending, at, err := d.Pending()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), pending)
	assert.Equal(t, uint64(300), at)

	v, err := d.At(20)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), v)
}

func TestInvalidValue(t *testing.T) {
	d := newTestDelayed(t)
	assert.Error(t, d.Set(nil, delayEpochs, 0, epochDuration, 0))
	assert.Error(t, d.Set(big.NewInt(-1), delayEpochs, 0, epochDuration, 0))
}
