// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := Validation("test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)
	assert.Equal(t, KindValidation, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_Kinds(t *testing.T) {
	assert.True(t, IsAuthorization(Authorization("not middleware")))
	assert.True(t, IsValidation(Validation("zero amount")))
	assert.True(t, IsState(State("already completed")))
	assert.True(t, IsTemporal(Temporal("capture epoch too old")))

	assert.False(t, IsAuthorization(Validation("zero amount")))
	assert.False(t, IsTemporal(fmt.Errorf("plain")))
}

func Test_Wrapped(t *testing.T) {
	wrapped := errors.Wrap(State("double claim"), "claim failed")
	assert.True(t, IsRevertErr(wrapped))
	assert.True(t, IsState(wrapped))
}
