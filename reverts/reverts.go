// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the user-visible rejection errors of the protocol
// core. Every rejection carries a kind so off-chain callers can decide whether
// to retry with different parameters or abandon the action.
package reverts

import (
	"errors"
)

// Kind classifies a rejection.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindAuthorization - wrong caller for a role-gated action.
	KindAuthorization
	// KindValidation - zero/invalid amounts, zero addresses, out-of-range durations.
	KindValidation
	// KindState - wrong lifecycle phase, double-claim, double-veto, not found.
	KindState
	// KindTemporal - timestamps outside the allowed window.
	KindTemporal
)

// ErrRevert is a rejection of the triggering call.
// There is no partial application: the caller's state transition is rolled
// back in full and the call may be re-issued with corrected inputs.
type ErrRevert struct {
	kind    Kind
	message string
}

// New creates a revert error of the given kind.
func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

// Authorization creates an authorization revert.
func Authorization(message string) *ErrRevert { return New(KindAuthorization, message) }

// Validation creates a validation revert.
func Validation(message string) *ErrRevert { return New(KindValidation, message) }

// State creates a lifecycle-state revert.
func State(message string) *ErrRevert { return New(KindState, message) }

// Temporal creates a temporal revert.
func Temporal(message string) *ErrRevert { return New(KindTemporal, message) }

func (e *ErrRevert) Error() string {
	return e.message
}

// Kind returns the rejection category.
func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// IsRevertErr checks whether the given value is (or wraps) a revert error.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

func isKind(err error, kind Kind) bool {
	var ve *ErrRevert
	if !errors.As(err, &ve) {
		return false
	}
	return ve.kind == kind
}

// IsAuthorization checks for an authorization revert.
func IsAuthorization(err error) bool { return isKind(err, KindAuthorization) }

// IsValidation checks for a validation revert.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsState checks for a lifecycle-state revert.
func IsState(err error) bool { return isKind(err, KindState) }

// IsTemporal checks for a temporal revert.
func IsTemporal(err error) bool { return isKind(err, KindTemporal) }
