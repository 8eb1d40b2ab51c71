// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slasher implements the veto-capable slash request lifecycle:
// a network's middleware requests a slash, weighted resolvers may veto it
// during a fixed window, and anyone may execute the remainder before the
// execute deadline. Requests are never deleted, only marked completed;
// expiry is nothing but a deadline comparison.
package slasher

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/restake/checkpoints"
	"github.com/vechain/restake/log"
	"github.com/vechain/restake/registry"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/reverts"
	"github.com/vechain/restake/storage"
)

var logger = log.WithContext("pkg", "slasher")

// SharesBase is the veto-weight denominator: a request whose accumulated
// vetoed shares reach this value is fully vetoed.
var SharesBase = big.NewInt(1_000_000_000_000_000_000)

// MinResolverSetEpochsDelay is the minimum delay, in epochs, before a
// resolver-share change takes effect. Three epochs keep a resolver from
// granting itself weight and vetoing with it before anyone can react.
const MinResolverSetEpochsDelay = 3

// Ledger is the slasher's view of the vault.
type Ledger interface {
	EpochDuration() uint64
	EpochStart(epoch uint64) uint64
	CurrentEpoch(now uint64) (uint64, error)
	OnSlash(caller restake.Address, amount *big.Int, captureTimestamp, now uint64) (*big.Int, error)
}

// Delegator is the slasher's view of the stake limit layer. Both delegator
// variants satisfy it.
type Delegator interface {
	NetworkStakeAt(network restake.Address, timestamp uint64) (*big.Int, error)
	OperatorNetworkStakeAt(network, operator restake.Address, timestamp uint64) (*big.Int, error)
	OnSlash(network, operator restake.Address, slashed *big.Int, captureTimestamp uint64)
}

var (
	slotRequestCount   = restake.BytesToBytes32([]byte("slash-request-count"))
	slotRequests       = restake.BytesToBytes32([]byte("slash-requests"))
	slotVetoed         = restake.BytesToBytes32([]byte("slash-request-vetoed"))
	slotResolverShares = restake.BytesToBytes32([]byte("resolver-shares"))
)

// Options configures a slasher.
type Options struct {
	VetoDuration           uint64
	ExecuteDuration        uint64
	ResolverSetEpochsDelay uint64
}

// Slasher is the veto slash request state machine.
type Slasher struct {
	ctx        *storage.Context
	ledger     Ledger
	delegator  Delegator
	middleware registry.MiddlewareService
	optIn      registry.OptInService

	vetoDuration           uint64
	executeDuration        uint64
	resolverSetEpochsDelay uint64

	requestCount   *storage.Raw[uint64]
	requests       *storage.Mapping[storage.UintKey, *request]
	vetoed         *storage.Mapping[requestResolverKey, bool]
	resolverShares restake.Bytes32
}

// New creates a slasher. A slash's whole lifecycle must resolve within one
// vault epoch, so the veto and execute windows are validated against the
// ledger's epoch duration up front.
func New(ctx *storage.Context, ledger Ledger, delegator Delegator, middleware registry.MiddlewareService, optIn registry.OptInService, opts Options) (*Slasher, error) {
	if ledger == nil || delegator == nil || middleware == nil {
		return nil, errors.New("ledger, delegator and middleware are required")
	}
	if opts.ExecuteDuration == 0 {
		return nil, errors.New("execute duration must be nonzero")
	}
	if opts.VetoDuration+opts.ExecuteDuration > ledger.EpochDuration() {
		return nil, errors.New("veto plus execute duration exceeds epoch duration")
	}
	if opts.ResolverSetEpochsDelay < MinResolverSetEpochsDelay {
		return nil, errors.New("resolver set delay below minimum")
	}
	return &Slasher{
		ctx:                    ctx,
		ledger:                 ledger,
		delegator:              delegator,
		middleware:             middleware,
		optIn:                  optIn,
		vetoDuration:           opts.VetoDuration,
		executeDuration:        opts.ExecuteDuration,
		resolverSetEpochsDelay: opts.ResolverSetEpochsDelay,
		requestCount:           storage.NewRaw[uint64](ctx, slotRequestCount),
		requests:               storage.NewMapping[storage.UintKey, *request](ctx, slotRequests),
		vetoed:                 storage.NewMapping[requestResolverKey, bool](ctx, slotVetoed),
		resolverShares:         slotResolverShares,
	}, nil
}

// Address returns the slasher's component address, the identity it presents
// to the vault.
func (s *Slasher) Address() restake.Address {
	return s.ctx.Address()
}

// VetoDuration returns the veto window length.
func (s *Slasher) VetoDuration() uint64 {
	return s.vetoDuration
}

// ExecuteDuration returns the execute window length.
func (s *Slasher) ExecuteDuration() uint64 {
	return s.executeDuration
}

func (s *Slasher) resolverSharesOf(network, resolver restake.Address) *checkpoints.Trace {
	pos := restake.Blake2b(s.resolverShares.Bytes(), network.Bytes(), resolver.Bytes())
	return checkpoints.NewTrace(s.ctx, pos)
}

// SetResolverShares grants or changes a resolver's veto weight for a network.
// Every change is future-dated by the configured epoch delay, so weight
// granted now cannot veto a request already in flight. Individual weights
// are capped at SharesBase; the set is never re-normalized, so whether full
// veto is reachable depends on how the weights are configured.
func (s *Slasher) SetResolverShares(network, resolver restake.Address, shares *big.Int, now uint64) (err error) {
	defer s.ctx.RevertOnError(s.ctx.NewCheckpoint(), &err)

	if network.IsZero() || resolver.IsZero() {
		return reverts.Validation("zero address")
	}
	if shares == nil || shares.Sign() < 0 {
		return reverts.Validation("invalid resolver shares")
	}
	if shares.Cmp(SharesBase) > 0 {
		return reverts.Validation("resolver shares exceed base")
	}
	current, err := s.ledger.CurrentEpoch(now)
	if err != nil {
		return err
	}
	effectiveAt := s.ledger.EpochStart(current + s.resolverSetEpochsDelay)
	if err := s.resolverSharesOf(network, resolver).Push(effectiveAt, shares); err != nil {
		return errors.Wrap(err, "failed to push resolver shares")
	}
	logger.Info("resolver shares scheduled", "network", network, "resolver", resolver, "shares", shares, "effectiveAt", effectiveAt)
	return nil
}

// ResolverSharesAt returns a resolver's veto weight effective at timestamp.
func (s *Slasher) ResolverSharesAt(network, resolver restake.Address, timestamp uint64) (*big.Int, error) {
	return s.resolverSharesOf(network, resolver).UpperLookupRecent(timestamp)
}
