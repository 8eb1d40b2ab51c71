// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slasher

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/restake/metrics"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/reverts"
	"github.com/vechain/restake/storage"
)

var (
	metricRequested = metrics.LazyLoadCounter("slasher_request_count")
	metricVetoed    = metrics.LazyLoadCounter("slasher_veto_count")
	metricExecuted  = metrics.LazyLoadCounter("slasher_execute_count")
)

// request is the stored slash request body.
type request struct {
	Network          restake.Address
	Operator         restake.Address
	Amount           *big.Int
	CaptureTimestamp uint64
	VetoDeadline     uint64
	ExecuteDeadline  uint64
	VetoedShares     *big.Int
	Completed        bool
}

// Request is the externally visible view of a slash request.
type Request struct {
	Network          restake.Address `json:"network"`
	Operator         restake.Address `json:"operator"`
	Amount           *big.Int        `json:"amount"`
	CaptureTimestamp uint64          `json:"captureTimestamp"`
	VetoDeadline     uint64          `json:"vetoDeadline"`
	ExecuteDeadline  uint64          `json:"executeDeadline"`
	VetoedShares     *big.Int        `json:"vetoedShares"`
	Completed        bool            `json:"completed"`
}

// requestResolverKey keys the per-request set of resolvers who have vetoed.
type requestResolverKey struct {
	index    uint64
	resolver restake.Address
}

func (k requestResolverKey) Bytes() []byte {
	b := make([]byte, 8+restake.AddressLength)
	binary.BigEndian.PutUint64(b[:8], k.index)
	copy(b[8:], k.resolver.Bytes())
	return b
}

// RequestCount returns the number of requests ever created.
func (s *Slasher) RequestCount() (uint64, error) {
	return s.requestCount.Get()
}

// GetRequest returns a request by index.
func (s *Slasher) GetRequest(index uint64) (*Request, error) {
	r, err := s.loadRequest(index)
	if err != nil {
		return nil, err
	}
	return &Request{
		Network:          r.Network,
		Operator:         r.Operator,
		Amount:           r.Amount,
		CaptureTimestamp: r.CaptureTimestamp,
		VetoDeadline:     r.VetoDeadline,
		ExecuteDeadline:  r.ExecuteDeadline,
		VetoedShares:     r.VetoedShares,
		Completed:        r.Completed,
	}, nil
}

func (s *Slasher) loadRequest(index uint64) (*request, error) {
	count, err := s.requestCount.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get request count")
	}
	if index >= count {
		return nil, reverts.State("slash request not found")
	}
	return s.requests.Get(storage.UintKey(index))
}

// RequestSlash opens a slash request against an operator. Only the network's
// registered middleware may call it. The requested amount is clamped to the
// smaller of the network-wide and the operator's slashable stake at this
// instant; a clamp to zero fails. Returns the new request's index.
func (s *Slasher) RequestSlash(caller, network, operator restake.Address, amount *big.Int, now uint64) (index uint64, err error) {
	defer s.ctx.RevertOnError(s.ctx.NewCheckpoint(), &err)

	if agent := s.middleware.Middleware(network); agent.IsZero() || caller != agent {
		return 0, reverts.Authorization("caller is not the network middleware")
	}
	if operator.IsZero() {
		return 0, reverts.Validation("zero operator address")
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, reverts.Validation("slash amount must be positive")
	}
	if s.optIn != nil && !s.optIn.IsOptedIn(operator, network) {
		return 0, reverts.Validation("operator is not opted in to the network")
	}

	networkStake, err := s.delegator.NetworkStakeAt(network, now)
	if err != nil {
		return 0, err
	}
	operatorStake, err := s.delegator.OperatorNetworkStakeAt(network, operator, now)
	if err != nil {
		return 0, err
	}
	clamped := restake.BigMin(amount, restake.BigMin(networkStake, operatorStake))
	if clamped.Sign() == 0 {
		return 0, reverts.Validation("no slashable stake")
	}

	count, err := s.requestCount.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get request count")
	}
	vetoDeadline := now + s.vetoDuration
	r := &request{
		Network:          network,
		Operator:         operator,
		Amount:           new(big.Int).Set(clamped),
		CaptureTimestamp: now,
		VetoDeadline:     vetoDeadline,
		ExecuteDeadline:  vetoDeadline + s.executeDuration,
		VetoedShares:     new(big.Int),
	}
	if err := s.requests.Set(storage.UintKey(count), r); err != nil {
		return 0, errors.Wrap(err, "failed to set request")
	}
	if err := s.requestCount.Put(count + 1); err != nil {
		return 0, errors.Wrap(err, "failed to set request count")
	}

	metricRequested().Add(1)
	logger.Info("slash requested",
		"index", count, "network", network, "operator", operator,
		"amount", r.Amount, "vetoDeadline", r.VetoDeadline, "executeDeadline", r.ExecuteDeadline)
	return count, nil
}

// VetoSlash adds the resolver's current veto weight to a pending request.
// Weight accumulates across distinct resolvers and saturates at SharesBase,
// at which point the request completes without execution.
func (s *Slasher) VetoSlash(resolver restake.Address, index uint64, now uint64) (err error) {
	defer s.ctx.RevertOnError(s.ctx.NewCheckpoint(), &err)

	r, err := s.loadRequest(index)
	if err != nil {
		return err
	}
	if r.Completed {
		return reverts.State("slash request already completed")
	}
	if now >= r.VetoDeadline {
		return reverts.State("veto window is over")
	}

	weight, err := s.ResolverSharesAt(r.Network, resolver, now)
	if err != nil {
		return err
	}
	if weight.Sign() == 0 {
		return reverts.Authorization("caller is not a weighted resolver")
	}

	key := requestResolverKey{index, resolver}
	already, err := s.vetoed.Get(key)
	if err != nil {
		return errors.Wrap(err, "failed to get veto flag")
	}
	if already {
		return reverts.State("resolver already vetoed this request")
	}
	if err := s.vetoed.Set(key, true); err != nil {
		return errors.Wrap(err, "failed to set veto flag")
	}

	accumulated := new(big.Int).Add(r.VetoedShares, weight)
	if accumulated.Cmp(SharesBase) >= 0 {
		accumulated = new(big.Int).Set(SharesBase)
		r.Completed = true
	}
	r.VetoedShares = accumulated
	if err := s.requests.Set(storage.UintKey(index), r); err != nil {
		return errors.Wrap(err, "failed to set request")
	}

	metricVetoed().Add(1)
	logger.Info("slash vetoed", "index", index, "resolver", resolver, "weight", weight, "accumulated", accumulated, "completed", r.Completed)
	return nil
}

// ExecuteSlash finalizes a request once its veto window has closed and
// before its execute deadline. The executed amount is the requested amount
// less the vetoed portion, the vetoed portion rounding up so vetoes never
// under-protect the pool. Returns the amount actually seized by the ledger.
func (s *Slasher) ExecuteSlash(index uint64, now uint64) (seized *big.Int, err error) {
	defer s.ctx.RevertOnError(s.ctx.NewCheckpoint(), &err)

	r, err := s.loadRequest(index)
	if err != nil {
		return nil, err
	}
	if r.Completed {
		return nil, reverts.State("slash request already completed")
	}
	if now < r.VetoDeadline {
		return nil, reverts.State("veto window is not over")
	}
	if now > r.ExecuteDeadline {
		return nil, reverts.State("execute window is over")
	}

	vetoCut := restake.MulDivUp(r.Amount, r.VetoedShares, SharesBase)
	final := new(big.Int).Sub(r.Amount, vetoCut)

	r.Completed = true
	if err := s.requests.Set(storage.UintKey(index), r); err != nil {
		return nil, errors.Wrap(err, "failed to set request")
	}

	seized = new(big.Int)
	if final.Sign() > 0 {
		seized, err = s.ledger.OnSlash(s.Address(), final, r.CaptureTimestamp, now)
		if err != nil {
			return nil, errors.Wrap(err, "ledger rejected the slash")
		}
	}

	// best-effort notification, the slash is already committed
	s.delegator.OnSlash(r.Network, r.Operator, seized, r.CaptureTimestamp)

	metricExecuted().Add(1)
	logger.Info("slash executed", "index", index, "requested", r.Amount, "vetoed", r.VetoedShares, "seized", seized)
	return seized, nil
}
