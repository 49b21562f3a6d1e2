// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the operation engine of the rebasing token.
//
// Balances are kept as credits scaled by a shared multiplier, so a supply
// change touches one global record instead of every account. Accounts may
// opt out of rebasing, pinning their own multiplier snapshot; their token
// balances are then aggregated separately.
//
// Operations are serialized into a total order and each one is atomic:
// a failed operation leaves the state exactly as it was. Applied operations
// are buffered until Commit persists them in one batch.
package ledger

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/holiman/uint256"

	"github.com/supplyworks/rebase/fixed"
	"github.com/supplyworks/rebase/kv"
	"github.com/supplyworks/rebase/log"
	"github.com/supplyworks/rebase/rebase"
	"github.com/supplyworks/rebase/state"
)

var logger = log.WithContext("pkg", "ledger")

// Options select the rounding behavior of an engine. The zero value picks
// the derived transfer legs, the strict burn policy and the truncating
// supply change, with rounding tracking off.
type Options struct {
	Transfer TransferRoundingStrategy
	Burn     BurnPolicy
	Supply   SupplyChangeStrategy

	// TrackRounding maintains the signed rounding error accumulator around
	// mint, burn and transfer. Supply changes stay outside it; see
	// RoundingError.
	TrackRounding bool
}

func (o Options) withDefaults() Options {
	if o.Transfer == nil {
		o.Transfer = TransferDerived
	}
	if o.Burn == nil {
		o.Burn = BurnStrict
	}
	if o.Supply == nil {
		o.Supply = SupplyTruncate
	}
	return o
}

// Ledger is the operation engine over one backing store.
type Ledger struct {
	mu     sync.Mutex
	stater *state.Stater
	st     *state.State
	opts   Options
}

// New creates a ledger over the given store.
func New(store kv.GetPutter, opts Options) *Ledger {
	stater := state.NewStater(store)
	return &Ledger{
		stater: stater,
		st:     stater.NewState(),
		opts:   opts.withDefaults(),
	}
}

// run applies fn under the engine lock, reverting all of its writes if it
// fails.
func (l *Ledger) run(op string, fn func(st *state.State) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	startTime := mclock.Now()
	rev := l.st.NewCheckpoint()
	err := fn(l.st)
	if err != nil {
		l.st.RevertTo(rev)
	}
	elapsed := mclock.Now() - startTime

	result := "ok"
	if err != nil {
		result = "err"
	}
	metricOpCount().AddWithLabel(1, map[string]string{"op": op, "result": result})
	metricOpDuration().ObserveWithLabels(time.Duration(elapsed).Microseconds(), map[string]string{"op": op})
	return err
}

// BalanceOf returns the token balance, including not yet committed
// operations.
func (l *Ledger) BalanceOf(addr rebase.Address) (*uint256.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.BalanceOf(addr)
}

// CreditsBalanceOf returns the raw credit balance and the multiplier it is
// denominated in.
func (l *Ledger) CreditsBalanceOf(addr rebase.Address) (credits, creditsPerToken *uint256.Int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, err := l.st.GetCredits(addr)
	if err != nil {
		return nil, nil, err
	}
	m, err := l.st.CreditsPerToken(addr)
	if err != nil {
		return nil, nil, err
	}
	return c.Clone(), m.Clone(), nil
}

// IsNonRebasing returns whether the account has opted out of rebasing.
func (l *Ledger) IsNonRebasing(addr rebase.Address) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.IsNonRebasing(addr)
}

// TotalSupply returns the cached total supply. With rounding tracking on,
// the reported value is the cached figure plus the accumulated rounding
// error, floored at zero.
func (l *Ledger) TotalSupply() (*uint256.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, err := l.st.Global()
	if err != nil {
		return nil, err
	}
	if !l.opts.TrackRounding {
		return g.TotalSupply, nil
	}

	reported := new(big.Int).Add(g.TotalSupply.ToBig(), g.Accum())
	if reported.Sign() < 0 {
		logger.Debug("reported supply floored at zero", "cached", g.TotalSupply, "accum", g.Accum())
		return new(uint256.Int), nil
	}
	v, overflow := uint256.FromBig(reported)
	if overflow {
		return nil, fixed.ErrOverflow
	}
	return v, nil
}

// RebasingCredits returns the credit sum over all rebasing accounts.
func (l *Ledger) RebasingCredits() (*uint256.Int, error) {
	g, err := l.global()
	if err != nil {
		return nil, err
	}
	return g.RebasingCredits, nil
}

// RebasingCreditsPerToken returns the shared multiplier.
func (l *Ledger) RebasingCreditsPerToken() (*uint256.Int, error) {
	g, err := l.global()
	if err != nil {
		return nil, err
	}
	return g.RebasingCreditsPerToken, nil
}

// NonRebasingSupply returns the token-denominated balance sum of opted-out
// accounts.
func (l *Ledger) NonRebasingSupply() (*uint256.Int, error) {
	g, err := l.global()
	if err != nil {
		return nil, err
	}
	return g.NonRebasingSupply, nil
}

func (l *Ledger) global() (*state.Global, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.Global()
}

// Commit persists all applied operations in one batch and starts a fresh
// round of buffering.
func (l *Ledger) Commit() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stage, err := l.st.Stage()
	if err != nil {
		return err
	}
	n := stage.Len()
	if err := stage.Commit(); err != nil {
		return err
	}
	l.st = l.stater.NewState()
	logger.Debug("ledger committed", "records", n)
	return nil
}
