// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/supplyworks/rebase/fixed"
	"github.com/supplyworks/rebase/state"
)

// ChangeSupply rebases: it renormalizes the shared multiplier so that the
// rebasing share of the supply targets newTotalSupply minus the
// non-rebasing supply, then recomputes the cached total from the multiplier
// it just set. The recomputed total, not newTotalSupply, is stored; the two
// differ by the multiplier's rounding. Returns the new multiplier.
//
// The rounding tracker never observes this operation. Measuring its drift
// would require summing every rebasing balance before and after, the O(n)
// scan the multiplier scheme exists to avoid.
func (l *Ledger) ChangeSupply(newTotalSupply *uint256.Int) (*uint256.Int, error) {
	var multiplier *uint256.Int
	err := l.run("change_supply", func(st *state.State) error {
		g, err := st.Global()
		if err != nil {
			return err
		}

		if newTotalSupply.Lt(g.NonRebasingSupply) {
			return ErrInvalidSupplyChange
		}
		var target uint256.Int
		target.Sub(newTotalSupply, g.NonRebasingSupply)
		if target.IsZero() {
			return ErrInvalidSupplyChange
		}

		m, err := l.opts.Supply.Multiplier(g.RebasingCredits, &target)
		if err != nil {
			return err
		}
		if m.IsZero() {
			return ErrInvalidSupplyChange
		}
		if err := st.SetRebasingCreditsPerToken(m); err != nil {
			return err
		}

		rebasingSupply, err := fixed.DivPrecisely(g.RebasingCredits, m)
		if err != nil {
			return err
		}
		var total uint256.Int
		if _, overflow := total.AddOverflow(rebasingSupply, g.NonRebasingSupply); overflow {
			return fixed.ErrOverflow
		}
		if err := st.SetTotalSupply(&total); err != nil {
			return err
		}

		multiplier = m
		logger.Trace("supply changed", "total", &total, "multiplier", m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return multiplier, nil
}

// SupplyChangeStrategy derives the new shared multiplier distributing the
// rebasing credits over the rebasing share of the target supply.
type SupplyChangeStrategy interface {
	Multiplier(rebasingCredits, target *uint256.Int) (*uint256.Int, error)
	Name() string
}

var (
	// SupplyTruncate floors the multiplier, so the recomputed total can
	// overshoot the requested one by a minimal unit. The default.
	SupplyTruncate SupplyChangeStrategy = truncateSupply{}

	// SupplyRoundUp rounds the multiplier up, keeping the recomputed total
	// at or below the requested one.
	SupplyRoundUp SupplyChangeStrategy = roundUpSupply{}
)

type truncateSupply struct{}

func (truncateSupply) Name() string { return "truncate" }

func (truncateSupply) Multiplier(rebasingCredits, target *uint256.Int) (*uint256.Int, error) {
	return fixed.DivPrecisely(rebasingCredits, target)
}

type roundUpSupply struct{}

func (roundUpSupply) Name() string { return "round-up" }

func (roundUpSupply) Multiplier(rebasingCredits, target *uint256.Int) (*uint256.Int, error) {
	return fixed.DivPreciselyUp(rebasingCredits, target)
}
