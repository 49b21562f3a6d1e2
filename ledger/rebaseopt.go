// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/supplyworks/rebase/fixed"
	"github.com/supplyworks/rebase/rebase"
	"github.com/supplyworks/rebase/state"
)

// OptOut pins the account to a snapshot of the current shared multiplier,
// excluding it from future rebases. Its token balance moves from the
// rebasing aggregate into the non-rebasing one and is unchanged by the
// flip, since the pinned multiplier equals the shared one at this moment.
// Returns the balance. Fails with ErrAlreadyInState for opted-out accounts.
func (l *Ledger) OptOut(addr rebase.Address) (*uint256.Int, error) {
	var balance *uint256.Int
	err := l.run("opt_out", func(st *state.State) error {
		nonRebasing, err := st.IsNonRebasing(addr)
		if err != nil {
			return err
		}
		if nonRebasing {
			return ErrAlreadyInState
		}

		if balance, err = st.BalanceOf(addr); err != nil {
			return err
		}
		if err := st.AddNonRebasingSupply(balance); err != nil {
			return err
		}

		g, err := st.Global()
		if err != nil {
			return err
		}
		if err := st.SetLockedCreditsPerToken(addr, g.RebasingCreditsPerToken); err != nil {
			return err
		}

		credits, err := st.GetCredits(addr)
		if err != nil {
			return err
		}
		ok, err := st.SubRebasingCredits(credits)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientCredits
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// OptIn returns the account to the rebasing class. Its credits are
// re-expressed under the shared multiplier, which can move the balance by
// a minimal unit; the cached total supply absorbs that difference so the
// sum of balances is preserved across the flip. Returns the new balance.
// Fails with ErrAlreadyInState for rebasing accounts.
func (l *Ledger) OptIn(addr rebase.Address) (*uint256.Int, error) {
	var newBalance *uint256.Int
	err := l.run("opt_in", func(st *state.State) error {
		nonRebasing, err := st.IsNonRebasing(addr)
		if err != nil {
			return err
		}
		if !nonRebasing {
			return ErrAlreadyInState
		}

		locked, err := st.GetLockedCreditsPerToken(addr)
		if err != nil {
			return err
		}
		credits, err := st.GetCredits(addr)
		if err != nil {
			return err
		}
		// the balance under the pinned multiplier is exactly the token
		// amount to re-express under the shared one
		oldBalance, err := fixed.DivPrecisely(credits, locked)
		if err != nil {
			return err
		}

		g, err := st.Global()
		if err != nil {
			return err
		}
		newCredits, err := fixed.MulTruncate(oldBalance, g.RebasingCreditsPerToken)
		if err != nil {
			return err
		}

		ok, err := st.SubNonRebasingSupply(oldBalance)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientCredits
		}
		if err := st.SetCredits(addr, newCredits); err != nil {
			return err
		}
		if err := st.AddRebasingCredits(newCredits); err != nil {
			return err
		}
		if err := st.SetLockedCreditsPerToken(addr, new(uint256.Int)); err != nil {
			return err
		}

		if newBalance, err = st.BalanceOf(addr); err != nil {
			return err
		}
		switch newBalance.Cmp(oldBalance) {
		case 1:
			var d uint256.Int
			d.Sub(newBalance, oldBalance)
			if err := st.AddTotalSupply(&d); err != nil {
				return err
			}
		case -1:
			var d uint256.Int
			d.Sub(oldBalance, newBalance)
			ok, err := st.SubTotalSupply(&d)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientCredits
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newBalance, nil
}
