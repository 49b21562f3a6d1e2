// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/supplyworks/rebase/fixed"
	"github.com/supplyworks/rebase/rebase"
	"github.com/supplyworks/rebase/state"
)

// Mint credits the account with amount tokens and grows the supply.
// It returns the updated balance. A zero amount is a no-op.
//
// The credited amount lands on the account's credit grid, so the balance
// can grow by slightly less than amount; the nominal amount still goes
// into the cached supply.
func (l *Ledger) Mint(addr rebase.Address, amount *uint256.Int) (*uint256.Int, error) {
	var newBalance *uint256.Int
	err := l.run("mint", func(st *state.State) error {
		var err error
		if amount.IsZero() {
			newBalance, err = st.BalanceOf(addr)
			return err
		}

		var before *uint256.Int
		if l.opts.TrackRounding {
			if before, err = st.BalanceOf(addr); err != nil {
				return err
			}
		}

		cpt, err := st.CreditsPerToken(addr)
		if err != nil {
			return err
		}
		creditAmount, err := fixed.MulTruncate(amount, cpt)
		if err != nil {
			return err
		}
		if err := st.AddCredits(addr, creditAmount); err != nil {
			return err
		}

		nonRebasing, err := st.IsNonRebasing(addr)
		if err != nil {
			return err
		}
		if nonRebasing {
			if err := st.AddNonRebasingSupply(amount); err != nil {
				return err
			}
		} else {
			if err := st.AddRebasingCredits(creditAmount); err != nil {
				return err
			}
		}
		if err := st.AddTotalSupply(amount); err != nil {
			return err
		}

		if newBalance, err = st.BalanceOf(addr); err != nil {
			return err
		}
		if l.opts.TrackRounding {
			observed := new(big.Int).Sub(newBalance.ToBig(), before.ToBig())
			return l.recordRounding(st, observed.Sub(observed, amount.ToBig()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newBalance, nil
}

// Burn removes amount tokens from the account under the configured policy
// and shrinks the supply. It returns the updated balance. A zero amount is
// a no-op.
func (l *Ledger) Burn(addr rebase.Address, amount *uint256.Int) (*uint256.Int, error) {
	var newBalance *uint256.Int
	err := l.run("burn", func(st *state.State) error {
		var err error
		if amount.IsZero() {
			newBalance, err = st.BalanceOf(addr)
			return err
		}

		var before *uint256.Int
		if l.opts.TrackRounding {
			if before, err = st.BalanceOf(addr); err != nil {
				return err
			}
		}

		if err := l.opts.Burn.Burn(st, addr, amount); err != nil {
			return err
		}

		if newBalance, err = st.BalanceOf(addr); err != nil {
			return err
		}
		if l.opts.TrackRounding {
			observed := new(big.Int).Sub(newBalance.ToBig(), before.ToBig())
			return l.recordRounding(st, observed.Add(observed, amount.ToBig()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newBalance, nil
}

// BurnPolicy decides how a burn maps to credit and aggregate mutations.
type BurnPolicy interface {
	// Burn removes a non-zero amount from the account and updates the
	// aggregates. Called inside an operation; partial writes are fine,
	// the engine reverts them on error.
	Burn(st *state.State, addr rebase.Address, amount *uint256.Int) error
	Name() string
}

var (
	// BurnStrict rejects dust burns and keeps the non-rebasing aggregate
	// consistent with the balance actually removed. The default.
	BurnStrict BurnPolicy = strictBurn{}

	// BurnLegacyDust reproduces the historical behavior: a burn leaving
	// less than two credits zeroes the account, and aggregates move by the
	// nominal amount. Dust burns subtract zero credits while the cached
	// supply still shrinks.
	BurnLegacyDust BurnPolicy = legacyDustBurn{}
)

type strictBurn struct{}

func (strictBurn) Name() string { return "strict" }

func (strictBurn) Burn(st *state.State, addr rebase.Address, amount *uint256.Int) error {
	cpt, err := st.CreditsPerToken(addr)
	if err != nil {
		return err
	}
	creditAmount, err := fixed.MulTruncate(amount, cpt)
	if err != nil {
		return err
	}
	if creditAmount.IsZero() {
		return ErrDustBurn
	}

	ok, err := st.SubCredits(addr, creditAmount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientBalance
	}

	nonRebasing, err := st.IsNonRebasing(addr)
	if err != nil {
		return err
	}
	if nonRebasing {
		// subtract what was really removed, not the nominal amount
		removed, err := fixed.DivPrecisely(creditAmount, cpt)
		if err != nil {
			return err
		}
		ok, err := st.SubNonRebasingSupply(removed)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientCredits
		}
	} else {
		ok, err := st.SubRebasingCredits(creditAmount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientCredits
		}
	}

	ok, err = st.SubTotalSupply(amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientBalance
	}
	return nil
}

type legacyDustBurn struct{}

func (legacyDustBurn) Name() string { return "legacy-dust" }

func (legacyDustBurn) Burn(st *state.State, addr rebase.Address, amount *uint256.Int) error {
	cpt, err := st.CreditsPerToken(addr)
	if err != nil {
		return err
	}
	creditAmount, err := fixed.MulTruncate(amount, cpt)
	if err != nil {
		return err
	}
	credits, err := st.GetCredits(addr)
	if err != nil {
		return err
	}
	if credits.Lt(creditAmount) {
		return ErrInsufficientBalance
	}

	var remainder uint256.Int
	remainder.Sub(credits, creditAmount)
	if remainder.LtUint64(2) {
		// absorb the sub-credit remainder, zeroing the account
		if err := st.SetCredits(addr, new(uint256.Int)); err != nil {
			return err
		}
	} else {
		ok, err := st.SubCredits(addr, creditAmount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientBalance
		}
	}

	nonRebasing, err := st.IsNonRebasing(addr)
	if err != nil {
		return err
	}
	if nonRebasing {
		ok, err := st.SubNonRebasingSupply(amount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientCredits
		}
	} else {
		ok, err := st.SubRebasingCredits(creditAmount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientCredits
		}
	}

	ok, err := st.SubTotalSupply(amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientBalance
	}
	return nil
}
