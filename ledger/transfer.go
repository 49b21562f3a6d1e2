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

// Transfer moves amount tokens between the accounts and returns both
// updated balances. A zero amount is a no-op. The total supply is
// untouched; each side's aggregate moves by that side's leg.
func (l *Ledger) Transfer(from, to rebase.Address, amount *uint256.Int) (fromBalance, toBalance *uint256.Int, err error) {
	err = l.run("transfer", func(st *state.State) error {
		var err error
		if amount.IsZero() {
			if fromBalance, err = st.BalanceOf(from); err != nil {
				return err
			}
			toBalance, err = st.BalanceOf(to)
			return err
		}

		var fromBefore, toBefore *uint256.Int
		if l.opts.TrackRounding {
			if fromBefore, err = st.BalanceOf(from); err != nil {
				return err
			}
			if toBefore, err = st.BalanceOf(to); err != nil {
				return err
			}
		}

		fromCpt, err := st.CreditsPerToken(from)
		if err != nil {
			return err
		}
		toCpt, err := st.CreditsPerToken(to)
		if err != nil {
			return err
		}
		legs, err := l.opts.Transfer.Legs(amount, fromCpt, toCpt)
		if err != nil {
			return err
		}

		ok, err := st.SubCredits(from, legs.CreditsDeducted)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientBalance
		}
		if err := st.AddCredits(to, legs.CreditsCredited); err != nil {
			return err
		}

		fromNonRebasing, err := st.IsNonRebasing(from)
		if err != nil {
			return err
		}
		if fromNonRebasing {
			ok, err := st.SubNonRebasingSupply(legs.TokensDeducted)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientCredits
			}
		} else {
			ok, err := st.SubRebasingCredits(legs.CreditsDeducted)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientCredits
			}
		}
		toNonRebasing, err := st.IsNonRebasing(to)
		if err != nil {
			return err
		}
		if toNonRebasing {
			if err := st.AddNonRebasingSupply(legs.TokensCredited); err != nil {
				return err
			}
		} else {
			if err := st.AddRebasingCredits(legs.CreditsCredited); err != nil {
				return err
			}
		}

		if fromBalance, err = st.BalanceOf(from); err != nil {
			return err
		}
		if toBalance, err = st.BalanceOf(to); err != nil {
			return err
		}
		if l.opts.TrackRounding {
			observed := new(big.Int).Sub(fromBalance.ToBig(), fromBefore.ToBig())
			dTo := new(big.Int).Sub(toBalance.ToBig(), toBefore.ToBig())
			return l.recordRounding(st, observed.Add(observed, dTo))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return fromBalance, toBalance, nil
}

// TransferLegs are the two sides of one transfer: the credits moved on
// each account's grid and the token value of each leg.
type TransferLegs struct {
	CreditsDeducted *uint256.Int
	CreditsCredited *uint256.Int
	TokensDeducted  *uint256.Int
	TokensCredited  *uint256.Int
}

// TransferRoundingStrategy computes the legs of a transfer from the
// nominal amount and the multipliers in force on each side.
type TransferRoundingStrategy interface {
	Legs(amount, fromCpt, toCpt *uint256.Int) (*TransferLegs, error)
	Name() string
}

var (
	// TransferDerived computes the finer-grid leg from the token value of
	// the coarser one instead of truncating both sides independently,
	// narrowing the gap between tokens debited and credited. The default.
	TransferDerived TransferRoundingStrategy = derivedTransfer{}

	// TransferNaive truncates both legs independently from the nominal
	// amount and values both at the nominal amount, reproducing the
	// historical aggregate behavior.
	TransferNaive TransferRoundingStrategy = naiveTransfer{}
)

type derivedTransfer struct{}

func (derivedTransfer) Name() string { return "derived" }

func (derivedTransfer) Legs(amount, fromCpt, toCpt *uint256.Int) (*TransferLegs, error) {
	switch fromCpt.Cmp(toCpt) {
	case 0:
		credits, err := fixed.MulTruncate(amount, fromCpt)
		if err != nil {
			return nil, err
		}
		tokens, err := fixed.DivPrecisely(credits, fromCpt)
		if err != nil {
			return nil, err
		}
		return &TransferLegs{
			CreditsDeducted: credits,
			CreditsCredited: credits,
			TokensDeducted:  tokens,
			TokensCredited:  tokens,
		}, nil

	case 1:
		// sender's grid is finer; fix the credited leg first and derive
		// the debit from the token value actually credited
		creditsCredited, err := fixed.MulTruncate(amount, toCpt)
		if err != nil {
			return nil, err
		}
		tokensCredited, err := fixed.DivPrecisely(creditsCredited, toCpt)
		if err != nil {
			return nil, err
		}
		creditsDeducted, err := fixed.MulTruncate(tokensCredited, fromCpt)
		if err != nil {
			return nil, err
		}
		tokensDeducted, err := fixed.DivPrecisely(creditsDeducted, fromCpt)
		if err != nil {
			return nil, err
		}
		return &TransferLegs{
			CreditsDeducted: creditsDeducted,
			CreditsCredited: creditsCredited,
			TokensDeducted:  tokensDeducted,
			TokensCredited:  tokensCredited,
		}, nil

	default:
		creditsDeducted, err := fixed.MulTruncate(amount, fromCpt)
		if err != nil {
			return nil, err
		}
		tokensDeducted, err := fixed.DivPrecisely(creditsDeducted, fromCpt)
		if err != nil {
			return nil, err
		}
		creditsCredited, err := fixed.MulTruncate(tokensDeducted, toCpt)
		if err != nil {
			return nil, err
		}
		tokensCredited, err := fixed.DivPrecisely(creditsCredited, toCpt)
		if err != nil {
			return nil, err
		}
		return &TransferLegs{
			CreditsDeducted: creditsDeducted,
			CreditsCredited: creditsCredited,
			TokensDeducted:  tokensDeducted,
			TokensCredited:  tokensCredited,
		}, nil
	}
}

type naiveTransfer struct{}

func (naiveTransfer) Name() string { return "naive" }

func (naiveTransfer) Legs(amount, fromCpt, toCpt *uint256.Int) (*TransferLegs, error) {
	creditsDeducted, err := fixed.MulTruncate(amount, fromCpt)
	if err != nil {
		return nil, err
	}
	creditsCredited, err := fixed.MulTruncate(amount, toCpt)
	if err != nil {
		return nil, err
	}
	return &TransferLegs{
		CreditsDeducted: creditsDeducted,
		CreditsCredited: creditsCredited,
		TokensDeducted:  amount.Clone(),
		TokensCredited:  amount.Clone(),
	}, nil
}
