// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/supplyworks/rebase/rebase"
	"github.com/supplyworks/rebase/state"
)

// NewCustomNet create custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	if len(gen.Accounts) == 0 {
		return nil, errors.New("at least one account")
	}

	builder := new(Builder).
		LaunchTime(gen.LaunchTime).
		State(func(st *state.State) error {
			for _, a := range gen.Accounts {
				if a.Balance == nil {
					return fmt.Errorf("%s: balance must be set", a.Address)
				}
				if (*big.Int)(a.Balance).Sign() < 0 {
					return fmt.Errorf("%s: balance must be a non-negative integer", a.Address)
				}
				balance, overflow := uint256.FromBig((*big.Int)(a.Balance))
				if overflow {
					return fmt.Errorf("%s: balance out of range", a.Address)
				}
				if err := seedAccount(st, a.Address, balance, a.NonRebasing); err != nil {
					return err
				}
			}
			return nil
		})

	if len(gen.ExtraData) > 0 {
		var extra [28]byte
		copy(extra[:], gen.ExtraData)
		builder.ExtraData(extra)
	}

	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	return &Genesis{builder, id, "customnet"}, nil
}

// seedAccount credits an account at the initial 1:1 multiplier and keeps
// the aggregates in step, so the ledger opens on a consistent state.
func seedAccount(st *state.State, addr rebase.Address, balance *uint256.Int, nonRebasing bool) error {
	if err := st.AddCredits(addr, balance); err != nil {
		return err
	}
	if nonRebasing {
		if err := st.SetLockedCreditsPerToken(addr, rebase.InitialCreditsPerToken); err != nil {
			return err
		}
		if err := st.AddNonRebasingSupply(balance); err != nil {
			return err
		}
	} else {
		if err := st.AddRebasingCredits(balance); err != nil {
			return err
		}
	}
	return st.AddTotalSupply(balance)
}
