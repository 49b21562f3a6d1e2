// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/supplyworks/rebase/rebase"
	"github.com/supplyworks/rebase/state"
)

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for solo mode.
// Addresses are derived from a fixed tag, so every run sees the same set.
func DevAccounts() []rebase.Address {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]rebase.Address)
	}

	var accs []rebase.Address
	for i := range 10 {
		h := rebase.Blake2b([]byte("rebase dev account"), []byte{byte(i)})
		accs = append(accs, rebase.BytesToAddress(h.Bytes()))
	}
	devAccounts.Store(accs)
	return accs
}

// NewDevnet create genesis for solo mode.
func NewDevnet() *Genesis {
	launchTime := uint64(1735689600) // '2025-01-01T00:00:00Z'

	balance := new(uint256.Int).Mul(uint256.NewInt(1e9), rebase.Precision)

	builder := new(Builder).
		LaunchTime(launchTime).
		State(func(st *state.State) error {
			for _, addr := range DevAccounts() {
				if err := seedAccount(st, addr, balance, false); err != nil {
					return err
				}
			}
			return nil
		})

	id, err := builder.ComputeID()
	if err != nil {
		panic(err)
	}

	return &Genesis{builder, id, "devnet"}
}
