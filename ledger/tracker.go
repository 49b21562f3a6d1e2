// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/supplyworks/rebase/state"
)

// The rounding tracker accumulates, per mint, burn and transfer, the
// difference between the observed balance deltas and the cached supply
// delta. Truncation makes most contributions non-positive; the legacy
// burn's nominal accounting can push them positive. The accumulator lives
// in the global record, so operation reverts and restarts cover it.

// recordRounding folds one operation's contribution into the accumulator.
func (l *Ledger) recordRounding(st *state.State, contribution *big.Int) error {
	if contribution.Sign() == 0 {
		return nil
	}
	accum, err := st.GetAccum()
	if err != nil {
		return err
	}
	accum.Add(accum, contribution)
	if err := st.SetAccum(accum); err != nil {
		return err
	}
	if accum.IsInt64() {
		metricAccum().Set(accum.Int64())
	}
	return nil
}

// RoundingError returns the signed accumulated rounding error. It stays
// zero while tracking is off.
func (l *Ledger) RoundingError() (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.GetAccum()
}
