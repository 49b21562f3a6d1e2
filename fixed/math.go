// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fixed implements the 1e18 fixed-point operations the ledger is built on.
//
// All results round toward zero unless the name says otherwise. Intermediates are
// computed double-width, so overflow is only reported when a result does not fit
// 256 bits.
package fixed

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/supplyworks/rebase/rebase"
)

var (
	ErrOverflow       = errors.New("fixed: overflow")
	ErrDivisionByZero = errors.New("fixed: division by zero")
)

// MulTruncate returns floor(x * m / Precision).
//
// This is the scheme's lossy direction: token amounts multiplied by a
// credits-per-token value land on a credit grid and the sub-unit remainder
// is discarded.
func MulTruncate(x, m *uint256.Int) (*uint256.Int, error) {
	var z uint256.Int
	if _, overflow := z.MulDivOverflow(x, m, rebase.Precision); overflow {
		return nil, ErrOverflow
	}
	return &z, nil
}

// DivPrecisely returns floor(x * Precision / d).
func DivPrecisely(x, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	var z uint256.Int
	if _, overflow := z.MulDivOverflow(x, rebase.Precision, d); overflow {
		return nil, ErrOverflow
	}
	return &z, nil
}

// DivPreciselyUp returns ceil(x * Precision / d).
func DivPreciselyUp(x, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	var z uint256.Int
	if _, overflow := z.MulDivOverflow(x, rebase.Precision, d); overflow {
		return nil, ErrOverflow
	}
	var rem uint256.Int
	if !rem.MulMod(x, rebase.Precision, d).IsZero() {
		if _, overflow := z.AddOverflow(&z, uint256.NewInt(1)); overflow {
			return nil, ErrOverflow
		}
	}
	return &z, nil
}
