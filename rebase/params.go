// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rebase

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Constants of the credit accounting scheme.
const (
	// Decimals is the fixed-point scale shared by token amounts and multipliers.
	Decimals = 18
)

var (
	// Precision is the fixed-point unit, 10^18. All multiplier math scales by it.
	Precision    = uint256.NewInt(1e18)
	PrecisionBig = big.NewInt(1e18)

	// InitialCreditsPerToken is the multiplier a fresh ledger starts with,
	// so that credits and tokens are 1:1 until the first supply change.
	InitialCreditsPerToken = uint256.NewInt(1e18)
)
