// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "errors"

// Operation failures. All are deterministic rejections of the requested
// operation against current state, none is retryable, and none leaves a
// partial mutation behind. Check with errors.Is.
var (
	// ErrInsufficientBalance rejects an operation the named account cannot
	// cover, and burns that would take the cached supply negative.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrInsufficientCredits signals an aggregate underflow. Account records
	// and aggregates disagree when this fires.
	ErrInsufficientCredits = errors.New("ledger: insufficient credits")

	// ErrDustBurn rejects a burn whose non-zero amount converts to zero
	// credits under the account's multiplier.
	ErrDustBurn = errors.New("ledger: burn amount truncates to zero credits")

	// ErrAlreadyInState rejects opting an account into its current class.
	ErrAlreadyInState = errors.New("ledger: account already in requested state")

	// ErrInvalidSupplyChange rejects a degenerate supply change: a target
	// below the non-rebasing floor, a zero rebasing share, or a multiplier
	// that rounds to zero.
	ErrInvalidSupplyChange = errors.New("ledger: invalid supply change")
)
