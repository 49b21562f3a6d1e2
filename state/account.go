// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/supplyworks/rebase/fixed"
	"github.com/supplyworks/rebase/kv"
	"github.com/supplyworks/rebase/rebase"
)

// Account is the persistent record of a ledger account.
//
// An account holds credits, not tokens. Its token balance is derived by
// dividing credits by the multiplier in force for the account: the shared
// global one, or the locked one snapshotted when the account opted out of
// rebasing. LockedCreditsPerToken is zero for rebasing accounts.
type Account struct {
	Credits               *uint256.Int
	LockedCreditsPerToken *uint256.Int
}

func emptyAccount() *Account {
	return &Account{
		Credits:               new(uint256.Int),
		LockedCreditsPerToken: new(uint256.Int),
	}
}

// IsEmpty returns if the account record carries no information.
// Empty accounts are not persisted.
func (a *Account) IsEmpty() bool {
	return a.Credits.IsZero() && a.LockedCreditsPerToken.IsZero()
}

// IsNonRebasing returns whether the account is pinned to a locked multiplier.
// The locked multiplier is non-zero exactly when the account has opted out.
func (a *Account) IsNonRebasing() bool {
	return !a.LockedCreditsPerToken.IsZero()
}

// CreditsPerToken returns the multiplier in force for this account.
func (a *Account) CreditsPerToken(global *uint256.Int) *uint256.Int {
	if a.IsNonRebasing() {
		return a.LockedCreditsPerToken
	}
	return global
}

// Balance derives the token balance under the given global multiplier.
func (a *Account) Balance(global *uint256.Int) (*uint256.Int, error) {
	return fixed.DivPrecisely(a.Credits, a.CreditsPerToken(global))
}

// Encode encodes the account into bytes, or nil if empty.
func (a *Account) Encode() ([]byte, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(a)
}

// Decode decodes bytes into the account. Empty data decodes to the empty account.
func (a *Account) Decode(data []byte) error {
	if len(data) == 0 {
		*a = *emptyAccount()
		return nil
	}
	return rlp.DecodeBytes(data, a)
}

func accountStoreKey(addr rebase.Address) []byte {
	return append([]byte("a"), addr[:]...)
}

func loadAccount(src kv.Getter, addr rebase.Address) (*Account, error) {
	data, err := src.Get(accountStoreKey(addr))
	if err != nil {
		if src.IsNotFound(err) {
			return emptyAccount(), nil
		}
		return nil, err
	}
	var acc Account
	if err := acc.Decode(data); err != nil {
		return nil, err
	}
	return &acc, nil
}
