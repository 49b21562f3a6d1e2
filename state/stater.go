// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/supplyworks/rebase/kv"
	"github.com/supplyworks/rebase/rebase"
)

// Stater is the factory of State instances over one backing store.
type Stater struct {
	store kv.GetPutter
}

// NewStater creates a stater.
func NewStater(store kv.GetPutter) *Stater {
	return &Stater{store}
}

// NewState creates a state over the currently committed records.
func (st *Stater) NewState() *State {
	return New(st.store)
}

// Accounts iterates committed account records in address order.
// Changes journaled in live states are not visible here; iteration stops
// early when the callback returns false.
func (st *Stater) Accounts(cb func(addr rebase.Address, acc *Account) bool) error {
	iter := st.store.NewIterator(kv.Range{From: []byte("a"), To: []byte("b")})
	defer iter.Release()

	for iter.Next() {
		key := iter.Key()
		if len(key) != 1+rebase.AddressLength {
			continue
		}
		var acc Account
		if err := acc.Decode(iter.Value()); err != nil {
			return &Error{err}
		}
		if !cb(rebase.BytesToAddress(key[1:]), &acc) {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return &Error{err}
	}
	return nil
}
