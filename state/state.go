// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides journaled access to ledger records over a kv store.
package state

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/supplyworks/rebase/fixed"
	"github.com/supplyworks/rebase/kv"
	"github.com/supplyworks/rebase/rebase"
	"github.com/supplyworks/rebase/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// journal key types
type (
	accountKey rebase.Address
	globalKey  struct{}
)

// State manages ledger records with checkpoint-revert manner.
//
// Reads fall through the journal to decoded records cached per instance, then
// to the backing store. Writes stay in the journal until staged and committed.
type State struct {
	store kv.GetPutter
	cache map[any]any            // decoded records from store
	sm    *stackedmap.StackedMap // keeps revisions of records
}

// New create state object over the given store.
func New(store kv.GetPutter) *State {
	state := State{
		store: store,
		cache: make(map[any]any),
	}
	state.sm = stackedmap.New(func(key any) (any, bool, error) {
		return state.cacheGetter(key)
	})
	// base level, so mutations are legal right away
	state.sm.Push()
	return &state
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (value any, exist bool, err error) {
	if cached, ok := s.cache[key]; ok {
		return cached, true, nil
	}
	switch k := key.(type) {
	case accountKey:
		acc, err := loadAccount(s.store, rebase.Address(k))
		if err != nil {
			return nil, false, err
		}
		s.cache[key] = acc
		return acc, true, nil
	case globalKey:
		g, err := loadGlobal(s.store)
		if err != nil {
			return nil, false, err
		}
		s.cache[key] = g
		return g, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// getAccount gets account by address. The returned account must not be modified.
func (s *State) getAccount(addr rebase.Address) (*Account, error) {
	v, _, err := s.sm.Get(accountKey(addr))
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}

// getAccountCopy gets a copy of account by address. Mutators assign fresh
// values to its fields rather than modifying the shared ones in place.
func (s *State) getAccountCopy(addr rebase.Address) (Account, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return Account{}, err
	}
	return *acc, nil
}

func (s *State) updateAccount(addr rebase.Address, acc *Account) {
	s.sm.Put(accountKey(addr), acc)
}

func (s *State) getGlobal() (*Global, error) {
	v, _, err := s.sm.Get(globalKey{})
	if err != nil {
		return nil, err
	}
	return v.(*Global), nil
}

func (s *State) getGlobalCopy() (Global, error) {
	g, err := s.getGlobal()
	if err != nil {
		return Global{}, err
	}
	return *g, nil
}

func (s *State) updateGlobal(g *Global) {
	s.sm.Put(globalKey{}, g)
}

// GetAccount returns a copy of the account record.
func (s *State) GetAccount(addr rebase.Address) (Account, error) {
	acc, err := s.getAccountCopy(addr)
	if err != nil {
		return Account{}, &Error{err}
	}
	return acc, nil
}

// GetCredits returns the credit balance for the given address.
func (s *State) GetCredits(addr rebase.Address) (*uint256.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	return acc.Credits, nil
}

// AddCredits adds credits to the given address.
func (s *State) AddCredits(addr rebase.Address, amount *uint256.Int) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	sum := new(uint256.Int)
	if _, overflow := sum.AddOverflow(cpy.Credits, amount); overflow {
		return fixed.ErrOverflow
	}
	cpy.Credits = sum
	s.updateAccount(addr, &cpy)
	return nil
}

// SubCredits subtracts credits from the given address.
// It returns false without modifying anything when credits are insufficient.
func (s *State) SubCredits(addr rebase.Address, amount *uint256.Int) (bool, error) {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return false, &Error{err}
	}
	if cpy.Credits.Lt(amount) {
		return false, nil
	}
	cpy.Credits = new(uint256.Int).Sub(cpy.Credits, amount)
	s.updateAccount(addr, &cpy)
	return true, nil
}

// SetCredits sets the credit balance for the given address.
func (s *State) SetCredits(addr rebase.Address, credits *uint256.Int) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.Credits = new(uint256.Int).Set(credits)
	s.updateAccount(addr, &cpy)
	return nil
}

// IsNonRebasing returns whether the account is pinned to a locked multiplier.
func (s *State) IsNonRebasing(addr rebase.Address) (bool, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return false, &Error{err}
	}
	return acc.IsNonRebasing(), nil
}

// GetLockedCreditsPerToken returns the locked multiplier, zero for rebasing accounts.
func (s *State) GetLockedCreditsPerToken(addr rebase.Address) (*uint256.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	return acc.LockedCreditsPerToken, nil
}

// SetLockedCreditsPerToken sets the locked multiplier. Setting it to zero
// returns the account to the rebasing class.
func (s *State) SetLockedCreditsPerToken(addr rebase.Address, m *uint256.Int) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.LockedCreditsPerToken = new(uint256.Int).Set(m)
	s.updateAccount(addr, &cpy)
	return nil
}

// CreditsPerToken returns the multiplier in force for the given address.
func (s *State) CreditsPerToken(addr rebase.Address) (*uint256.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	if acc.IsNonRebasing() {
		return acc.LockedCreditsPerToken, nil
	}
	g, err := s.getGlobal()
	if err != nil {
		return nil, &Error{err}
	}
	return g.RebasingCreditsPerToken, nil
}

// BalanceOf derives the token balance for the given address.
func (s *State) BalanceOf(addr rebase.Address) (*uint256.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	g, err := s.getGlobal()
	if err != nil {
		return nil, &Error{err}
	}
	return acc.Balance(g.RebasingCreditsPerToken)
}

// Global returns a deep copy of the aggregates record.
func (s *State) Global() (*Global, error) {
	g, err := s.getGlobal()
	if err != nil {
		return nil, &Error{err}
	}
	return g.Copy(), nil
}

// AddRebasingCredits adds to the rebasing credit aggregate.
func (s *State) AddRebasingCredits(d *uint256.Int) error {
	cpy, err := s.getGlobalCopy()
	if err != nil {
		return &Error{err}
	}
	sum := new(uint256.Int)
	if _, overflow := sum.AddOverflow(cpy.RebasingCredits, d); overflow {
		return fixed.ErrOverflow
	}
	cpy.RebasingCredits = sum
	s.updateGlobal(&cpy)
	return nil
}

// SubRebasingCredits subtracts from the rebasing credit aggregate.
// It returns false without modifying anything on underflow.
func (s *State) SubRebasingCredits(d *uint256.Int) (bool, error) {
	cpy, err := s.getGlobalCopy()
	if err != nil {
		return false, &Error{err}
	}
	if cpy.RebasingCredits.Lt(d) {
		return false, nil
	}
	cpy.RebasingCredits = new(uint256.Int).Sub(cpy.RebasingCredits, d)
	s.updateGlobal(&cpy)
	return true, nil
}

// AddNonRebasingSupply adds to the non-rebasing token aggregate.
func (s *State) AddNonRebasingSupply(d *uint256.Int) error {
	cpy, err := s.getGlobalCopy()
	if err != nil {
		return &Error{err}
	}
	sum := new(uint256.Int)
	if _, overflow := sum.AddOverflow(cpy.NonRebasingSupply, d); overflow {
		return fixed.ErrOverflow
	}
	cpy.NonRebasingSupply = sum
	s.updateGlobal(&cpy)
	return nil
}

// SubNonRebasingSupply subtracts from the non-rebasing token aggregate.
// It returns false without modifying anything on underflow.
func (s *State) SubNonRebasingSupply(d *uint256.Int) (bool, error) {
	cpy, err := s.getGlobalCopy()
	if err != nil {
		return false, &Error{err}
	}
	if cpy.NonRebasingSupply.Lt(d) {
		return false, nil
	}
	cpy.NonRebasingSupply = new(uint256.Int).Sub(cpy.NonRebasingSupply, d)
	s.updateGlobal(&cpy)
	return true, nil
}

// AddTotalSupply adds to the cached total supply.
func (s *State) AddTotalSupply(d *uint256.Int) error {
	cpy, err := s.getGlobalCopy()
	if err != nil {
		return &Error{err}
	}
	sum := new(uint256.Int)
	if _, overflow := sum.AddOverflow(cpy.TotalSupply, d); overflow {
		return fixed.ErrOverflow
	}
	cpy.TotalSupply = sum
	s.updateGlobal(&cpy)
	return nil
}

// SubTotalSupply subtracts from the cached total supply.
// It returns false without modifying anything on underflow.
func (s *State) SubTotalSupply(d *uint256.Int) (bool, error) {
	cpy, err := s.getGlobalCopy()
	if err != nil {
		return false, &Error{err}
	}
	if cpy.TotalSupply.Lt(d) {
		return false, nil
	}
	cpy.TotalSupply = new(uint256.Int).Sub(cpy.TotalSupply, d)
	s.updateGlobal(&cpy)
	return true, nil
}

// SetRebasingCreditsPerToken sets the global multiplier.
func (s *State) SetRebasingCreditsPerToken(m *uint256.Int) error {
	cpy, err := s.getGlobalCopy()
	if err != nil {
		return &Error{err}
	}
	cpy.RebasingCreditsPerToken = new(uint256.Int).Set(m)
	s.updateGlobal(&cpy)
	return nil
}

// SetTotalSupply sets the cached total supply.
func (s *State) SetTotalSupply(v *uint256.Int) error {
	cpy, err := s.getGlobalCopy()
	if err != nil {
		return &Error{err}
	}
	cpy.TotalSupply = new(uint256.Int).Set(v)
	s.updateGlobal(&cpy)
	return nil
}

// GetAccum returns the signed rounding error accumulator.
func (s *State) GetAccum() (*big.Int, error) {
	g, err := s.getGlobal()
	if err != nil {
		return nil, &Error{err}
	}
	return g.Accum(), nil
}

// SetAccum sets the signed rounding error accumulator.
func (s *State) SetAccum(v *big.Int) error {
	cpy, err := s.getGlobalCopy()
	if err != nil {
		return &Error{err}
	}
	cpy.SetAccum(v)
	s.updateGlobal(&cpy)
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}
