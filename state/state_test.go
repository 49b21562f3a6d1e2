// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplyworks/rebase/fixed"
	"github.com/supplyworks/rebase/lvldb"
	"github.com/supplyworks/rebase/rebase"
	"github.com/supplyworks/rebase/test/datagen"
)

func newTestState(t *testing.T) *State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestStateCredits(t *testing.T) {
	st := newTestState(t)
	addr := rebase.BytesToAddress([]byte("a1"))

	tests := []struct {
		ret      any
		expected any
	}{
		{M(st.GetCredits(addr)), []any{new(uint256.Int), nil}},
		{st.AddCredits(addr, uint256.NewInt(10)), nil},
		{M(st.GetCredits(addr)), []any{uint256.NewInt(10), nil}},
		{M(st.SubCredits(addr, uint256.NewInt(4))), []any{true, nil}},
		{M(st.GetCredits(addr)), []any{uint256.NewInt(6), nil}},
		{M(st.SubCredits(addr, uint256.NewInt(7))), []any{false, nil}},
		{M(st.GetCredits(addr)), []any{uint256.NewInt(6), nil}},
		{st.SetCredits(addr, uint256.NewInt(100)), nil},
		{M(st.GetCredits(addr)), []any{uint256.NewInt(100), nil}},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.expected, tt.ret, "#%d", i)
	}
}

func TestStateCreditsOverflow(t *testing.T) {
	st := newTestState(t)
	addr := rebase.BytesToAddress([]byte("a1"))

	max := new(uint256.Int).SetAllOne()
	require.NoError(t, st.AddCredits(addr, max))
	assert.ErrorIs(t, st.AddCredits(addr, uint256.NewInt(1)), fixed.ErrOverflow)

	// a failed add leaves the balance untouched
	credits, err := st.GetCredits(addr)
	require.NoError(t, err)
	assert.Equal(t, max, credits)
}

func TestStateBalance(t *testing.T) {
	st := newTestState(t)
	rebasing := rebase.BytesToAddress([]byte("r"))
	locked := rebase.BytesToAddress([]byte("n"))

	require.NoError(t, st.AddCredits(rebasing, uint256.NewInt(4e18)))
	require.NoError(t, st.AddCredits(locked, uint256.NewInt(4e18)))
	require.NoError(t, st.SetLockedCreditsPerToken(locked, uint256.NewInt(2e18)))

	// halving the global multiplier doubles rebasing balances only
	require.NoError(t, st.SetRebasingCreditsPerToken(uint256.NewInt(5e17)))

	tests := []struct {
		ret      any
		expected any
	}{
		{M(st.IsNonRebasing(rebasing)), []any{false, nil}},
		{M(st.IsNonRebasing(locked)), []any{true, nil}},
		{M(st.CreditsPerToken(rebasing)), []any{uint256.NewInt(5e17), nil}},
		{M(st.CreditsPerToken(locked)), []any{uint256.NewInt(2e18), nil}},
		{M(st.BalanceOf(rebasing)), []any{uint256.NewInt(8e18), nil}},
		{M(st.BalanceOf(locked)), []any{uint256.NewInt(2e18), nil}},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.expected, tt.ret, "#%d", i)
	}

	// clearing the lock returns the account to the rebasing class
	require.NoError(t, st.SetLockedCreditsPerToken(locked, new(uint256.Int)))
	b, err := st.BalanceOf(locked)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(8e18), b)
}

func TestStateGlobal(t *testing.T) {
	st := newTestState(t)

	tests := []struct {
		ret      any
		expected any
	}{
		{st.AddRebasingCredits(uint256.NewInt(10)), nil},
		{M(st.SubRebasingCredits(uint256.NewInt(3))), []any{true, nil}},
		{M(st.SubRebasingCredits(uint256.NewInt(8))), []any{false, nil}},
		{st.AddNonRebasingSupply(uint256.NewInt(5)), nil},
		{M(st.SubNonRebasingSupply(uint256.NewInt(6))), []any{false, nil}},
		{M(st.SubNonRebasingSupply(uint256.NewInt(5))), []any{true, nil}},
		{st.AddTotalSupply(uint256.NewInt(20)), nil},
		{M(st.SubTotalSupply(uint256.NewInt(1))), []any{true, nil}},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.expected, tt.ret, "#%d", i)
	}

	g, err := st.Global()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(7), g.RebasingCredits)
	assert.Equal(t, new(uint256.Int), g.NonRebasingSupply)
	assert.Equal(t, uint256.NewInt(19), g.TotalSupply)

	// Global returns a copy detached from the journal
	g.TotalSupply.SetUint64(0)
	g2, err := st.Global()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(19), g2.TotalSupply)
}

func TestStateAccum(t *testing.T) {
	st := newTestState(t)

	a, err := st.GetAccum()
	require.NoError(t, err)
	assert.Equal(t, 0, a.Sign())

	require.NoError(t, st.SetAccum(big.NewInt(-5)))
	a, err = st.GetAccum()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(-5), a)
}

func TestStateCheckpointRevert(t *testing.T) {
	st := newTestState(t)
	addr := rebase.BytesToAddress([]byte("a1"))

	require.NoError(t, st.AddCredits(addr, uint256.NewInt(10)))

	rev := st.NewCheckpoint()
	require.NoError(t, st.AddCredits(addr, uint256.NewInt(5)))
	require.NoError(t, st.AddRebasingCredits(uint256.NewInt(5)))
	require.NoError(t, st.SetRebasingCreditsPerToken(uint256.NewInt(5e17)))

	st.RevertTo(rev)

	credits, err := st.GetCredits(addr)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(10), credits)

	g, err := st.Global()
	require.NoError(t, err)
	assert.True(t, g.IsDefault(), "global mutations should roll back together")
}

func TestStateNestedCheckpoints(t *testing.T) {
	st := newTestState(t)
	addr := rebase.BytesToAddress([]byte("a1"))

	require.NoError(t, st.AddCredits(addr, uint256.NewInt(10)))

	rev1 := st.NewCheckpoint()
	require.NoError(t, st.AddCredits(addr, uint256.NewInt(1)))
	rev2 := st.NewCheckpoint()
	require.NoError(t, st.AddCredits(addr, uint256.NewInt(2)))

	st.RevertTo(rev2)
	credits, err := st.GetCredits(addr)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(11), credits)

	st.RevertTo(rev1)
	credits, err = st.GetCredits(addr)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(10), credits)
}

func TestStateStageCommit(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	stater := NewStater(db)

	st := stater.NewState()
	a1 := rebase.BytesToAddress([]byte("a1"))
	a2 := rebase.BytesToAddress([]byte("a2"))

	require.NoError(t, st.AddCredits(a1, uint256.NewInt(10)))
	require.NoError(t, st.AddCredits(a2, uint256.NewInt(20)))
	require.NoError(t, st.AddCredits(a2, uint256.NewInt(5)))
	require.NoError(t, st.AddTotalSupply(uint256.NewInt(35)))

	stage, err := st.Stage()
	require.NoError(t, err)
	assert.Equal(t, 3, stage.Len())
	require.NoError(t, stage.Commit())

	// a fresh state sees the committed records
	st = stater.NewState()
	tests := []struct {
		ret      any
		expected any
	}{
		{M(st.GetCredits(a1)), []any{uint256.NewInt(10), nil}},
		{M(st.GetCredits(a2)), []any{uint256.NewInt(25), nil}},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.expected, tt.ret, "#%d", i)
	}
	g, err := st.Global()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(35), g.TotalSupply)
}

func TestStateRecordDecay(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	stater := NewStater(db)
	addr := rebase.BytesToAddress([]byte("a1"))

	st := stater.NewState()
	require.NoError(t, st.AddCredits(addr, uint256.NewInt(10)))
	stage, err := st.Stage()
	require.NoError(t, err)
	require.NoError(t, stage.Commit())

	has, err := db.Has(accountStoreKey(addr))
	require.NoError(t, err)
	assert.True(t, has)

	// zeroing the record removes it from the store on the next commit
	st = stater.NewState()
	ok, err := st.SubCredits(addr, uint256.NewInt(10))
	require.NoError(t, err)
	require.True(t, ok)
	stage, err = st.Stage()
	require.NoError(t, err)
	require.NoError(t, stage.Commit())

	has, err = db.Has(accountStoreKey(addr))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStateRandomRoundTrip(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	stater := NewStater(db)
	st := stater.NewState()

	want := make(map[rebase.Address]*uint256.Int)
	for i := 0; i < 50; i++ {
		addr := datagen.RandAddress()
		amount := datagen.RandAmount(1e9)
		require.NoError(t, st.AddCredits(addr, amount))
		if prev, ok := want[addr]; ok {
			want[addr] = new(uint256.Int).Add(prev, amount)
		} else {
			want[addr] = amount
		}
	}

	stage, err := st.Stage()
	require.NoError(t, err)
	require.NoError(t, stage.Commit())

	st = stater.NewState()
	for addr, amount := range want {
		credits, err := st.GetCredits(addr)
		require.NoError(t, err)
		assert.Equal(t, amount, credits, "%s", addr)
	}
}

func TestStateError(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)

	st := New(db)
	db.Close()

	_, err = st.GetCredits(rebase.BytesToAddress([]byte("a1")))
	var serr *Error
	assert.ErrorAs(t, err, &serr)
}
