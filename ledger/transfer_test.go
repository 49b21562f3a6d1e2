// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplyworks/rebase/rebase"
)

func TestTransferLegs(t *testing.T) {
	full := uint256.NewInt(1e18)
	half := uint256.NewInt(5e17)

	tests := []struct {
		strategy TransferRoundingStrategy
		amount   uint64
		fromCpt  *uint256.Int
		toCpt    *uint256.Int
		expected *TransferLegs
	}{
		// on equal grids both strategies deduct and credit the same credits,
		// but only the derived one re-derives the token value
		{TransferDerived, 5, full, full, &TransferLegs{uint256.NewInt(5), uint256.NewInt(5), uint256.NewInt(5), uint256.NewInt(5)}},
		{TransferDerived, 3, half, half, &TransferLegs{uint256.NewInt(1), uint256.NewInt(1), uint256.NewInt(2), uint256.NewInt(2)}},
		{TransferNaive, 3, half, half, &TransferLegs{uint256.NewInt(1), uint256.NewInt(1), uint256.NewInt(3), uint256.NewInt(3)}},

		// across grids the derived legs carry equal token value
		{TransferDerived, 3, full, half, &TransferLegs{uint256.NewInt(2), uint256.NewInt(1), uint256.NewInt(2), uint256.NewInt(2)}},
		{TransferDerived, 3, half, full, &TransferLegs{uint256.NewInt(1), uint256.NewInt(2), uint256.NewInt(2), uint256.NewInt(2)}},
		{TransferNaive, 3, half, full, &TransferLegs{uint256.NewInt(1), uint256.NewInt(3), uint256.NewInt(3), uint256.NewInt(3)}},
	}
	for i, tt := range tests {
		legs, err := tt.strategy.Legs(uint256.NewInt(tt.amount), tt.fromCpt, tt.toCpt)
		require.NoError(t, err, "#%d", i)
		assert.Equal(t, tt.expected, legs, "#%d", i)
	}
}

func TestTransferSameGrid(t *testing.T) {
	l := newTestLedger(t, Options{})
	a := rebase.BytesToAddress([]byte("a1"))
	b := rebase.BytesToAddress([]byte("b1"))

	_, err := l.Mint(a, uint256.NewInt(10))
	require.NoError(t, err)

	from, to, err := l.Transfer(a, b, uint256.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(6), from)
	assert.Equal(t, uint256.NewInt(4), to)

	rc, err := l.RebasingCredits()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(10), rc)

	supply, err := l.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(10), supply)
}

func TestTransferSameGridRealizedDeltas(t *testing.T) {
	l := newTestLedger(t, Options{})
	a := rebase.BytesToAddress([]byte("a1"))
	b := rebase.BytesToAddress([]byte("b1"))

	_, err := l.Mint(a, uint256.NewInt(100))
	require.NoError(t, err)
	_, err = l.Mint(b, uint256.NewInt(50))
	require.NoError(t, err)
	_, err = l.ChangeSupply(uint256.NewInt(225))
	require.NoError(t, err)

	m, err := l.RebasingCreditsPerToken()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(666666666666666666), m)

	pre := []struct {
		ret      any
		expected any
	}{
		{M(l.BalanceOf(a)), []any{uint256.NewInt(150), nil}},
		{M(l.BalanceOf(b)), []any{uint256.NewInt(75), nil}},
	}
	for i, tt := range pre {
		assert.Equal(t, tt.expected, tt.ret, "#%d", i)
	}

	// the one-credit leg is worth one token, yet each realized balance
	// floors on its own credit residue: two tokens leave the sender while
	// one reaches the receiver, a gap of at most one
	from, to, err := l.Transfer(a, b, uint256.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(148), from)
	assert.Equal(t, uint256.NewInt(76), to)

	creditsA, _, err := l.CreditsBalanceOf(a)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(99), creditsA)
	creditsB, _, err := l.CreditsBalanceOf(b)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(51), creditsB)

	post := []struct {
		ret      any
		expected any
	}{
		{M(l.RebasingCredits()), []any{uint256.NewInt(150), nil}},
		{M(l.TotalSupply()), []any{uint256.NewInt(225), nil}},
	}
	for i, tt := range post {
		assert.Equal(t, tt.expected, tt.ret, "#%d", i)
	}
}

func TestTransferInsufficientBalance(t *testing.T) {
	l := newTestLedger(t, Options{})
	a := rebase.BytesToAddress([]byte("a1"))
	b := rebase.BytesToAddress([]byte("b1"))

	_, err := l.Mint(a, uint256.NewInt(10))
	require.NoError(t, err)

	_, _, err = l.Transfer(a, b, uint256.NewInt(11))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	tests := []struct {
		ret      any
		expected any
	}{
		{M(l.BalanceOf(a)), []any{uint256.NewInt(10), nil}},
		{M(l.BalanceOf(b)), []any{new(uint256.Int), nil}},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.expected, tt.ret, "#%d", i)
	}
}

func TestTransferSelf(t *testing.T) {
	l := newTestLedger(t, Options{})
	addr := rebase.BytesToAddress([]byte("a1"))

	_, err := l.Mint(addr, uint256.NewInt(10))
	require.NoError(t, err)

	from, to, err := l.Transfer(addr, addr, uint256.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(10), from)
	assert.Equal(t, uint256.NewInt(10), to)

	rc, err := l.RebasingCredits()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(10), rc)
}

// crossClassLedger sets up a rebasing sender worth 100 on the halved grid
// and an opted-out receiver holding 10 on the initial one.
func crossClassLedger(t *testing.T, opts Options) (*Ledger, rebase.Address, rebase.Address) {
	l := newTestLedger(t, opts)
	a := rebase.BytesToAddress([]byte("a1"))
	b := rebase.BytesToAddress([]byte("b1"))

	_, err := l.Mint(a, uint256.NewInt(50))
	require.NoError(t, err)
	_, err = l.Mint(b, uint256.NewInt(10))
	require.NoError(t, err)
	_, err = l.OptOut(b)
	require.NoError(t, err)
	_, err = l.ChangeSupply(uint256.NewInt(110))
	require.NoError(t, err)
	return l, a, b
}

func TestTransferCrossClassDerived(t *testing.T) {
	l, a, b := crossClassLedger(t, Options{})

	// three tokens truncate to one credit on the sender's grid, worth two
	// tokens; the receiver is credited exactly those two
	from, to, err := l.Transfer(a, b, uint256.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(98), from)
	assert.Equal(t, uint256.NewInt(12), to)

	tests := []struct {
		ret      any
		expected any
	}{
		{M(l.RebasingCredits()), []any{uint256.NewInt(49), nil}},
		{M(l.NonRebasingSupply()), []any{uint256.NewInt(12), nil}},
		{M(l.TotalSupply()), []any{uint256.NewInt(110), nil}},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.expected, tt.ret, "#%d", i)
	}
}

func TestTransferCrossClassNaive(t *testing.T) {
	l, a, b := crossClassLedger(t, Options{Transfer: TransferNaive})

	// the naive legs credit three tokens while only two leave the sender
	from, to, err := l.Transfer(a, b, uint256.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(98), from)
	assert.Equal(t, uint256.NewInt(13), to)

	tests := []struct {
		ret      any
		expected any
	}{
		{M(l.RebasingCredits()), []any{uint256.NewInt(49), nil}},
		{M(l.NonRebasingSupply()), []any{uint256.NewInt(13), nil}},
		{M(l.TotalSupply()), []any{uint256.NewInt(110), nil}},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.expected, tt.ret, "#%d", i)
	}
}
