// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplyworks/rebase/lvldb"
	"github.com/supplyworks/rebase/rebase"
)

func M(a ...any) []any {
	return a
}

func TestAccountEmpty(t *testing.T) {
	assert.True(t, emptyAccount().IsEmpty())
	assert.False(t, (&Account{Credits: uint256.NewInt(1), LockedCreditsPerToken: new(uint256.Int)}).IsEmpty())
	assert.False(t, (&Account{Credits: new(uint256.Int), LockedCreditsPerToken: uint256.NewInt(1)}).IsEmpty())
}

func TestAccountClass(t *testing.T) {
	acc := emptyAccount()
	assert.False(t, acc.IsNonRebasing())

	global := uint256.NewInt(5e17)
	assert.Equal(t, global, acc.CreditsPerToken(global))

	acc.LockedCreditsPerToken = uint256.NewInt(1e18)
	assert.True(t, acc.IsNonRebasing())
	assert.Equal(t, acc.LockedCreditsPerToken, acc.CreditsPerToken(global))
}

func TestAccountBalance(t *testing.T) {
	acc := &Account{
		Credits:               uint256.NewInt(3),
		LockedCreditsPerToken: new(uint256.Int),
	}
	bal, err := acc.Balance(uint256.NewInt(2e18))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1), bal)

	// locked multiplier wins over the global one
	acc.LockedCreditsPerToken = uint256.NewInt(1e18)
	bal, err = acc.Balance(uint256.NewInt(2e18))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(3), bal)
}

func TestAccountCodec(t *testing.T) {
	acc := &Account{
		Credits:               uint256.NewInt(12345),
		LockedCreditsPerToken: uint256.NewInt(1e18),
	}
	data, err := acc.Encode()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var decoded Account
	require.NoError(t, decoded.Decode(data))
	assert.Equal(t, acc, &decoded)

	// empty encodes to nothing and nothing decodes to empty
	data, err = emptyAccount().Encode()
	require.NoError(t, err)
	assert.Nil(t, data)

	var fresh Account
	require.NoError(t, fresh.Decode(nil))
	assert.True(t, fresh.IsEmpty())
}

func TestAccountCodecFuzz(t *testing.T) {
	f := fuzz.New().NilChance(0).Funcs(
		func(u *uint256.Int, c fuzz.Continue) {
			*u = uint256.Int{c.Uint64(), c.Uint64(), c.Uint64(), c.Uint64()}
		},
	)
	for range 100 {
		var acc Account
		f.Fuzz(&acc)

		data, err := acc.Encode()
		require.NoError(t, err)
		if acc.IsEmpty() {
			assert.Nil(t, data)
			continue
		}
		var decoded Account
		require.NoError(t, decoded.Decode(data))
		assert.Equal(t, &acc, &decoded)
	}
}

func TestLoadAccount(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	addr := rebase.BytesToAddress([]byte("account1"))

	assert.Equal(t,
		M(loadAccount(db, addr)),
		[]any{emptyAccount(), nil},
		"should load an empty account")

	acc := &Account{
		Credits:               uint256.NewInt(7),
		LockedCreditsPerToken: new(uint256.Int),
	}
	data, err := acc.Encode()
	require.NoError(t, err)
	require.NoError(t, db.Put(accountStoreKey(addr), data))

	assert.Equal(t, M(loadAccount(db, addr)), []any{acc, nil})
}
