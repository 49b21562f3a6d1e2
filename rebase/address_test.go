// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rebase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain hex", "7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"0x prefixed", "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"upper prefix", "0X7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"bad prefix", "zz7567d83b7b8d80addcb281a71d54fc7b3364ffed", true},
		{"too short", "0x7567d83b", true},
		{"too long", "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed00", true},
		{"not hex", "0x7567d83b7b8d80addcb281a71d54fc7b3364ffzz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseAddress(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())
		})
	}
}

func TestAddressJSON(t *testing.T) {
	raw := `"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"`

	var addr Address
	assert.NoError(t, json.Unmarshal([]byte(raw), &addr))

	out, err := json.Marshal(&addr)
	assert.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestBytesToAddress(t *testing.T) {
	// short input is left padded
	assert.Equal(t, MustParseAddress("0x0000000000000000000000000000000000000001"), BytesToAddress([]byte{1}))

	// long input is cropped from the left
	long := make([]byte, 32)
	long[31] = 0xff
	assert.Equal(t, MustParseAddress("0x00000000000000000000000000000000000000ff"), BytesToAddress(long))
}

func TestAddressIsZero(t *testing.T) {
	assert.True(t, Address{}.IsZero())
	assert.False(t, BytesToAddress([]byte{1}).IsZero())
}
