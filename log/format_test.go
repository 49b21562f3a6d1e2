// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"math"
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

var sink []byte

func BenchmarkPrettyInt64Logfmt(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for b.Loop() {
		sink = appendInt64(buf, rand.Int64()) //#nosec G404
	}
}

func BenchmarkPrettyUint64Logfmt(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for b.Loop() {
		sink = appendUint64(buf, rand.Uint64(), false) //#nosec G404
	}
}

func TestAppendInt64(t *testing.T) {
	tests := []struct {
		n        int64
		expected string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{1005, "1,005"},
		{1000000, "1,000,000"},
		{1234567, "1,234,567"},
		{-1234567, "-1,234,567"},
		{math.MaxInt64, "9,223,372,036,854,775,807"},
		{math.MinInt64, "-9,223,372,036,854,775,808"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, string(appendInt64(nil, tt.n)))
	}
}

func TestAppendUint64(t *testing.T) {
	assert.Equal(t, "0", string(appendUint64(nil, 0, false)))
	assert.Equal(t, "18,446,744,073,709,551,615", string(appendUint64(nil, math.MaxUint64, false)))
}

func TestStringify(t *testing.T) {
	tests := []struct {
		v        any
		expected string
	}{
		{uint256.NewInt(1000000), "1000000"},
		{big.NewInt(-42), "-42"},
		{(*big.Int)(nil), "<nil>"},
		{(*uint256.Int)(nil), "<nil>"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, stringify(tt.v))
	}
}

func TestNeedsQuoting(t *testing.T) {
	assert.True(t, needsQuoting(""))
	assert.True(t, needsQuoting("a b"))
	assert.True(t, needsQuoting("a=b"))
	assert.True(t, needsQuoting(`a"b`))
	assert.False(t, needsQuoting("mint"))
	assert.False(t, needsQuoting("1,000"))
}
