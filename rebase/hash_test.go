// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rebase

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlake2b(t *testing.T) {
	single := Blake2b([]byte("data"))
	multi := Blake2b([]byte("da"), []byte("ta"))

	// chunking must not change the digest
	assert.Equal(t, single, multi)
	assert.NotEqual(t, single, Blake2b([]byte("other")))
}

func TestBlake2bFn(t *testing.T) {
	h := Blake2bFn(func(w io.Writer) {
		w.Write([]byte("custom writer"))
	})
	assert.Equal(t, Blake2b([]byte("custom writer")), h)
}

func TestKeccak256(t *testing.T) {
	// well known digest of the empty input
	assert.Equal(t,
		MustParseBytes32("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"),
		Keccak256())

	assert.Equal(t, Keccak256([]byte("da"), []byte("ta")), Keccak256([]byte("data")))
}

func TestHasherPoolReuse(t *testing.T) {
	// repeated use must not leak state between calls
	first := Blake2b([]byte("a"))
	for range 10 {
		Blake2b([]byte("b"))
		Keccak256([]byte("b"))
	}
	assert.Equal(t, first, Blake2b([]byte("a")))
}

func BenchmarkBlake2b(b *testing.B) {
	data := make([]byte, 100)
	for b.Loop() {
		Blake2b(data)
	}
}
