// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/supplyworks/rebase/stackedmap"
)

func M(a ...any) []any {
	return a
}

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := make(map[string]string)
	src["foo"] = "bar"

	sm := stackedmap.New(func(key any) (any, bool, error) {
		v, r := src[key.(string)]
		return v, r, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []any
	}{
		{func() { sm.Push() }, 1, "", "", "foo", []any{"bar", true, nil}},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", []any{"baz", true, nil}},
		{func() {}, 2, "foo", "baz1", "foo", []any{"baz1", true, nil}},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", []any{"qux", true, nil}},
		{func() { sm.Pop() }, 2, "", "", "foo", []any{"baz1", true, nil}},
		{func() { sm.Pop() }, 1, "", "", "foo", []any{"bar", true, nil}},

		{func() { sm.Push(); sm.Push() }, 3, "", "", "", nil},
		{func() { sm.PopTo(0) }, 0, "", "", "", nil},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(sm.Depth(), test.depth)
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		if test.getKey != "" {
			assert.Equal(M(sm.Get(test.getKey)), test.getReturn)
		}
	}
}

func TestStackedMapPuts(t *testing.T) {
	assert := assert.New(t)
	sm := stackedmap.New(func(any) (any, bool, error) {
		return nil, false, nil
	})

	kvs := []struct {
		k, v string
	}{
		{"a", "b"},
		{"a", "b"},
		{"a1", "b1"},
		{"a2", "b2"},
		{"a3", "b3"},
		{"a4", "b4"},
	}

	for _, kv := range kvs {
		sm.Push()
		sm.Put(kv.k, kv.v)
	}

	i := 0
	sm.Journal(func(k, v any) bool {
		assert.Equal(k, kvs[i].k)
		assert.Equal(v, kvs[i].v)
		i++
		return true
	})
	assert.Equal(len(kvs), i, "Journal should traverse all entries")

	i = 0
	sm.Journal(func(k, v any) bool {
		i++
		return false
	})
	assert.Equal(1, i, "Journal traverse should abort")
}

func TestPopAfterRepeatedPuts(t *testing.T) {
	assert := assert.New(t)
	src := make(map[string]string)
	src["foo"] = "bar"

	sm := stackedmap.New(func(key any) (any, bool, error) {
		v, r := src[key.(string)]
		return v, r, nil
	})

	// rewriting a key within one level must still revert in one Pop
	sm.Push()
	sm.Put("foo", "baz")
	sm.Push()
	sm.Put("foo", "qux")
	sm.Put("foo", "qux1")
	sm.Put("foo", "qux2")
	sm.Pop()
	assert.Equal([]any{"baz", true, nil}, M(sm.Get("foo")))

	sm.Pop()
	assert.Equal([]any{"bar", true, nil}, M(sm.Get("foo")))

	// same through PopTo, with the key born at the reverted level
	depth := sm.Push()
	sm.Put("fresh", "v1")
	sm.Put("fresh", "v2")
	sm.PopTo(depth)
	assert.Equal([]any{"", false, nil}, M(sm.Get("fresh")))
}

func TestSourceError(t *testing.T) {
	srcErr := errors.New("src gone")
	sm := stackedmap.New(func(any) (any, bool, error) {
		return nil, false, srcErr
	})

	sm.Push()

	// keys written on the stack never consult the source
	sm.Put("k", "v")
	v, found, err := sm.Get("k")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)

	// unknown keys surface the source error
	_, _, err = sm.Get("other")
	assert.ErrorIs(t, err, srcErr)

	// popped keys consult the source again
	sm.Pop()
	_, _, err = sm.Get("k")
	assert.ErrorIs(t, err, srcErr)
}
