// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")

// memStore is a minimal in-memory GetPutCloser for testing decorators.
type memStore struct {
	kvs  map[string][]byte
	gets int
}

func newMemStore() *memStore { return &memStore{kvs: make(map[string][]byte)} }

func (m *memStore) Get(key []byte) ([]byte, error) {
	m.gets++
	if v, ok := m.kvs[string(key)]; ok {
		return v, nil
	}
	return nil, errNotFound
}

func (m *memStore) Has(key []byte) (bool, error) {
	_, ok := m.kvs[string(key)]
	return ok, nil
}

func (m *memStore) IsNotFound(err error) bool { return err == errNotFound }

func (m *memStore) Put(key, value []byte) error {
	m.kvs[string(key)] = value
	return nil
}

func (m *memStore) Delete(key []byte) error {
	delete(m.kvs, string(key))
	return nil
}

func (m *memStore) NewBatch() Batch { return &memBatch{store: m} }

func (m *memStore) NewIterator(Range) Iterator { return nil }

func (m *memStore) Close() error { return nil }

type memBatch struct {
	store *memStore
	ops   []func()
}

func (b *memBatch) Put(key, value []byte) error {
	k, v := string(key), value
	b.ops = append(b.ops, func() { b.store.kvs[k] = v })
	return nil
}

func (b *memBatch) Delete(key []byte) error {
	k := string(key)
	b.ops = append(b.ops, func() { delete(b.store.kvs, k) })
	return nil
}

func (b *memBatch) NewBatch() Batch { return &memBatch{store: b.store} }

func (b *memBatch) Len() int { return len(b.ops) }

func (b *memBatch) Write() error {
	for _, op := range b.ops {
		op()
	}
	b.ops = nil
	return nil
}

func TestCachedGet(t *testing.T) {
	src := newMemStore()
	src.kvs["k"] = []byte("v")

	cached := NewCached(src, 16)

	v, err := cached.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	// second read served from cache
	_, err = cached.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, 1, src.gets)

	_, err = cached.Get([]byte("missing"))
	assert.True(t, cached.IsNotFound(err))
}

func TestCachedWriteThrough(t *testing.T) {
	src := newMemStore()
	cached := NewCached(src, 16)

	require.NoError(t, cached.Put([]byte("k"), []byte("v")))
	assert.Equal(t, []byte("v"), src.kvs["k"])

	v, err := cached.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
	assert.Equal(t, 0, src.gets)

	require.NoError(t, cached.Delete([]byte("k")))
	_, err = cached.Get([]byte("k"))
	assert.True(t, cached.IsNotFound(err))
}

func TestCachedBatch(t *testing.T) {
	src := newMemStore()
	cached := NewCached(src, 16)

	require.NoError(t, cached.Put([]byte("old"), []byte("1")))

	batch := cached.NewBatch()
	require.NoError(t, batch.Put([]byte("new"), []byte("2")))
	require.NoError(t, batch.Delete([]byte("old")))
	assert.Equal(t, 2, batch.Len())

	// cache not touched before the batch is written
	v, err := cached.Get([]byte("old"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, batch.Write())

	_, err = cached.Get([]byte("old"))
	assert.True(t, cached.IsNotFound(err))
	v, err = cached.Get([]byte("new"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}
