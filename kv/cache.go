// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	lru "github.com/hashicorp/golang-lru"
)

// cachedStore wraps a store with a write-through LRU over raw records.
// Balance reads dominate the ledger workload, so keeping hot records in
// memory spares the backing store most point lookups.
//
// Values handed out by Get are shared with the cache and must not be modified.
type cachedStore struct {
	src   GetPutCloser
	cache *lru.Cache
}

// NewCached creates a cached store with the given capacity (number of records).
// A capacity below 16 is raised to 16.
func NewCached(src GetPutCloser, capacity int) GetPutCloser {
	if capacity < 16 {
		capacity = 16
	}
	cache, _ := lru.New(capacity)
	return &cachedStore{src, cache}
}

func (c *cachedStore) Get(key []byte) ([]byte, error) {
	if v, ok := c.cache.Get(string(key)); ok {
		return v.([]byte), nil
	}
	value, err := c.src.Get(key)
	if err != nil {
		return nil, err
	}
	c.cache.Add(string(key), value)
	return value, nil
}

func (c *cachedStore) Has(key []byte) (bool, error) {
	if _, ok := c.cache.Get(string(key)); ok {
		return true, nil
	}
	return c.src.Has(key)
}

func (c *cachedStore) IsNotFound(err error) bool {
	return c.src.IsNotFound(err)
}

func (c *cachedStore) Put(key, value []byte) error {
	if err := c.src.Put(key, value); err != nil {
		return err
	}
	c.cache.Add(string(key), value)
	return nil
}

func (c *cachedStore) Delete(key []byte) error {
	if err := c.src.Delete(key); err != nil {
		return err
	}
	c.cache.Remove(string(key))
	return nil
}

// NewIterator bypasses the cache. Writes go through the cache first, so the
// backing store is always current.
func (c *cachedStore) NewIterator(r Range) Iterator {
	return c.src.NewIterator(r)
}

func (c *cachedStore) NewBatch() Batch {
	return &cachedBatch{c.src.NewBatch(), c, nil}
}

func (c *cachedStore) Close() error {
	return c.src.Close()
}

type cachedOp struct {
	key     string
	value   []byte
	deleted bool
}

// cachedBatch stages cache updates and applies them only after the underlying
// batch is written, so a failed write leaves the cache untouched.
type cachedBatch struct {
	Batch
	store  *cachedStore
	staged []cachedOp
}

func (b *cachedBatch) Put(key, value []byte) error {
	if err := b.Batch.Put(key, value); err != nil {
		return err
	}
	b.staged = append(b.staged, cachedOp{string(key), value, false})
	return nil
}

func (b *cachedBatch) Delete(key []byte) error {
	if err := b.Batch.Delete(key); err != nil {
		return err
	}
	b.staged = append(b.staged, cachedOp{string(key), nil, true})
	return nil
}

func (b *cachedBatch) Write() error {
	if err := b.Batch.Write(); err != nil {
		return err
	}
	for _, op := range b.staged {
		if op.deleted {
			b.store.cache.Remove(op.key)
		} else {
			b.store.cache.Add(op.key, op.value)
		}
	}
	b.staged = b.staged[:0]
	return nil
}
