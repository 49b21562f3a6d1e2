// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/supplyworks/rebase/kv"
	"github.com/supplyworks/rebase/rebase"
)

// Stage abstracts changes collected from the journal, ready to be committed.
type Stage struct {
	batch kv.Batch
}

// Stage collects accumulated changes into a batch.
// Records that decayed to their zero value are deleted from the store.
func (s *State) Stage() (*Stage, error) {
	accounts := make(map[rebase.Address]*Account)
	var glob *Global

	// journal is chronological, later entries win
	s.sm.Journal(func(k, v any) bool {
		switch key := k.(type) {
		case accountKey:
			accounts[rebase.Address(key)] = v.(*Account)
		case globalKey:
			glob = v.(*Global)
		}
		return true
	})

	batch := s.store.NewBatch()
	for addr, acc := range accounts {
		data, err := acc.Encode()
		if err != nil {
			return nil, &Error{err}
		}
		if len(data) == 0 {
			if err := batch.Delete(accountStoreKey(addr)); err != nil {
				return nil, &Error{err}
			}
			continue
		}
		if err := batch.Put(accountStoreKey(addr), data); err != nil {
			return nil, &Error{err}
		}
	}
	if glob != nil {
		data, err := glob.Encode()
		if err != nil {
			return nil, &Error{err}
		}
		if len(data) == 0 {
			if err := batch.Delete(globalStoreKey); err != nil {
				return nil, &Error{err}
			}
		} else if err := batch.Put(globalStoreKey, data); err != nil {
			return nil, &Error{err}
		}
	}
	return &Stage{batch}, nil
}

// Len returns the number of records to be written.
func (stg *Stage) Len() int {
	return stg.batch.Len()
}

// Commit commits the staged changes to the backing store.
func (stg *Stage) Commit() error {
	if err := stg.batch.Write(); err != nil {
		return &Error{err}
	}
	return nil
}
