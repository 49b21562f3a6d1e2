// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/supplyworks/rebase/kv"
	"github.com/supplyworks/rebase/lvldb"
	"github.com/supplyworks/rebase/rebase"
	"github.com/supplyworks/rebase/state"
)

// Builder helper to build genesis ledger state.
type Builder struct {
	launchTime uint64
	extraData  [28]byte

	stateProcs []func(st *state.State) error
}

// LaunchTime set launch time.
func (b *Builder) LaunchTime(t uint64) *Builder {
	b.launchTime = t
	return b
}

// ExtraData set extra data, which will be folded into the genesis ID.
func (b *Builder) ExtraData(data [28]byte) *Builder {
	b.extraData = data
	return b
}

// State add a state process
func (b *Builder) State(proc func(st *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// ComputeID compute genesis ID.
func (b *Builder) ComputeID() (rebase.Bytes32, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return rebase.Bytes32{}, err
	}
	defer db.Close()

	return b.Build(db)
}

// Build build genesis records into the store and returns the genesis ID.
func (b *Builder) Build(store kv.GetPutter) (rebase.Bytes32, error) {
	st := state.New(store)

	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return rebase.Bytes32{}, errors.Wrap(err, "state process")
		}
	}

	stage, err := st.Stage()
	if err != nil {
		return rebase.Bytes32{}, errors.Wrap(err, "stage")
	}
	if err := stage.Commit(); err != nil {
		return rebase.Bytes32{}, errors.Wrap(err, "commit state")
	}

	return b.computeID(store)
}

// computeID hashes the committed records into the genesis ID. The stater
// walks accounts in address order, so equal states hash to equal IDs.
func (b *Builder) computeID(store kv.GetPutter) (rebase.Bytes32, error) {
	stater := state.NewStater(store)

	var procErr error
	id := rebase.Blake2bFn(func(w io.Writer) {
		var head [8]byte
		binary.BigEndian.PutUint64(head[:], b.launchTime)
		w.Write(head[:])
		w.Write(b.extraData[:])

		if err := stater.Accounts(func(addr rebase.Address, acc *state.Account) bool {
			data, err := acc.Encode()
			if err != nil {
				procErr = err
				return false
			}
			w.Write(addr.Bytes())
			w.Write(data)
			return true
		}); err != nil && procErr == nil {
			procErr = err
		}
		if procErr != nil {
			return
		}

		global, err := stater.NewState().Global()
		if err != nil {
			procErr = err
			return
		}
		data, err := global.Encode()
		if err != nil {
			procErr = err
			return
		}
		w.Write(data)
	})
	if procErr != nil {
		return rebase.Bytes32{}, errors.Wrap(procErr, "compute genesis ID")
	}
	return id, nil
}
