// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/supplyworks/rebase/kv"
	"github.com/supplyworks/rebase/rebase"
)

// Genesis to build genesis ledger state.
type Genesis struct {
	builder *Builder
	id      rebase.Bytes32
	name    string
}

// Build build the genesis records into the store.
func (g *Genesis) Build(store kv.GetPutter) error {
	_, err := g.builder.Build(store)
	return err
}

// ID returns genesis ID.
func (g *Genesis) ID() rebase.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}
