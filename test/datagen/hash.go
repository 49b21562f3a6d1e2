// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/supplyworks/rebase/rebase"
)

func RandomHash() rebase.Bytes32 {
	var b32 rebase.Bytes32

	rand.Read(b32[:])
	return b32
}
