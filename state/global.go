// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/supplyworks/rebase/kv"
	"github.com/supplyworks/rebase/rebase"
)

// Global is the persistent record of ledger-wide aggregates.
//
// TotalSupply is a cached value maintained by the operations that move it,
// never derived by scanning accounts. The rounding error accumulator is kept
// as sign and magnitude because RLP has no signed integer encoding.
type Global struct {
	RebasingCredits         *uint256.Int
	RebasingCreditsPerToken *uint256.Int
	NonRebasingSupply       *uint256.Int
	TotalSupply             *uint256.Int
	AccumNeg                bool
	AccumAbs                *big.Int
}

var globalStoreKey = []byte("g")

// defaultGlobal is the state of a fresh ledger: no supply anywhere and a 1:1
// multiplier, which must never be zero.
func defaultGlobal() *Global {
	return &Global{
		RebasingCredits:         new(uint256.Int),
		RebasingCreditsPerToken: new(uint256.Int).Set(rebase.InitialCreditsPerToken),
		NonRebasingSupply:       new(uint256.Int),
		TotalSupply:             new(uint256.Int),
		AccumAbs:                new(big.Int),
	}
}

// IsDefault returns if the record equals the fresh ledger state.
// Default records are not persisted.
func (g *Global) IsDefault() bool {
	return g.RebasingCredits.IsZero() &&
		g.RebasingCreditsPerToken.Eq(rebase.InitialCreditsPerToken) &&
		g.NonRebasingSupply.IsZero() &&
		g.TotalSupply.IsZero() &&
		g.AccumAbs.Sign() == 0
}

// Accum returns the signed rounding error accumulator.
func (g *Global) Accum() *big.Int {
	v := new(big.Int).Set(g.AccumAbs)
	if g.AccumNeg {
		v.Neg(v)
	}
	return v
}

// SetAccum stores the signed value as sign and magnitude.
func (g *Global) SetAccum(v *big.Int) {
	g.AccumNeg = v.Sign() < 0
	g.AccumAbs = new(big.Int).Abs(v)
}

// Copy returns a deep copy.
func (g *Global) Copy() *Global {
	return &Global{
		RebasingCredits:         new(uint256.Int).Set(g.RebasingCredits),
		RebasingCreditsPerToken: new(uint256.Int).Set(g.RebasingCreditsPerToken),
		NonRebasingSupply:       new(uint256.Int).Set(g.NonRebasingSupply),
		TotalSupply:             new(uint256.Int).Set(g.TotalSupply),
		AccumNeg:                g.AccumNeg,
		AccumAbs:                new(big.Int).Set(g.AccumAbs),
	}
}

// Encode encodes the record into bytes, or nil if it equals the default.
func (g *Global) Encode() ([]byte, error) {
	if g.IsDefault() {
		return nil, nil
	}
	return rlp.EncodeToBytes(g)
}

// Decode decodes bytes into the record. Empty data decodes to the default.
func (g *Global) Decode(data []byte) error {
	if len(data) == 0 {
		*g = *defaultGlobal()
		return nil
	}
	return rlp.DecodeBytes(data, g)
}

func loadGlobal(src kv.Getter) (*Global, error) {
	data, err := src.Get(globalStoreKey)
	if err != nil {
		if src.IsNotFound(err) {
			return defaultGlobal(), nil
		}
		return nil, err
	}
	var g Global
	if err := g.Decode(data); err != nil {
		return nil, err
	}
	return &g, nil
}
