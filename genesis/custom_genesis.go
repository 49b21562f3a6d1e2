// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/supplyworks/rebase/rebase"
)

// CustomGenesis is user customized genesis
type CustomGenesis struct {
	LaunchTime uint64    `json:"launchTime"`
	ExtraData  string    `json:"extraData"`
	Token      Token     `json:"token"`
	Accounts   []Account `json:"accounts"`
}

// Token is the display info of the ledger token
type Token struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Account is the account will set to the genesis records
type Account struct {
	Address     rebase.Address   `json:"address"`
	Balance     *HexOrDecimal256 `json:"balance"`
	NonRebasing bool             `json:"nonRebasing,omitempty"`
}

// HexOrDecimal256 marshals big.Int as hex or decimal.
// Copied from go-ethereum/common/math and implement json. Marshaler
type HexOrDecimal256 math.HexOrDecimal256

// UnmarshalJSON implements the json.Unmarshaler interface.
func (i *HexOrDecimal256) UnmarshalJSON(input []byte) error {
	var hex string
	if err := json.Unmarshal(input, &hex); err != nil {
		if err = (*big.Int)(i).UnmarshalJSON(input); err != nil {
			return err
		}
		return nil
	}
	bigint, ok := math.ParseBig256(hex)
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", input)
	}
	*i = HexOrDecimal256(*bigint)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (i HexOrDecimal256) MarshalJSON() ([]byte, error) {
	decimal256 := math.HexOrDecimal256(i)
	text, err := decimal256.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}
