// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"fmt"
	"strings"
)

// OptionsByName resolves strategy names into Options. Empty names pick the
// defaults. Valid names are the Name() of each strategy instance.
func OptionsByName(transfer, burn, supply string) (Options, error) {
	var opts Options
	switch transfer {
	case "", TransferDerived.Name():
		opts.Transfer = TransferDerived
	case TransferNaive.Name():
		opts.Transfer = TransferNaive
	default:
		return Options{}, fmt.Errorf("unknown transfer strategy %q", transfer)
	}
	switch burn {
	case "", BurnStrict.Name():
		opts.Burn = BurnStrict
	case BurnLegacyDust.Name():
		opts.Burn = BurnLegacyDust
	default:
		return Options{}, fmt.Errorf("unknown burn policy %q", burn)
	}
	switch supply {
	case "", SupplyTruncate.Name():
		opts.Supply = SupplyTruncate
	case SupplyRoundUp.Name():
		opts.Supply = SupplyRoundUp
	default:
		return Options{}, fmt.Errorf("unknown supply change strategy %q", supply)
	}
	return opts, nil
}

// String renders the selected strategy set, like "derived/strict/truncate".
func (o Options) String() string {
	o = o.withDefaults()
	s := strings.Join([]string{o.Transfer.Name(), o.Burn.Name(), o.Supply.Name()}, "/")
	if o.TrackRounding {
		s += "+tracked"
	}
	return s
}
