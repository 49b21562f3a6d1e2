// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/supplyworks/rebase/rebase"
	"github.com/supplyworks/rebase/state"
)

// renderAccounts renders the global record and one line per tracked account,
// in a stable order so two snapshots diff cleanly.
func renderAccounts(st *state.State, addrs []rebase.Address) []string {
	g, err := st.Global()
	if err != nil {
		return []string{fmt.Sprintf("global: !%v\n", err)}
	}

	lines := make([]string, 0, len(addrs)+1)
	lines = append(lines, fmt.Sprintf("global: credits=%s cpt=%s nonRebasing=%s total=%s accum=%s\n",
		g.RebasingCredits, g.RebasingCreditsPerToken, g.NonRebasingSupply, g.TotalSupply, g.Accum()))
	for _, addr := range addrs {
		acc, err := st.GetAccount(addr)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s: !%v\n", addr, err))
			continue
		}
		bal, err := acc.Balance(g.RebasingCreditsPerToken)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s: !%v\n", addr, err))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: balance=%s credits=%s locked=%s\n",
			addr, bal, acc.Credits, acc.LockedCreditsPerToken))
	}
	return lines
}

// divergence composes the failure report: the drawn op, the offending
// figures and a unified diff of the account table across the failing step.
func (r *Runner) divergence(i int, rec *opRecord, st *state.State, reason string, kvs ...any) error {
	after := renderAccounts(st, r.addrs)
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        r.lines,
		B:        after,
		FromFile: "before",
		ToFile:   "after",
		Context:  2,
	})

	logger.Error("sim divergence", append([]any{"op", i, "reason", reason}, kvs...)...)
	return errors.Errorf("sim: %s at op %d\n%s%s%s", reason, i, formatKVs(kvs), spew.Sdump(rec), diff)
}

func formatKVs(kvs []any) string {
	var b strings.Builder
	for n := 0; n+1 < len(kvs); n += 2 {
		fmt.Fprintf(&b, "%v=%v\n", kvs[n], kvs[n+1])
	}
	return b.String()
}
