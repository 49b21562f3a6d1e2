// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"os"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/supplyworks/rebase/kv"
	"github.com/supplyworks/rebase/ledger"
	"github.com/supplyworks/rebase/rebase"
)

// Scenario is an explicit operation sequence with declared outcomes, loaded
// from YAML.
type Scenario struct {
	Name       string       `yaml:"name"`
	Strategies Strategies   `yaml:"strategies"`
	Ops        []ScenarioOp `yaml:"ops"`
	Expect     Expect       `yaml:"expect"`
}

// Strategies names the engine strategies a scenario runs under. Empty
// fields pick the defaults.
type Strategies struct {
	Transfer string `yaml:"transfer,omitempty"`
	Burn     string `yaml:"burn,omitempty"`
	Supply   string `yaml:"supply,omitempty"`
}

// ScenarioOp is one step. Addresses are hex strings, amounts are in base
// units. Err names the sentinel the step must be rejected with, empty for
// success.
type ScenarioOp struct {
	Op     string `yaml:"op"`
	From   string `yaml:"from,omitempty"`
	To     string `yaml:"to,omitempty"`
	Amount uint64 `yaml:"amount,omitempty"`
	Err    string `yaml:"err,omitempty"`
}

// Expect is checked after the last step.
type Expect struct {
	Balances    map[string]uint64 `yaml:"balances,omitempty"`
	TotalSupply *uint64           `yaml:"totalSupply,omitempty"`
}

var sentinels = map[string]error{
	"insufficient-balance":  ledger.ErrInsufficientBalance,
	"insufficient-credits":  ledger.ErrInsufficientCredits,
	"dust-burn":             ledger.ErrDustBurn,
	"already-in-state":      ledger.ErrAlreadyInState,
	"invalid-supply-change": ledger.ErrInvalidSupplyChange,
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrapf(err, "parse scenario %s", path)
	}
	return &sc, nil
}

// Replay executes the scenario against a fresh ledger over the store and
// checks its declared expectations. The engine runs with rounding tracking
// off, so supply expectations read the raw cached figure.
func Replay(store kv.GetPutter, sc *Scenario) error {
	opts, err := ledger.OptionsByName(sc.Strategies.Transfer, sc.Strategies.Burn, sc.Strategies.Supply)
	if err != nil {
		return err
	}
	l := ledger.New(store, opts)

	for i, op := range sc.Ops {
		if err := replayOp(l, op); err != nil {
			return errors.Wrapf(err, "%s: op %d (%s)", sc.Name, i, op.Op)
		}
	}
	if err := l.Commit(); err != nil {
		return err
	}

	for addrStr, expected := range sc.Expect.Balances {
		addr, err := rebase.ParseAddress(addrStr)
		if err != nil {
			return err
		}
		bal, err := l.BalanceOf(*addr)
		if err != nil {
			return err
		}
		if !bal.Eq(uint256.NewInt(expected)) {
			return errors.Errorf("%s: balance of %s is %s, want %d", sc.Name, addrStr, bal, expected)
		}
	}
	if sc.Expect.TotalSupply != nil {
		supply, err := l.TotalSupply()
		if err != nil {
			return err
		}
		if !supply.Eq(uint256.NewInt(*sc.Expect.TotalSupply)) {
			return errors.Errorf("%s: total supply is %s, want %d", sc.Name, supply, *sc.Expect.TotalSupply)
		}
	}

	logger.Info("scenario replayed", "name", sc.Name, "ops", len(sc.Ops))
	return nil
}

func replayOp(l *ledger.Ledger, op ScenarioOp) error {
	var from, to rebase.Address
	if op.From != "" {
		a, err := rebase.ParseAddress(op.From)
		if err != nil {
			return err
		}
		from = *a
	}
	if op.To != "" {
		a, err := rebase.ParseAddress(op.To)
		if err != nil {
			return err
		}
		to = *a
	}
	amount := uint256.NewInt(op.Amount)

	var err error
	switch op.Op {
	case "mint":
		_, err = l.Mint(to, amount)
	case "burn":
		_, err = l.Burn(from, amount)
	case "transfer":
		_, _, err = l.Transfer(from, to, amount)
	case "opt_out":
		_, err = l.OptOut(from)
	case "opt_in":
		_, err = l.OptIn(from)
	case "change_supply":
		_, err = l.ChangeSupply(amount)
	default:
		return errors.Errorf("unknown op %q", op.Op)
	}

	if op.Err == "" {
		return err
	}
	want, ok := sentinels[op.Err]
	if !ok {
		return errors.Errorf("unknown expected error %q", op.Err)
	}
	if !errors.Is(err, want) {
		return errors.Errorf("got error %v, want %s", err, op.Err)
	}
	return nil
}
