// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sim drives randomized operation sequences against a ledger and
// audits conservation after every step.
//
// The audit leans on the rounding accumulator: outside supply changes, the
// cached supply plus the accumulator moves in lockstep with the balance sum,
// so any divergence pins down the operation that broke conservation. Supply
// changes re-baseline the audit since the tracker does not observe them.
package sim

import (
	"context"
	"encoding/binary"
	"math/big"
	mathrand "math/rand/v2"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/supplyworks/rebase/genesis"
	"github.com/supplyworks/rebase/kv"
	"github.com/supplyworks/rebase/ledger"
	"github.com/supplyworks/rebase/log"
	"github.com/supplyworks/rebase/rebase"
	"github.com/supplyworks/rebase/state"
)

var logger = log.WithContext("pkg", "sim")

// Weights bias the operation mix of a run. A zero weight disables the
// operation; the zero value falls back to the default mix.
type Weights struct {
	Mint         int
	Burn         int
	Transfer     int
	OptOut       int
	OptIn        int
	ChangeSupply int
}

var defaultWeights = Weights{Mint: 4, Burn: 3, Transfer: 6, OptOut: 1, OptIn: 1, ChangeSupply: 1}

func (w Weights) total() int {
	return w.Mint + w.Burn + w.Transfer + w.OptOut + w.OptIn + w.ChangeSupply
}

// Config parameterizes a run.
type Config struct {
	Seed     uint64
	Ops      int
	Accounts int

	// MaxAmount caps the amounts drawn for mint, burn and transfer.
	MaxAmount uint64

	Weights Weights

	// Opts selects the engine strategies. Rounding tracking is always
	// switched on; the conservation audit is expressed through the
	// accumulator.
	Opts ledger.Options

	// OnStep, when set, is called after every audited operation.
	OnStep func()
}

func (c Config) withDefaults() Config {
	if c.Ops == 0 {
		c.Ops = 1000
	}
	if c.Accounts == 0 {
		c.Accounts = 8
	}
	if c.MaxAmount == 0 {
		c.MaxAmount = 1_000_000
	}
	if c.Weights.total() == 0 {
		c.Weights = defaultWeights
	}
	c.Opts.TrackRounding = true
	return c
}

// Summary is the outcome of a completed run.
type Summary struct {
	Seed       uint64
	Ops        int
	Accounts   int
	Strategies string

	// MaxDrift is the largest gap seen between the cached supply and the
	// balance sum.
	MaxDrift *big.Int
	// DustLost totals the burn amounts that left the target balance
	// untouched.
	DustLost *uint256.Int
	// Accumulator is the final rounding error accumulator.
	Accumulator *big.Int

	Rejected map[string]int
	Elapsed  time.Duration
}

// Accounts returns the deterministic address set used by runs, so replays
// and reports line up across processes.
func Accounts(n int) []rebase.Address {
	addrs := make([]rebase.Address, n)
	for i := range addrs {
		h := rebase.Blake2b([]byte("sim account"), binary.BigEndian.AppendUint32(nil, uint32(i)))
		addrs[i] = rebase.BytesToAddress(h.Bytes())
	}
	return addrs
}

// Runner owns one engine over one store and audits it step by step.
type Runner struct {
	cfg    Config
	store  kv.GetPutter
	ledger *ledger.Ledger
	addrs  []rebase.Address
	rng    *mathrand.Rand

	// audit state, refreshed from the committed records after every op
	baseline *big.Int
	balances map[rebase.Address]*uint256.Int
	lines    []string

	summary Summary
}

// New seeds the store with every account pre-funded at MaxAmount and primes
// the audit over the committed records.
func New(store kv.GetPutter, cfg Config) (*Runner, error) {
	cfg = cfg.withDefaults()
	addrs := Accounts(cfg.Accounts)

	initial := uint256.NewInt(cfg.MaxAmount)
	builder := new(genesis.Builder).
		LaunchTime(cfg.Seed).
		State(func(st *state.State) error {
			for _, addr := range addrs {
				if err := st.AddCredits(addr, initial); err != nil {
					return err
				}
				if err := st.AddRebasingCredits(initial); err != nil {
					return err
				}
				if err := st.AddTotalSupply(initial); err != nil {
					return err
				}
			}
			return nil
		})
	if _, err := builder.Build(store); err != nil {
		return nil, errors.Wrap(err, "seed sim genesis")
	}

	r := &Runner{
		cfg:    cfg,
		store:  store,
		ledger: ledger.New(store, cfg.Opts),
		addrs:  addrs,
		rng:    mathrand.New(mathrand.NewPCG(cfg.Seed, cfg.Seed)), //#nosec G404
		summary: Summary{
			Seed:       cfg.Seed,
			Ops:        cfg.Ops,
			Accounts:   cfg.Accounts,
			Strategies: cfg.Opts.String(),
			MaxDrift:   new(big.Int),
			DustLost:   new(uint256.Int),
			Rejected:   make(map[string]int),
		},
	}
	if err := r.prime(); err != nil {
		return nil, err
	}
	return r, nil
}

// Ledger exposes the engine under audit.
func (r *Runner) Ledger() *ledger.Ledger {
	return r.ledger
}

// prime reads the committed records into the audit baseline.
func (r *Runner) prime() error {
	st := state.New(r.store)
	g, err := st.Global()
	if err != nil {
		return err
	}
	balances, sum, err := r.readBalances(st)
	if err != nil {
		return err
	}
	corrected := new(big.Int).Add(g.TotalSupply.ToBig(), g.Accum())
	r.baseline = corrected.Sub(corrected, sum)
	r.balances = balances
	r.lines = renderAccounts(st, r.addrs)
	return nil
}

// Run drives the configured number of operations, auditing after each one.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	logger.Info("sim run starting",
		"seed", r.cfg.Seed, "ops", r.cfg.Ops, "accounts", r.cfg.Accounts, "strategies", r.cfg.Opts)

	for i := range r.cfg.Ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.step()
		if err != nil {
			return nil, errors.Wrapf(err, "op %d (%s)", i, rec.op)
		}
		if err := r.audit(i, rec); err != nil {
			return nil, err
		}
		if r.cfg.OnStep != nil {
			r.cfg.OnStep()
		}
	}

	accum, err := r.ledger.RoundingError()
	if err != nil {
		return nil, err
	}
	r.summary.Accumulator = accum
	r.summary.Elapsed = time.Since(start)
	logger.Info("sim run finished",
		"seed", r.cfg.Seed, "elapsed", r.summary.Elapsed,
		"maxDrift", r.summary.MaxDrift, "dustLost", r.summary.DustLost, "accum", accum)
	return &r.summary, nil
}

// opRecord captures one drawn operation and the balances it saw going in.
type opRecord struct {
	op      string
	from    rebase.Address
	to      rebase.Address
	amount  *uint256.Int
	err     error
	sameCpt bool

	// pre-op credit snapshots, taken for transfers; cpt is the shared
	// multiplier when both parties agree on one
	fromCredits *uint256.Int
	toCredits   *uint256.Int
	cpt         *uint256.Int
}

// rejected reports whether the engine may refuse an operation without that
// counting as a failure. Rejections revert, which the audit then verifies.
func rejected(err error) bool {
	return errors.Is(err, ledger.ErrInsufficientBalance) ||
		errors.Is(err, ledger.ErrInsufficientCredits) ||
		errors.Is(err, ledger.ErrDustBurn) ||
		errors.Is(err, ledger.ErrAlreadyInState) ||
		errors.Is(err, ledger.ErrInvalidSupplyChange)
}

func (r *Runner) step() (*opRecord, error) {
	rec := r.draw()

	var err error
	switch rec.op {
	case "mint":
		_, err = r.ledger.Mint(rec.to, rec.amount)
	case "burn":
		_, err = r.ledger.Burn(rec.from, rec.amount)
	case "transfer":
		_, _, err = r.ledger.Transfer(rec.from, rec.to, rec.amount)
	case "opt_out":
		_, err = r.ledger.OptOut(rec.from)
	case "opt_in":
		_, err = r.ledger.OptIn(rec.from)
	case "change_supply":
		_, err = r.ledger.ChangeSupply(rec.amount)
	}
	if err != nil {
		if !rejected(err) {
			return rec, err
		}
		rec.err = err
		r.summary.Rejected[rec.op]++
	}
	if err := r.ledger.Commit(); err != nil {
		return rec, errors.Wrap(err, "commit")
	}
	return rec, nil
}

// draw picks the next operation from the weighted mix.
func (r *Runner) draw() *opRecord {
	rec := &opRecord{
		from: r.addrs[r.rng.IntN(len(r.addrs))],
		to:   r.addrs[r.rng.IntN(len(r.addrs))],
	}

	w := r.cfg.Weights
	n := r.rng.IntN(w.total())
	switch {
	case n < w.Mint:
		rec.op = "mint"
		rec.amount = r.drawAmount(nil)
	case n < w.Mint+w.Burn:
		rec.op = "burn"
		rec.amount = r.drawAmount(r.balances[rec.from])
	case n < w.Mint+w.Burn+w.Transfer:
		rec.op = "transfer"
		rec.amount = r.drawAmount(r.balances[rec.from])
		r.snapshotCredits(rec)
	case n < w.Mint+w.Burn+w.Transfer+w.OptOut:
		rec.op = "opt_out"
	case n < w.Mint+w.Burn+w.Transfer+w.OptOut+w.OptIn:
		rec.op = "opt_in"
	default:
		rec.op = "change_supply"
		rec.amount = r.drawSupplyTarget()
	}
	return rec
}

// drawAmount picks an amount in [1, MaxAmount], biased under the available
// balance when one is given so that most draws are spendable.
func (r *Runner) drawAmount(available *uint256.Int) *uint256.Int {
	limit := r.cfg.MaxAmount
	if available != nil && !available.IsZero() && available.IsUint64() && available.Uint64() < limit {
		limit = available.Uint64()
	}
	return uint256.NewInt(r.rng.Uint64N(limit) + 1)
}

// drawSupplyTarget rescales the current balance sum by 50% to 150%.
func (r *Runner) drawSupplyTarget() *uint256.Int {
	sum := new(uint256.Int)
	for _, bal := range r.balances {
		sum.Add(sum, bal)
	}
	factor := uint256.NewInt(50 + r.rng.Uint64N(101))
	target := sum.Mul(sum, factor)
	target.Div(target, uint256.NewInt(100))
	return target.AddUint64(target, 1)
}

// snapshotCredits records both parties' credits and multipliers ahead of a
// transfer, feeding the symmetry post-conditions.
func (r *Runner) snapshotCredits(rec *opRecord) {
	fromCredits, fromCpt, err := r.ledger.CreditsBalanceOf(rec.from)
	if err != nil {
		return
	}
	toCredits, toCpt, err := r.ledger.CreditsBalanceOf(rec.to)
	if err != nil {
		return
	}
	rec.fromCredits, rec.toCredits = fromCredits, toCredits
	if fromCpt.Eq(toCpt) {
		rec.sameCpt = true
		rec.cpt = fromCpt
	}
}

// audit re-reads the committed records and checks the conservation
// invariants against the pre-op snapshot.
func (r *Runner) audit(i int, rec *opRecord) error {
	st := state.New(r.store)

	g, err := st.Global()
	if err != nil {
		return err
	}
	balances, sum, err := r.readBalances(st)
	if err != nil {
		return err
	}

	// cached supply plus accumulator must track the balance sum exactly,
	// except across a supply change, which re-baselines the audit
	raw := g.TotalSupply.ToBig()
	gap := new(big.Int).Add(raw, g.Accum())
	gap.Sub(gap, sum)
	if rec.op == "change_supply" && rec.err == nil {
		r.baseline = gap
	} else if gap.Cmp(r.baseline) != 0 {
		return r.divergence(i, rec, st, "balance sum diverged from tracked supply",
			"baseline", r.baseline, "gap", gap)
	}

	drift := new(big.Int).Sub(raw, sum)
	if drift.CmpAbs(r.summary.MaxDrift) > 0 {
		r.summary.MaxDrift = drift.Abs(drift)
	}

	// the strict burn policy keeps the rebasing credit aggregate exact
	if r.cfg.Opts.Burn == nil || r.cfg.Opts.Burn == ledger.BurnStrict {
		creditSum := new(uint256.Int)
		for _, addr := range r.addrs {
			acc, err := st.GetAccount(addr)
			if err != nil {
				return err
			}
			if !acc.IsNonRebasing() {
				creditSum.Add(creditSum, acc.Credits)
			}
		}
		if !creditSum.Eq(g.RebasingCredits) {
			return r.divergence(i, rec, st, "rebasing credit aggregate diverged",
				"aggregate", g.RebasingCredits, "sum", creditSum)
		}
	}

	if err := r.checkOp(i, rec, st, balances); err != nil {
		return err
	}

	r.balances = balances
	r.lines = renderAccounts(st, r.addrs)
	return nil
}

// checkOp asserts the per-operation post-conditions.
func (r *Runner) checkOp(i int, rec *opRecord, st *state.State, balances map[rebase.Address]*uint256.Int) error {
	preFrom, preTo := r.balances[rec.from], r.balances[rec.to]
	postFrom, postTo := balances[rec.from], balances[rec.to]

	if rec.err != nil {
		// a rejected op must leave every balance alone
		if !postFrom.Eq(preFrom) || !postTo.Eq(preTo) {
			return r.divergence(i, rec, st, "rejected op mutated balances")
		}
		return nil
	}

	switch rec.op {
	case "burn":
		if postFrom.Eq(preFrom) && !rec.amount.IsZero() {
			r.summary.DustLost.Add(r.summary.DustLost, rec.amount)
		}
	case "transfer":
		if rec.from == rec.to || !rec.sameCpt {
			return nil
		}
		if r.cfg.Opts.Transfer != nil && r.cfg.Opts.Transfer != ledger.TransferDerived {
			return nil
		}
		accFrom, err := st.GetAccount(rec.from)
		if err != nil {
			return err
		}
		accTo, err := st.GetAccount(rec.to)
		if err != nil {
			return err
		}
		creditsSent := new(uint256.Int).Sub(rec.fromCredits, accFrom.Credits)
		creditsGot := new(uint256.Int).Sub(accTo.Credits, rec.toCredits)
		if !creditsSent.Eq(creditsGot) {
			return r.divergence(i, rec, st, "transfer between equal multipliers moved unequal credits",
				"sent", creditsSent, "got", creditsGot)
		}

		// the credit legs match exactly; each realized balance floors on its
		// own credit residue, so the token deltas may land one apart except
		// on the unit grid
		sent := new(uint256.Int).Sub(preFrom, postFrom)
		got := new(uint256.Int).Sub(postTo, preTo)
		if rec.cpt.Eq(rebase.Precision) {
			if !sent.Eq(got) {
				return r.divergence(i, rec, st, "transfer on the unit grid asymmetric",
					"sent", sent, "got", got)
			}
		} else {
			diff := new(uint256.Int)
			if sent.Gt(got) {
				diff.Sub(sent, got)
			} else {
				diff.Sub(got, sent)
			}
			if diff.GtUint64(1) {
				return r.divergence(i, rec, st, "transfer between equal multipliers drifted beyond one token",
					"sent", sent, "got", got)
			}
		}
	}
	return nil
}

// readBalances reads every tracked account and totals the token balances.
func (r *Runner) readBalances(st *state.State) (map[rebase.Address]*uint256.Int, *big.Int, error) {
	balances := make(map[rebase.Address]*uint256.Int, len(r.addrs))
	sum := new(uint256.Int)
	for _, addr := range r.addrs {
		bal, err := st.BalanceOf(addr)
		if err != nil {
			return nil, nil, err
		}
		balances[addr] = bal
		sum.Add(sum, bal)
	}
	return balances, sum.ToBig(), nil
}
