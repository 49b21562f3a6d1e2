// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/supplyworks/rebase/admin"
	"github.com/supplyworks/rebase/ledger"
	"github.com/supplyworks/rebase/log"
	"github.com/supplyworks/rebase/metrics"
	"github.com/supplyworks/rebase/rundb"
	"github.com/supplyworks/rebase/sim"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

// makeName creates a client name that follows the ethereum convention
// for such names.
func makeName(name string) string {
	return fmt.Sprintf("%s/v%s/%s/%s", name, fullVersion(), runtime.GOOS, runtime.Version())
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Rebase",
		Usage:     "Workbench for the rebasing token ledger",
		Copyright: "2025 SupplyWorks",
		Flags: []cli.Flag{
			seedFlag,
			opsFlag,
			accountsFlag,
			workersFlag,
			maxAmountFlag,
			transferFlag,
			burnFlag,
			supplyFlag,
			persistFlag,
			dataDirFlag,
			cacheFlag,
			runDBFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			verbosityFlag,
			jsonLogsFlag,
		},
		Action: simAction,
		Commands: []cli.Command{
			{
				Name:  "sim",
				Usage: "run randomized op streams against the ledger and audit supply drift",
				Flags: []cli.Flag{
					seedFlag,
					opsFlag,
					accountsFlag,
					workersFlag,
					maxAmountFlag,
					transferFlag,
					burnFlag,
					supplyFlag,
					persistFlag,
					dataDirFlag,
					cacheFlag,
					runDBFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					enableAdminFlag,
					adminAddrFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: simAction,
			},
			{
				Name:      "replay",
				Usage:     "replay a scenario file against a fresh ledger",
				ArgsUsage: "SCENARIO_FILE",
				Flags: []cli.Flag{
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: replayAction,
			},
			{
				Name:  "runs",
				Usage: "list recorded simulation runs",
				Flags: []cli.Flag{
					runDBFlag,
					limitFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: runsAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func simAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	opts, err := ledger.OptionsByName(
		ctx.String(transferFlag.Name),
		ctx.String(burnFlag.Name),
		ctx.String(supplyFlag.Name),
	)
	if err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return errors.Wrap(err, "start metrics server")
		}
		logger.Info("metrics server started", "url", url)
		defer closeFunc()
	}

	var (
		seed    = ctx.Uint64(seedFlag.Name)
		ops     = int(ctx.Uint64(opsFlag.Name))
		workers = int(ctx.Uint64(workersFlag.Name))
	)
	if workers < 1 {
		workers = 1
	}

	cfg := sim.Config{
		Seed:      seed,
		Ops:       ops,
		Accounts:  int(ctx.Uint64(accountsFlag.Name)),
		MaxAmount: ctx.Uint64(maxAmountFlag.Name),
		Opts:      opts,
	}

	if ctx.Bool(enableAdminFlag.Name) {
		info := admin.RunInfo{
			Version:    fullVersion(),
			Strategies: opts.String(),
			Seed:       seed,
			Workers:    workers,
			Ops:        ops,
			Accounts:   cfg.Accounts,
		}
		url, closeFunc, err := admin.StartServer(ctx.String(adminAddrFlag.Name), logLevel, info)
		if err != nil {
			return errors.Wrap(err, "start admin server")
		}
		logger.Info("admin server started", "url", url)
		defer closeFunc()
	}

	storage := "Memory"
	if ctx.Bool(persistFlag.Name) {
		storage = makeDataDir(ctx)
	}

	fmt.Printf(`Starting %v
    Strategies [ %v ]
    Seed       [ %v x %v workers ]
    Ops        [ %v x %v accounts ]
    Storage    [ %v ]
`,
		makeName("Rebase sim"),
		opts.String(),
		seed, workers,
		ops, cfg.Accounts,
		storage)

	var bar *pb.ProgressBar
	if isatty.IsTerminal(os.Stdout.Fd()) {
		bar = pb.New64(int64(ops) * int64(workers)).SetMaxWidth(90).Start()
		defer func() { bar.NotPrint = true }()
	}

	summaries := make([]*sim.Summary, workers)

	group, groupCtx := errgroup.WithContext(handleExitSignal())
	for i := range workers {
		workerCfg := cfg
		workerCfg.Seed = seed + uint64(i)
		if bar != nil {
			workerCfg.OnStep = func() { bar.Add64(1) }
		}
		group.Go(func() error {
			store, closeStore := openStore(ctx, workerCfg.Seed)
			defer closeStore()

			runner, err := sim.New(store, workerCfg)
			if err != nil {
				return err
			}
			summary, err := runner.Run(groupCtx)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted")
			return nil
		}
		return err
	}
	if bar != nil {
		bar.Finish()
	}

	for _, summary := range summaries {
		printSummary(summary)
	}
	return saveSummaries(ctx, summaries)
}

func replayAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)

	path := ctx.Args().First()
	if path == "" {
		cli.ShowCommandHelp(ctx, "replay")
		return errors.New("scenario file not specified")
	}

	sc, err := sim.LoadScenario(path)
	if err != nil {
		return err
	}

	store := openMemMainDB()
	defer store.Close()

	if err := sim.Replay(store, sc); err != nil {
		return err
	}

	fmt.Printf(`Scenario done
    Name [ %v ]
    Ops  [ %v ]
`,
		sc.Name,
		len(sc.Ops))
	return nil
}

func runsAction(ctx *cli.Context) error {
	initLogger(ctx)

	path := ctx.String(runDBFlag.Name)
	if path == "" {
		cli.ShowCommandHelp(ctx, "runs")
		return errors.New("rundb flag not specified")
	}

	db, err := rundb.New(path)
	if err != nil {
		return errors.Wrapf(err, "open run database [%v]", path)
	}
	defer db.Close()

	runs, err := db.Recent(context.Background(), ctx.Int(limitFlag.Name))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	for _, run := range runs {
		fmt.Printf(`%v
    Seed        [ %v ]
    Ops         [ %v x %v accounts ]
    Strategies  [ %v ]
    Max drift   [ %v ]
    Dust lost   [ %v ]
    Accumulator [ %v ]
    Checksum    [ %v ]
    Elapsed     [ %v ]
`,
			time.Unix(run.CreatedAt, 0).UTC().Format(time.RFC3339),
			run.Seed,
			run.Ops, run.Accounts,
			run.Strategies,
			run.MaxDrift,
			run.DustLost.Dec(),
			run.Accumulator,
			run.Checksum.AbbrevString(),
			run.Elapsed,
		)
	}
	return nil
}

func printSummary(s *sim.Summary) {
	fmt.Printf(`Run done
    Seed        [ %v ]
    Ops         [ %v x %v accounts ]
    Strategies  [ %v ]
    Max drift   [ %v ]
    Dust lost   [ %v ]
    Accumulator [ %v ]
    Rejected    [ %v ]
    Elapsed     [ %v ]
`,
		s.Seed,
		s.Ops, s.Accounts,
		s.Strategies,
		s.MaxDrift,
		s.DustLost.Dec(),
		s.Accumulator,
		formatRejected(s.Rejected),
		s.Elapsed,
	)
}

func formatRejected(rejected map[string]int) string {
	if len(rejected) == 0 {
		return "none"
	}
	ops := make([]string, 0, len(rejected))
	for op := range rejected {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		parts = append(parts, fmt.Sprintf("%v=%v", op, rejected[op]))
	}
	return strings.Join(parts, " ")
}

func saveSummaries(ctx *cli.Context, summaries []*sim.Summary) error {
	path := ctx.String(runDBFlag.Name)
	if path == "" {
		return nil
	}
	db, err := rundb.New(path)
	if err != nil {
		return errors.Wrapf(err, "open run database [%v]", path)
	}
	defer db.Close()

	for _, summary := range summaries {
		run := &rundb.Run{
			Seed:        summary.Seed,
			Ops:         summary.Ops,
			Accounts:    summary.Accounts,
			Strategies:  summary.Strategies,
			MaxDrift:    summary.MaxDrift,
			DustLost:    summary.DustLost,
			Accumulator: summary.Accumulator,
			Elapsed:     summary.Elapsed,
		}
		if err := db.Save(context.Background(), run); err != nil {
			return errors.Wrap(err, "save run summary")
		}
	}
	logger.Info("run summaries saved", "path", db.Path(), "count", len(summaries))
	return nil
}
