// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/supplyworks/rebase/log"
)

var (
	seedFlag = cli.Uint64Flag{
		Name:  "seed",
		Value: 1,
		Usage: "seed of the deterministic operation stream",
	}
	opsFlag = cli.Uint64Flag{
		Name:  "ops",
		Value: 10000,
		Usage: "number of ledger operations to run",
	}
	accountsFlag = cli.Uint64Flag{
		Name:  "accounts",
		Value: 8,
		Usage: "number of accounts touched by the simulation",
	}
	workersFlag = cli.Uint64Flag{
		Name:  "workers",
		Value: 1,
		Usage: "number of concurrent runners, each with its own seed and store",
	}
	maxAmountFlag = cli.Uint64Flag{
		Name:  "max-amount",
		Value: 1000000,
		Usage: "upper bound of generated op amounts",
	}
	transferFlag = cli.StringFlag{
		Name:  "transfer",
		Value: "derived",
		Usage: "transfer strategy (derived|naive)",
	}
	burnFlag = cli.StringFlag{
		Name:  "burn",
		Value: "strict",
		Usage: "burn policy (strict|legacy-dust)",
	}
	supplyFlag = cli.StringFlag{
		Name:  "supply",
		Value: "truncate",
		Usage: "supply change strategy (truncate|round-up)",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "ledger state storage option, if set data will be saved to disk",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger databases",
	}
	cacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Value: 256,
		Usage: "megabytes of ram allocated to database cache",
	}
	runDBFlag = cli.StringFlag{
		Name:  "rundb",
		Usage: "path to the database recording run summaries",
	}
	limitFlag = cli.IntFlag{
		Name:  "limit",
		Value: 10,
		Usage: "max number of runs to list",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
)
