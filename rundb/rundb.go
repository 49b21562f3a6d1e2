// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rundb persists simulation run summaries in sqlite, so long
// campaigns across many seeds can be inspected later.
package rundb

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math/big"
	"strconv"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/holiman/uint256"

	"github.com/supplyworks/rebase/rebase"
)

// create a table for run summaries
const runTableSchema = `
create table if not exists run (
	id char(36) primary key,
	createdAt integer,
	seed text,
	ops integer,
	accounts integer,
	strategies text,
	maxDrift text,
	dustLost text,
	accum text,
	checksum char(66),
	elapsedMs integer
);

CREATE INDEX if not exists createdAtIndex on run(createdAt);
`

// RunDB stores run summaries.
type RunDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open run db at given path.
func New(path string) (runDB *RunDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if runDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(runTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &RunDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a run db in ram.
func NewMem() (*RunDB, error) {
	return New(":memory:")
}

// Close close the run db.
func (db *RunDB) Close() {
	db.db.Close()
}

func (db *RunDB) Path() string {
	return db.path
}

// Run is one stored summary row.
type Run struct {
	ID         string
	CreatedAt  int64
	Seed       uint64
	Ops        int
	Accounts   int
	Strategies string

	MaxDrift    *big.Int
	DustLost    *uint256.Int
	Accumulator *big.Int

	// Checksum fingerprints the config and outcome fields. Runs of the
	// same campaign agree on it exactly when their outcomes agree.
	Checksum rebase.Bytes32

	Elapsed time.Duration
}

// fingerprint hashes the config and deterministic outcome fields.
// Ids, timestamps and wall time stay out.
func (run *Run) fingerprint() rebase.Bytes32 {
	var nums [24]byte
	binary.BigEndian.PutUint64(nums[:8], run.Seed)
	binary.BigEndian.PutUint64(nums[8:16], uint64(run.Ops))
	binary.BigEndian.PutUint64(nums[16:], uint64(run.Accounts))
	sep := []byte{0}
	return rebase.Keccak256(
		nums[:],
		[]byte(run.Strategies), sep,
		[]byte(run.MaxDrift.String()), sep,
		[]byte(run.DustLost.Dec()), sep,
		[]byte(run.Accumulator.String()),
	)
}

// Save inserts the run, assigning a fresh id and checksum when it carries none.
func (db *RunDB) Save(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().Unix()
	}
	if run.Checksum.IsZero() {
		run.Checksum = run.fingerprint()
	}

	_, err := db.db.ExecContext(ctx,
		"INSERT INTO run(id, createdAt, seed, ops, accounts, strategies, maxDrift, dustLost, accum, checksum, elapsedMs) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
		run.ID,
		run.CreatedAt,
		strconv.FormatUint(run.Seed, 10),
		run.Ops,
		run.Accounts,
		run.Strategies,
		run.MaxDrift.String(),
		run.DustLost.Dec(),
		run.Accumulator.String(),
		run.Checksum.String(),
		run.Elapsed.Milliseconds(),
	)
	return err
}

// Recent returns up to limit runs, newest first.
func (db *RunDB) Recent(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := db.db.QueryContext(ctx,
		"SELECT id, createdAt, seed, ops, accounts, strategies, maxDrift, dustLost, accum, checksum, elapsedMs FROM run ORDER BY createdAt DESC, rowid DESC LIMIT ?;",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			run       Run
			seed      string
			maxDrift  string
			dustLost  string
			accum     string
			checksum  string
			elapsedMs int64
		)
		if err := rows.Scan(
			&run.ID,
			&run.CreatedAt,
			&seed,
			&run.Ops,
			&run.Accounts,
			&run.Strategies,
			&maxDrift,
			&dustLost,
			&accum,
			&checksum,
			&elapsedMs,
		); err != nil {
			return nil, err
		}
		if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, errors.Wrap(err, "parse seed")
		}
		var ok bool
		if run.MaxDrift, ok = new(big.Int).SetString(maxDrift, 10); !ok {
			return nil, errors.Errorf("parse maxDrift %q", maxDrift)
		}
		if run.DustLost, err = uint256.FromDecimal(dustLost); err != nil {
			return nil, errors.Wrap(err, "parse dustLost")
		}
		if run.Accumulator, ok = new(big.Int).SetString(accum, 10); !ok {
			return nil, errors.Errorf("parse accum %q", accum)
		}
		if run.Checksum, err = rebase.ParseBytes32(checksum); err != nil {
			return nil, errors.Wrap(err, "parse checksum")
		}
		run.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
