// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/supplyworks/rebase/metrics"
)

var (
	metricOpCount    = metrics.LazyLoadCounterVec("ledger_op_count", []string{"op", "result"})
	metricOpDuration = metrics.LazyLoadHistogramVec("ledger_op_duration_us", []string{"op"}, metrics.BucketOpDurationUs)
	metricAccum      = metrics.LazyLoadGauge("ledger_rounding_accum")
)
