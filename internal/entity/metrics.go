// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package entity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// entityOps counts completed entity-access operations by table and kind.
var entityOps = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "driftline_entity_ops_total",
	Help: "Total number of completed entity access operations",
}, []string{"table", "op"})

func recordOp(table, op string) {
	entityOps.WithLabelValues(table, op).Inc()
}
