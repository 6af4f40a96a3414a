// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var loginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "driftline_logins_total",
		Help: "Login protocol steps by stage and outcome.",
	},
	[]string{"stage", "outcome"},
)

func recordLogin(stage, outcome string) {
	loginsTotal.WithLabelValues(stage, outcome).Inc()
}
