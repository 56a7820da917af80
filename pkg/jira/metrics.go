package jira

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const outcomeSuccess = "success"

var updatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "jiraci",
		Name:      "updates_total",
		Help:      "Update submissions by outcome (success or error kind).",
	},
	[]string{"outcome"},
)
