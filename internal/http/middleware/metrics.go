package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rate limiter decisions.
const (
	outcomeAllowed  = "allowed"
	outcomeBlocked  = "blocked"
	outcomeFailOpen = "fail_open"
)

// rateLimitDecisions counts every limiter verdict by limiter scope
// ("api", "auth", "game:click") and outcome.
var rateLimitDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rate_limiter_decisions_total",
		Help: "Rate limiter verdicts by scope and outcome",
	},
	[]string{"scope", "outcome"},
)
