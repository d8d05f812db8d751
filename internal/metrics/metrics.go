package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DepositsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deposits_total",
			Help: "Total deposit attempts",
		},
		[]string{"outcome"}, // success|rejected|conflict
	)

	TransfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfers_total",
			Help: "Total transfer attempts",
		},
		[]string{"outcome"}, // success|rejected|conflict
	)

	AccountsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_created_total",
			Help: "Total accounts created",
		},
	)
)

// /metrics endpoint handler
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(DepositsTotal)
	prometheus.MustRegister(TransfersTotal)
	prometheus.MustRegister(AccountsCreated)
}
