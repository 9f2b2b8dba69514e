package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	RaffleEntryTotal           = "raffle_entries_total"
	RaffleUpkeepTotal          = "raffle_upkeeps_total"
	RaffleTransferFailure      = "raffle_transfer_failures_total"
	VRFFulfillmentTotal        = "vrf_fulfillments_total"
	ChainTransactionFailure    = "chain_transaction_failures_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "code"}),
		RaffleEntryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RaffleEntryTotal,
			Help: "Count of accepted raffle entries",
		}, []string{"raffle"}),
		RaffleUpkeepTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RaffleUpkeepTotal,
			Help: "Count of performed upkeeps",
		}, []string{"raffle"}),
		RaffleTransferFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RaffleTransferFailure,
			Help: "Count of winner payouts which could not be transferred",
		}, []string{"raffle"}),
		VRFFulfillmentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: VRFFulfillmentTotal,
			Help: "Count of fulfilled randomness requests",
		}, []string{"success"}),
		ChainTransactionFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ChainTransactionFailure,
			Help: "Count of reverted transactions",
		}, []string{"method"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "code"}),
	}
)

func IncCounter(name string, labels ...string) {
	if counter, ok := PromCounters[name]; ok {
		counter.WithLabelValues(labels...).Inc()
	}
}
