package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals ingested, by classification"},
		[]string{"kind"},
	)
	ParseRejects = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "signal_parse_rejects_total", Help: "Webhook bodies rejected at parse/validation"},
	)
	ForwardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signal_forwards_total", Help: "Forwarding attempts to the sink, by result"},
		[]string{"result"},
	)
	ReconciledRows = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "signal_reconciled_rows", Help: "History rows loaded from the sink at startup"},
	)
)

func init() {
	prometheus.MustRegister(SignalsTotal, ParseRejects, ForwardsTotal, ReconciledRows)
}

// Handler returns the prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
