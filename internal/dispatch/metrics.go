package dispatch

import "github.com/prometheus/client_golang/prometheus"

// errorsTotal counts dispatched failures by kind and resolved status. The
// kind label is bounded by the catalog plus "unrecognized".
var errorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Total number of failures translated into error responses.",
	},
	[]string{"kind", "status"},
)

func init() {
	prometheus.MustRegister(errorsTotal)
}
