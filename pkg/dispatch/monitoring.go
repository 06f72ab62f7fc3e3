package dispatch

import (
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	stookmetrics "github.com/fluxcd/stook/pkg/metrics"
)

var (
	dispatchCount = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: "stook",
		Name:      "dispatch_total",
		Help:      "Count of pushed repositories dispatched, by outcome.",
	}, []string{stookmetrics.LabelOutcome})
)
