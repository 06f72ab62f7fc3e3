package discovery

import (
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	stookmetrics "github.com/fluxcd/stook/pkg/metrics"
)

var (
	refreshDuration = prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
		Namespace: "stook",
		Subsystem: "discovery",
		Name:      "refresh_duration_seconds",
		Help:      "Duration of container label refreshes, in seconds.",
		Buckets:   stdprometheus.DefBuckets,
	}, []string{stookmetrics.LabelSuccess})
	routeCount = prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
		Namespace: "stook",
		Subsystem: "discovery",
		Name:      "routes",
		Help:      "Number of routes in the last successfully built table.",
	}, []string{})
)
