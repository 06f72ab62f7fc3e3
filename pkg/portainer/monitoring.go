package portainer

// Monitoring middleware for the Portainer API

import (
	"context"
	"strconv"
	"time"

	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	stookmetrics "github.com/fluxcd/stook/pkg/metrics"
)

const LabelRequestKind = "kind"

var (
	requestDuration = prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
		Namespace: "stook",
		Subsystem: "portainer",
		Name:      "request_duration_seconds",
		Help:      "Duration of Portainer API requests, in seconds.",
		Buckets:   stdprometheus.DefBuckets,
	}, []string{LabelRequestKind, stookmetrics.LabelSuccess})
)

type instrumentedAPI struct {
	next API
}

func NewInstrumentedAPI(next API) API {
	return &instrumentedAPI{
		next: next,
	}
}

func observe(kind string, start time.Time, err error) {
	requestDuration.With(
		LabelRequestKind, kind,
		stookmetrics.LabelSuccess, strconv.FormatBool(err == nil),
	).Observe(time.Since(start).Seconds())
}

func (m *instrumentedAPI) ListStacks(ctx context.Context) (res []Stack, err error) {
	start := time.Now()
	res, err = m.next.ListStacks(ctx)
	observe(ListStacks, start, err)
	return
}

func (m *instrumentedAPI) StackFile(ctx context.Context, id int) (res string, err error) {
	start := time.Now()
	res, err = m.next.StackFile(ctx, id)
	observe(StackFile, start, err)
	return
}

func (m *instrumentedAPI) UpdateStack(ctx context.Context, id, endpointID int, update StackUpdate) (err error) {
	start := time.Now()
	err = m.next.UpdateStack(ctx, id, endpointID, update)
	observe(UpdateStack, start, err)
	return
}
