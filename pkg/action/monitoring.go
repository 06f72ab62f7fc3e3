package action

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	stookerr "github.com/fluxcd/stook/pkg/errors"
	stookmetrics "github.com/fluxcd/stook/pkg/metrics"
)

var (
	actionDuration = prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
		Namespace: "stook",
		Subsystem: "action",
		Name:      "duration_seconds",
		Help:      "Duration of actions taken on a push, in seconds.",
		Buckets:   stdprometheus.DefBuckets,
	}, []string{stookmetrics.LabelStrategy, stookmetrics.LabelType})
)

type instrumentedExecutor struct {
	strategy string
	next     Executor
}

// Instrument records how long each action takes, by strategy and by
// the type of error, if any.
func Instrument(strategy string, next Executor) Executor {
	return &instrumentedExecutor{
		strategy: strategy,
		next:     next,
	}
}

func (m *instrumentedExecutor) Execute(ctx context.Context, target string) (err error) {
	start := time.Now()
	err = m.next.Execute(ctx, target)
	actionDuration.With(
		stookmetrics.LabelStrategy, m.strategy,
		stookmetrics.LabelType, ErrorType(err),
	).Observe(time.Since(start).Seconds())
	return
}

// ErrorType names the kind of failure for metrics and logs: "ok" for
// no error, and "unknown" for an error of no known type.
func ErrorType(err error) string {
	if err == nil {
		return "ok"
	}
	if t := stookerr.TypeOf(err); t != "" {
		return string(t)
	}
	return "unknown"
}
