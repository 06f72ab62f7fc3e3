package dispatch

import (
	"context"

	"github.com/go-kit/kit/log"

	"github.com/fluxcd/stook/pkg/action"
	"github.com/fluxcd/stook/pkg/discovery"
	stookmetrics "github.com/fluxcd/stook/pkg/metrics"
)

type Outcome string

const (
	// The action for the repository's target ran and succeeded
	Executed Outcome = "executed"
	// The action ran, but failed
	Failed Outcome = "failed"
	// There's no route for the repository
	Ignored Outcome = "ignored"
	// The repository was excluded by configuration
	Excluded Outcome = "excluded"
)

// Result is what happened to one pushed repository.
type Result struct {
	Repository string
	Target     string
	Outcome    Outcome
	Err        error
}

// Dispatcher routes pushed repositories to their targets, and has
// the executor act on each target found.
type Dispatcher struct {
	Lookup   discovery.Lookup
	Executor action.Executor
	Includer Includer
	Logger   log.Logger
}

// Dispatch deals with each repository in turn, in the order given;
// duplicates are dealt with as many times as they appear. Nothing
// that happens to one repository stops the rest being dealt with,
// and there are no retries. Outcomes are logged, and returned.
func (d *Dispatcher) Dispatch(ctx context.Context, repositories []string) []Result {
	results := make([]Result, 0, len(repositories))
	for _, repo := range repositories {
		result := d.dispatch(ctx, repo)
		dispatchCount.With(stookmetrics.LabelOutcome, string(result.Outcome)).Add(1)
		results = append(results, result)
	}
	return results
}

func (d *Dispatcher) dispatch(ctx context.Context, repo string) Result {
	logger := log.With(d.Logger, "repository", repo)

	if d.Includer != nil && !d.Includer.IsIncluded(repo) {
		logger.Log("info", "repository excluded, ignoring")
		return Result{Repository: repo, Outcome: Excluded}
	}

	target, ok := d.Lookup.Lookup(ctx, repo)
	if !ok {
		logger.Log("info", "no route found, ignoring")
		return Result{Repository: repo, Outcome: Ignored}
	}

	if err := d.Executor.Execute(ctx, target); err != nil {
		logger.Log("err", err, "target", target, "type", action.ErrorType(err))
		return Result{Repository: repo, Target: target, Outcome: Failed, Err: err}
	}
	return Result{Repository: repo, Target: target, Outcome: Executed}
}
