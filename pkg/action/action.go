// Package action has the things that can be done about a push, once
// it's known what the pushed repository is deployed as.
package action

import (
	"context"
)

// Names of the strategies, as used in configuration and metrics
const (
	StrategyForward  = "forward"
	StrategyRedeploy = "redeploy"
)

// Executor acts on a target. What the target means (a URL, a stack
// name) is up to the implementation. Errors are *errors.Error where
// the cause is known, so they can be told apart in logs and metrics.
type Executor interface {
	Execute(ctx context.Context, target string) error
}

// ExecutorFunc adapts a func to Executor.
type ExecutorFunc func(ctx context.Context, target string) error

func (f ExecutorFunc) Execute(ctx context.Context, target string) error {
	return f(ctx, target)
}
