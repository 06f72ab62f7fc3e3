// Package relay ties the pieces together into the api.Server that
// stookd serves.
package relay

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/fluxcd/stook/pkg/api"
	"github.com/fluxcd/stook/pkg/discovery"
	"github.com/fluxcd/stook/pkg/dispatch"
	"github.com/fluxcd/stook/pkg/registry"
)

// RouteSource gives the routing table as it stands. *discovery.Cache
// implements it.
type RouteSource interface {
	Snapshot() (discovery.Routes, time.Time)
}

type Relay struct {
	Dispatcher *dispatch.Dispatcher
	Routing    RouteSource
	Logger     log.Logger
}

var _ api.Server = &Relay{}

func (r *Relay) Health(ctx context.Context) error {
	return nil
}

// Notify dispatches every push in the notification, and waits until
// that's done. Per-repository failures are logged by the dispatcher;
// Notify itself doesn't fail.
func (r *Relay) Notify(ctx context.Context, n registry.Notification) error {
	pushes := n.Pushes()
	level.Debug(r.Logger).Log("info", "received push events", "events", len(n.Events), "pushes", len(pushes))
	for _, p := range pushes {
		level.Debug(r.Logger).Log("repository", p.Target.Repository, "tag", p.Target.Tag, "digest", p.Target.Digest)
	}

	results := r.Dispatcher.Dispatch(ctx, n.PushRepositories())
	counts := map[dispatch.Outcome]int{}
	for _, res := range results {
		counts[res.Outcome]++
	}
	if len(results) > 0 {
		r.Logger.Log("info", "dispatched pushes",
			"executed", counts[dispatch.Executed],
			"failed", counts[dispatch.Failed],
			"ignored", counts[dispatch.Ignored],
			"excluded", counts[dispatch.Excluded])
	}
	return nil
}

func (r *Relay) Routes(ctx context.Context) (api.RouteTable, error) {
	routes, refreshedAt := r.Routing.Snapshot()
	table := api.RouteTable{Routes: routes}
	if !refreshedAt.IsZero() {
		table.RefreshedAt = &refreshedAt
	}
	return table, nil
}
