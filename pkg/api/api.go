package api

import (
	"context"
	"time"

	"github.com/fluxcd/stook/pkg/registry"
)

// Server defines what stookd serves over HTTP, and what a connecting
// stookctl can ask of it.
type Server interface {
	// Health reports whether the relay is up. It has no side effects.
	Health(ctx context.Context) error
	// Notify acts on each push in the notification, in order. The
	// outcome for any one repository is logged rather than returned;
	// an error means the notification as a whole was not acted on.
	Notify(ctx context.Context, n registry.Notification) error
	// Routes returns the routing table as last refreshed.
	Routes(ctx context.Context) (RouteTable, error)
}

// RouteTable is the repository to target mapping, as answered by
// GET /v1/routes.
type RouteTable struct {
	Routes map[string]string `json:"routes"`
	// RefreshedAt is absent if the table has never been built
	RefreshedAt *time.Time `json:"refreshedAt,omitempty"`
}
