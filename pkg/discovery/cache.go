package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	stookmetrics "github.com/fluxcd/stook/pkg/metrics"
)

// Lookup resolves a pushed repository to a deployment target.
type Lookup interface {
	Lookup(ctx context.Context, repository string) (target string, ok bool)
}

// Lister is the part of the Docker client the cache needs;
// *client.Client satisfies it.
type Lister interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
}

// Routes maps repository to target. Keys are matched exactly.
type Routes map[string]string

func (r Routes) copy() Routes {
	c := make(Routes, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Cache is a Lookup backed by the labels on containers. The table it
// answers from is always the product of a single, complete listing.
//
// A lookup against a table older than the TTL (or before there is
// any table) refreshes first, without holding the lock while the
// containers are listed. So concurrent lookups that find the table
// stale will each do their own refresh; they all build the same
// table, barring changes in between, and the last to finish is what
// stays.
type Cache struct {
	lister Lister
	scheme Scheme
	ttl    time.Duration
	logger log.Logger
	now    func() time.Time

	mu          sync.RWMutex
	routes      Routes
	refreshedAt time.Time
}

var _ Lookup = &Cache{}

func NewCache(lister Lister, scheme Scheme, ttl time.Duration, logger log.Logger) *Cache {
	return &Cache{
		lister: lister,
		scheme: scheme,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		routes: Routes{},
	}
}

// Lookup implements Lookup. A failure to refresh isn't reported to
// the caller; the last good table is used instead.
func (c *Cache) Lookup(ctx context.Context, repository string) (string, bool) {
	if target, ok, fresh := c.lookupFresh(repository); fresh {
		return target, ok
	}

	// Any error has been logged; carry on with what we have.
	_ = c.Refresh(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()
	target, ok := c.routes[repository]
	return target, ok
}

func (c *Cache) lookupFresh(repository string) (target string, ok, fresh bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.refreshedAt.IsZero() || c.now().Sub(c.refreshedAt) >= c.ttl {
		return "", false, false
	}
	target, ok = c.routes[repository]
	return target, ok, true
}

// Refresh lists containers and, if that succeeds, replaces the table
// and its timestamp. If it fails, the table and timestamp are left as
// they were.
func (c *Cache) Refresh(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		refreshDuration.With(
			stookmetrics.LabelSuccess, fmt.Sprint(err == nil),
		).Observe(time.Since(begin).Seconds())
	}(time.Now())

	level.Debug(c.logger).Log("info", "refreshing container label cache")
	containers, err := c.lister.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		err = errors.Wrap(err, "listing containers")
		c.logger.Log("err", err)
		return err
	}

	routes := c.scheme.Build(containers, c.logger)

	c.mu.Lock()
	c.routes = routes
	c.refreshedAt = c.now()
	c.mu.Unlock()

	routeCount.Set(float64(len(routes)))
	c.logger.Log("info", "refreshed route cache", "containers", len(containers), "routes", len(routes))
	return nil
}

// Snapshot returns a copy of the current table, and when it was
// built (zero if it never was). It never refreshes.
func (c *Cache) Snapshot() (Routes, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.routes.copy(), c.refreshedAt
}

// Loop refreshes the cache every interval until told to stop, so
// that lookups rarely have to wait for a refresh.
func (c *Cache) Loop(stop <-chan struct{}, wg *sync.WaitGroup, interval time.Duration) {
	defer wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			c.logger.Log("stopping", "true")
			return
		case <-ticker.C:
			c.Refresh(context.Background())
		}
	}
}
