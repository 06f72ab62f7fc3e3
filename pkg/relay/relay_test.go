package relay

import (
	"context"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxcd/stook/pkg/discovery"
	"github.com/fluxcd/stook/pkg/dispatch"
	"github.com/fluxcd/stook/pkg/registry"
)

type snapshot struct {
	routes discovery.Routes
	at     time.Time
}

func (s snapshot) Snapshot() (discovery.Routes, time.Time) {
	return s.routes, s.at
}

type lookupFunc func(string) (string, bool)

func (f lookupFunc) Lookup(ctx context.Context, repo string) (string, bool) {
	return f(repo)
}

func TestRoutesTimestamp(t *testing.T) {
	r := &Relay{Routing: snapshot{routes: discovery.Routes{}}, Logger: log.NewNopLogger()}
	table, err := r.Routes(context.Background())
	require.NoError(t, err)
	assert.Nil(t, table.RefreshedAt)

	at := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)
	r.Routing = snapshot{routes: discovery.Routes{"a": "stackA"}, at: at}
	table, err = r.Routes(context.Background())
	require.NoError(t, err)
	require.NotNil(t, table.RefreshedAt)
	assert.Equal(t, at, *table.RefreshedAt)
	assert.Equal(t, map[string]string{"a": "stackA"}, table.Routes)
}

func TestNotifyDispatchesPushesOnly(t *testing.T) {
	var looked []string
	var executed []string
	r := &Relay{
		Dispatcher: &dispatch.Dispatcher{
			Lookup: lookupFunc(func(repo string) (string, bool) {
				looked = append(looked, repo)
				return "stack-" + repo, true
			}),
			Executor: executorFunc(func(target string) { executed = append(executed, target) }),
			Logger:   log.NewNopLogger(),
		},
		Logger: log.NewNopLogger(),
	}

	err := r.Notify(context.Background(), registry.Notification{Events: []registry.Event{
		{Action: "pull", Target: registry.Target{Repository: "x"}},
		{Action: registry.PushAction, Target: registry.Target{Repository: "a", Tag: "v1"}},
		{Action: "delete", Target: registry.Target{Repository: "y"}},
		{Action: registry.PushAction, Target: registry.Target{Repository: "b", Digest: "sha256:abc"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, looked)
	assert.Equal(t, []string{"stack-a", "stack-b"}, executed)
}

type executorFunc func(string)

func (f executorFunc) Execute(ctx context.Context, target string) error {
	f(target)
	return nil
}

func TestHealth(t *testing.T) {
	assert.NoError(t, (&Relay{}).Health(context.Background()))
}
