// Shared main test code
package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fluxcd/stook/pkg/api"
	relayhttp "github.com/fluxcd/stook/pkg/http/relay"
	"github.com/fluxcd/stook/pkg/registry"
)

// mockServer is an api.Server that answers with canned values, and
// remembers the notifications it gets.
type mockServer struct {
	table    api.RouteTable
	notified []registry.Notification
}

func (m *mockServer) Health(ctx context.Context) error {
	return nil
}

func (m *mockServer) Notify(ctx context.Context, n registry.Notification) error {
	m.notified = append(m.notified, n)
	return nil
}

func (m *mockServer) Routes(ctx context.Context) (api.RouteTable, error) {
	return m.table, nil
}

func newMockServer(t *testing.T) (*mockServer, string) {
	at := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)
	m := &mockServer{table: api.RouteTable{
		Routes:      map[string]string{"org/app": "stackB", "myrepo": "stackA"},
		RefreshedAt: &at,
	}}
	ts := httptest.NewServer(relayhttp.NewHandler(m, relayhttp.NewRouter()))
	t.Cleanup(ts.Close)
	return m, ts.URL
}

// run runs stookctl with the args given, against the URL given, and
// returns what it wrote to stdout.
func run(t *testing.T, url string, args ...string) (string, error) {
	root := newRoot().Command()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--url", url}, args...))
	err := root.Execute()
	return out.String(), err
}
