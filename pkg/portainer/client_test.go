package portainer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stookerr "github.com/fluxcd/stook/pkg/errors"
	"github.com/fluxcd/stook/pkg/http/httperror"
)

const testKey = "ptr_secret"

type fakePortainer struct {
	mu      sync.Mutex
	stacks  []json.RawMessage
	files   map[int]string
	updates []recordedUpdate
	keys    []string
}

type recordedUpdate struct {
	id         int
	endpointID string
	body       StackUpdate
}

func (f *fakePortainer) handler() http.Handler {
	r := NewRouter()
	r.Get(ListStacks).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		json.NewEncoder(w).Encode(f.stacks)
	})
	r.Get(StackFile).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		id, _ := strconv.Atoi(mux.Vars(r)["id"])
		content, ok := f.files[id]
		if !ok {
			http.Error(w, `{"message":"Unable to find a stack with the specified identifier inside the database"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(StackFileContent{StackFileContent: content})
	})
	r.Get(UpdateStack).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var body StackUpdate
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id, _ := strconv.Atoi(mux.Vars(r)["id"])
		f.mu.Lock()
		f.updates = append(f.updates, recordedUpdate{id: id, endpointID: r.URL.Query().Get("endpointId"), body: body})
		f.mu.Unlock()
		w.Write([]byte(`{"Id":1}`))
	})
	return r
}

func (f *fakePortainer) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, r.Header.Get(APIKeyHeader))
}

func setup(t *testing.T, f *fakePortainer) *Client {
	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)
	// The trailing slash should make no difference
	return New(server.Client(), server.URL+"/", testKey)
}

func TestListStacks(t *testing.T) {
	f := &fakePortainer{stacks: []json.RawMessage{
		json.RawMessage(`{"Id":3,"Name":"stackA","EndpointId":2,"Env":[{"name":"FOO","value":"bar"}]}`),
		json.RawMessage(`{"Id":4,"Name":"stackB","EndpointId":2,"Env":null}`),
	}}
	c := setup(t, f)

	stacks, err := c.ListStacks(context.Background())
	require.NoError(t, err)
	require.Len(t, stacks, 2)
	assert.Equal(t, 3, stacks[0].ID)
	assert.Equal(t, "stackA", stacks[0].Name)
	assert.Equal(t, 2, stacks[0].EndpointID)
	require.Len(t, stacks[0].Env, 1)
	assert.JSONEq(t, `{"name":"FOO","value":"bar"}`, string(stacks[0].Env[0]))
	assert.Nil(t, stacks[1].Env)

	assert.Equal(t, []string{testKey}, f.keys)
}

func TestStackFile(t *testing.T) {
	f := &fakePortainer{files: map[int]string{3: "services:\n  web:\n    image: myrepo\n"}}
	c := setup(t, f)

	content, err := c.StackFile(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "services:\n  web:\n    image: myrepo\n", content)

	_, err = c.StackFile(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, stookerr.IsMissing(err))
	var apiErr *httperror.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsMissing())
	assert.Contains(t, apiErr.Body, "Unable to find a stack")
}

func TestUpdateStack(t *testing.T) {
	f := &fakePortainer{}
	c := setup(t, f)

	env := []json.RawMessage{json.RawMessage(`{"name":"FOO","value":"bar"}`)}
	err := c.UpdateStack(context.Background(), 3, 7, StackUpdate{
		Env:              env,
		PullImage:        true,
		Prune:            true,
		StackFileContent: "version: '3'\n",
	})
	require.NoError(t, err)

	require.Len(t, f.updates, 1)
	u := f.updates[0]
	assert.Equal(t, 3, u.id)
	assert.Equal(t, "7", u.endpointID)
	assert.True(t, u.body.PullImage)
	assert.True(t, u.body.Prune)
	assert.Equal(t, "version: '3'\n", u.body.StackFileContent)
	require.Len(t, u.body.Env, 1)
	assert.JSONEq(t, `{"name":"FOO","value":"bar"}`, string(u.body.Env[0]))
	assert.Equal(t, []string{testKey}, f.keys)
}

func TestUpdateBodyFieldNames(t *testing.T) {
	bytes, err := json.Marshal(StackUpdate{Env: []json.RawMessage{}, PullImage: true, Prune: true, StackFileContent: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"env":[],"pullImage":true,"prune":true,"stackFileContent":"x"}`, string(bytes))
}

func TestUnauthorizedIsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid API key", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := New(server.Client(), server.URL, "wrong").ListStacks(context.Background())
	require.Error(t, err)
	assert.Equal(t, stookerr.Server, stookerr.TypeOf(err))
	var apiErr *httperror.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsUnauthorized())

	var e *stookerr.Error
	require.True(t, errors.As(err, &e))
	assert.Contains(t, e.Help, "PORTAINER_API_KEY")
}

func TestUnavailableIsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream connect error", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := New(server.Client(), server.URL, testKey).ListStacks(context.Background())
	require.Error(t, err)
	assert.Equal(t, stookerr.Server, stookerr.TypeOf(err))
	var e *stookerr.Error
	require.True(t, errors.As(err, &e))
	assert.Contains(t, e.Help, "not available")
}

func TestUndecodableResponseIsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not an API</html>`))
	}))
	defer server.Close()

	_, err := New(server.Client(), server.URL, testKey).ListStacks(context.Background())
	require.Error(t, err)
	assert.True(t, stookerr.IsServer(err))
}

func TestUnreachableIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := New(&http.Client{Timeout: time.Second}, url, testKey)
	_, err := c.ListStacks(context.Background())
	require.Error(t, err)
	assert.True(t, stookerr.IsNetwork(err))
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(5*time.Second, false)
	assert.Equal(t, 5*time.Second, c.Timeout)
	assert.Nil(t, c.Transport)

	c = NewHTTPClient(5*time.Second, true)
	transport, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
}

func TestInstrumentedAPI(t *testing.T) {
	f := &fakePortainer{
		stacks: []json.RawMessage{json.RawMessage(`{"Id":3,"Name":"stackA","EndpointId":2}`)},
		files:  map[int]string{3: "services: {}\n"},
	}
	api := NewInstrumentedAPI(setup(t, f))

	stacks, err := api.ListStacks(context.Background())
	require.NoError(t, err)
	require.Len(t, stacks, 1)
	content, err := api.StackFile(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "services: {}\n", content)
	require.NoError(t, api.UpdateStack(context.Background(), 3, 2, StackUpdate{StackFileContent: content}))
	assert.Len(t, f.updates, 1)
}
