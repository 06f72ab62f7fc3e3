// Package portainer is a client for the small part of the Portainer
// API needed to redeploy a stack.
package portainer

import (
	"context"
	"encoding/json"

	"github.com/gorilla/mux"
)

// Route names
const (
	ListStacks  = "ListStacks"
	StackFile   = "StackFile"
	UpdateStack = "UpdateStack"
)

// APIKeyHeader carries the access token on every request.
const APIKeyHeader = "X-API-Key"

// NewRouter gives the routes of the Portainer API that are used
// here. The client builds its URLs from it; test servers can serve
// from it.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.NewRoute().Name(ListStacks).Methods("GET").Path("/api/stacks")
	r.NewRoute().Name(StackFile).Methods("GET").Path("/api/stacks/{id}/file")
	r.NewRoute().Name(UpdateStack).Methods("PUT").Path("/api/stacks/{id}").Queries("endpointId", "{endpointId}")
	return r
}

// Stack is a stack as listed by Portainer. The environment is passed
// back as it came, so its entries are left undecoded.
type Stack struct {
	ID         int               `json:"Id"`
	Name       string            `json:"Name"`
	EndpointID int               `json:"EndpointId"`
	Env        []json.RawMessage `json:"Env"`
}

// StackFileContent is the answer to a request for a stack's file.
type StackFileContent struct {
	StackFileContent string `json:"StackFileContent"`
}

// StackUpdate is the body of an update (i.e., redeploy) request.
type StackUpdate struct {
	Env              []json.RawMessage `json:"env"`
	PullImage        bool              `json:"pullImage"`
	Prune            bool              `json:"prune"`
	StackFileContent string            `json:"stackFileContent"`
}

// API is the set of calls a redeploy is made of. *Client implements
// it.
type API interface {
	ListStacks(ctx context.Context) ([]Stack, error)
	StackFile(ctx context.Context, id int) (string, error)
	UpdateStack(ctx context.Context, id, endpointID int, update StackUpdate) error
}
