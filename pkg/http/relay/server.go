package relay

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/weaveworks/common/middleware"

	"github.com/fluxcd/stook/pkg/api"
	transport "github.com/fluxcd/stook/pkg/http"
	stookmetrics "github.com/fluxcd/stook/pkg/metrics"
	"github.com/fluxcd/stook/pkg/registry"
)

var (
	requestDuration = stdprometheus.NewHistogramVec(stdprometheus.HistogramOpts{
		Namespace: "stook",
		Name:      "request_duration_seconds",
		Help:      "Time (in seconds) spent serving HTTP requests.",
		Buckets:   stdprometheus.DefBuckets,
	}, []string{stookmetrics.LabelMethod, stookmetrics.LabelRoute, "status_code", "ws"})
)

// MaxNotificationBytes bounds the size of a webhook body. Registries
// send events in small batches, so this is generous.
const MaxNotificationBytes = 1 << 20

func init() {
	stdprometheus.MustRegister(requestDuration)
}

// An API server for the relay
func NewRouter() *mux.Router {
	r := transport.NewAPIRouter()

	// Any request that doesn't match a route is most likely a
	// registry or client configured with the wrong path.
	r.NewRoute().Name("NotFound").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		transport.WriteError(w, r, http.StatusNotFound, transport.MakeAPINotFound(r.URL.Path))
	})

	return r
}

func NewHandler(s api.Server, r *mux.Router) http.Handler {
	handle := HTTPServer{s}

	r.Get(transport.Webhook).HandlerFunc(handle.Webhook)
	r.Get(transport.Health).HandlerFunc(handle.Health)
	r.Get(transport.Routes).HandlerFunc(handle.Routes)

	return middleware.Instrument{
		RouteMatcher: r,
		Duration:     requestDuration,
	}.Wrap(r)
}

type HTTPServer struct {
	server api.Server
}

// Webhook answers 200 once the notification has been dealt with,
// whatever happened to the individual pushes in it; only a
// notification that can't be read is refused.
func (s HTTPServer) Webhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	n, err := registry.ParseNotification(http.MaxBytesReader(w, r.Body, MaxNotificationBytes))
	if err != nil {
		code := http.StatusBadRequest
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			code = http.StatusRequestEntityTooLarge
		}
		transport.WriteError(w, r, code, transport.MakeBadNotification(err))
		return
	}
	// A registry that gives up waiting shouldn't cut a redeploy off
	// between steps.
	ctx := context.WithoutCancel(r.Context())
	if err := s.server.Notify(ctx, n); err != nil {
		transport.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s HTTPServer) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.server.Health(r.Context()); err != nil {
		transport.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s HTTPServer) Routes(w http.ResponseWriter, r *http.Request) {
	table, err := s.server.Routes(r.Context())
	if err != nil {
		transport.ErrorResponse(w, r, err)
		return
	}
	transport.JSONResponse(w, r, table)
}
