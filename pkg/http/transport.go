package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	stookerr "github.com/fluxcd/stook/pkg/errors"
)

func NewAPIRouter() *mux.Router {
	r := mux.NewRouter()

	r.NewRoute().Name(Webhook).Methods("POST").Path("/webhook")
	r.NewRoute().Name(Health).Methods("GET").Path("/health")
	r.NewRoute().Name(Routes).Methods("GET").Path("/v1/routes")

	return r
}

// MakeURL builds the URL for a named route, relative to endpoint.
// pathVars fills in the variables in the route's path (e.g., {id});
// queryParams are added as the query string. Both are given as
// name, value pairs.
func MakeURL(endpoint string, router *mux.Router, routeName string, pathVars []string, queryParams ...string) (*url.URL, error) {
	if len(queryParams)%2 != 0 {
		panic("queryParams must be even!")
	}

	endpointURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing endpoint %s", endpoint)
	}
	route := router.Get(routeName)
	if route == nil {
		return nil, errors.New("no route with name " + routeName)
	}
	routeURL, err := route.URLPath(pathVars...)
	if err != nil {
		return nil, errors.Wrapf(err, "retrieving route path %s", routeName)
	}

	v := url.Values{}
	for i := 0; i < len(queryParams); i += 2 {
		v.Add(queryParams[i], queryParams[i+1])
	}

	endpointURL.Path = path.Join("/", endpointURL.Path, routeURL.Path)
	endpointURL.RawQuery = v.Encode()
	return endpointURL, nil
}

func WriteError(w http.ResponseWriter, r *http.Request, code int, err error) {
	// Clients that understand JSON errors (e.g., stookctl) ask for
	// them; anyone else, e.g., a registry logging the response, gets
	// text.
	if len(r.Header.Get("Accept")) > 0 {
		switch negotiateContentType(r, []string{"application/json", "text/plain"}) {
		case "application/json":
			body, encodeErr := json.Marshal(err)
			if encodeErr != nil {
				w.Header().Set(http.CanonicalHeaderKey("Content-Type"), "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprintf(w, "Error encoding error response: %s\n\nOriginal error: %s", encodeErr.Error(), err.Error())
				return
			}
			w.Header().Set(http.CanonicalHeaderKey("Content-Type"), "application/json; charset=utf-8")
			w.WriteHeader(code)
			w.Write(body)
			return
		case "text/plain":
			w.Header().Set(http.CanonicalHeaderKey("Content-Type"), "text/plain; charset=utf-8")
			w.WriteHeader(code)
			switch err := err.(type) {
			case *stookerr.Error:
				fmt.Fprint(w, err.Help)
			default:
				fmt.Fprint(w, err.Error())
			}
			return
		}
	}
	w.Header().Set(http.CanonicalHeaderKey("Content-Type"), "text/plain; charset=utf-8")
	w.WriteHeader(code)
	fmt.Fprint(w, err.Error())
}

func JSONResponse(w http.ResponseWriter, r *http.Request, result interface{}) {
	body, err := json.Marshal(result)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func ErrorResponse(w http.ResponseWriter, r *http.Request, apiError error) {
	var outErr *stookerr.Error
	var code int
	var ok bool

	err := errors.Cause(apiError)
	if outErr, ok = err.(*stookerr.Error); !ok {
		outErr = stookerr.CoverAllError(apiError)
	}
	switch outErr.Type {
	case stookerr.Missing:
		code = http.StatusNotFound
	case stookerr.User:
		code = http.StatusBadRequest
	case stookerr.Network:
		code = http.StatusBadGateway
	default:
		code = http.StatusInternalServerError
	}
	WriteError(w, r, code, outErr)
}
