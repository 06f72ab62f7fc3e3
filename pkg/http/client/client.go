package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/fluxcd/stook/pkg/api"
	stookerr "github.com/fluxcd/stook/pkg/errors"
	transport "github.com/fluxcd/stook/pkg/http"
	"github.com/fluxcd/stook/pkg/http/httperror"
	"github.com/fluxcd/stook/pkg/registry"
)

// Client talks to stookd over HTTP.
type Client struct {
	client   *http.Client
	router   *mux.Router
	endpoint string
}

var _ api.Server = &Client{}

func New(c *http.Client, router *mux.Router, endpoint string) *Client {
	return &Client{
		client:   c,
		router:   router,
		endpoint: endpoint,
	}
}

func (c *Client) Health(ctx context.Context) error {
	return c.Get(ctx, nil, transport.Health)
}

func (c *Client) Notify(ctx context.Context, n registry.Notification) error {
	return c.PostWithBody(ctx, transport.Webhook, n)
}

func (c *Client) Routes(ctx context.Context) (api.RouteTable, error) {
	var res api.RouteTable
	err := c.Get(ctx, &res, transport.Routes)
	return res, err
}

// --- Request helpers

// PostWithBody is a post request with a json-ified body. If body is
// not nil, it is encoded to json before sending.
func (c *Client) PostWithBody(ctx context.Context, route string, body interface{}, queryParams ...string) error {
	return c.methodWithResp(ctx, "POST", nil, route, body, queryParams...)
}

// methodWithResp handles body and query-param encoding, as well as
// decoding the response into the provided destination. The response
// is only decoded into dest if it is not empty.
func (c *Client) methodWithResp(ctx context.Context, method string, dest interface{}, route string, body interface{}, queryParams ...string) error {
	u, err := transport.MakeURL(c.endpoint, c.router, route, nil, queryParams...)
	if err != nil {
		return errors.Wrap(err, "constructing URL")
	}

	var bodyBytes []byte
	if body != nil {
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
	}

	req, err := http.NewRequest(method, u.String(), bytes.NewReader(bodyBytes))
	if err != nil {
		return errors.Wrapf(err, "constructing request %s", u)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", registry.MediaType)
	}

	resp, err := c.executeRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "decoding response from server")
	}
	if len(respBytes) <= 0 || dest == nil {
		return nil
	}
	if err := json.Unmarshal(respBytes, dest); err != nil {
		return errors.Wrap(err, "decoding response from server")
	}
	return nil
}

// Get executes a get request against stookd. It unmarshals the
// response into dest, if not nil.
func (c *Client) Get(ctx context.Context, dest interface{}, route string, queryParams ...string) error {
	return c.methodWithResp(ctx, "GET", dest, route, nil, queryParams...)
}

func (c *Client) executeRequest(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, stookerr.Wrap(stookerr.Network, err, "executing HTTP request")
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent, http.StatusAccepted:
		return resp, nil
	default:
		defer resp.Body.Close()
		body, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "reading response body of error")
		}
		// Use the content type to discriminate between our own
		// errors and any old error
		if strings.HasPrefix(resp.Header.Get(http.CanonicalHeaderKey("Content-Type")), "application/json") {
			var niceError stookerr.Error
			if err := json.Unmarshal(body, &niceError); err != nil {
				return nil, errors.Wrap(err, "decoding response body of error")
			}
			// just in case it's JSON but not one of our own errors
			if niceError.Err != nil {
				return nil, &niceError
			}
		}
		return nil, &httperror.APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}
}
