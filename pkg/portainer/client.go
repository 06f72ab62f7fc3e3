package portainer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	stookerr "github.com/fluxcd/stook/pkg/errors"
	transport "github.com/fluxcd/stook/pkg/http"
	"github.com/fluxcd/stook/pkg/http/httperror"
)

type Client struct {
	client   *http.Client
	router   *mux.Router
	endpoint string
	apiKey   string
}

var _ API = &Client{}

func New(c *http.Client, endpoint, apiKey string) *Client {
	return &Client{
		client:   c,
		router:   NewRouter(),
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
	}
}

// NewHTTPClient makes the client used to talk to Portainer.
// Portainer is often run with a self-signed certificate, hence the
// option of not verifying it.
func NewHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	c := &http.Client{Timeout: timeout}
	if insecure {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		c.Transport = t
	}
	return c
}

func (c *Client) ListStacks(ctx context.Context) ([]Stack, error) {
	var stacks []Stack
	err := c.methodWithResp(ctx, "GET", &stacks, ListStacks, nil, nil)
	return stacks, err
}

func (c *Client) StackFile(ctx context.Context, id int) (string, error) {
	var file StackFileContent
	err := c.methodWithResp(ctx, "GET", &file, StackFile, []string{"id", strconv.Itoa(id)}, nil)
	return file.StackFileContent, err
}

func (c *Client) UpdateStack(ctx context.Context, id, endpointID int, update StackUpdate) error {
	return c.methodWithResp(ctx, "PUT", nil, UpdateStack, []string{"id", strconv.Itoa(id)}, update,
		"endpointId", strconv.Itoa(endpointID))
}

// methodWithResp sends a request to the named route, with body
// encoded as JSON if it's not nil, and decodes the response into
// dest if that's not nil.
func (c *Client) methodWithResp(ctx context.Context, method string, dest interface{}, route string, pathVars []string, body interface{}, queryParams ...string) error {
	u, err := transport.MakeURL(c.endpoint, c.router, route, pathVars, queryParams...)
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
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.executeRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return stookerr.Wrap(stookerr.Server, err, "decoding response from Portainer "+route)
	}
	return nil
}

func (c *Client) executeRequest(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, stookerr.Wrap(stookerr.Network, err, "executing HTTP request")
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(resp.Body)
	apiErr := &httperror.APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
	apiFailure := &stookerr.Error{Type: stookerr.Server, Err: apiErr}
	switch {
	case apiErr.IsUnauthorized():
		apiFailure.Help = `Portainer refused the API key.

Check that PORTAINER_API_KEY is a current access token, belonging to a
user that is allowed to manage stacks.
`
	case apiErr.IsMissing():
		// e.g., a stack removed after it was listed
		apiFailure.Type = stookerr.Missing
	case apiErr.IsUnavailable():
		apiFailure.Help = `Portainer (or a proxy in front of it) is not available at the moment.
The push will need to be redeployed by hand, or pushed again.
`
	}
	return nil, apiFailure
}
