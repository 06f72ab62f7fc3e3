package action

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/go-kit/kit/log"

	stookerr "github.com/fluxcd/stook/pkg/errors"
	"github.com/fluxcd/stook/pkg/http/httperror"
)

// Forwarder POSTs, with an empty body, to the target URL. This is
// what triggers e.g., a Portainer stack webhook.
type Forwarder struct {
	client *http.Client
	logger log.Logger
}

var _ Executor = &Forwarder{}

func NewForwarder(client *http.Client, logger log.Logger) *Forwarder {
	return &Forwarder{client: client, logger: logger}
}

func (f *Forwarder) Execute(ctx context.Context, url string) error {
	f.logger.Log("info", "forwarding webhook", "url", url)

	req, err := http.NewRequest("POST", url, nil)
	if err != nil {
		return &stookerr.Error{
			Type: stookerr.User,
			Help: "The webhook label on the container is not a usable URL: " + url,
			Err:  err,
		}
	}
	req = req.WithContext(ctx)

	resp, err := f.client.Do(req)
	if err != nil {
		return stookerr.Wrap(stookerr.Network, err, "forwarding webhook")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 4096))
		return &stookerr.Error{
			Type: stookerr.Server,
			Err: &httperror.APIError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       strings.TrimSpace(string(body)),
			},
		}
	}
	io.Copy(ioutil.Discard, resp.Body)

	f.logger.Log("info", "forwarded webhook", "url", url, "status", resp.Status)
	return nil
}
