package http

import (
	"errors"

	stookerr "github.com/fluxcd/stook/pkg/errors"
)

func MakeAPINotFound(path string) *stookerr.Error {
	return &stookerr.Error{
		Type: stookerr.Missing,
		Help: `The endpoint requested is not served by stookd.

Registries should be configured to send notifications to

    POST /webhook

If you are using stookctl, check it is pointed at stookd (--url) and
that both are the same version. The path requested was:

    ` + path + `
`,
		Err: errors.New("API endpoint not found"),
	}
}

func MakeBadNotification(err error) *stookerr.Error {
	return &stookerr.Error{
		Type: stookerr.User,
		Help: `The request body could not be read as a registry notification.

stookd expects the JSON envelope sent by a registry's notification
endpoint, i.e.,

    {"events": [{"action": "push", "target": {"repository": "...", "tag": "..."}}]}

The error was: ` + err.Error() + `
`,
		Err: err,
	}
}
