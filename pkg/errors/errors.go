package errors

import (
	"encoding/json"
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Representation of errors raised below the webhook boundary. These
// are divided into a small number of categories, distinguished by
// where the fault lies; i.e., is this error:
//  - something we asked for that just isn't there (a stack name with no stack)?
//  - the remote API answering, but not with success?
//  - the remote API not answering at all?
//  - not going to work until the operator changes configuration?
type Error struct {
	Type Type
	// a message that can be printed out for the operator
	Help string `json:"help"`
	// the underlying error that can be e.g., logged for developers to look at
	Err error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap lets errors.Is and errors.As see the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

type Type string

const (
	// The remote end was reached, but answered with something other
	// than success
	Server Type = "server"
	// The thing you mentioned, whatever it is, just doesn't exist
	Missing Type = "missing"
	// The remote end could not be reached, or the exchange was cut
	// short
	Network Type = "network"
	// The request was well-formed, but can't be served with the
	// present configuration
	User Type = "user"
)

// TypeOf returns the Type of the first *Error in err's chain, or the
// empty Type if there is none.
func TypeOf(err error) Type {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}

func IsMissing(err error) bool {
	return TypeOf(err) == Missing
}

func IsServer(err error) bool {
	return TypeOf(err) == Server
}

func IsNetwork(err error) bool {
	return TypeOf(err) == Network
}

// Wrap annotates err with a message and classifies it.
func Wrap(t Type, err error, msg string) *Error {
	return &Error{
		Type: t,
		Err:  pkgerrors.Wrap(err, msg),
	}
}

func (e *Error) MarshalJSON() ([]byte, error) {
	var errMsg string
	if e.Err != nil {
		errMsg = e.Err.Error()
	}
	jsonable := &struct {
		Type string `json:"type"`
		Help string `json:"help"`
		Err  string `json:"error,omitempty"`
	}{
		Type: string(e.Type),
		Help: e.Help,
		Err:  errMsg,
	}
	return json.Marshal(jsonable)
}

func (e *Error) UnmarshalJSON(data []byte) error {
	jsonable := &struct {
		Type string `json:"type"`
		Help string `json:"help"`
		Err  string `json:"error,omitempty"`
	}{}
	if err := json.Unmarshal(data, &jsonable); err != nil {
		return err
	}
	e.Type = Type(jsonable.Type)
	e.Help = jsonable.Help
	if jsonable.Err != "" {
		e.Err = errors.New(jsonable.Err)
	}
	return nil
}

func CoverAllError(err error) *Error {
	return &Error{
		Type: User,
		Err:  err,
		Help: `Error: ` + err.Error() + `

We don't have a specific help message for the error above.

Check the stookd logs for the request that failed; they include the
repository and target involved.
`,
	}
}
