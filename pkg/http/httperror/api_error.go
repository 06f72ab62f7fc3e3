package httperror

import (
	"fmt"
	"net/http"
)

// APIError is the base error for a non-2xx response from a remote
// API (Portainer, a forward target, or stookd itself). It can be
// retrieved with errors.Cause or errors.As, to look at the status.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (err *APIError) Error() string {
	if err.Body == "" {
		return err.Status
	}
	return fmt.Sprintf("%s (%s)", err.Status, err.Body)
}

// Does this error mean the API service is unavailable?
func (err *APIError) IsUnavailable() bool {
	switch err.StatusCode {
	case 502, 503, 504:
		return true
	}
	return false
}

// IsUnauthorized is true when the credentials were refused; for
// Portainer, that usually means a wrong or revoked API key.
func (err *APIError) IsUnauthorized() bool {
	return err.StatusCode == http.StatusUnauthorized || err.StatusCode == http.StatusForbidden
}

func (err *APIError) IsMissing() bool {
	return err.StatusCode == http.StatusNotFound
}
