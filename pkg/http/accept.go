package http

import (
	"net/http"
	"strings"

	"github.com/golang/gddo/httputil/header"
)

// negotiateContentType picks, from the content types we can produce
// (in order of preference), the one rated highest by the request's
// Accept header. Without an Accept header you get the first
// preference; if nothing acceptable is on offer, "".
func negotiateContentType(r *http.Request, offers []string) string {
	specs := header.ParseAccept(r.Header, "Accept")
	if len(specs) == 0 {
		return offers[0]
	}

	var best string
	var bestQ float64
	for _, offer := range offers {
		for _, spec := range specs {
			if spec.Q > bestQ && acceptable(spec.Value, offer) {
				best, bestQ = offer, spec.Q
			}
		}
	}
	return best
}

// acceptable reports whether the media range from an Accept header
// (e.g., "text/*") covers the content type offered.
func acceptable(mediaRange, offer string) bool {
	switch {
	case mediaRange == offer, mediaRange == "*/*":
		return true
	case strings.HasSuffix(mediaRange, "/*"):
		return strings.HasPrefix(offer, strings.TrimSuffix(mediaRange, "*"))
	}
	return false
}
