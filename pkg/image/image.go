package image

import (
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"
)

// Ref represents an image reference as it appears on a running
// container, e.g., in the output of `docker ps`. It may include a
// registry host, and may be pinned by tag, digest, or both.
//
// Examples (stringified):
//   * myrepo
//   * myrepo:latest
//   * registry.local/org/myrepo:v1
//   * localhost:5000/myrepo@sha256:abc...
type Ref struct {
	Domain string
	Image  string
	Tag    string
	Digest digest.Digest
}

// String returns the Ref reassembled, without canonicalising it.
func (r Ref) String() string {
	var host, tag, pin string
	if r.Domain != "" {
		host = r.Domain + "/"
	}
	if r.Tag != "" {
		tag = ":" + r.Tag
	}
	if r.Digest != "" {
		pin = "@" + string(r.Digest)
	}
	return fmt.Sprintf("%s%s%s%s", host, r.Image, tag, pin)
}

// ParseRef splits an image reference into its parts. It never fails:
// references that don't follow the grammar closely still yield
// whatever can be recognised, since the result is used for matching
// rather than for pulling.
//
// A registry host is recognised only when the first path element
// contains a '.' or a ':'. Registries push notifications using the
// repository path without the host, so this is also the rule that
// decides what gets matched against a notification.
func ParseRef(s string) Ref {
	var ref Ref
	if s == "" {
		return ref
	}

	if i := strings.Index(s, "@"); i >= 0 {
		ref.Digest = digest.Digest(s[i+1:])
		s = s[:i]
	}

	// A colon only introduces a tag if it's in the last path element;
	// otherwise it's the port of a registry host.
	if i := strings.LastIndex(s, ":"); i >= 0 && i > strings.LastIndex(s, "/") {
		ref.Tag = s[i+1:]
		s = s[:i]
	}

	if i := strings.Index(s, "/"); i >= 0 {
		if first := s[:i]; strings.ContainsAny(first, ".:") {
			ref.Domain = first
			s = s[i+1:]
		}
	}
	ref.Image = s
	return ref
}

// Repository returns the repository path for an image reference: the
// tag, digest and registry host removed.
func Repository(s string) string {
	return ParseRef(s).Image
}
