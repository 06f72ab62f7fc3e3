package dispatch

import (
	"github.com/ryanuber/go-glob"
)

// Includer decides whether pushes to a repository are acted on at
// all, before any routing is done.
type Includer interface {
	IsIncluded(repository string) bool
}

type IncluderFunc func(string) bool

func (f IncluderFunc) IsIncluded(s string) bool {
	return f(s)
}

var AlwaysInclude = IncluderFunc(func(string) bool { return true })

// ExcludeIncludeGlob is an Includer that uses glob patterns against
// the repository name.
type ExcludeIncludeGlob struct {
	Include []string
	Exclude []string
}

// IsIncluded implements Includer using the logic:
//  - if the repository matches any exclude pattern, don't include it
//  - otherwise, if there are no include patterns, include it
//  - otherwise, include it only if it matches an include pattern.
func (ei ExcludeIncludeGlob) IsIncluded(repository string) bool {
	for _, ex := range ei.Exclude {
		if glob.Glob(ex, repository) {
			return false
		}
	}
	if len(ei.Include) == 0 {
		return true
	}
	for _, in := range ei.Include {
		if glob.Glob(in, repository) {
			return true
		}
	}
	return false
}
