package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncluderFunc(t *testing.T) {
	in := IncluderFunc(func(s string) bool {
		return s == "included"
	})
	assert.True(t, in.IsIncluded("included"))
	assert.False(t, in.IsIncluded("excluded"))
}

func TestExcludeInclude(t *testing.T) {
	test := func(ei Includer, s string, expected bool) {
		if expected {
			t.Run("includes "+s, func(t *testing.T) {
				assert.True(t, ei.IsIncluded(s))
			})
		} else {
			t.Run("excludes "+s, func(t *testing.T) {
				assert.False(t, ei.IsIncluded(s))
			})
		}
	}

	// Only exclude stuff
	onlyExclude := ExcludeIncludeGlob{
		Exclude: []string{"sandbox/*", "*-ci"},
	}
	for _, repo := range []string{"myrepo", "org/app", "sandboxed/app", "ci-runner"} {
		test(onlyExclude, repo, true)
	}
	for _, repo := range []string{"sandbox/app", "builder-ci", "org/builder-ci"} {
		test(onlyExclude, repo, false)
	}

	// Explicitly include stuff; excludes still win
	includeToo := ExcludeIncludeGlob{
		Exclude: []string{"org/legacy-*"},
		Include: []string{"org/*", "myrepo"},
	}
	for _, repo := range []string{"org/app", "myrepo"} {
		test(includeToo, repo, true)
	}
	for _, repo := range []string{"org/legacy-app", "myrepo2", "other/app"} {
		test(includeToo, repo, false)
	}
}
