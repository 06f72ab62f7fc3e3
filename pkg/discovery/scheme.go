package discovery

import (
	"github.com/docker/docker/api/types"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/fluxcd/stook/pkg/image"
)

const (
	// TargetLabel holds the target itself, e.g., the webhook URL to
	// call when the container's image is pushed.
	TargetLabel = "stook.webhook"
	// ImageLabel names the repository explicitly, for when the image
	// reference the container runs doesn't say it (e.g., it was
	// pulled through a mirror).
	ImageLabel = "stook.image"
	// MarkerLabel opts a container in, with the repository worked out
	// from the container's image reference.
	MarkerLabel = "stook"

	ComposeProjectLabel = "com.docker.compose.project"
	StackNamespaceLabel = "com.docker.stack.namespace"
)

// Scheme says which container labels make up a route.
//
// The target is taken from TargetLabel if that is set on a container,
// and otherwise from the first of GroupLabels that is. A container
// yielding no target is skipped.
//
// The repository is taken from ImageLabel if that is set, and
// otherwise derived from the container's image reference, provided
// the container carries MarkerLabel or TargetLabel. A container
// yielding no repository is skipped.
type Scheme struct {
	TargetLabel string
	ImageLabel  string
	MarkerLabel string
	GroupLabels []string
}

// ForwardScheme routes to the URL in each container's TargetLabel.
func ForwardScheme() Scheme {
	return Scheme{
		TargetLabel: TargetLabel,
		ImageLabel:  ImageLabel,
		MarkerLabel: MarkerLabel,
	}
}

// RedeployScheme routes to the stack (compose project or swarm stack)
// each labelled container belongs to.
func RedeployScheme() Scheme {
	return Scheme{
		ImageLabel:  ImageLabel,
		MarkerLabel: MarkerLabel,
		GroupLabels: []string{ComposeProjectLabel, StackNamespaceLabel},
	}
}

// Route works out the route a single container contributes, if any.
func (s Scheme) Route(c types.Container) (repository, target string, ok bool) {
	labels := c.Labels
	if labels == nil {
		return "", "", false
	}

	target = s.get(labels, s.TargetLabel)
	for _, g := range s.GroupLabels {
		if target != "" {
			break
		}
		target = s.get(labels, g)
	}
	if target == "" {
		return "", "", false
	}

	repository = s.get(labels, s.ImageLabel)
	if repository == "" && (s.has(labels, s.MarkerLabel) || s.has(labels, s.TargetLabel)) {
		repository = image.Repository(c.Image)
	}
	if repository == "" {
		return "", "", false
	}
	return repository, target, true
}

// Build makes a routing table from one listing of containers. Where
// more than one container claims a repository, the last one listed
// wins.
func (s Scheme) Build(containers []types.Container, logger log.Logger) Routes {
	routes := Routes{}
	for _, c := range containers {
		repo, target, ok := s.Route(c)
		if !ok {
			continue
		}
		if prev, exists := routes[repo]; exists && prev != target {
			level.Warn(logger).Log("info", "repository claimed by more than one target", "repository", repo, "previous", prev, "target", target, "container", c.ID)
		}
		level.Debug(logger).Log("info", "discovered route", "repository", repo, "target", target)
		routes[repo] = target
	}
	return routes
}

func (s Scheme) get(labels map[string]string, key string) string {
	if key == "" {
		return ""
	}
	return labels[key]
}

func (s Scheme) has(labels map[string]string, key string) bool {
	if key == "" {
		return false
	}
	_, ok := labels[key]
	return ok
}
