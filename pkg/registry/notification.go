package registry

import (
	"encoding/json"
	"io"

	"github.com/docker/distribution/notifications"
	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

const (
	// PushAction is the event action a registry uses when a manifest
	// (i.e., an image) has been pushed.
	PushAction = notifications.EventActionPush

	// MediaType is what registries send as the Content-Type of a
	// notification. We don't insist on it, since plenty of proxies and
	// test clients just say application/json.
	MediaType = notifications.EventsMediaType
)

var (
	ErrNoEvents      = errors.New(`notification has no "events" field`)
	ErrTrailingInput = errors.New("unexpected input after notification")
)

// Notification is a batch of events, as sent by a registry's
// notification endpoint. Events are kept in the order they were
// received; that is the order in which they are acted upon.
type Notification struct {
	Events []Event `json:"events"`
}

// Event is a single registry event. Only a handful of the fields a
// registry sends are of interest here.
type Event struct {
	ID     string `json:"id,omitempty"`
	Action string `json:"action"`
	Target Target `json:"target"`
}

// Target describes what an event happened to.
type Target struct {
	MediaType  string        `json:"mediaType,omitempty"`
	Digest     digest.Digest `json:"digest,omitempty"`
	Repository string        `json:"repository"`
	URL        string        `json:"url,omitempty"`
	// Tag is absent (or null) for pushes by digest.
	Tag string `json:"tag,omitempty"`
}

// ParseNotification decodes a notification from a request body. The
// body must hold exactly one JSON object, and every event in it must
// name a repository.
func ParseNotification(r io.Reader) (Notification, error) {
	var n Notification
	dec := json.NewDecoder(r)
	if err := dec.Decode(&n); err != nil {
		return Notification{}, errors.Wrap(err, "decoding registry notification")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = ErrTrailingInput
		}
		return Notification{}, errors.Wrap(err, "decoding registry notification")
	}
	if n.Events == nil {
		return Notification{}, ErrNoEvents
	}
	for i, e := range n.Events {
		if e.Target.Repository == "" {
			return Notification{}, errors.Errorf("event %d (%q) has no target repository", i, e.Action)
		}
	}
	return n, nil
}

// Pushes returns the push events, in the order given.
func (n Notification) Pushes() []Event {
	var pushes []Event
	for _, e := range n.Events {
		if e.Action == PushAction {
			pushes = append(pushes, e)
		}
	}
	return pushes
}

// PushRepositories returns the repository of each push event, in the
// order given. A repository pushed more than once appears more than
// once.
func (n Notification) PushRepositories() []string {
	var repos []string
	for _, e := range n.Pushes() {
		repos = append(repos, e.Target.Repository)
	}
	return repos
}
