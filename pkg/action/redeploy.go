package action

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	stookerr "github.com/fluxcd/stook/pkg/errors"
	"github.com/fluxcd/stook/pkg/http/httperror"
	"github.com/fluxcd/stook/pkg/portainer"
)

// Redeployer redeploys a Portainer stack, by name, with its current
// file and environment, pulling images anew. It takes three calls:
// find the stack, fetch its file, then update it. Each step needs
// the one before to have succeeded, and nothing is undone if a later
// step fails.
type Redeployer struct {
	api    portainer.API
	logger log.Logger
}

var _ Executor = &Redeployer{}

func NewRedeployer(api portainer.API, logger log.Logger) *Redeployer {
	return &Redeployer{api: api, logger: logger}
}

func (r *Redeployer) Execute(ctx context.Context, stackName string) error {
	logger := log.With(r.logger, "stack", stackName)
	logger.Log("info", "redeploying stack")

	stacks, err := r.api.ListStacks(ctx)
	if err != nil {
		var apiErr *httperror.APIError
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			level.Error(logger).Log("err", "Portainer refused the API key; check PORTAINER_API_KEY", "status", apiErr.Status)
		}
		return errors.Wrap(err, "listing stacks")
	}
	stack, ok := findStack(stacks, stackName)
	if !ok {
		return StackNotFound(stackName)
	}

	content, err := r.api.StackFile(ctx, stack.ID)
	if err != nil {
		return errors.Wrapf(err, "fetching file for stack %d", stack.ID)
	}
	if services, err := composeServices(content); err != nil {
		level.Debug(logger).Log("info", "stack file is not readable as compose YAML", "err", err)
	} else {
		level.Debug(logger).Log("info", "fetched stack file", "services", strings.Join(services, ","))
	}

	env := stack.Env
	if env == nil {
		env = []json.RawMessage{}
	}
	err = r.api.UpdateStack(ctx, stack.ID, stack.EndpointID, portainer.StackUpdate{
		Env:              env,
		PullImage:        true,
		Prune:            true,
		StackFileContent: content,
	})
	if err != nil {
		return errors.Wrapf(err, "updating stack %d", stack.ID)
	}

	logger.Log("info", "stack redeployed", "id", stack.ID, "endpoint", stack.EndpointID)
	return nil
}

func StackNotFound(name string) *stookerr.Error {
	return &stookerr.Error{
		Type: stookerr.Missing,
		Help: `No stack named "` + name + `" is known to Portainer.

The name comes from the compose project (or swarm stack) label of a
running container. Check the stack has the same name in Portainer,
and that the API key can see it.
`,
		Err: errors.Errorf("stack not found: %s", name),
	}
}

// Names are compared exactly; if Portainer has more than one stack
// with the name, the first listed is used.
func findStack(stacks []portainer.Stack, name string) (portainer.Stack, bool) {
	for _, s := range stacks {
		if s.Name == name {
			return s, true
		}
	}
	return portainer.Stack{}, false
}

type composeFile struct {
	Services map[string]interface{} `yaml:"services"`
}

// composeServices gives the names of the services in a compose file,
// sorted.
func composeServices(content string) ([]string, error) {
	var f composeFile
	if err := yaml.Unmarshal([]byte(content), &f); err != nil {
		return nil, err
	}
	var names []string
	for name := range f.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
