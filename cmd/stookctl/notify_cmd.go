package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fluxcd/stook/pkg/registry"
)

type notifyOpts struct {
	*rootOpts
	tag string
}

func newNotify(parent *rootOpts) *notifyOpts {
	return &notifyOpts{rootOpts: parent}
}

func (opts *notifyOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify REPOSITORY...",
		Short: "Tell stookd the repositories given were just pushed.",
		Long: `Send stookd a registry notification with a push event for each
repository given, in order, as though a registry had sent it. stookd
acts on it just the same.`,
		Example: `  stookctl notify org/app
  stookctl notify --tag v1.2.0 org/app org/worker`,
		RunE: opts.RunE,
	}
	cmd.Flags().StringVarP(&opts.tag, "tag", "t", "latest", "tag to say was pushed")
	return cmd
}

func (opts *notifyOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errorWantedRepositories
	}

	n := registry.Notification{Events: []registry.Event{}}
	for _, repo := range args {
		n.Events = append(n.Events, registry.Event{
			Action: registry.PushAction,
			Target: registry.Target{
				MediaType:  "application/vnd.docker.distribution.manifest.v2+json",
				Repository: repo,
				Tag:        opts.tag,
			},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	if err := opts.API.Notify(ctx, n); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "notified %d push(es); see stookd's log for what was done\n", len(args))
	return nil
}
