package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type healthOpts struct {
	*rootOpts
}

func newHealth(parent *rootOpts) *healthOpts {
	return &healthOpts{rootOpts: parent}
}

func (opts *healthOpts) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that stookd is up.",
		RunE:  opts.RunE,
	}
}

func (opts *healthOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return errorWantedNoArgs
	}
	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	if err := opts.API.Health(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}
