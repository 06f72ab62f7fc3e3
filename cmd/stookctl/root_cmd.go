package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fluxcd/stook/pkg/api"
	transport "github.com/fluxcd/stook/pkg/http"
	"github.com/fluxcd/stook/pkg/http/client"
)

const (
	EnvVariableURL = "STOOK_URL"
)

type rootOpts struct {
	URL     string
	Timeout time.Duration
	API     api.Server
}

func newRoot() *rootOpts {
	return &rootOpts{}
}

var rootLongHelp = strings.TrimSpace(`
stookctl helps you see and poke at what stookd does.

Workflow:
  stookctl health                   # Is stookd up?
  stookctl routes                   # Which repositories trigger which stacks?
  stookctl notify org/app           # Act as though org/app was just pushed.
  stookctl redeploy mystack         # Redeploy a stack through Portainer, directly.
`)

func (opts *rootOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "stookctl",
		Long:              rootLongHelp,
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: opts.PersistentPreRunE,
	}
	cmd.PersistentFlags().StringVarP(&opts.URL, "url", "u", "http://localhost:3000",
		fmt.Sprintf("base URL of stookd; you can also set the environment variable %s", EnvVariableURL))
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 60*time.Second,
		"global command timeout")

	cmd.AddCommand(
		newVersionCommand(),
		newHealth(opts).Command(),
		newRoutes(opts).Command(),
		newNotify(opts).Command(),
		newRedeploy(opts).Command(),
	)

	return cmd
}

func (opts *rootOpts) PersistentPreRunE(cmd *cobra.Command, _ []string) error {
	url := os.Getenv(EnvVariableURL)
	if cmd.Flags().Changed("url") || url == "" {
		url = opts.URL
	}
	opts.API = client.New(&http.Client{Timeout: opts.Timeout}, transport.NewAPIRouter(), url)
	return nil
}
