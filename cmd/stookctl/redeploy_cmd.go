package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/spf13/cobra"

	"github.com/fluxcd/stook/pkg/action"
	"github.com/fluxcd/stook/pkg/portainer"
)

const (
	EnvVariablePortainerURL    = "PORTAINER_URL"
	EnvVariablePortainerAPIKey = "PORTAINER_API_KEY"
)

type redeployOpts struct {
	*rootOpts
	portainerURL string
	apiKey       string
	insecure     bool
}

func newRedeploy(parent *rootOpts) *redeployOpts {
	return &redeployOpts{rootOpts: parent}
}

func (opts *redeployOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redeploy STACK",
		Short: "Redeploy a stack through Portainer, as stookd would.",
		Long: `Redeploy a stack through the Portainer API, with its current file and
environment, pulling images again. This talks to Portainer directly,
not to stookd; it's for checking the Portainer URL and API key work.`,
		Example: `  PORTAINER_API_KEY=ptr_... stookctl redeploy --portainer-url https://portainer.local:9443 mystack`,
		RunE:    opts.RunE,
	}
	cmd.Flags().StringVar(&opts.portainerURL, "portainer-url", "",
		fmt.Sprintf("base URL of the Portainer API; you can also set the environment variable %s", EnvVariablePortainerURL))
	cmd.Flags().StringVar(&opts.apiKey, "portainer-api-key", "",
		fmt.Sprintf("Portainer access token; you can also set the environment variable %s", EnvVariablePortainerAPIKey))
	cmd.Flags().BoolVar(&opts.insecure, "portainer-insecure", false, "do not verify Portainer's TLS certificate")
	return cmd
}

func (opts *redeployOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errorWantedOneStack
	}
	if !cmd.Flags().Changed("portainer-url") {
		if env := os.Getenv(EnvVariablePortainerURL); env != "" {
			opts.portainerURL = env
		}
	}
	if !cmd.Flags().Changed("portainer-api-key") {
		if env := os.Getenv(EnvVariablePortainerAPIKey); env != "" {
			opts.apiKey = env
		}
	}
	if opts.portainerURL == "" {
		return newUsageError("please supply the Portainer URL with --portainer-url or " + EnvVariablePortainerURL)
	}
	if opts.apiKey == "" {
		return newUsageError("please supply a Portainer API key with --portainer-api-key or " + EnvVariablePortainerAPIKey)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(cmd.ErrOrStderr()))
	httpClient := portainer.NewHTTPClient(opts.Timeout, opts.insecure)
	redeployer := action.NewRedeployer(portainer.New(httpClient, opts.portainerURL, opts.apiKey), logger)

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	if err := redeployer.Execute(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "redeployed %s\n", args[0])
	return nil
}
