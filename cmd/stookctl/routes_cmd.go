package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"
)

type routesOpts struct {
	*rootOpts
	outputFormat string
}

func newRoutes(parent *rootOpts) *routesOpts {
	return &routesOpts{rootOpts: parent}
}

func (opts *routesOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the repositories stookd will act on, and their targets.",
		Long: `List the routing table as stookd last built it from container labels.
This does not make stookd list containers again.`,
		RunE: opts.RunE,
	}
	cmd.Flags().StringVarP(&opts.outputFormat, "output-format", "o", outputFormatTable, "output format (one of table, yaml, json)")
	return cmd
}

func (opts *routesOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return errorWantedNoArgs
	}
	switch opts.outputFormat {
	case outputFormatTable, outputFormatJSON, outputFormatYAML:
	default:
		return errorInvalidOutputFormat
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	table, err := opts.API.Routes(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch opts.outputFormat {
	case outputFormatJSON:
		bytes, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(bytes))
	case outputFormatYAML:
		// Goes via JSON, so the field names are the same as for -o json
		bytes, err := yaml.Marshal(table)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(bytes))
	default:
		repos := make([]string, 0, len(table.Routes))
		for repo := range table.Routes {
			repos = append(repos, repo)
		}
		sort.Strings(repos)

		w := newTabwriter(out)
		fmt.Fprintf(w, "REPOSITORY\tTARGET\n")
		for _, repo := range repos {
			fmt.Fprintf(w, "%s\t%s\n", repo, table.Routes[repo])
		}
		w.Flush()
		if table.RefreshedAt == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "(container labels have not been listed yet)")
		}
	}
	return nil
}
