package main

import (
	"fmt"
	"strings"

	"github.com/IvanTurko/carsite-client-go/rest"
	"github.com/spf13/cobra"
)

func newGetCmd(flags *globalFlags) *cobra.Command {
	var query []string
	cmd := &cobra.Command{
		Use:   "get PATH",
		Short: "GET an arbitrary path and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseQuery(query)
			if err != nil {
				return err
			}

			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			v, err := rest.Get[any](cmd.Context(), a.svc, args[0], params, nil)
			if err != nil {
				return err
			}
			return a.print(v)
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter as key=value, repeatable")
	return cmd
}

// parseQuery keeps flag order so the URL is deterministic.
func parseQuery(pairs []string) (rest.Params, error) {
	var params rest.Params
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("query %q is not in key=value form", pair)
		}
		params = params.Add(k, v)
	}
	return params, nil
}
