package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/spf13/cobra"
)

func newClustersCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "clusters",
		Aliases: []string{"ctx"},
		Short:   "List the clusters of the data source",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			backend, err := c.backend()
			if err != nil {
				return err
			}
			ctx, cancel := c.requestContext(cmd.Context())
			defer cancel()
			clusters, err := backend.ListClusters(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch output {
			case outputYAML, outputJSON:
				return printData(out, output, clusters)
			case outputName:
				for _, cl := range clusters {
					fmt.Fprintln(out, cl.Name)
				}
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSTATUS\tVERSION\tDEFAULT\tERROR")
			for _, cl := range clusters {
				def := ""
				if cl.Default {
					def = "*"
				}
				status := cl.Status
				if status == "" {
					status = constants.StatusUnknown
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", cl.Name, status, cl.Version, def, cl.Error)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, yaml, json or name")
	return cmd
}
