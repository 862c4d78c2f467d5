package main

import (
	"io"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/spf13/cobra"
)

func newLogsCmd(c *cli) *cobra.Command {
	var (
		namespace string
		cluster   string
		since     time.Duration
		opts      = resources.LogOptions{TailLines: constants.DefaultPodLogTailLines}
	)
	cmd := &cobra.Command{
		Use:   "logs POD",
		Short: "Print the logs of a pod container",
		Example: `  # Follow the api container
  kconsole logs api-7d9c -c api -f

  # Logs of the previous instance
  kconsole logs api-7d9c --previous`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := c.backend()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if !opts.Follow {
				var cancel func()
				ctx, cancel = c.requestContext(ctx)
				defer cancel()
			}
			target, err := resolveCluster(ctx, backend, cluster)
			if err != nil {
				return err
			}
			if namespace == "" {
				namespace = constants.DefaultNamespace
			}
			opts.SinceSeconds = int64(since.Seconds())

			ref := resources.Ref{Cluster: target, Type: resources.MustLookup("pods"), Namespace: namespace, Name: args[0]}
			body, err := backend.Logs(ctx, ref, opts)
			if err != nil {
				return err
			}
			defer body.Close()
			_, err = io.Copy(cmd.OutOrStdout(), body)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&namespace, "namespace", "n", "", "Namespace of the pod")
	f.StringVar(&cluster, "cluster", "", "Cluster of the pod (defaults to the default cluster)")
	f.StringVarP(&opts.Container, "container", "c", "", "Container name")
	f.BoolVarP(&opts.Follow, "follow", "f", false, "Stream new lines")
	f.BoolVarP(&opts.Previous, "previous", "p", false, "Logs of the previous container instance")
	f.BoolVar(&opts.Timestamps, "timestamps", false, "Prefix lines with timestamps")
	f.Int64Var(&opts.TailLines, "tail", constants.DefaultPodLogTailLines, "Lines from the end to show, 0 for all")
	f.DurationVar(&since, "since", 0, "Only lines newer than this duration")
	return cmd
}
