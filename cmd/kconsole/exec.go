package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// execCommand splits "POD [-- CMD...]" into the pod and the command to run
func execCommand(args []string) (string, []string) {
	if len(args) > 1 {
		return args[0], args[1:]
	}
	return args[0], resources.DefaultShell
}

func newExecCmd(c *cli) *cobra.Command {
	var (
		namespace string
		cluster   string
		container string
		node      bool
	)
	cmd := &cobra.Command{
		Use:   "exec POD [-- COMMAND [ARGS...]]",
		Short: "Open an interactive shell in a pod or on a node",
		Example: `  # Shell in a pod
  kconsole exec api-7d9c -n shop

  # Run a command in a container
  kconsole exec api-7d9c -c api -- ls /srv

  # Shell on a node
  kconsole exec --node worker-1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := c.backend()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rctx, cancel := c.requestContext(ctx)
			target, err := resolveCluster(rctx, backend, cluster)
			cancel()
			if err != nil {
				return err
			}

			in, tty := cmd.InOrStdin(), false
			if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				tty = true
			}

			var session resources.Session
			if node {
				session, err = backend.NodeShell(ctx, target, args[0])
			} else {
				if namespace == "" {
					namespace = constants.DefaultNamespace
				}
				pod, command := execCommand(args)
				ref := resources.Ref{Cluster: target, Type: resources.MustLookup("pods"), Namespace: namespace, Name: pod}
				session, err = backend.Exec(ctx, ref, resources.ExecOptions{Container: container, Command: command, TTY: tty})
			}
			if err != nil {
				return err
			}
			defer session.Close()
			return attach(ctx, session, in, cmd.OutOrStdout(), tty)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&namespace, "namespace", "n", "", "Namespace of the pod")
	f.StringVar(&cluster, "cluster", "", "Cluster (defaults to the default cluster)")
	f.StringVarP(&container, "container", "c", "", "Container name")
	f.BoolVar(&node, "node", false, "Treat the argument as a node name and open a node shell")
	return cmd
}

// attach connects the session to the terminal until the remote side ends.
// A terminal stdin is switched to raw mode for the duration.
func attach(ctx context.Context, session resources.Session, in io.Reader, out io.Writer, tty bool) error {
	if tty {
		fd := int(in.(*os.File).Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer func() {
			if err := term.Restore(fd, state); err != nil {
				log.Warn().Err(err).Msg("Terminal restore failed")
			}
		}()
		if cols, rows, err := term.GetSize(fd); err == nil {
			if err := session.Resize(uint16(cols), uint16(rows)); err != nil {
				log.Debug().Err(err).Msg("Initial resize failed")
			}
		}
	}

	go func() {
		if _, err := io.Copy(session, in); err != nil {
			log.Debug().Err(err).Msg("Stdin copy ended")
		}
	}()

	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(out, session)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
			return nil
		}
		return err
	}
}
