package k8s

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/errors"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/rs/zerolog/log"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"
)

// Exec opens an interactive shell in a pod container over SPDY
func (b *Backend) Exec(ctx context.Context, ref resources.Ref, opts resources.ExecOptions) (resources.Session, error) {
	c, err := b.factory.For(ref.Cluster)
	if err != nil {
		return nil, err
	}
	if c.Config == nil {
		return nil, errors.NewUnsupportedError("exec requires a REST config")
	}

	container := opts.Container
	if container == "" {
		pod, err := c.Clientset.CoreV1().Pods(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
		if err != nil {
			return nil, errors.FromKubernetes(fmt.Sprintf("get pod %s", ref.Name), err)
		}
		if len(pod.Spec.Containers) == 0 {
			return nil, errors.NewValidationError(fmt.Sprintf("pod %s has no containers", ref.Name), nil)
		}
		container = pod.Spec.Containers[0].Name
	}

	command := opts.Command
	if len(command) == 0 {
		command = resources.DefaultShell
	}

	req := c.Clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(ref.Name).
		Namespace(ref.Namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: container,
			Command:   command,
			Stdin:     true,
			Stdout:    true,
			Stderr:    !opts.TTY,
			TTY:       opts.TTY,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(c.Config, "POST", req.URL())
	if err != nil {
		return nil, errors.NewConnectionError("failed to create executor", err)
	}

	session := newSPDYSession(ctx)
	go session.run(executor, opts.TTY)
	log.Debug().Str("pod", ref.String()).Str("container", container).Msg("Exec session started")
	return session, nil
}

// spdySession bridges a remotecommand stream to resources.Session
type spdySession struct {
	ctx    context.Context
	cancel context.CancelFunc

	stdinR *io.PipeReader
	stdinW *io.PipeWriter
	outR   *io.PipeReader
	outW   *io.PipeWriter

	sizes chan remotecommand.TerminalSize
	once  sync.Once
}

func newSPDYSession(parent context.Context) *spdySession {
	ctx, cancel := context.WithCancel(parent)
	s := &spdySession{
		ctx:    ctx,
		cancel: cancel,
		sizes:  make(chan remotecommand.TerminalSize, 1),
	}
	s.stdinR, s.stdinW = io.Pipe()
	s.outR, s.outW = io.Pipe()
	return s
}

func (s *spdySession) run(executor remotecommand.Executor, tty bool) {
	opts := remotecommand.StreamOptions{
		Stdin:  s.stdinR,
		Stdout: s.outW,
		Tty:    tty,
	}
	if tty {
		opts.TerminalSizeQueue = s
	} else {
		opts.Stderr = s.outW
	}
	err := executor.StreamWithContext(s.ctx, opts)
	if err != nil && s.ctx.Err() == nil {
		log.Warn().Err(err).Msg("Exec stream ended with error")
		s.outW.CloseWithError(err)
		return
	}
	s.outW.Close()
}

// Next implements remotecommand.TerminalSizeQueue
func (s *spdySession) Next() *remotecommand.TerminalSize {
	select {
	case size := <-s.sizes:
		return &size
	case <-s.ctx.Done():
		return nil
	}
}

func (s *spdySession) Read(p []byte) (int, error) {
	return s.outR.Read(p)
}

func (s *spdySession) Write(p []byte) (int, error) {
	if s.ctx.Err() != nil {
		return 0, errors.New(errors.ErrorConnection, constants.ErrSessionClosed)
	}
	return s.stdinW.Write(p)
}

// Resize replaces any pending size that has not been consumed yet
func (s *spdySession) Resize(cols, rows uint16) error {
	if s.ctx.Err() != nil {
		return errors.New(errors.ErrorConnection, constants.ErrSessionClosed)
	}
	size := remotecommand.TerminalSize{Width: cols, Height: rows}
	for {
		select {
		case s.sizes <- size:
			return nil
		case <-s.ctx.Done():
			return errors.New(errors.ErrorConnection, constants.ErrSessionClosed)
		default:
			select {
			case <-s.sizes:
			default:
			}
		}
	}
}

func (s *spdySession) Close() error {
	s.once.Do(func() {
		s.cancel()
		s.stdinW.Close()
		s.outR.Close()
	})
	return nil
}
