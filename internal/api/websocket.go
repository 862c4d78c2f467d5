package api

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/errors"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/rs/zerolog/log"
)

// Frame is one JSON message on a shell or log WebSocket
type Frame struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	Cols uint16 `json:"cols,omitempty"`
	Rows uint16 `json:"rows,omitempty"`
	Code int    `json:"code,omitempty"`
}

// Exec opens an interactive shell in a pod container
func (c *Client) Exec(ctx context.Context, ref resources.Ref, opts resources.ExecOptions) (resources.Session, error) {
	q := url.Values{}
	if opts.Container != "" {
		q.Set("container", opts.Container)
	}
	command := opts.Command
	if len(command) == 0 {
		command = resources.DefaultShell
	}
	for _, arg := range command {
		q.Add("command", arg)
	}
	q.Set("tty", strconv.FormatBool(opts.TTY))
	return c.dialSession(ctx, itemPath(ref)+"/exec", q)
}

// NodeShell opens a shell on a node
func (c *Client) NodeShell(ctx context.Context, cluster, node string) (resources.Session, error) {
	return c.dialSession(ctx, nodePath(cluster, node)+"/shell", nil)
}

func (c *Client) wsURL(path string, query url.Values) string {
	u := c.endpoint(path, query)
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

func (c *Client) dial(ctx context.Context, path string, query url.Values) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: constants.WebSocketHandshakeTimeout,
	}
	if c.insecure {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via KCONSOLE_INSECURE_SKIP_VERIFY
	}
	header := http.Header{}
	if c.token != "" {
		header.Set(constants.HeaderAuthorization, constants.BearerPrefix+c.token)
	}

	conn, resp, err := dialer.DialContext(ctx, c.wsURL(path, query), header)
	if err != nil {
		if resp != nil {
			defer func() { _ = resp.Body.Close() }()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes))
			return nil, responseError(resp.StatusCode, body)
		}
		return nil, transportError("WS", path, err)
	}
	return conn, nil
}

func (c *Client) dialSession(ctx context.Context, path string, query url.Values) (*wsSession, error) {
	conn, err := c.dial(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return newWSSession(ctx, conn), nil
}

func (c *Client) dialStream(ctx context.Context, path string, query url.Values) (io.ReadCloser, error) {
	return c.dialSession(ctx, path, query)
}

// wsSession adapts a frame based WebSocket to an io.ReadWriteCloser. Output
// frames are copied into a pipe by a single reader goroutine.
type wsSession struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	pr        *io.PipeReader
	pw        *io.PipeWriter
	done      chan struct{}
	closeOnce sync.Once
}

func newWSSession(ctx context.Context, conn *websocket.Conn) *wsSession {
	pr, pw := io.Pipe()
	s := &wsSession{conn: conn, pr: pr, pw: pw, done: make(chan struct{})}
	go s.readLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()
	return s
}

func (s *wsSession) readLoop() {
	for {
		var frame Frame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				_ = s.pw.Close()
			} else {
				_ = s.pw.CloseWithError(errors.NewConnectionError("session stream", err))
			}
			return
		}

		switch frame.Type {
		case constants.FrameStdout, constants.FrameStderr, constants.FrameLog:
			if _, err := s.pw.Write([]byte(frame.Data)); err != nil {
				return
			}
		case constants.FrameError:
			_ = s.pw.CloseWithError(errors.Wrap(errors.ErrorInternal, "remote session error", stringError(frame.Data)))
			return
		case constants.FrameExit:
			log.Debug().Int("code", frame.Code).Msg("remote session exited")
			_ = s.pw.Close()
			return
		default:
			log.Debug().Str("type", frame.Type).Msg("ignoring unknown session frame")
		}
	}
}

func (s *wsSession) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

func (s *wsSession) Write(p []byte) (int, error) {
	if err := s.send(Frame{Type: constants.FrameStdin, Data: string(p)}); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsSession) Resize(cols, rows uint16) error {
	return s.send(Frame{Type: constants.FrameResize, Cols: cols, Rows: rows})
}

func (s *wsSession) send(frame Frame) error {
	select {
	case <-s.done:
		return errors.NewConnectionError(constants.ErrSessionClosed, nil)
	default:
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(frame); err != nil {
		return errors.NewConnectionError("write session frame", err)
	}
	return nil
}

func (s *wsSession) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
		_ = s.pr.Close()
	})
	return nil
}

type stringError string

func (e stringError) Error() string { return string(e) }
