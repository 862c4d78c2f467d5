package api

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/errors"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

func TestFollowLogsOverWebSocket(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/clusters/prod/namespaces/shop/pods/web-0/logs/ws", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("follow"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_ = conn.WriteJSON(Frame{Type: constants.FrameLog, Data: "starting\n"})
		_ = conn.WriteJSON(Frame{Type: constants.FrameLog, Data: "ready\n"})
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})

	ref := resources.Ref{Cluster: "prod", Type: resources.MustLookup("pods"), Namespace: "shop", Name: "web-0"}
	rc, err := c.Logs(context.Background(), ref, resources.LogOptions{Follow: true})
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "starting\nready\n", string(data))
}

func TestExecSession(t *testing.T) {
	resized := make(chan Frame, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/clusters/prod/namespaces/shop/pods/web-0/exec", r.URL.Path)
		assert.Equal(t, []string{"/bin/sh"}, r.URL.Query()["command"])
		assert.Equal(t, "app", r.URL.Query().Get("container"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for {
			var f Frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			switch f.Type {
			case constants.FrameStdin:
				_ = conn.WriteJSON(Frame{Type: constants.FrameStdout, Data: "echo:" + f.Data})
			case constants.FrameResize:
				resized <- f
			}
		}
	})

	ref := resources.Ref{Cluster: "prod", Type: resources.MustLookup("pods"), Namespace: "shop", Name: "web-0"}
	session, err := c.Exec(context.Background(), ref, resources.ExecOptions{Container: "app"})
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Resize(120, 40))
	select {
	case f := <-resized:
		assert.Equal(t, uint16(120), f.Cols)
		assert.Equal(t, uint16(40), f.Rows)
	case <-time.After(2 * time.Second):
		t.Fatal("resize frame not received")
	}

	_, err = session.Write([]byte("ls\n"))
	require.NoError(t, err)

	line, err := bufio.NewReader(session).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "echo:ls\n", line)
}

func TestSessionRemoteError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_ = conn.WriteJSON(Frame{Type: constants.FrameError, Data: "container not found"})
		time.Sleep(100 * time.Millisecond)
	})

	session, err := c.NodeShell(context.Background(), "prod", "node-1")
	require.NoError(t, err)
	defer session.Close()

	_, err = io.ReadAll(session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container not found")
}

func TestSessionHandshakeDenied(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "exec not allowed"})
	})

	_, err := c.NodeShell(context.Background(), "prod", "node-1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorPermission, errors.TypeOf(err))
}

func TestSessionClosedByContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	session, err := c.NodeShell(ctx, "prod", "node-1")
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool {
		_, err := session.Write([]byte("x"))
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
}
