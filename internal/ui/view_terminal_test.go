package ui

import (
	"testing"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalWrite(t *testing.T) {
	v := NewExecView(newTestEnv(t, fake.NewBackend("prod")), podRef("prod", "shop", "api"), "")

	v.write("total 0\r\ndrwx")
	v.write("r-xr-x bin\n$ ")

	assert.Equal(t, []string{"total 0", "drwxr-xr-x bin"}, v.lines)
	assert.Equal(t, "$ ", v.partial)
}

func TestTerminalWriteCarriageReturn(t *testing.T) {
	v := NewExecView(newTestEnv(t, fake.NewBackend("prod")), podRef("prod", "shop", "api"), "")
	v.write("10%\r50%\r100%\n")
	assert.Equal(t, []string{"100%"}, v.lines)
}

func TestTerminalWriteCapsLines(t *testing.T) {
	v := NewExecView(newTestEnv(t, fake.NewBackend("prod")), podRef("prod", "shop", "api"), "")
	for range constants.MaxTerminalLines + 10 {
		v.write("x\n")
	}
	assert.Len(t, v.lines, constants.MaxTerminalLines)
}

func TestTerminalSession(t *testing.T) {
	backend := fake.NewBackend("prod")
	v := NewExecView(newTestEnv(t, backend), podRef("prod", "shop", "api"), "")
	v.SetSize(100, 30)

	_, cmd := v.Update(sessionOpenedMsgFrom(t, v))
	require.NotNil(t, cmd)
	session := backend.Sessions["api"]
	require.NotNil(t, session)

	go func() { _ = session.Emit("\x1b[32mhello\x1b[0m\n") }()
	_, _ = v.Update(runCmd(t, v.waitOutput()))
	assert.Equal(t, []string{"hello"}, v.lines)

	for _, r := range "ls" {
		_, _ = v.Update(keyPress(string(r)))
	}
	_, cmd = v.Update(keyPress("enter"))
	runCmd(t, cmd)
	assert.Equal(t, "ls\n", session.Input())

	_, cmd = v.Update(keyPress("ctrl+d"))
	assert.IsType(t, backMsg{}, runCmd(t, cmd))
	assert.True(t, session.Closed())
	assert.False(t, v.Capturing())
}

func TestNodeShellTitle(t *testing.T) {
	v := NewNodeShellView(newTestEnv(t, fake.NewBackend("prod")), "prod", "n1")
	assert.Equal(t, "shell node/n1 · prod", v.Title())
	assert.True(t, v.node)
}

// sessionOpenedMsgFrom opens the session the way Init does, without the
// cursor blink command
func sessionOpenedMsgFrom(t *testing.T, v *TerminalView) sessionOpenedMsg {
	t.Helper()
	s, err := v.env.Backend.Exec(t.Context(), v.ref, v.execOptions())
	require.NoError(t, err)
	return sessionOpenedMsg{viewID: v.id, session: s}
}
