package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		line string
		want format.Level
	}{
		{"ERROR connection refused", format.LevelError},
		{"panic: runtime error", format.LevelError},
		{"level=warn msg=slow", format.LevelWarning},
		{"DEBUG cache hit", format.LevelMuted},
		{"listening on :8080", format.LevelInfo},
		{"processed errand queue", format.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, logLevel(tt.line))
		})
	}
}

func TestColorizeLogLineKeepsText(t *testing.T) {
	env := newTestEnv(t, fake.NewBackend("prod"))
	line := "2025-06-01T12:00:00Z ERROR boom"
	assert.Contains(t, colorizeLogLine(env.Styles.GetLogStyles(), line), "boom")
}

// drain feeds the view until the stream ends
func drainLogs(t *testing.T, v *LogView) {
	t.Helper()
	_, cmd := v.Update(runCmd(t, v.Init()))
	for i := 0; cmd != nil && i < 100000; i++ {
		_, cmd = v.Update(runCmd(t, cmd))
	}
	require.True(t, v.ended)
}

func TestLogViewStreamsLines(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.LogText["api"] = "starting\nERROR failed to bind\nready\n"
	v := NewLogView(newTestEnv(t, backend), podRef("prod", "shop", "api"), "app")
	v.SetSize(100, 20)

	drainLogs(t, v)

	assert.Equal(t, []string{"starting", "ERROR failed to bind", "ready"}, v.lines)
	assert.NoError(t, v.err)
	assert.Contains(t, v.View(), "stream ended")
	assert.Equal(t, "logs api/app · prod/shop", v.Title())
}

func TestLogViewCapsLines(t *testing.T) {
	backend := fake.NewBackend("prod")
	var b strings.Builder
	total := constants.MaxLogLines + 50
	for i := range total {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	backend.LogText["api"] = b.String()
	v := NewLogView(newTestEnv(t, backend), podRef("prod", "shop", "api"), "")
	v.SetSize(100, 20)

	drainLogs(t, v)

	require.Len(t, v.lines, constants.MaxLogLines)
	assert.Equal(t, "line 50", v.lines[0])
	assert.Equal(t, 50, v.dropped)
}

func TestLogViewOpenError(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.SetError("logs", fmt.Errorf("container not found"))
	v := NewLogView(newTestEnv(t, backend), podRef("prod", "shop", "api"), "")

	_, cmd := v.Update(runCmd(t, v.Init()))

	assert.Nil(t, cmd)
	assert.Error(t, v.err)
	assert.True(t, v.ended)
}

func TestLogViewTogglesRestartStream(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.LogText["api"] = "one\n"
	v := NewLogView(newTestEnv(t, backend), podRef("prod", "shop", "api"), "")
	drainLogs(t, v)
	gen := v.gen

	_, cmd := v.Update(keyPress("p"))
	require.NotNil(t, cmd)
	assert.True(t, v.opts.Previous)
	assert.False(t, v.opts.Follow)
	assert.Equal(t, gen+1, v.gen)
	assert.Empty(t, v.lines)

	// A chunk from the old stream is dropped
	_, _ = v.Update(logChunkMsg{viewID: v.id, gen: gen, lines: []string{"stale"}})
	assert.Empty(t, v.lines)
}
