package ui

import (
	"testing"
	"time"

	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierExpiry(t *testing.T) {
	n := NewNotifier(5*time.Second, 3)
	n.Push(format.LevelInfo, "first", "", testNow)
	n.Push(format.LevelError, "second", "boom", testNow.Add(2*time.Second))

	require.Len(t, n.Visible(testNow.Add(time.Second)), 2)

	later := testNow.Add(6 * time.Second)
	visible := n.Visible(later)
	require.Len(t, visible, 1)
	assert.Equal(t, "second", visible[0].Title)

	assert.Equal(t, 1, n.Prune(later))
	assert.Equal(t, 1, n.Len())
}

func TestNotifierShowsNewest(t *testing.T) {
	n := NewNotifier(time.Minute, 2)
	for _, title := range []string{"a", "b", "c"} {
		n.Push(format.LevelInfo, title, "", testNow)
	}
	visible := n.Visible(testNow)
	require.Len(t, visible, 2)
	assert.Equal(t, "b", visible[0].Title)
	assert.Equal(t, "c", visible[1].Title)

	n.Dismiss()
	assert.Equal(t, 2, n.Len())
}

func TestNotifierDefaults(t *testing.T) {
	n := NewNotifier(0, 0)
	toast := n.Push(format.LevelWarning, "w", "", testNow)
	assert.True(t, toast.Expires.After(testNow))
	assert.Equal(t, 1, toast.ID)
}

func TestRenderToasts(t *testing.T) {
	env := newTestEnv(t, fake.NewBackend("prod"))
	out := renderToasts(env.Styles, []Toast{{Level: format.LevelError, Title: "Delete failed", Message: "forbidden"}})
	assert.Contains(t, out, "Delete failed")
	assert.Contains(t, out, "forbidden")
	assert.Empty(t, renderToasts(env.Styles, nil))
}
