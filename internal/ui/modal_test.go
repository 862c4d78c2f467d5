package ui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmModal(t *testing.T) {
	env := newTestEnv(t, fake.NewBackend("prod"))
	confirmed := func() tea.Msg { return "confirmed" }

	tests := []struct {
		key      string
		wantOpen bool
		wantCmd  bool
	}{
		{"y", false, true},
		{"enter", false, true},
		{"n", false, false},
		{"esc", false, false},
		{"x", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := NewConfirmModal(env.Styles, "Delete pod", "Delete pod api?", confirmed)
			next, cmd := m.Update(keyPress(tt.key))
			assert.Equal(t, tt.wantOpen, next != nil)
			if tt.wantCmd {
				assert.Equal(t, "confirmed", runCmd(t, cmd))
			} else {
				assert.Nil(t, cmd)
			}
		})
	}
}

func TestConfirmModalView(t *testing.T) {
	env := newTestEnv(t, fake.NewBackend("prod"))
	out := NewConfirmModal(env.Styles, "Delete pod", "Delete pod api?", nil).View()
	assert.Contains(t, out, "Delete pod api?")
	assert.Contains(t, out, "y confirm")
}

func TestInputModalValidates(t *testing.T) {
	env := newTestEnv(t, fake.NewBackend("prod"))
	var submitted string
	m := Modal(NewInputModal(env.Styles, "Namespace", "name", "", requireValue, func(s string) tea.Cmd {
		submitted = s
		return func() tea.Msg { return s }
	}))

	next, cmd := m.Update(keyPress("enter"))
	require.NotNil(t, next)
	assert.Nil(t, cmd)
	assert.Contains(t, next.View(), "a value is required")

	next = typeText(next, "  shop ")
	done, cmd := next.Update(keyPress("enter"))
	assert.Nil(t, done)
	assert.Equal(t, "shop", runCmd(t, cmd))
	assert.Equal(t, "shop", submitted)
}

func TestInputModalCancel(t *testing.T) {
	env := newTestEnv(t, fake.NewBackend("prod"))
	m := NewInputModal(env.Styles, "Namespace", "", "shop", nil, func(string) tea.Cmd {
		t.Fatal("submit must not run")
		return nil
	})
	next, cmd := m.Update(keyPress("esc"))
	assert.Nil(t, next)
	assert.Nil(t, cmd)
}

func TestEditorModalSaveError(t *testing.T) {
	env := newTestEnv(t, fake.NewBackend("prod"))
	attempts := 0
	save := func(text string) (tea.Cmd, error) {
		attempts++
		if attempts == 1 {
			return nil, fmt.Errorf("yaml: line 1: did not find expected key")
		}
		return func() tea.Msg { return text }, nil
	}
	m := NewEditorModal(env.Styles, env.Keys, "Edit", "a: 1", save)

	next, cmd := m.Update(keyPress("ctrl+s"))
	require.NotNil(t, next)
	assert.Nil(t, cmd)
	assert.Error(t, m.Err())
	assert.Contains(t, next.View(), "did not find expected key")

	next, cmd = next.Update(keyPress("ctrl+s"))
	assert.Nil(t, next)
	assert.Equal(t, "a: 1", runCmd(t, cmd))
}
