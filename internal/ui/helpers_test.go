package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/katyella/kconsole/internal/config"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/katyella/kconsole/internal/multicluster"
	"github.com/katyella/kconsole/internal/query"
	"github.com/katyella/kconsole/internal/ui/styles"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T, backend *fake.Backend) *Env {
	t.Helper()
	cache := query.New(query.WithClock(func() time.Time { return testNow }))
	t.Cleanup(cache.Wait)
	return &Env{
		Backend:    backend,
		Cache:      cache,
		Aggregator: multicluster.NewAggregator(backend, 2),
		Styles:     styles.NewStyleManager(styles.NewThemeManager("", constants.DefaultTheme)),
		Keys:       DefaultKeyMap(),
		Config:     config.Config{RequestTimeout: time.Second, PageSize: 20},
		Now:        func() time.Time { return testNow },
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m Modal, text string) Modal {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// exec runs a command that is known not to be a batch or a tick
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	return cmd()
}

func openedModal(t *testing.T, cmd tea.Cmd) Modal {
	t.Helper()
	msg, ok := runCmd(t, cmd).(openModalMsg)
	require.True(t, ok, "expected a modal")
	return msg.modal
}

func testObject(resource, namespace, name string) *unstructured.Unstructured {
	obj := fake.Object(resources.MustLookup(resource), namespace, name)
	obj.SetCreationTimestamp(metav1.NewTime(testNow.Add(-time.Hour)))
	return obj
}
