package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/multicluster"
)

// navigateMsg opens a route path and records it in history
type navigateMsg struct {
	path string
}

// backMsg returns to the previous route
type backMsg struct{}

// toastMsg queues a notification
type toastMsg struct {
	level   format.Level
	title   string
	message string
}

// errMsg reports a failed backend call
type errMsg struct {
	title string
	err   error
}

// openModalMsg puts a modal on top of the current view
type openModalMsg struct {
	modal Modal
}

// tickMsg drives toast expiry and cache eviction
type tickMsg time.Time

// cacheUpdatedMsg is sent when a background refresh of key completed
type cacheUpdatedMsg struct {
	key string
}

// clusterEventMsg carries a health change from the cluster monitor
type clusterEventMsg struct {
	event multicluster.Event
}

// setThemeMsg switches the theme; an empty name toggles
type setThemeMsg struct {
	name string
}

// Navigate opens a route path
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

// Back returns to the previous route
func Back() tea.Cmd {
	return func() tea.Msg { return backMsg{} }
}

// Notify shows a toast
func Notify(level format.Level, title, message string) tea.Cmd {
	return func() tea.Msg { return toastMsg{level: level, title: title, message: message} }
}

// ReportError shows a failed call as an error toast
func ReportError(title string, err error) tea.Cmd {
	return func() tea.Msg { return errMsg{title: title, err: err} }
}

// OpenModal shows a modal dialog
func OpenModal(m Modal) tea.Cmd {
	return func() tea.Msg { return openModalMsg{modal: m} }
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}
