package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/ui/commands"
)

// handleMouse scrolls the current view with the wheel and opens resource
// types clicked in the sidebar. Mouse events are ignored under overlays.
func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.modal != nil || a.showHelp || a.view == nil {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return a.forward(tea.KeyMsg{Type: tea.KeyUp})
	case tea.MouseButtonWheelDown:
		return a.forward(tea.KeyMsg{Type: tea.KeyDown})
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		if e, ok := a.sidebarAt(msg.X, msg.Y); ok {
			return a.run(&commands.Command{Type: commands.CommandTypeResource, Resource: *e.rt})
		}
	}
	return nil
}

// sidebarAt maps screen coordinates to a sidebar resource line
func (a *App) sidebarAt(x, y int) (sidebarEntry, bool) {
	if !a.sidebarVisible() || x >= constants.SidebarWidth {
		return sidebarEntry{}, false
	}
	row := y - constants.HeaderHeight
	if row < 0 || row >= a.bodyHeight() {
		return sidebarEntry{}, false
	}
	entries := sidebarEntries()
	if row >= len(entries) || entries[row].heading() {
		return sidebarEntry{}, false
	}
	return entries[row], true
}
