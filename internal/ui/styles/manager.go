package styles

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/katyella/kconsole/internal/format"
)

// StyleManager hands out themed styles and notifies listeners on theme change
type StyleManager struct {
	themeManager *ThemeManager
	mu           sync.RWMutex
	listeners    []func()
}

// NewStyleManager wraps a theme manager
func NewStyleManager(tm *ThemeManager) *StyleManager {
	return &StyleManager{themeManager: tm}
}

// GetTheme returns the current theme
func (sm *StyleManager) GetTheme() *Theme {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.themeManager.GetCurrentTheme()
}

// SetTheme changes the current theme and notifies listeners
func (sm *StyleManager) SetTheme(themeName string) error {
	sm.mu.Lock()
	err := sm.themeManager.SetTheme(themeName)
	sm.mu.Unlock()

	if err == nil {
		sm.notifyListeners()
	}
	return err
}

// ToggleTheme switches between light and dark themes. The switch happens even
// when saving the preference fails.
func (sm *StyleManager) ToggleTheme() error {
	sm.mu.Lock()
	err := sm.themeManager.ToggleTheme()
	sm.mu.Unlock()

	sm.notifyListeners()
	return err
}

// AddThemeChangeListener adds a callback for theme changes
func (sm *StyleManager) AddThemeChangeListener(listener func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.listeners = append(sm.listeners, listener)
}

func (sm *StyleManager) notifyListeners() {
	sm.mu.RLock()
	listeners := make([]func(), len(sm.listeners))
	copy(listeners, sm.listeners)
	sm.mu.RUnlock()

	for _, listener := range listeners {
		listener()
	}
}

// Status colors a status string by its level
func (sm *StyleManager) Status(status string) string {
	return CreateStatusStyle(sm.GetTheme(), format.StatusLevel(status)).Render(status)
}

// HeaderStyles styles the top bar
type HeaderStyles struct {
	Title        lipgloss.Style
	Cluster      lipgloss.Style
	Namespace    lipgloss.Style
	Connected    lipgloss.Style
	Disconnected lipgloss.Style
	Muted        lipgloss.Style
}

func (sm *StyleManager) GetHeaderStyles() HeaderStyles {
	theme := sm.GetTheme()

	return HeaderStyles{
		Title:        CreatePrimaryStyle(theme),
		Cluster:      CreateStatusStyle(theme, format.LevelSuccess).Bold(true),
		Namespace:    CreateSecondaryStyle(theme),
		Connected:    CreateStatusStyle(theme, format.LevelSuccess),
		Disconnected: CreateStatusStyle(theme, format.LevelError),
		Muted:        CreateMutedStyle(theme),
	}
}

// TabStyles styles detail tabs
type TabStyles struct {
	ActiveTab    lipgloss.Style
	InactiveTab  lipgloss.Style
	TabSeparator lipgloss.Style
}

func (sm *StyleManager) GetTabStyles() TabStyles {
	theme := sm.GetTheme()

	return TabStyles{
		ActiveTab: lipgloss.NewStyle().
			Foreground(theme.AccentForeground).
			Background(theme.Primary).
			Padding(0, 1).
			Bold(true),
		InactiveTab: CreateMutedStyle(theme).
			Padding(0, 1),
		TabSeparator: CreateMutedStyle(theme),
	}
}

// StatusBarStyles styles the bottom bar
type StatusBarStyles struct {
	Container     lipgloss.Style
	KeyHint       lipgloss.Style
	ModeIndicator lipgloss.Style
}

func (sm *StyleManager) GetStatusBarStyles() StatusBarStyles {
	theme := sm.GetTheme()

	return StatusBarStyles{
		Container:     lipgloss.NewStyle().Foreground(theme.MutedForeground),
		KeyHint:       CreateMutedStyle(theme),
		ModeIndicator: CreatePrimaryStyle(theme),
	}
}

// LogStyles styles log lines by detected level
type LogStyles struct {
	TimestampStyle lipgloss.Style
	InfoStyle      lipgloss.Style
	WarnStyle      lipgloss.Style
	ErrorStyle     lipgloss.Style
	DebugStyle     lipgloss.Style
}

func (sm *StyleManager) GetLogStyles() LogStyles {
	theme := sm.GetTheme()

	return LogStyles{
		TimestampStyle: CreateMutedStyle(theme),
		InfoStyle:      CreateBaseStyle(theme),
		WarnStyle:      CreateStatusStyle(theme, format.LevelWarning),
		ErrorStyle:     CreateStatusStyle(theme, format.LevelError),
		DebugStyle:     CreateMutedStyle(theme),
	}
}

// Level picks the line style for a log level
func (ls LogStyles) Level(level format.Level) lipgloss.Style {
	switch level {
	case format.LevelError:
		return ls.ErrorStyle
	case format.LevelWarning:
		return ls.WarnStyle
	case format.LevelMuted:
		return ls.DebugStyle
	}
	return ls.InfoStyle
}

// ListStyles styles tables and the sidebar
type ListStyles struct {
	Item         lipgloss.Style
	SelectedItem lipgloss.Style
	Header       lipgloss.Style
	Category     lipgloss.Style
	Muted        lipgloss.Style
}

func (sm *StyleManager) GetListStyles() ListStyles {
	theme := sm.GetTheme()

	return ListStyles{
		Item:         CreateBaseStyle(theme),
		SelectedItem: CreateSelectedStyle(theme),
		Header: CreatePrimaryStyle(theme).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(theme.Border),
		Category: CreateSecondaryStyle(theme).Bold(true),
		Muted:    CreateMutedStyle(theme),
	}
}

// DialogStyles styles modals and toasts
type DialogStyles struct {
	Container lipgloss.Style
	Title     lipgloss.Style
	Content   lipgloss.Style
	Error     lipgloss.Style
	Hint      lipgloss.Style
}

func (sm *StyleManager) GetDialogStyles() DialogStyles {
	theme := sm.GetTheme()

	return DialogStyles{
		Container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.FocusBorder).
			Padding(1, 2),
		Title: CreatePrimaryStyle(theme).
			MarginBottom(1),
		Content: CreateBaseStyle(theme),
		Error:   CreateStatusStyle(theme, format.LevelError),
		Hint:    CreateMutedStyle(theme),
	}
}

// ToastStyle is the bordered box of a notification at level
func (sm *StyleManager) ToastStyle(level format.Level) lipgloss.Style {
	theme := sm.GetTheme()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(LevelColor(theme, level)).
		Padding(0, 1)
}
