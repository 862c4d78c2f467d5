package styles

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/format"
	"github.com/rs/zerolog/log"
)

// Theme represents a color theme for the UI
type Theme struct {
	Name string `json:"name"`

	Background lipgloss.Color `json:"background"`
	Foreground lipgloss.Color `json:"foreground"`

	Primary   lipgloss.Color `json:"primary"`
	Secondary lipgloss.Color `json:"secondary"`
	Border    lipgloss.Color `json:"border"`

	// Status colors
	Success lipgloss.Color `json:"success"`
	Warning lipgloss.Color `json:"warning"`
	Error   lipgloss.Color `json:"error"`
	Info    lipgloss.Color `json:"info"`

	AccentForeground lipgloss.Color `json:"accent_foreground"`
	MutedForeground  lipgloss.Color `json:"muted_foreground"`
	SelectedBg       lipgloss.Color `json:"selected_bg"`
	FocusBorder      lipgloss.Color `json:"focus_border"`
}

// PredefinedThemes contains the built-in themes
var PredefinedThemes = map[string]*Theme{
	"dark": {
		Name:             "dark",
		Background:       lipgloss.Color(constants.ColorBlack),
		Foreground:       lipgloss.Color(constants.ColorWhite),
		Primary:          lipgloss.Color(constants.ColorBlue),
		Secondary:        lipgloss.Color(constants.ColorCyan),
		Border:           lipgloss.Color(constants.ColorDarkGray),
		Success:          lipgloss.Color(constants.ColorGreen),
		Warning:          lipgloss.Color(constants.ColorYellow),
		Error:            lipgloss.Color(constants.ColorRed),
		Info:             lipgloss.Color(constants.ColorBrightCyan),
		AccentForeground: lipgloss.Color(constants.ColorWhite),
		MutedForeground:  lipgloss.Color(constants.ColorMediumGray),
		SelectedBg:       lipgloss.Color(constants.ColorDarkerGray),
		FocusBorder:      lipgloss.Color(constants.ColorBlue),
	},
	"light": {
		Name:             "light",
		Background:       lipgloss.Color("15"),
		Foreground:       lipgloss.Color("0"),
		Primary:          lipgloss.Color("4"),
		Secondary:        lipgloss.Color("6"),
		Border:           lipgloss.Color("7"),
		Success:          lipgloss.Color("2"),
		Warning:          lipgloss.Color("3"),
		Error:            lipgloss.Color("1"),
		Info:             lipgloss.Color("4"),
		AccentForeground: lipgloss.Color("0"),
		MutedForeground:  lipgloss.Color("8"),
		SelectedBg:       lipgloss.Color("7"),
		FocusBorder:      lipgloss.Color("4"),
	},
}

// ThemeManager tracks the active theme and persists the choice
type ThemeManager struct {
	currentTheme *Theme
	configPath   string
}

// ThemeConfig represents the persisted theme configuration
type ThemeConfig struct {
	SelectedTheme string `json:"selected_theme"`
}

// NewThemeManager loads the saved preference from configPath. fallback is
// used when nothing was saved. An empty configPath disables persistence.
func NewThemeManager(configPath, fallback string) *ThemeManager {
	theme, ok := PredefinedThemes[fallback]
	if !ok {
		theme = PredefinedThemes[constants.DefaultTheme]
	}
	tm := &ThemeManager{currentTheme: theme, configPath: configPath}
	tm.loadThemePreference()
	return tm
}

// DefaultConfigPath is ~/.kconsole/config.json
func DefaultConfigPath(dir string) string {
	return filepath.Join(dir, constants.ConfigFileName)
}

// GetCurrentTheme returns the currently active theme
func (tm *ThemeManager) GetCurrentTheme() *Theme {
	return tm.currentTheme
}

// SetTheme switches to the named theme and saves the choice
func (tm *ThemeManager) SetTheme(themeName string) error {
	theme, exists := PredefinedThemes[themeName]
	if !exists {
		return fmt.Errorf("unknown theme %q", themeName)
	}
	tm.currentTheme = theme
	return tm.saveThemePreference()
}

// ToggleTheme switches between light and dark themes
func (tm *ThemeManager) ToggleTheme() error {
	if tm.currentTheme.Name == "dark" {
		return tm.SetTheme("light")
	}
	return tm.SetTheme("dark")
}

func (tm *ThemeManager) loadThemePreference() {
	if tm.configPath == "" {
		return
	}
	data, err := os.ReadFile(tm.configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug().Err(err).Str("path", tm.configPath).Msg("theme preference unreadable")
		}
		return
	}

	var config ThemeConfig
	if err := json.Unmarshal(data, &config); err != nil {
		log.Debug().Err(err).Msg("theme preference is not valid json")
		return
	}
	if theme, ok := PredefinedThemes[config.SelectedTheme]; ok {
		tm.currentTheme = theme
	}
}

func (tm *ThemeManager) saveThemePreference() error {
	if tm.configPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(tm.configPath), constants.ConfigDirPermissions); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(ThemeConfig{SelectedTheme: tm.currentTheme.Name}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(tm.configPath, data, constants.ConfigFilePermissions)
}

// CreateBaseStyle creates a base style with theme colors
func CreateBaseStyle(theme *Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Foreground)
}

// CreateBorderStyle creates a bordered style with theme colors
func CreateBorderStyle(theme *Theme, focused bool) lipgloss.Style {
	borderColor := theme.Border
	if focused {
		borderColor = theme.FocusBorder
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)
}

// CreatePrimaryStyle creates a style with primary theme colors
func CreatePrimaryStyle(theme *Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)
}

// CreateSecondaryStyle creates a style with secondary theme colors
func CreateSecondaryStyle(theme *Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Secondary)
}

// CreateMutedStyle creates a style with muted colors
func CreateMutedStyle(theme *Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.MutedForeground)
}

// LevelColor maps a status level to a theme color
func LevelColor(theme *Theme, level format.Level) lipgloss.Color {
	switch level {
	case format.LevelSuccess:
		return theme.Success
	case format.LevelWarning:
		return theme.Warning
	case format.LevelError:
		return theme.Error
	case format.LevelInfo:
		return theme.Info
	default:
		return theme.MutedForeground
	}
}

// CreateStatusStyle creates a style for a status level
func CreateStatusStyle(theme *Theme, level format.Level) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(LevelColor(theme, level))
}

// CreateSelectedStyle creates a style for selected items
func CreateSelectedStyle(theme *Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(theme.SelectedBg).
		Foreground(theme.AccentForeground).
		Bold(true)
}
