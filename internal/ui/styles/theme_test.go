package styles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/katyella/kconsole/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeManagerPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	tm := NewThemeManager(path, "dark")
	assert.Equal(t, "dark", tm.GetCurrentTheme().Name)

	require.NoError(t, tm.ToggleTheme())
	assert.Equal(t, "light", tm.GetCurrentTheme().Name)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"selected_theme": "light"`)

	reloaded := NewThemeManager(path, "dark")
	assert.Equal(t, "light", reloaded.GetCurrentTheme().Name)
}

func TestThemeManagerFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		fallback string
		want     string
	}{
		{name: "no file", fallback: "light", want: "light"},
		{name: "unknown fallback", fallback: "neon", want: "dark"},
		{name: "corrupt file", content: "{", fallback: "light", want: "light"},
		{name: "unknown saved theme", content: `{"selected_theme":"neon"}`, fallback: "light", want: "light"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}
			assert.Equal(t, tt.want, NewThemeManager(path, tt.fallback).GetCurrentTheme().Name)
		})
	}
}

func TestSetThemeRejectsUnknown(t *testing.T) {
	tm := NewThemeManager("", "dark")
	assert.Error(t, tm.SetTheme("neon"))
	assert.Equal(t, "dark", tm.GetCurrentTheme().Name)
}

func TestStyleManagerNotifies(t *testing.T) {
	sm := NewStyleManager(NewThemeManager("", "dark"))
	calls := 0
	sm.AddThemeChangeListener(func() { calls++ })

	require.NoError(t, sm.ToggleTheme())
	require.NoError(t, sm.SetTheme("dark"))
	assert.Equal(t, 2, calls)
	assert.Error(t, sm.SetTheme("neon"))
	assert.Equal(t, 2, calls)
}

func TestLevelColor(t *testing.T) {
	theme := PredefinedThemes["dark"]
	assert.Equal(t, theme.Success, LevelColor(theme, format.LevelSuccess))
	assert.Equal(t, theme.Error, LevelColor(theme, format.LevelError))
	assert.Equal(t, theme.MutedForeground, LevelColor(theme, format.LevelMuted))
}
