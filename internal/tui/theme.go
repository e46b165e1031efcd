package tui

import (
	"fmt"
	"slices"
	"sort"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// relkit palette.
var (
	amberPrimary      = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#f59e0b"}
	amberBright       = lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#fbbf24"}
	textStrong        = lipgloss.AdaptiveColor{Light: "#1c1917", Dark: "#fafaf9"}
	textNormal        = lipgloss.AdaptiveColor{Light: "#44403c", Dark: "#d6d3d1"}
	textMuted         = lipgloss.AdaptiveColor{Light: "#78716c", Dark: "#a8a29e"}
	borderNormal      = lipgloss.AdaptiveColor{Light: "#d6d3d1", Dark: "#44403c"}
	buttonText        = lipgloss.AdaptiveColor{Light: "#fafaf9", Dark: "#1c1917"}
	buttonBgBlurred   = lipgloss.AdaptiveColor{Light: "#e7e5e4", Dark: "#292524"}
	buttonTextBlurred = lipgloss.AdaptiveColor{Light: "#57534e", Dark: "#a8a29e"}
)

// DefaultTheme is used when no theme is configured.
const DefaultTheme = "relkit"

var themes = map[string]func() *huh.Theme{
	DefaultTheme: relkitTheme,
	"base":       huh.ThemeBase,
	"base16":     huh.ThemeBase16,
	"catppuccin": huh.ThemeCatppuccin,
	"charm":      huh.ThemeCharm,
	"dracula":    huh.ThemeDracula,
}

// currentTheme holds the theme set with SetTheme; nil means the relkit theme.
var currentTheme *huh.Theme

// ThemeNames lists the prompt themes, default first.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		if name != DefaultTheme {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{DefaultTheme}, names...)
}

// IsValidTheme reports whether name is a known theme.
func IsValidTheme(name string) bool {
	return slices.Contains(ThemeNames(), name)
}

// SetTheme selects the prompt theme. An empty name resets to the default.
func SetTheme(name string) error {
	if name == "" {
		currentTheme = nil
		return nil
	}
	build, ok := themes[name]
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, ThemeNames())
	}
	currentTheme = build()
	return nil
}

func currentThemeOrDefault() *huh.Theme {
	if currentTheme == nil {
		return relkitTheme()
	}
	return currentTheme
}

func relkitTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderStyle(lipgloss.RoundedBorder()).BorderForeground(amberPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(amberBright).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(textMuted)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(amberPrimary)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(textStrong)
	t.Focused.UnselectedOption = t.Focused.UnselectedOption.Foreground(textNormal)
	t.Focused.FocusedButton = t.Focused.FocusedButton.
		Foreground(buttonText).Background(amberPrimary).Bold(true).Padding(0, 1)
	t.Focused.BlurredButton = t.Focused.BlurredButton.
		Foreground(buttonTextBlurred).Background(buttonBgBlurred).Padding(0, 1)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderForeground(borderNormal)
	t.Blurred.Title = t.Blurred.Title.Foreground(textNormal).Bold(false)

	t.Help.ShortKey = t.Help.ShortKey.Foreground(textMuted)
	t.Help.ShortDesc = t.Help.ShortDesc.Foreground(textMuted)
	t.Help.ShortSeparator = t.Help.ShortSeparator.Foreground(borderNormal)
	t.Help.FullKey = t.Help.FullKey.Foreground(textMuted)
	t.Help.FullDesc = t.Help.FullDesc.Foreground(textMuted)
	t.Help.FullSeparator = t.Help.FullSeparator.Foreground(borderNormal)
	return t
}
