package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and pre-built styles of the select view.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	// Styles, built once instead of per row per frame
	Base        lipgloss.Style
	Control     lipgloss.Style // closed select / search line
	Placeholder lipgloss.Style
	Selected    lipgloss.Style // highlighted row
	GroupHeader lipgloss.Style
	Disabled    lipgloss.Style
	Check       lipgloss.Style
	Marker      lipgloss.Style // ▸ / ▾
	Creator     lipgloss.Style
	Tag         lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Success:   lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Control = r.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(t.Border)

	t.Placeholder = r.NewStyle().Foreground(t.Muted).Italic(true)

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Foreground(t.Primary).
		Bold(true)

	t.GroupHeader = r.NewStyle().Foreground(t.Secondary).Bold(true).Underline(true)
	t.Disabled = r.NewStyle().Foreground(t.Muted).Strikethrough(true)
	t.Check = r.NewStyle().Foreground(t.Success).Bold(true)
	t.Marker = r.NewStyle().Foreground(t.Secondary)
	t.Creator = r.NewStyle().Foreground(t.Primary)
	t.Tag = r.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Background(t.Primary).
		Padding(0, 1)
	t.Status = r.NewStyle().Foreground(t.Muted)
	t.StatusError = r.NewStyle().Foreground(t.Danger)

	return t
}
