package ui

import (
	"groupchat/domain"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors of one theme.
type Palette struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Own        lipgloss.Color
}

var (
	lightPalette = Palette{
		Background: lipgloss.Color("#f4f5f6"),
		Foreground: lipgloss.Color("#101F38"),
		Primary:    lipgloss.Color("#101F38"),
		Accent:     lipgloss.Color("#2196F3"),
		Muted:      lipgloss.Color("#8a919c"),
		Border:     lipgloss.Color("#dce0e5"),
		Own:        lipgloss.Color("#e3f2fd"),
	}
	darkPalette = Palette{
		Background: lipgloss.Color("#141d2b"),
		Foreground: lipgloss.Color("#f2f2f2"),
		Primary:    lipgloss.Color("#8BC34A"),
		Accent:     lipgloss.Color("#4db6ac"),
		Muted:      lipgloss.Color("#6b7a90"),
		Border:     lipgloss.Color("#2a3850"),
		Own:        lipgloss.Color("#1e2a3d"),
	}

	destructive = lipgloss.Color("#e53935")
)

func PaletteFor(theme domain.Theme) Palette {
	if theme == domain.ThemeDark {
		return darkPalette
	}
	return lightPalette
}

// Styles holds all the styled components of the chat screen.
type Styles struct {
	Theme domain.Theme

	Header       lipgloss.Style
	Sidebar      lipgloss.Style
	Group        lipgloss.Style
	GroupActive  lipgloss.Style
	GroupCursor  lipgloss.Style
	Messages     lipgloss.Style
	Bubble       lipgloss.Style
	OwnBubble    lipgloss.Style
	Footer       lipgloss.Style
	Composer     lipgloss.Style
	Typing       lipgloss.Style
	SendEnabled  lipgloss.Style
	SendDisabled lipgloss.Style
	Status       lipgloss.Style
	Error        lipgloss.Style
	Muted        lipgloss.Style
}

func NewStyles(theme domain.Theme) Styles {
	p := PaletteFor(theme)
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(p.Primary).
			Foreground(p.Background).
			Padding(0, 1).
			Bold(true),

		Sidebar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(p.Border).
			PaddingRight(1),

		Group: lipgloss.NewStyle().
			Foreground(p.Foreground),

		GroupActive: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),

		GroupCursor: lipgloss.NewStyle().
			Foreground(p.Primary).
			Underline(true),

		Messages: lipgloss.NewStyle().
			PaddingLeft(1),

		Bubble: lipgloss.NewStyle().
			Foreground(p.Foreground),

		OwnBubble: lipgloss.NewStyle().
			Foreground(p.Foreground).
			Background(p.Own),

		Footer: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),

		Composer: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Border),

		Typing: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),

		SendEnabled: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),

		SendDisabled: lipgloss.NewStyle().
			Foreground(p.Muted).
			Faint(true),

		Status: lipgloss.NewStyle().
			Foreground(p.Muted),

		Error: lipgloss.NewStyle().
			Foreground(destructive).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(p.Muted),
	}
}
