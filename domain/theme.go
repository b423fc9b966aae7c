package domain

import "strings"

type Theme int

const (
	ThemeLight Theme = iota
	ThemeDark
)

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) String() string {
	if t == ThemeDark {
		return "dark"
	}
	return "light"
}

// ParseTheme falls back to light for anything but "dark".
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), "dark") {
		return ThemeDark
	}
	return ThemeLight
}
