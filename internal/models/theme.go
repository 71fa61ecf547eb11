package models

import "strings"

// Theme is the visitor's colour preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme resolves a stored value. Anything unrecognised is ThemeSystem.
func ParseTheme(v string) Theme {
	switch t := Theme(strings.ToLower(strings.TrimSpace(v))); t {
	case ThemeLight, ThemeDark:
		return t
	}
	return ThemeSystem
}
