// Package ui provides the GapFinder desktop application.
//
// This file defines a compact Fyne theme with an optional fixed light/dark variant.

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// GapFinderTheme wraps the default Fyne theme with compact sizing overrides.
// When fixed is false the variant requested by the system is used.
type GapFinderTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	fixed   bool
}

// NewGapFinderTheme creates a theme for the given config name: "light",
// "dark" or anything else for the system default.
func NewGapFinderTheme(name string) *GapFinderTheme {
	t := &GapFinderTheme{base: theme.DefaultTheme()}
	t.SetVariantName(name)
	return t
}

// SetVariantName updates the theme variant from its config name.
func (t *GapFinderTheme) SetVariantName(name string) {
	t.variant, t.fixed = themeVariant(name)
}

func themeVariant(name string) (fyne.ThemeVariant, bool) {
	switch name {
	case "light":
		return theme.VariantLight, true
	case "dark":
		return theme.VariantDark, true
	default:
		return 0, false
	}
}

// Color delegates to the base theme, forcing the stored variant if fixed.
func (t *GapFinderTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.fixed {
		variant = t.variant
	}
	return t.base.Color(name, variant)
}

// Font delegates to the base theme.
func (t *GapFinderTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

// Icon delegates to the base theme.
func (t *GapFinderTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides for a dense layout.
func (t *GapFinderTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}
