package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals use the
// terminal's own background instead of a down-converted approximation
// that may clash with palettes like Solarized.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Domain accents
	Trip    lipgloss.AdaptiveColor // trip header rows
	Rating  lipgloss.AdaptiveColor // star rating
	Warm    lipgloss.AdaptiveColor // warm water temperatures
	Cold    lipgloss.AdaptiveColor // cold water temperatures
	Danger  lipgloss.AdaptiveColor // CNS/OTU warnings, remove affordance
	Dirty   lipgloss.AdaptiveColor // unsaved-changes indicator
	Editing lipgloss.AdaptiveColor // active edit field

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed row styles, created once instead of per frame.
	MutedText     lipgloss.Style
	SecondaryText lipgloss.Style
	PrimaryBold   lipgloss.Style
	TripHeader    lipgloss.Style
	YearRow       lipgloss.Style
	RatingStars   lipgloss.Style
	RemoveMark    lipgloss.Style
	DirtyMark     lipgloss.Style
}

// DefaultTheme returns the standard deep-water theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#005B96", Dark: "#61AFEF"}, // Ocean blue
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"}, // Dim

		Trip:    lipgloss.AdaptiveColor{Light: "#006080", Dark: "#56B6C2"}, // Teal
		Rating:  lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFD700"}, // Gold
		Warm:    lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}, // Orange
		Cold:    lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#8BE9FD"}, // Ice blue
		Danger:  lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}, // Red
		Dirty:   lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}, // Orange
		Editing: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}, // Green

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		PaddingLeft(1).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.TripHeader = r.NewStyle().Foreground(t.Trip).Bold(true)
	t.YearRow = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.RatingStars = r.NewStyle().Foreground(t.Rating)
	t.RemoveMark = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.DirtyMark = r.NewStyle().Foreground(t.Dirty).Bold(true)

	return t
}

// TestTheme returns a theme suitable for use in tests (stdout renderer).
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
