// Package style provides small lipgloss rendering helpers for CLI output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/reelkit/reel/color"
)

// New returns an empty style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a renderer applying the foreground color c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Tag renders s as a padded colored block, used for session state badges.
func Tag(fg, bg lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(fg).Background(bg).Padding(0, 1).Render(s) }
}

// Title renders a heading banner.
var Title = Tag(color.New("230"), color.New("62"))

// ErrorTitle renders a heading banner in the error colors.
var ErrorTitle = Tag(color.New("230"), color.Red)
