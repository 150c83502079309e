package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// barStyle renders the segments of the header and command bar on one
// background color. lipgloss resets the background after every styled
// segment, so the spaces between words and segments are styled explicitly.
type barStyle struct {
	bg    lipgloss.Color
	line  lipgloss.Style
	space string
}

func newBarStyle(t Theme) barStyle {
	bg := lipgloss.Color(t.Surface)
	return barStyle{
		bg:    bg,
		line:  t.Styles().Header,
		space: lipgloss.NewStyle().Background(bg).Render(" "),
	}
}

// Render styles text word by word so the gaps keep the bar background.
func (b barStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	wordStyle := style.Background(b.bg)
	if !strings.Contains(text, " ") {
		return wordStyle.Render(text)
	}
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = wordStyle.Render(w)
		}
	}
	return strings.Join(words, b.space)
}

// Field renders "label: value" as used for basket counters and the log path.
func (b barStyle) Field(label, value string, labelStyle, valueStyle lipgloss.Style) string {
	return b.Render(label, labelStyle) + b.space + b.Render(value, valueStyle)
}

// Hint renders one "key:action" command bar entry.
func (b barStyle) Hint(key, desc string, keyStyle, descStyle lipgloss.Style) string {
	return b.Render(key, keyStyle) + b.sep(":") + b.Render(desc, descStyle)
}

// Bar joins segments with gap styled spaces and pads the result to width
// using the theme's header style.
func (b barStyle) Bar(segments []string, gap, width int) string {
	line := strings.Join(segments, b.sep(strings.Repeat(" ", gap)))
	return b.line.Width(width).Render(line)
}

func (b barStyle) sep(s string) string {
	return lipgloss.NewStyle().Background(b.bg).Render(s)
}
