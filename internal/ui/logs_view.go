package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopsync/internal/logtail"
)

// logTailLines bounds how much of the log file the log view keeps.
const logTailLines = 500

// refreshLogs reloads the log tail, keeping the scroll position unless the
// view was already at the bottom.
func (m *Model) refreshLogs() {
	if m.logPath == "" {
		m.logView.SetContent(m.theme.Styles().MutedText.Render("No log file configured."))
		return
	}
	lines, err := logtail.Read(m.logPath, logTailLines)
	if err != nil {
		m.logView.SetContent(m.theme.Styles().DangerText.Render(err.Error()))
		return
	}
	follow := m.logView.AtBottom()
	m.logView.SetContent(m.formatLogLines(logtail.ParseLines(lines)))
	if follow {
		m.logView.GotoBottom()
	}
}

func (m Model) formatLogLines(records []logtail.Record) string {
	styles := m.theme.Styles()
	if len(records) == 0 {
		return styles.MutedText.Render("The log is empty.")
	}

	var b strings.Builder
	for i, rec := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.formatLogRecord(rec, styles))
	}
	return b.String()
}

func (m Model) formatLogRecord(rec logtail.Record, styles Styles) string {
	if rec.Level == "" && rec.Time.IsZero() {
		return styles.Text.Render(rec.Message)
	}

	parts := make([]string, 0, 3+len(rec.Attrs))
	if !rec.Time.IsZero() {
		parts = append(parts, styles.FaintText.Render(rec.Time.Local().Format("15:04:05")))
	}
	parts = append(parts, levelStyle(rec.Level, styles).Render(padLevel(rec.Level)))
	parts = append(parts, styles.Text.Render(rec.Message))
	for _, a := range rec.Attrs {
		parts = append(parts, styles.MutedText.Render(a.Key+"=")+styles.AccentText.Render(a.Value))
	}
	return strings.Join(parts, " ")
}

func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "ERROR":
		return styles.DangerText.Bold(true)
	case "WARN":
		return styles.WarningText.Bold(true)
	case "DEBUG":
		return styles.FaintText
	default:
		return styles.SuccessText
	}
}

func padLevel(level string) string {
	if len(level) >= 5 {
		return level
	}
	return level + strings.Repeat(" ", 5-len(level))
}

// renderLogs renders the log tail.
func (m Model) renderLogs() string {
	return m.logView.View()
}
