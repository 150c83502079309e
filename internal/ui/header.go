package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/five82/shopsync/internal/eshop"
	"github.com/five82/shopsync/internal/model"
	"github.com/five82/shopsync/internal/state"
)

// activeStatus returns the sync status of the source behind the current view.
func (m Model) activeStatus() state.Snapshot {
	if m.currentView == ViewOrders && m.orders != nil {
		return m.orders.Status()
	}
	if m.basket != nil {
		return m.basket.Status()
	}
	return state.Snapshot{}
}

func (m Model) currentBasket() (model.BasketState, bool) {
	if m.basket == nil {
		return model.BasketState{}, false
	}
	return m.basket.Basket()
}

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBarStyle(m.theme)
	status := m.activeStatus()
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("shopsync", styles.Logo)}

	switch {
	case status.Loading:
		parts = append(parts, bg.Render("● SYNCING", styles.InfoText))
	case status.IsOffline():
		parts = append(parts,
			bg.Render("● "+classifyConnectionError(status.LastError), styles.DangerText.Bold(true)),
			bg.Render("Retrying...", styles.WarningText.Bold(true)),
		)
	case status.LastError != nil:
		parts = append(parts, bg.Render("● ERROR", styles.WarningText.Bold(true)))
	case status.LastSuccess.IsZero():
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	default:
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	}

	if st, ok := m.currentBasket(); ok {
		parts = append(parts,
			bg.Field("Items:", fmt.Sprintf("%d", st.TotalItems), styles.MutedText, styles.Text),
		)
		if !compact {
			parts = append(parts,
				bg.Field("Basket:", truncateMiddle(st.ID, 13), styles.MutedText, styles.FaintText),
			)
		}
	}

	if ts := formatTimestamp(status.LastSuccess, time.Now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if status.LastError != nil {
		maxErr := 80
		if compact {
			maxErr = 40
		}
		parts = append(parts, bg.Render(truncate(rootCause(status.LastError), maxErr), styles.DangerText))
		if status.IsOffline() && m.logPath != "" && !compact {
			parts = append(parts,
				bg.Field("logs", truncateMiddle(m.logPath, 50), styles.FaintText, styles.MutedText))
		}
	}

	return bg.Bar(parts, 2, m.width)
}

// formatTimestamp formats the last update time with relative indicator.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	since := now.Sub(t)
	s := t.Format("15:04:05")
	switch {
	case since < time.Minute:
		s += " (now)"
	case since < time.Hour:
		s += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		s += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return s
}

// rootCause strips the operation prefixes the state store adds.
func rootCause(err error) string {
	var rejected *eshop.RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	return err.Error()
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	var te *eshop.TransportError
	if errors.As(err, &te) && te.Status > 0 {
		return fmt.Sprintf("HTTP %d", te.Status)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBarStyle(m.theme)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewOrders:
		f := m.ordersFilter()
		commands = []cmd{
			{"f", "Status: " + statusLabel(f.Status)},
			{"p", "Period: " + string(f.Period)},
			{"enter", "Items"},
			{"j/k", "Navigate"},
			{"r", "Refresh"},
			{"b", "Basket"},
			{"?", "More"},
		}
	case ViewLogs:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"r", "Refresh basket"},
			{"b", "Basket"},
			{"o", "Orders"},
			{"?", "More"},
		}
	case ViewCheckout:
		commands = []cmd{
			{"esc", "Back"},
			{"o", "Orders"},
			{"q", "Quit"},
		}
	default: // ViewBasket
		commands = []cmd{
			{"j/k", "Navigate"},
			{"+/-", "Quantity"},
			{"d", "Remove"},
			{"c", "Checkout"},
			{"r", "Refresh"},
			{"o", "Orders"},
			{"L", "Logs"},
			{"?", "More"},
		}
	}

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, bg.Hint(c.key, c.desc, styles.AccentText, styles.MutedText))
	}
	segments = append(segments, bg.Hint("T", m.theme.Name, styles.AccentText, styles.FaintText))

	return bg.Bar(segments, 2, m.width)
}

// renderFooter shows the last action failure, or the short key help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.flash != "" {
		return styles.WarningText.Render("! " + truncate(m.flash, max(m.width-2, 10)))
	}
	return m.help.View(m.keys)
}

func statusLabel(status string) string {
	if status == "" {
		return "any"
	}
	return status
}
