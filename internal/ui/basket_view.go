package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopsync/internal/model"
)

const (
	qtyWidth      = 5
	priceWidth    = 10
	subTotalWidth = 11
	minNameWidth  = 16
)

func itemColumns(width int) []table.Column {
	name := max(width-qtyWidth-priceWidth-subTotalWidth-8, minNameWidth)
	return []table.Column{
		{Title: "Product", Width: name},
		{Title: "Qty", Width: qtyWidth},
		{Title: "Price", Width: priceWidth},
		{Title: "Subtotal", Width: subTotalWidth},
	}
}

func newItemsTable(theme Theme) table.Model {
	return table.New(
		table.WithColumns(itemColumns(LayoutCompactWidth)),
		table.WithFocused(true),
		table.WithKeyMap(tableKeyMap()),
		table.WithStyles(tableStyles(theme)),
	)
}

// tableKeyMap keeps the table off the letters the views bind.
func tableKeyMap() table.KeyMap {
	return table.KeyMap{
		LineUp:       key.NewBinding(key.WithKeys("up", "k")),
		LineDown:     key.NewBinding(key.WithKeys("down", "j")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		GotoTop:      key.NewBinding(key.WithKeys("home", "g")),
		GotoBottom:   key.NewBinding(key.WithKeys("end", "G")),
	}
}

func tableStyles(theme Theme) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(theme.BorderMuted)).
		BorderBottom(true).
		Foreground(lipgloss.Color(theme.Muted)).
		Bold(true)
	s.Cell = s.Cell.Foreground(lipgloss.Color(theme.Text))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(theme.SelectionText)).
		Background(lipgloss.Color(theme.SelectionBg)).
		Bold(false)
	return s
}

func itemRows(items []model.BasketItem) ([]table.Row, []string) {
	rows := make([]table.Row, 0, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, table.Row{
			orDash(item.ProductName),
			fmt.Sprintf("%d", item.Quantity),
			money(item.EffectivePrice()),
			money(item.SubTotal()),
		})
		ids = append(ids, item.ItemID)
	}
	return rows, ids
}

// selectedItem returns the basket item under the cursor.
func (m Model) selectedItem() (model.BasketItem, bool) {
	i := m.itemsTable.Cursor()
	if m.basket == nil || i < 0 || i >= len(m.itemIDs) {
		return model.BasketItem{}, false
	}
	return m.basket.Item(m.itemIDs[i])
}

func (m Model) handleBasketKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Remove):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		return m, m.removeCmd(item.ItemID)

	case key.Matches(msg, m.keys.Increase):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		return m, m.quantityCmd(item.IncreaseQuantity())

	case key.Matches(msg, m.keys.Decrease):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		change, err := item.DecreaseQuantity()
		if err != nil {
			m.flash = err.Error()
			return m, nil
		}
		return m, m.quantityCmd(change)

	case key.Matches(msg, m.keys.Checkout):
		return m, m.checkoutCmd()
	}

	var cmd tea.Cmd
	m.itemsTable, cmd = m.itemsTable.Update(msg)
	return m, cmd
}

func (m Model) removeCmd(itemID string) tea.Cmd {
	ctx, src := m.ctx, m.basket
	return func() tea.Msg {
		return actionMsg{op: "remove", err: src.RemoveItem(ctx, itemID)}
	}
}

func (m Model) quantityCmd(change model.QuantityChange) tea.Cmd {
	ctx, src := m.ctx, m.basket
	return func() tea.Msg {
		return actionMsg{op: "quantity", err: src.ChangeQuantity(ctx, change)}
	}
}

func (m Model) checkoutCmd() tea.Cmd {
	if m.basket == nil {
		return nil
	}
	src := m.basket
	return func() tea.Msg {
		return actionMsg{op: "checkout", err: src.Checkout()}
	}
}

// renderBasket renders the line item table and the basket summary.
func (m Model) renderBasket() string {
	styles := m.theme.Styles()

	st, ok := m.currentBasket()
	if !ok {
		return styles.MutedText.Render("No basket yet. Waiting for the first sync...")
	}
	if len(m.itemIDs) == 0 {
		return styles.MutedText.Render("The basket is empty.") + "\n" + m.renderBasketSummary(st)
	}
	return m.itemsTable.View() + "\n" + m.renderBasketSummary(st)
}

func (m Model) renderBasketSummary(st model.BasketState) string {
	styles := m.theme.Styles()
	parts := []string{
		styles.MutedText.Render("Lines:") + " " + styles.Text.Render(fmt.Sprintf("%d", st.TotalItems)),
		styles.MutedText.Render("Units:") + " " + styles.Text.Render(fmt.Sprintf("%d", st.TotalQuantity)),
		styles.MutedText.Render("Subtotal:") + " " + styles.AccentText.Bold(true).Render(money(st.SubTotal)),
	}
	if st.CustomerName != "" {
		parts = append(parts, styles.MutedText.Render("Customer:")+" "+styles.Text.Render(st.CustomerName))
	}
	return strings.Join(parts, "   ")
}

// renderCheckout renders the confirmation shown after Checkout navigates.
func (m Model) renderCheckout() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Checkout"))
	b.WriteString("\n\n")
	if st, ok := m.currentBasket(); ok {
		b.WriteString(m.renderBasketSummary(st))
		b.WriteString("\n\n")
		b.WriteString(styles.MutedText.Render("Basket " + st.ID))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("Complete the order in the storefront. esc returns to the basket."))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Render(b.String())
}

