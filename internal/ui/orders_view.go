package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shopsync/internal/model"
	"github.com/five82/shopsync/internal/orders"
)

const (
	createdWidth = 16
	statusWidth  = 18
	countWidth   = 6
	totalWidth   = 11
)

func orderColumns(width int) []table.Column {
	id := max(width-createdWidth-statusWidth-countWidth-totalWidth-10, minNameWidth)
	return []table.Column{
		{Title: "Created", Width: createdWidth},
		{Title: "Status", Width: statusWidth},
		{Title: "Items", Width: countWidth},
		{Title: "Total", Width: totalWidth},
		{Title: "Order", Width: id},
	}
}

func newOrdersTable(theme Theme) table.Model {
	return table.New(
		table.WithColumns(orderColumns(LayoutCompactWidth)),
		table.WithFocused(true),
		table.WithKeyMap(tableKeyMap()),
		table.WithStyles(tableStyles(theme)),
	)
}

func orderRows(list []model.Order) ([]table.Row, []string) {
	rows := make([]table.Row, 0, len(list))
	ids := make([]string, 0, len(list))
	for _, o := range list {
		created := "-"
		if !o.Created.IsZero() {
			created = o.Created.Local().Format("2006-01-02 15:04")
		}
		items := "?"
		if o.ItemsLoaded {
			items = fmt.Sprintf("%d", o.ItemCount())
		}
		rows = append(rows, table.Row{
			created,
			orDash(o.Status),
			items,
			money(o.Total()),
			o.OrderID,
		})
		ids = append(ids, o.OrderID)
	}
	return rows, ids
}

func (m Model) ordersFilter() orders.Filter {
	if m.orders == nil {
		return orders.Filter{Period: orders.PeriodAll}
	}
	return m.orders.Filter()
}

// selectedOrder returns the order under the cursor.
func (m Model) selectedOrder() (model.Order, bool) {
	i := m.ordersTable.Cursor()
	if m.orders == nil || i < 0 || i >= len(m.orderIDs) {
		return model.Order{}, false
	}
	return m.orders.Order(m.orderIDs[i])
}

func (m Model) handleOrdersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.orders == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.CycleStatus):
		f := m.orders.Filter().NextStatus()
		m.prefs.OrderStatus = f.Status
		m.savePrefs()
		return m, m.listOrdersCmd(f)

	case key.Matches(msg, m.keys.CyclePeriod):
		f := m.orders.Filter().NextPeriod()
		m.prefs.OrderPeriod = string(f.Period)
		m.savePrefs()
		return m, m.listOrdersCmd(f)

	case key.Matches(msg, m.keys.LoadItems):
		o, ok := m.selectedOrder()
		if !ok || o.ItemsLoaded {
			return m, nil
		}
		return m, m.loadItemsCmd(o.OrderID)
	}

	var cmd tea.Cmd
	m.ordersTable, cmd = m.ordersTable.Update(msg)
	m.orderDetail.SetContent(m.renderOrderDetail())
	m.orderDetail.GotoTop()
	return m, cmd
}

func (m Model) loadItemsCmd(orderID string) tea.Cmd {
	ctx, src := m.ctx, m.orders
	return func() tea.Msg {
		return actionMsg{op: "order items", err: src.LoadItems(ctx, orderID)}
	}
}

// renderOrders renders the order list above the detail of the selected order.
func (m Model) renderOrders() string {
	styles := m.theme.Styles()
	if len(m.orderIDs) == 0 {
		if m.activeStatus().Loading {
			return styles.MutedText.Render("Loading orders...")
		}
		return styles.MutedText.Render("No orders match the current filter.")
	}
	return m.ordersTable.View() + "\n" + m.orderDetail.View()
}

// renderOrderDetail renders the selected order, including its line items once
// loaded.
func (m Model) renderOrderDetail() string {
	o, ok := m.selectedOrder()
	if !ok {
		return ""
	}
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.StatusStyle(o.Status).Render(orDash(o.Status)))
	b.WriteString(" ")
	b.WriteString(styles.Text.Bold(true).Render(o.OrderID))
	if o.StatusDescription != "" {
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render(o.StatusDescription))
	}
	b.WriteString("\n")

	field := func(label, value string) {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(styles.Text.Render(orDash(value)))
		b.WriteString("\n")
	}
	field("Ship to", o.ShippingAddress)
	field("Bill to", o.BillingAddress)
	field("Payment", o.PaymentMethod)
	field("Fees", money(o.AdditionalFees))
	field("Taxes", money(o.AdditionalTaxes))
	field("Total", money(o.Total()))

	if !o.ItemsLoaded {
		b.WriteString(styles.FaintText.Render("enter loads the line items"))
		return b.String()
	}
	for _, item := range o.Items {
		fmt.Fprintf(&b, "  %3d x %-30s %10s\n",
			item.Quantity, truncate(item.ProductName, 30), money(item.Total()))
	}
	return strings.TrimRight(b.String(), "\n")
}
