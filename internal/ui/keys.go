package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding
	Refresh    key.Binding

	// View switching
	ViewBasket key.Binding
	ViewOrders key.Binding
	ViewLogs   key.Binding

	// Basket actions
	Remove   key.Binding
	Increase key.Binding
	Decrease key.Binding
	Checkout key.Binding

	// Orders actions
	CycleStatus key.Binding
	CyclePeriod key.Binding
	LoadItems   key.Binding

	// Navigation
	Up   key.Binding
	Down key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Return to basket"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),

		// View switching
		ViewBasket: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Basket view"),
		),
		ViewOrders: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Orders view"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Log view"),
		),

		// Basket actions
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Remove item"),
		),
		Increase: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Add one"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Remove one"),
		),
		Checkout: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Checkout"),
		),

		// Orders actions
		CycleStatus: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle status filter"),
		),
		CyclePeriod: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Cycle period filter"),
		),
		LoadItems: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Load order items"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.ViewBasket, k.ViewOrders, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewBasket, k.ViewOrders, k.ViewLogs, k.Escape},
		{k.Up, k.Down},
		{k.Refresh, k.Remove, k.Increase, k.Decrease, k.Checkout},
		{k.CycleStatus, k.CyclePeriod, k.LoadItems},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
