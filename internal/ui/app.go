package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shopsync/internal/basket"
	"github.com/five82/shopsync/internal/model"
	"github.com/five82/shopsync/internal/orders"
	"github.com/five82/shopsync/internal/prefs"
	"github.com/five82/shopsync/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewBasket View = iota
	ViewOrders
	ViewCheckout
	ViewLogs
)

// BasketSource is the part of *basket.Controller the UI drives.
type BasketSource interface {
	RefreshIfIdle(ctx context.Context) error
	RemoveItem(ctx context.Context, itemID string) error
	ChangeQuantity(ctx context.Context, change model.QuantityChange) error
	Checkout() error
	Basket() (model.BasketState, bool)
	Items() []model.BasketItem
	Item(itemID string) (model.BasketItem, bool)
	Status() state.Snapshot
}

// OrdersSource is the part of *orders.Controller the UI drives.
type OrdersSource interface {
	List(ctx context.Context, f orders.Filter) error
	LoadItems(ctx context.Context, orderID string) error
	Orders() []model.Order
	Order(orderID string) (model.Order, bool)
	Filter() orders.Filter
	Status() state.Snapshot
}

var (
	_ BasketSource = (*basket.Controller)(nil)
	_ OrdersSource = (*orders.Controller)(nil)
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Basket    BasketSource
	Orders    OrdersSource
	Router    *Router
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string // shown in the header while the backend is failing
	PollTick  time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	basket    BasketSource
	orders    OrdersSource
	prefs     prefs.Prefs
	prefsPath string
	logPath   string
	pollTick  time.Duration
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	flash       string
	help        help.Model

	// Basket state
	itemsTable table.Model
	itemIDs    []string

	// Orders state
	ordersTable  table.Model
	orderIDs     []string
	orderDetail  viewport.Model
	ordersLoaded bool

	// Log state
	logView viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	theme := GetTheme(opts.Prefs.Theme)
	return Model{
		ctx:         ctx,
		basket:      opts.Basket,
		orders:      opts.Orders,
		prefs:       opts.Prefs,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		pollTick:    pollTick,
		keys:        DefaultKeyMap(),
		theme:       theme,
		currentView: ViewBasket,
		help:        help.New(),
		itemsTable:  newItemsTable(theme),
		ordersTable: newOrdersTable(theme),
		orderDetail: viewport.New(0, 0),
		logView:     viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.pollTick), m.refreshBasketCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		m.syncTables()
		return m, nil

	case tickMsg:
		if m.currentView == ViewLogs {
			m.refreshLogs()
		}
		return m, tickCmd(m.pollTick)

	case changedMsg:
		m.syncTables()
		return m, nil

	case actionMsg:
		m.flash = ""
		if msg.err != nil {
			m.flash = msg.op + ": " + msg.err.Error()
		}
		m.syncTables()
		return m, nil

	case navigateMsg:
		if string(msg) == basket.CheckoutRoute {
			m.currentView = ViewCheckout
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewOrders:
		return m.renderOrders()
	case ViewCheckout:
		return m.renderCheckout()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderBasket()
	}
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.itemsTable.SetStyles(tableStyles(m.theme))
		m.ordersTable.SetStyles(tableStyles(m.theme))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.ViewBasket):
		m.currentView = ViewBasket
		return m, nil

	case key.Matches(msg, m.keys.ViewOrders):
		m.currentView = ViewOrders
		if !m.ordersLoaded && m.orders != nil {
			m.ordersLoaded = true
			return m, m.listOrdersCmd(m.orders.Filter())
		}
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		m.refreshLogs()
		m.logView.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.currentView == ViewOrders && m.orders != nil {
			return m, m.listOrdersCmd(m.orders.Filter())
		}
		return m, m.refreshBasketCmd()
	}

	switch m.currentView {
	case ViewBasket:
		return m.handleBasketKey(msg)
	case ViewOrders:
		return m.handleOrdersKey(msg)
	case ViewLogs:
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) savePrefs() {
	if m.prefsPath != "" {
		_ = prefs.Save(m.prefsPath, m.prefs)
	}
}

// resize fits the tables and the detail viewport to the terminal.
func (m *Model) resize() {
	body := max(m.height-chromeHeight, 3)
	m.itemsTable.SetColumns(itemColumns(m.width))
	m.itemsTable.SetWidth(m.width)
	m.itemsTable.SetHeight(body)

	listHeight := max(body/2, 3)
	m.ordersTable.SetColumns(orderColumns(m.width))
	m.ordersTable.SetWidth(m.width)
	m.ordersTable.SetHeight(listHeight)
	m.orderDetail.Width = m.width
	m.orderDetail.Height = max(body-listHeight-1, 1)

	m.logView.Width = m.width
	m.logView.Height = body
}

// syncTables copies controller state into the tables.
func (m *Model) syncTables() {
	if m.basket != nil {
		rows, ids := itemRows(m.basket.Items())
		m.itemsTable.SetRows(rows)
		m.itemIDs = ids
		clampCursor(&m.itemsTable)
	}
	if m.orders != nil {
		rows, ids := orderRows(m.orders.Orders())
		m.ordersTable.SetRows(rows)
		m.orderIDs = ids
		clampCursor(&m.ordersTable)
		m.orderDetail.SetContent(m.renderOrderDetail())
	}
}

func clampCursor(t *table.Model) {
	n := len(t.Rows())
	switch {
	case n == 0:
		t.SetCursor(0)
	case t.Cursor() >= n:
		t.SetCursor(n - 1)
	}
}

// Messages

type tickMsg time.Time

// changedMsg reports that a controller finished or started a cycle.
type changedMsg struct{}

// navigateMsg carries a route requested by a controller.
type navigateMsg string

// actionMsg reports the outcome of a user-triggered controller call.
type actionMsg struct {
	op  string
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) refreshBasketCmd() tea.Cmd {
	if m.basket == nil {
		return nil
	}
	ctx, src := m.ctx, m.basket
	return func() tea.Msg {
		return actionMsg{op: "refresh", err: src.RefreshIfIdle(ctx)}
	}
}

func (m Model) listOrdersCmd(f orders.Filter) tea.Cmd {
	ctx, src := m.ctx, m.orders
	return func() tea.Msg {
		return actionMsg{op: "orders", err: src.List(ctx, f)}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if opts.Router != nil {
		opts.Router.attach(p)
		defer opts.Router.detach()
	}
	_, err := p.Run()
	return err
}
