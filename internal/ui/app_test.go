package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shopsync/internal/basket"
	"github.com/five82/shopsync/internal/model"
	"github.com/five82/shopsync/internal/orders"
	"github.com/five82/shopsync/internal/prefs"
	"github.com/five82/shopsync/internal/state"
)

type fakeBasket struct {
	mu        sync.Mutex
	items     []model.BasketItem
	removed   []string
	changes   []model.QuantityChange
	refreshes int
	checkouts int
	status    state.Snapshot
}

func newFakeBasket() *fakeBasket {
	return &fakeBasket{items: []model.BasketItem{
		{ItemID: "i1", ProductID: "p1", ProductName: "Mug", ProductPrice: 4.5, Quantity: 1},
		{ItemID: "i2", ProductID: "p2", ProductName: "Shirt", ProductPrice: 12, Quantity: 3},
	}}
}

func (f *fakeBasket) RefreshIfIdle(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return nil
}

func (f *fakeBasket) RemoveItem(_ context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, itemID)
	return nil
}

func (f *fakeBasket) ChangeQuantity(_ context.Context, change model.QuantityChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, change)
	return nil
}

func (f *fakeBasket) Checkout() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts++
	return nil
}

func (f *fakeBasket) Basket() (model.BasketState, bool) {
	return model.BasketState{ID: "b1", TotalItems: len(f.items), TotalQuantity: 4, SubTotal: 40.5}, true
}

func (f *fakeBasket) Items() []model.BasketItem { return f.items }

func (f *fakeBasket) Item(itemID string) (model.BasketItem, bool) {
	for _, item := range f.items {
		if item.ItemID == itemID {
			return item, true
		}
	}
	return model.BasketItem{}, false
}

func (f *fakeBasket) Status() state.Snapshot { return f.status }

type fakeOrders struct {
	mu      sync.Mutex
	list    []model.Order
	filter  orders.Filter
	lists   []orders.Filter
	loaded  []string
	listErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		filter: orders.Filter{Period: orders.PeriodAll},
		list: []model.Order{
			{OrderID: "o2", Status: "Shipped", Created: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
			{OrderID: "o1", Status: "Paid", Created: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		},
	}
}

func (f *fakeOrders) List(_ context.Context, filter orders.Filter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, filter)
	if f.listErr == nil {
		f.filter = filter
	}
	return f.listErr
}

func (f *fakeOrders) LoadItems(_ context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = append(f.loaded, orderID)
	return nil
}

func (f *fakeOrders) Orders() []model.Order { return f.list }

func (f *fakeOrders) Order(orderID string) (model.Order, bool) {
	for _, o := range f.list {
		if o.OrderID == orderID {
			return o, true
		}
	}
	return model.Order{}, false
}

func (f *fakeOrders) Filter() orders.Filter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter
}

func (f *fakeOrders) Status() state.Snapshot { return state.Snapshot{} }

func newTestModel(t *testing.T) (Model, *fakeBasket, *fakeOrders, string) {
	t.Helper()
	fb, fo := newFakeBasket(), newFakeOrders()
	path := filepath.Join(t.TempDir(), "prefs.toml")
	m := New(Options{Basket: fb, Orders: fo, Prefs: prefs.Defaults(), PrefsPath: path})
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = step(t, m, changedMsg{})
	return m, fb, fo, path
}

// step applies msg and discards the returned command.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// press applies a key and returns the resulting command.
func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestRemoveSelectedItem(t *testing.T) {
	m, fb, _, _ := newTestModel(t)

	m, _ = press(t, m, "j")
	m, cmd := press(t, m, "d")
	if cmd == nil {
		t.Fatal("expected remove command")
	}
	if msg, ok := cmd().(actionMsg); !ok || msg.err != nil {
		t.Fatalf("remove command returned %#v", msg)
	}
	if len(fb.removed) != 1 || fb.removed[0] != "i2" {
		t.Fatalf("removed = %v, want [i2]", fb.removed)
	}
}

func TestDecreaseAtMinimumFlashesWithoutCommand(t *testing.T) {
	m, fb, _, _ := newTestModel(t)

	m, cmd := press(t, m, "-")
	if cmd != nil {
		t.Fatal("expected no command for a decrease below one unit")
	}
	if m.flash != model.ErrMinimumQuantity.Error() {
		t.Fatalf("flash = %q", m.flash)
	}
	if len(fb.changes) != 0 {
		t.Fatalf("changes = %v, want none", fb.changes)
	}
}

func TestIncreaseSendsQuantityIntent(t *testing.T) {
	m, fb, _, _ := newTestModel(t)

	m, _ = press(t, m, "j")
	_, cmd := press(t, m, "+")
	if cmd == nil {
		t.Fatal("expected quantity command")
	}
	cmd()
	want := model.QuantityChange{ItemID: "i2", ProductID: "p2", Quantity: 4}
	if len(fb.changes) != 1 || fb.changes[0] != want {
		t.Fatalf("changes = %v, want [%v]", fb.changes, want)
	}
}

func TestCheckoutNavigation(t *testing.T) {
	m, fb, _, _ := newTestModel(t)

	_, cmd := press(t, m, "c")
	if cmd == nil {
		t.Fatal("expected checkout command")
	}
	cmd()
	if fb.checkouts != 1 {
		t.Fatalf("checkouts = %d, want 1", fb.checkouts)
	}

	m = step(t, m, navigateMsg(basket.CheckoutRoute))
	if m.currentView != ViewCheckout {
		t.Fatalf("view = %v, want checkout", m.currentView)
	}
	if !strings.Contains(m.View(), "Checkout") {
		t.Fatal("checkout view not rendered")
	}

	m, _ = press(t, m, "esc")
	if m.currentView != ViewBasket {
		t.Fatalf("view = %v, want basket", m.currentView)
	}
}

func TestUnknownRouteIsIgnored(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	m = step(t, m, navigateMsg("/elsewhere"))
	if m.currentView != ViewBasket {
		t.Fatalf("view = %v, want basket", m.currentView)
	}
}

func TestOrdersLoadOnFirstVisit(t *testing.T) {
	m, _, fo, _ := newTestModel(t)

	m, cmd := press(t, m, "o")
	if cmd == nil {
		t.Fatal("expected list command on first visit")
	}
	cmd()
	m, _ = press(t, m, "b")
	_, cmd = press(t, m, "o")
	if cmd != nil {
		t.Fatal("expected no list command on second visit")
	}
	if len(fo.lists) != 1 {
		t.Fatalf("lists = %d, want 1", len(fo.lists))
	}
}

func TestCycleStatusFilterSavesPrefs(t *testing.T) {
	m, _, fo, path := newTestModel(t)
	m, _ = press(t, m, "o")

	_, cmd := press(t, m, "f")
	if cmd == nil {
		t.Fatal("expected list command")
	}
	cmd()
	if got := fo.lists[len(fo.lists)-1].Status; got != "Submitted" {
		t.Fatalf("listed status = %q, want Submitted", got)
	}

	saved, err := prefs.Load(path)
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if saved.OrderStatus != "Submitted" {
		t.Fatalf("saved status = %q, want Submitted", saved.OrderStatus)
	}
}

func TestCyclePeriodFilter(t *testing.T) {
	m, _, fo, path := newTestModel(t)
	m, _ = press(t, m, "o")

	_, cmd := press(t, m, "p")
	cmd()
	if got := fo.lists[len(fo.lists)-1].Period; got != orders.PeriodDay {
		t.Fatalf("listed period = %q, want day", got)
	}
	saved, _ := prefs.Load(path)
	if saved.OrderPeriod != "day" {
		t.Fatalf("saved period = %q, want day", saved.OrderPeriod)
	}
}

func TestEnterLoadsSelectedOrderItems(t *testing.T) {
	m, _, fo, _ := newTestModel(t)
	m, _ = press(t, m, "o")

	_, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("expected load items command")
	}
	cmd()
	if len(fo.loaded) != 1 || fo.loaded[0] != "o2" {
		t.Fatalf("loaded = %v, want [o2]", fo.loaded)
	}
}

func TestActionErrorShownInFooter(t *testing.T) {
	m, _, _, _ := newTestModel(t)

	m = step(t, m, actionMsg{op: "remove", err: errors.New("boom")})
	if m.flash != "remove: boom" {
		t.Fatalf("flash = %q", m.flash)
	}
	if !strings.Contains(m.View(), "remove: boom") {
		t.Fatal("flash not rendered")
	}

	m = step(t, m, actionMsg{op: "refresh"})
	if m.flash != "" {
		t.Fatalf("flash = %q, want cleared", m.flash)
	}
}

func TestCycleThemeSavesPrefs(t *testing.T) {
	m, _, _, path := newTestModel(t)

	m, _ = press(t, m, "T")
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	saved, _ := prefs.Load(path)
	if saved.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", saved.Theme)
	}
}

func TestHelpClosesOnAnyKey(t *testing.T) {
	m, fb, _, _ := newTestModel(t)

	m, _ = press(t, m, "?")
	if !m.showHelp {
		t.Fatal("expected help to open")
	}
	m, cmd := press(t, m, "d")
	if m.showHelp || cmd != nil {
		t.Fatal("expected the key to only close help")
	}
	if len(fb.removed) != 0 {
		t.Fatalf("removed = %v, want none", fb.removed)
	}
}

func TestQuit(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestDetachedRouterDropsMessages(t *testing.T) {
	r := NewRouter()
	r.Notify()
	r.Navigate(basket.CheckoutRoute)

	var nilRouter *Router
	nilRouter.Notify()
}

func TestHeaderReportsOffline(t *testing.T) {
	m, fb, _, _ := newTestModel(t)
	fb.status = state.Snapshot{
		LastError:           errors.New("GetBasket: execute request: dial tcp: connection refused"),
		ConsecutiveFailures: 2,
	}
	if got := m.renderHeader(); !strings.Contains(got, "OFFLINE") {
		t.Fatalf("header = %q, want OFFLINE", got)
	}
}

func TestLogViewShowsTail(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "shopsync.log")
	content := "time=2024-03-06T12:00:00.000Z level=INFO msg=\"session opened\"\n" +
		"time=2024-03-06T12:00:01.000Z level=WARN msg=\"basket cycle failed\" op=refresh\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m := New(Options{Basket: newFakeBasket(), LogPath: logPath, PrefsPath: filepath.Join(dir, "prefs.toml")})
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = press(t, m, "L")
	if m.currentView != ViewLogs {
		t.Fatalf("view = %v, want logs", m.currentView)
	}
	view := m.View()
	for _, want := range []string{"session opened", "basket cycle failed", "op=refresh"} {
		if !strings.Contains(view, want) {
			t.Fatalf("log view missing %q", want)
		}
	}
}
