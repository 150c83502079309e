// Package orders synchronizes a buyer's placed orders with the eShop backend.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/shopsync/internal/cache"
	"github.com/five82/shopsync/internal/eshop"
	"github.com/five82/shopsync/internal/model"
	"github.com/five82/shopsync/internal/state"
)

const defaultPageSize = 100

const (
	opList  = "list"
	opItems = "items"
)

var (
	// ErrDisposed is returned by every operation after Dispose.
	ErrDisposed = errors.New("orders controller disposed")
	// ErrUnknownOrder is returned by LoadItems for an order not in the cache.
	ErrUnknownOrder = errors.New("unknown order")
)

// Options configure a Controller.
type Options struct {
	Client   eshop.Dispatcher
	Buyer    string // user name sent with BuyerOrders
	Filter   Filter // initial filter reported by Filter before the first List
	PageSize int
	Logger   *slog.Logger
	Now      func() time.Time
}

// Controller keeps the filtered order list and the captured line items of
// each order.
type Controller struct {
	client   eshop.Dispatcher
	buyer    string
	pageSize int
	log      *slog.Logger
	now      func() time.Time

	cycle    sync.Mutex
	status   state.Store
	disposed atomic.Bool

	mu     sync.RWMutex
	filter Filter
	orders *cache.Cache[model.Order]

	obsMu     sync.Mutex
	nextObs   int
	observers map[int]func()
}

// New builds a controller. It does not hit the network.
func New(opts Options) *Controller {
	c := &Controller{
		client:    opts.Client,
		buyer:     opts.Buyer,
		pageSize:  opts.PageSize,
		log:       opts.Logger,
		now:       opts.Now,
		orders:    cache.New[model.Order](),
		observers: make(map[int]func()),
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	if c.now == nil {
		c.now = time.Now
	}
	if f, err := opts.Filter.normalize(); err == nil {
		c.filter = f
	} else {
		c.log.Warn("ignoring initial order filter", "err", err)
		c.filter = Filter{Period: PeriodAll}
	}
	return c
}

// List fetches the buyer's orders matching f and replaces the cached list.
// Orders whose items were already captured keep them.
func (c *Controller) List(ctx context.Context, f Filter) error {
	f, err := f.normalize()
	if err != nil {
		return err
	}
	if c.disposed.Load() {
		return ErrDisposed
	}
	c.cycle.Lock()
	defer c.cycle.Unlock()
	if c.disposed.Load() {
		return ErrDisposed
	}

	c.begin(opList)
	err = c.list(ctx, f)
	c.finish(opList, err)
	return err
}

func (c *Controller) list(ctx context.Context, f Filter) error {
	from, to := f.Period.Range(c.now())
	req := eshop.BuyerOrders{
		UserName:    c.buyer,
		OrderStatus: f.Status,
		From:        eshop.FormatTime(from),
		To:          eshop.FormatTime(to),
		Paging:      eshop.Paging{PageSize: c.pageSize},
	}
	var records []eshop.Order
	page, err := c.client.Paged(ctx, req, &records)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	if c.disposed.Load() {
		return ErrDisposed
	}
	if page.Total > len(records) {
		c.log.Warn("orders truncated to one page", "total", page.Total, "page_size", c.pageSize)
	}

	orders := make([]model.Order, 0, len(records))
	for _, r := range records {
		o := model.OrderFromDTO(r)
		if prev, ok := c.orders.Get(o.OrderID); ok && prev.ItemsLoaded {
			o = o.WithItems(prev.Items)
		}
		orders = append(orders, o)
	}
	c.orders.ReplaceAll(orders)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed.Load() {
		return ErrDisposed
	}
	c.filter = f
	return nil
}

// LoadItems captures the line items of one order. Items are fetched at most
// once per order; later calls return immediately.
func (c *Controller) LoadItems(ctx context.Context, orderID string) error {
	if c.disposed.Load() {
		return ErrDisposed
	}
	c.cycle.Lock()
	defer c.cycle.Unlock()
	if c.disposed.Load() {
		return ErrDisposed
	}

	o, ok := c.orders.Get(orderID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
	}
	if o.ItemsLoaded {
		return nil
	}

	c.begin(opItems)
	err := c.loadItems(ctx, o)
	c.finish(opItems, err)
	return err
}

func (c *Controller) loadItems(ctx context.Context, o model.Order) error {
	var records []eshop.OrderItem
	req := eshop.ListOrderItems{OrderID: o.OrderID, Paging: eshop.Paging{PageSize: c.pageSize}}
	if _, err := c.client.Paged(ctx, req, &records); err != nil {
		return fmt.Errorf("list items of order %s: %w", o.OrderID, err)
	}
	if c.disposed.Load() {
		return ErrDisposed
	}
	items := make([]model.OrderItem, 0, len(records))
	for _, r := range records {
		items = append(items, model.OrderItemFromDTO(r))
	}
	c.orders.Upsert(o.WithItems(items))
	if c.disposed.Load() {
		return ErrDisposed
	}
	return nil
}

// Orders returns the cached orders, newest first.
func (c *Controller) Orders() []model.Order {
	return c.orders.SortedValues(func(a, b model.Order) bool {
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
		return a.OrderID < b.OrderID
	})
}

// Order returns one cached order.
func (c *Controller) Order(id string) (model.Order, bool) {
	return c.orders.Get(id)
}

// Filter returns the filter of the last successful List.
func (c *Controller) Filter() Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

// Status returns the synchronization status.
func (c *Controller) Status() state.Snapshot {
	return c.status.Snapshot()
}

// Dispose discards the results of calls still in flight and fails every later
// operation with ErrDisposed. Once it returns the cached orders and the
// filter no longer change.
func (c *Controller) Dispose() {
	c.mu.Lock()
	first := c.disposed.CompareAndSwap(false, true)
	c.mu.Unlock()
	if !first {
		return
	}
	c.orders.Close()
	c.log.Debug("orders controller disposed")
}

// Subscribe registers fn to run after every cycle starts or finishes.
func (c *Controller) Subscribe(fn func()) (cancel func()) {
	c.obsMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.obsMu.Unlock()
	return func() {
		c.obsMu.Lock()
		delete(c.observers, id)
		c.obsMu.Unlock()
	}
}

func (c *Controller) begin(op string) {
	c.status.Begin(op)
	c.log.Debug("orders cycle started", "op", op, "buyer", c.buyer)
	c.notify()
}

func (c *Controller) finish(op string, err error) {
	if errors.Is(err, ErrDisposed) {
		c.status.Abandon(op)
		return
	}
	c.status.Finish(op, err)
	if err != nil {
		c.log.Warn("orders cycle failed", "op", op, "buyer", c.buyer, "err", err)
	} else {
		c.log.Debug("orders cycle finished", "op", op, "orders", c.orders.Len())
	}
	c.notify()
}

func (c *Controller) notify() {
	if c.disposed.Load() {
		return
	}
	c.obsMu.Lock()
	ids := make([]int, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.observers[id])
	}
	c.obsMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
