package basket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/five82/shopsync/internal/cache"
	"github.com/five82/shopsync/internal/eshop"
	"github.com/five82/shopsync/internal/model"
	"github.com/five82/shopsync/internal/poller"
	"github.com/five82/shopsync/internal/snapshot"
	"github.com/five82/shopsync/internal/state"
)

// CheckoutRoute is the route emitted by Checkout.
const CheckoutRoute = "/checkout"

const defaultPageSize = 100

const (
	opRefresh  = "refresh"
	opRemove   = "remove"
	opQuantity = "quantity"
	opAdd      = "add"
)

var (
	// ErrDisposed is returned by every operation after Dispose.
	ErrDisposed = errors.New("basket controller disposed")
	// ErrUnknownItem is returned when a mutation names an item that is not
	// in the local cache.
	ErrUnknownItem = errors.New("unknown basket item")
)

// Navigator receives route changes requested by the controller.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

// Navigate calls f(route).
func (f NavigatorFunc) Navigate(route string) { f(route) }

// Options configure a Controller.
type Options struct {
	Client    eshop.Dispatcher
	Storage   snapshot.Storage // nil keeps the document in memory only
	Navigator Navigator
	Logger    *slog.Logger

	// Interval is the background refresh period. Zero uses
	// poller.DefaultInterval; a negative value disables the timer.
	Interval time.Duration
	PageSize int

	// NewID generates basket ids for InitiateBasket. Defaults to uuid.NewString.
	NewID func() string
}

// Controller keeps the basket and its line items synchronized with the
// backend.
type Controller struct {
	client   eshop.Dispatcher
	storage  snapshot.Storage
	nav      Navigator
	log      *slog.Logger
	pageSize int
	newID    func() string

	// cycle serializes refresh and mutation cycles.
	cycle    sync.Mutex
	status   state.Store
	disposed atomic.Bool
	dispose  sync.Once
	timer    *poller.Handle

	// mu guards basket and doc, and orders their writes against Dispose.
	mu     sync.RWMutex
	basket *model.Basket // nil until the first successful read
	doc    snapshot.Document
	items  *cache.Cache[model.BasketItem]

	persistMu sync.Mutex

	obsMu     sync.Mutex
	nextObs   int
	observers map[int]func()
}

// New builds a controller, restores the persisted document and starts the
// background refresh. A missing or malformed document is logged and replaced
// by the empty default. New does not hit the network; call Get to hydrate.
func New(ctx context.Context, opts Options) *Controller {
	c := &Controller{
		client:    opts.Client,
		storage:   opts.Storage,
		nav:       opts.Navigator,
		log:       opts.Logger,
		pageSize:  opts.PageSize,
		newID:     opts.NewID,
		items:     cache.New[model.BasketItem](),
		observers: make(map[int]func()),
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}

	doc, err := snapshot.Load(ctx, c.storage, snapshot.BasketKey)
	if err != nil {
		c.log.Warn("basket snapshot unreadable, starting empty", "err", err)
	}
	c.doc = doc
	c.log.Debug("basket snapshot restored", "basket_id", doc.BasketID, "total_items", doc.TotalItems)

	if opts.Interval >= 0 {
		c.timer = poller.Start(ctx, opts.Interval, c.tick)
	}
	return c
}

func (c *Controller) tick(ctx context.Context) {
	// Get logs its own failures.
	_ = c.Get(ctx)
}

// Get runs one refresh cycle: read the basket aggregate, read its items, then
// replace the local state with both. On failure the local state is left as it
// was. When no basket id is known yet, a basket is initiated first.
func (c *Controller) Get(ctx context.Context) error {
	if c.disposed.Load() {
		return ErrDisposed
	}
	c.cycle.Lock()
	defer c.cycle.Unlock()
	if c.disposed.Load() {
		return ErrDisposed
	}

	c.begin(opRefresh)
	err := c.refresh(ctx)
	c.finish(opRefresh, err)
	return err
}

// RefreshIfIdle runs Get unless a cycle is already in progress, in which case
// it returns immediately with a nil error.
func (c *Controller) RefreshIfIdle(ctx context.Context) error {
	if c.status.Snapshot().Loading {
		return nil
	}
	return c.Get(ctx)
}

// RemoveItem asks the backend to drop the item, then removes it locally and
// subtracts its totals from the basket. Nothing changes locally unless the
// backend acknowledges the command.
func (c *Controller) RemoveItem(ctx context.Context, itemID string) error {
	return c.mutate(ctx, opRemove, itemID, func(id string, item model.BasketItem) error {
		cmd := eshop.RemoveBasketItem{BasketID: id, ProductID: item.ProductID}
		if err := c.client.Command(ctx, cmd); err != nil {
			return fmt.Errorf("remove item %s: %w", item.ItemID, err)
		}
		if b := c.currentBasket(); b != nil {
			b.SubtractItem(item)
		}
		c.items.Remove(item.ItemID)
		c.setDocument(snapshot.Document{BasketID: id, TotalItems: c.totalItems()})
		c.persist(ctx)
		return c.discarded()
	})
}

// ChangeQuantity applies an intent built with BasketItem.IncreaseQuantity or
// DecreaseQuantity. The new quantity is written first and applied locally
// only after the backend acknowledges it.
func (c *Controller) ChangeQuantity(ctx context.Context, change model.QuantityChange) error {
	if change.Quantity < 1 {
		return model.ErrMinimumQuantity
	}
	return c.mutate(ctx, opQuantity, change.ItemID, func(id string, item model.BasketItem) error {
		cmd := eshop.UpdateBasketItemQuantity{BasketID: id, ProductID: item.ProductID, Quantity: change.Quantity}
		if err := c.client.Command(ctx, cmd); err != nil {
			return fmt.Errorf("change quantity of %s: %w", item.ItemID, err)
		}
		if b := c.currentBasket(); b != nil {
			b.AdjustQuantity(item, change.Quantity)
		}
		c.items.Upsert(item.WithQuantity(change.Quantity))
		c.persist(ctx)
		return c.discarded()
	})
}

// AddItem puts quantity units of productID into the basket. The backend
// assigns the line item id, so the local effect is a full refresh.
func (c *Controller) AddItem(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return model.ErrMinimumQuantity
	}
	if c.disposed.Load() {
		return ErrDisposed
	}
	c.cycle.Lock()
	defer c.cycle.Unlock()
	if c.disposed.Load() {
		return ErrDisposed
	}

	c.begin(opAdd)
	err := c.add(ctx, productID, quantity)
	c.finish(opAdd, err)
	return err
}

func (c *Controller) add(ctx context.Context, productID string, quantity int) error {
	id, err := c.ensureBasket(ctx)
	if err != nil {
		return err
	}
	cmd := eshop.AddBasketItem{BasketID: id, ProductID: productID, Quantity: quantity}
	if err := c.client.Command(ctx, cmd); err != nil {
		return fmt.Errorf("add product %s: %w", productID, err)
	}
	if c.disposed.Load() {
		return ErrDisposed
	}
	return c.refresh(ctx)
}

// Checkout asks the navigator to show the checkout route.
func (c *Controller) Checkout() error {
	if c.disposed.Load() {
		return ErrDisposed
	}
	if c.nav == nil {
		return errors.New("checkout: no navigator configured")
	}
	c.nav.Navigate(CheckoutRoute)
	return nil
}

// Dispose stops the background refresh. Calls already in flight run to
// completion but their results are discarded: once Dispose returns, neither
// the cached state nor the stored document changes again. Dispose is
// idempotent and may be called from an observer.
func (c *Controller) Dispose() {
	c.dispose.Do(func() {
		c.mu.Lock()
		c.disposed.Store(true)
		b := c.basket
		c.mu.Unlock()

		if b != nil {
			b.Close()
		}
		c.items.Close()
		// Wait out a snapshot write that passed its check before the flag was set.
		c.persistMu.Lock()
		c.persistMu.Unlock()

		c.timer.Stop()
		c.log.Debug("basket controller disposed")
	})
}

// Basket returns the basket state. ok is false until the first successful
// read.
func (c *Controller) Basket() (model.BasketState, bool) {
	b := c.currentBasket()
	if b == nil {
		return model.BasketState{}, false
	}
	return b.State(), true
}

// Items returns the cached line items ordered by product id.
func (c *Controller) Items() []model.BasketItem {
	return c.items.SortedValues(func(a, b model.BasketItem) bool {
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.ItemID < b.ItemID
	})
}

// Item returns one cached line item.
func (c *Controller) Item(itemID string) (model.BasketItem, bool) {
	return c.items.Get(itemID)
}

// Document returns the persisted form of the controller state.
func (c *Controller) Document() snapshot.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc
}

// Status returns the synchronization status.
func (c *Controller) Status() state.Snapshot {
	return c.status.Snapshot()
}

// Subscribe registers fn to run after every cycle starts or finishes. fn runs
// on the goroutine that ran the cycle and must not call back into a blocking
// controller operation.
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

// mutate runs fn as one serialized mutation cycle for a cached item.
func (c *Controller) mutate(ctx context.Context, op, itemID string, fn func(basketID string, item model.BasketItem) error) error {
	if c.disposed.Load() {
		return ErrDisposed
	}
	c.cycle.Lock()
	defer c.cycle.Unlock()
	if c.disposed.Load() {
		return ErrDisposed
	}

	item, ok := c.items.Get(itemID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	c.begin(op)
	err := fn(c.Document().BasketID, item)
	c.finish(op, err)
	return err
}

// refresh must be called with c.cycle held.
func (c *Controller) refresh(ctx context.Context) error {
	id, err := c.ensureBasket(ctx)
	if err != nil {
		return err
	}

	var dto eshop.Basket
	if err := c.client.Query(ctx, eshop.GetBasket{BasketID: id}, &dto); err != nil {
		return fmt.Errorf("get basket %s: %w", id, err)
	}
	if c.disposed.Load() {
		return ErrDisposed
	}

	var records []eshop.BasketItemIndex
	req := eshop.GetBasketItems{BasketID: id, Paging: eshop.Paging{PageSize: c.pageSize}}
	page, err := c.client.Paged(ctx, req, &records)
	if err != nil {
		return fmt.Errorf("get basket items %s: %w", id, err)
	}
	if c.disposed.Load() {
		return ErrDisposed
	}
	if page.Total > len(records) {
		c.log.Warn("basket items truncated to one page", "basket_id", id, "total", page.Total, "page_size", c.pageSize)
	}

	st := model.BasketStateFromDTO(dto)
	if st.ID == "" {
		st.ID = id
	}
	items := make([]model.BasketItem, 0, len(records))
	for _, r := range records {
		items = append(items, model.BasketItemFromDTO(r))
	}

	c.applyBasket(st)
	c.items.ReplaceAll(items)
	c.setDocument(snapshot.Document{BasketID: id, TotalItems: st.TotalItems})
	c.persist(ctx)
	return c.discarded()
}

// ensureBasket returns the known basket id, initiating a new basket when
// there is none. Must be called with c.cycle held.
func (c *Controller) ensureBasket(ctx context.Context) (string, error) {
	if id := c.Document().BasketID; id != "" {
		return id, nil
	}
	id := c.newID()
	if err := c.client.Command(ctx, eshop.InitiateBasket{BasketID: id}); err != nil {
		return "", fmt.Errorf("initiate basket: %w", err)
	}
	if c.disposed.Load() {
		return "", ErrDisposed
	}
	c.log.Info("basket initiated", "basket_id", id)
	c.setDocument(snapshot.Document{BasketID: id})
	c.persist(ctx)
	if err := c.discarded(); err != nil {
		return "", err
	}
	return id, nil
}

// discarded reports ErrDisposed when Dispose ran during the apply step that
// just finished. Writes issued after Dispose are no-ops.
func (c *Controller) discarded() error {
	if c.disposed.Load() {
		return ErrDisposed
	}
	return nil
}

func (c *Controller) applyBasket(st model.BasketState) {
	c.mu.Lock()
	if c.disposed.Load() {
		c.mu.Unlock()
		return
	}
	if c.basket == nil {
		c.basket = model.NewBasket(st)
		c.mu.Unlock()
		return
	}
	b := c.basket
	c.mu.Unlock()
	b.Apply(st)
}

func (c *Controller) currentBasket() *model.Basket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.basket
}

func (c *Controller) totalItems() int {
	if b := c.currentBasket(); b != nil {
		return b.State().TotalItems
	}
	return c.items.Len()
}

func (c *Controller) setDocument(d snapshot.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed.Load() {
		return
	}
	c.doc = d
}

// persist writes the document back. A failed write is logged; the
// acknowledged change it records still stands.
func (c *Controller) persist(ctx context.Context) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if c.disposed.Load() {
		return
	}
	if err := snapshot.Save(ctx, c.storage, snapshot.BasketKey, c.Document()); err != nil {
		c.log.Error("basket snapshot write failed", "err", err)
	}
}

func (c *Controller) begin(op string) {
	c.status.Begin(op)
	c.log.Debug("basket cycle started", "op", op, "basket_id", c.Document().BasketID)
	c.notify()
}

func (c *Controller) finish(op string, err error) {
	if errors.Is(err, ErrDisposed) {
		c.status.Abandon(op)
		c.log.Debug("basket cycle discarded after dispose", "op", op)
		return
	}
	c.status.Finish(op, err)
	switch {
	case err == nil:
		c.log.Debug("basket cycle finished", "op", op, "basket_id", c.Document().BasketID)
	case eshop.IsRejected(err):
		c.log.Warn("basket cycle rejected", "op", op, "basket_id", c.Document().BasketID, "err", err)
	default:
		c.log.Error("basket cycle failed", "op", op, "basket_id", c.Document().BasketID, "err", err)
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
