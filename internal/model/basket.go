package model

import (
	"sort"
	"sync"

	"github.com/five82/shopsync/internal/eshop"
)

// BasketState holds the stored attributes of a basket.
type BasketState struct {
	ID            string
	CustomerID    string
	CustomerName  string
	TotalItems    int
	TotalQuantity int
	SubTotal      float64
}

// Empty reports whether the basket holds no line items.
func (s BasketState) Empty() bool {
	return s.TotalItems <= 0
}

// BasketStateFromDTO converts the wire payload.
func BasketStateFromDTO(dto eshop.Basket) BasketState {
	return BasketState{
		ID:            dto.ID,
		CustomerID:    dto.CustomerID,
		CustomerName:  dto.CustomerName,
		TotalItems:    dto.TotalItems,
		TotalQuantity: dto.TotalQuantity,
		SubTotal:      dto.SubTotal,
	}
}

// Basket is the observable basket singleton. Observers are called
// synchronously after every change with the new state.
type Basket struct {
	mu     sync.RWMutex
	state  BasketState
	closed bool

	obsMu     sync.Mutex
	nextObs   int
	observers map[int]func(BasketState)
}

// NewBasket returns a basket holding s.
func NewBasket(s BasketState) *Basket {
	return &Basket{state: s, observers: make(map[int]func(BasketState))}
}

// State returns a copy of the stored attributes.
func (b *Basket) State() BasketState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// ID returns the basket id.
func (b *Basket) ID() string {
	return b.State().ID
}

// Apply replaces every stored attribute with s.
func (b *Basket) Apply(s BasketState) {
	b.update(func(st *BasketState) { *st = s })
}

// SubtractItem removes the totals contributed by item.
func (b *Basket) SubtractItem(item BasketItem) {
	b.update(func(st *BasketState) {
		st.TotalItems = max(st.TotalItems-1, 0)
		st.TotalQuantity = max(st.TotalQuantity-item.Quantity, 0)
		st.SubTotal -= item.SubTotal()
		if st.TotalItems == 0 || st.SubTotal < 0 {
			st.SubTotal = 0
		}
	})
}

// AdjustQuantity updates the totals after item's quantity became quantity.
func (b *Basket) AdjustQuantity(item BasketItem, quantity int) {
	delta := quantity - item.Quantity
	b.update(func(st *BasketState) {
		st.TotalQuantity = max(st.TotalQuantity+delta, 0)
		st.SubTotal += float64(delta) * item.EffectivePrice()
		if st.SubTotal < 0 {
			st.SubTotal = 0
		}
	})
}

// Subscribe registers fn and returns a function that removes it.
func (b *Basket) Subscribe(fn func(BasketState)) (cancel func()) {
	b.obsMu.Lock()
	if b.observers == nil {
		b.observers = make(map[int]func(BasketState))
	}
	id := b.nextObs
	b.nextObs++
	b.observers[id] = fn
	b.obsMu.Unlock()
	return func() {
		b.obsMu.Lock()
		delete(b.observers, id)
		b.obsMu.Unlock()
	}
}

// Close freezes the basket: later changes are ignored and observers are no
// longer called.
func (b *Basket) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

func (b *Basket) update(fn func(*BasketState)) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	fn(&b.state)
	next := b.state
	b.mu.Unlock()

	b.obsMu.Lock()
	ids := make([]int, 0, len(b.observers))
	for id := range b.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(BasketState), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.observers[id])
	}
	b.obsMu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}
