package basket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/five82/shopsync/internal/eshop"
)

// fakeDispatcher answers basket requests from memory. Gates block a request
// until released; failures are returned once per injection.
type fakeDispatcher struct {
	mu       sync.Mutex
	basket   eshop.Basket
	items    []eshop.BasketItemIndex
	calls    map[string]int
	commands []eshop.Request
	fail     map[string][]error
	gates    map[string]chan struct{}
	entered  chan string
}

func newFakeDispatcher(b eshop.Basket, items ...eshop.BasketItemIndex) *fakeDispatcher {
	return &fakeDispatcher{
		basket:  b,
		items:   items,
		calls:   make(map[string]int),
		fail:    make(map[string][]error),
		gates:   make(map[string]chan struct{}),
		entered: make(chan string, 16),
	}
}

func (f *fakeDispatcher) failNext(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[name] = append(f.fail[name], err)
}

func (f *fakeDispatcher) gate(name string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[name] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeDispatcher) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeDispatcher) enter(ctx context.Context, req eshop.Request) error {
	name := req.RequestName()
	f.mu.Lock()
	f.calls[name]++
	gate := f.gates[name]
	var err error
	if queued := f.fail[name]; len(queued) > 0 {
		err = queued[0]
		f.fail[name] = queued[1:]
	}
	f.mu.Unlock()

	if gate != nil {
		f.entered <- name
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeDispatcher) Query(ctx context.Context, req eshop.Request, payload any) error {
	if err := f.enter(ctx, req); err != nil {
		return err
	}
	f.mu.Lock()
	raw, err := json.Marshal(f.basket)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, payload)
}

func (f *fakeDispatcher) Command(ctx context.Context, req eshop.Request) error {
	if err := f.enter(ctx, req); err != nil {
		return err
	}
	f.mu.Lock()
	f.commands = append(f.commands, req)
	f.mu.Unlock()
	return nil
}

func (f *fakeDispatcher) Paged(ctx context.Context, req eshop.Request, records any) (eshop.PageInfo, error) {
	if err := f.enter(ctx, req); err != nil {
		return eshop.PageInfo{}, err
	}
	f.mu.Lock()
	raw, err := json.Marshal(f.items)
	total := len(f.items)
	f.mu.Unlock()
	if err != nil {
		return eshop.PageInfo{}, err
	}
	if err := json.Unmarshal(raw, records); err != nil {
		return eshop.PageInfo{}, err
	}
	return eshop.PageInfo{Total: total}, nil
}
