// Package shoptest runs an in-process eShop backend for tests.
//
// The server speaks the same command/query protocol as the real backend
// (POST /json/reply/{RequestName}) and keeps its state in memory. Failures
// can be injected per request name.
package shoptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/five82/shopsync/internal/eshop"
)

// Product is a catalog entry that AddBasketItem can reference.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
}

// Server is a fake eShop backend.
type Server struct {
	Router *mux.Router

	mu         sync.Mutex
	products   map[string]Product
	baskets    map[string]*eshop.Basket
	items      map[string][]eshop.BasketItemIndex
	orders     []eshop.Order
	orderItems map[string][]eshop.OrderItem
	failures   map[string]int
	calls      map[string]int
	lastBodies map[string][]byte
	nextItem   int

	http *httptest.Server
}

// New starts a server and registers its shutdown with t.Cleanup when t is
// non-nil.
func New(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		Router:     mux.NewRouter(),
		products:   make(map[string]Product),
		baskets:    make(map[string]*eshop.Basket),
		items:      make(map[string][]eshop.BasketItemIndex),
		orderItems: make(map[string][]eshop.OrderItem),
		failures:   make(map[string]int),
		calls:      make(map[string]int),
		lastBodies: make(map[string][]byte),
	}
	s.Router.Use(s.record)
	s.route("GetBasket", s.handleGetBasket)
	s.route("GetBasketItems", s.handleGetBasketItems)
	s.route("InitiateBasket", s.handleInitiateBasket)
	s.route("AddBasketItem", s.handleAddBasketItem)
	s.route("RemoveBasketItem", s.handleRemoveBasketItem)
	s.route("UpdateBasketItemQuantity", s.handleUpdateQuantity)
	s.route("BuyerOrders", s.handleBuyerOrders)
	s.route("ListOrderItems", s.handleListOrderItems)

	s.http = httptest.NewServer(s.Router)
	if t != nil {
		t.Cleanup(s.Close)
	}
	return s
}

func (s *Server) route(name string, h http.HandlerFunc) {
	s.Router.HandleFunc("/json/reply/"+name, h).Methods(http.MethodPost)
}

// URL returns the base URL to hand to eshop.NewClient.
func (s *Server) URL() string {
	return s.http.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.http.Close()
}

// SeedProduct adds a catalog entry.
func (s *Server) SeedProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// SeedBasket stores a basket and its line items. Totals are recomputed from
// the items.
func (s *Server) SeedBasket(b eshop.Basket, items ...eshop.BasketItemIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	basket := b
	s.baskets[b.ID] = &basket
	s.items[b.ID] = append([]eshop.BasketItemIndex(nil), items...)
	s.recalc(b.ID)
}

// SeedOrders appends orders.
func (s *Server) SeedOrders(orders ...eshop.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, orders...)
}

// SeedOrderItems sets the line items of one order.
func (s *Server) SeedOrderItems(orderID string, items ...eshop.OrderItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderItems[orderID] = append([]eshop.OrderItem(nil), items...)
}

// Basket returns the server-side basket.
func (s *Server) Basket(id string) (eshop.Basket, []eshop.BasketItemIndex, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.baskets[id]
	if !ok {
		return eshop.Basket{}, nil, false
	}
	return *b, append([]eshop.BasketItemIndex(nil), s.items[id]...), true
}

// Fail makes every request named name answer with status until Heal is
// called.
func (s *Server) Fail(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[name] = status
}

// Heal clears an injected failure.
func (s *Server) Heal(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, name)
}

// Calls returns how many requests named name were received.
func (s *Server) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

// LastBody returns the raw body of the most recent request named name.
func (s *Server) LastBody(name string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBodies[name]
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/json/reply/")
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			reject(w, http.StatusBadRequest, "SerializationException", err.Error())
			return
		}

		s.mu.Lock()
		s.calls[name]++
		s.lastBodies[name] = raw
		status, failing := s.failures[name]
		s.mu.Unlock()

		if failing {
			reject(w, status, "InjectedFailure", name+" failed")
			return
		}
		r = r.WithContext(withBody(r.Context(), raw))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleGetBasket(w http.ResponseWriter, r *http.Request) {
	var req eshop.GetBasket
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	b, ok := s.baskets[req.BasketID]
	var out eshop.Basket
	if ok {
		out = *b
	}
	s.mu.Unlock()
	if !ok {
		reject(w, http.StatusNotFound, "NotFound", fmt.Sprintf("basket %s not found", req.BasketID))
		return
	}
	writeQuery(w, out)
}

func (s *Server) handleGetBasketItems(w http.ResponseWriter, r *http.Request) {
	var req eshop.GetBasketItems
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	_, ok := s.baskets[req.BasketID]
	items := append([]eshop.BasketItemIndex(nil), s.items[req.BasketID]...)
	s.mu.Unlock()
	if !ok {
		reject(w, http.StatusNotFound, "NotFound", fmt.Sprintf("basket %s not found", req.BasketID))
		return
	}
	writePaged(w, items, req.Paging)
}

func (s *Server) handleInitiateBasket(w http.ResponseWriter, r *http.Request) {
	var req eshop.InitiateBasket
	if !decode(w, r, &req) {
		return
	}
	if req.BasketID == "" {
		reject(w, http.StatusBadRequest, "Validation", "basketId is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.baskets[req.BasketID]; exists {
		reject(w, http.StatusConflict, "AlreadyExists", fmt.Sprintf("basket %s already exists", req.BasketID))
		return
	}
	s.baskets[req.BasketID] = &eshop.Basket{ID: req.BasketID}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddBasketItem(w http.ResponseWriter, r *http.Request) {
	var req eshop.AddBasketItem
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity < 1 {
		reject(w, http.StatusBadRequest, "Validation", "quantity must be at least 1")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.baskets[req.BasketID]; !ok {
		reject(w, http.StatusNotFound, "NotFound", fmt.Sprintf("basket %s not found", req.BasketID))
		return
	}
	product, ok := s.products[req.ProductID]
	if !ok {
		reject(w, http.StatusNotFound, "NotFound", fmt.Sprintf("product %s not found", req.ProductID))
		return
	}
	items := s.items[req.BasketID]
	for i := range items {
		if items[i].ProductID == req.ProductID {
			items[i].Quantity += req.Quantity
			s.recalc(req.BasketID)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	s.nextItem++
	s.items[req.BasketID] = append(items, eshop.BasketItemIndex{
		ID:                 fmt.Sprintf("item-%d", s.nextItem),
		BasketID:           req.BasketID,
		ProductID:          product.ID,
		ProductName:        product.Name,
		ProductDescription: product.Description,
		ProductPrice:       product.Price,
		Quantity:           req.Quantity,
	})
	s.recalc(req.BasketID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveBasketItem(w http.ResponseWriter, r *http.Request) {
	var req eshop.RemoveBasketItem
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.items[req.BasketID]
	for i := range items {
		if items[i].ProductID == req.ProductID {
			s.items[req.BasketID] = append(items[:i:i], items[i+1:]...)
			s.recalc(req.BasketID)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	reject(w, http.StatusNotFound, "NotFound", fmt.Sprintf("product %s not in basket", req.ProductID))
}

func (s *Server) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req eshop.UpdateBasketItemQuantity
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity < 1 {
		reject(w, http.StatusBadRequest, "Validation", "quantity must be at least 1")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.items[req.BasketID]
	for i := range items {
		if items[i].ProductID == req.ProductID {
			items[i].Quantity = req.Quantity
			s.recalc(req.BasketID)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	reject(w, http.StatusNotFound, "NotFound", fmt.Sprintf("product %s not in basket", req.ProductID))
}

func (s *Server) handleBuyerOrders(w http.ResponseWriter, r *http.Request) {
	var req eshop.BuyerOrders
	if !decode(w, r, &req) {
		return
	}
	from, to := parseBound(req.From), parseBound(req.To)

	s.mu.Lock()
	var matched []eshop.Order
	for _, o := range s.orders {
		if req.UserName != "" && o.UserName != req.UserName {
			continue
		}
		if req.OrderStatus != "" && !strings.EqualFold(o.Status, req.OrderStatus) {
			continue
		}
		created := o.ParsedCreated()
		if !from.IsZero() && created.Before(from) {
			continue
		}
		if !to.IsZero() && created.After(to) {
			continue
		}
		matched = append(matched, o)
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ParsedCreated().After(matched[j].ParsedCreated())
	})
	writePaged(w, matched, req.Paging)
}

func (s *Server) handleListOrderItems(w http.ResponseWriter, r *http.Request) {
	var req eshop.ListOrderItems
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	items := append([]eshop.OrderItem(nil), s.orderItems[req.OrderID]...)
	s.mu.Unlock()
	writePaged(w, items, req.Paging)
}

// recalc must be called with s.mu held.
func (s *Server) recalc(basketID string) {
	b, ok := s.baskets[basketID]
	if !ok {
		return
	}
	items := s.items[basketID]
	b.TotalItems = len(items)
	b.TotalQuantity = 0
	b.SubTotal = 0
	for _, item := range items {
		price := item.Price
		if price == 0 {
			price = item.ProductPrice
		}
		b.TotalQuantity += item.Quantity
		b.SubTotal += price * float64(item.Quantity)
	}
}

func parseBound(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
